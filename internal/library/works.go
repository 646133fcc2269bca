package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/LarryLuggage/project-libris/internal/logging"
)

var workColumns = []string{"id", "external_id", "title", "author", "cover_url", "created_at"}

var excerptColumns = []string{"id", "work_id", "sequence", "text", "score"}

func scanWork(scanner interface{ Scan(dest ...any) error }) (*Work, error) {
	var (
		work      Work
		coverURL  sql.NullString
		createdAt sql.NullString
	)
	if err := scanner.Scan(&work.ID, &work.ExternalID, &work.Title, &work.Author, &coverURL, &createdAt); err != nil {
		return nil, err
	}
	work.CoverURL = coverURL.String
	work.CreatedAt = parseTimestamp(createdAt)
	return &work, nil
}

// FindWorkByExternalID returns the work for an archive id, or nil when none
// exists. Excerpts are not loaded.
func (s *Store) FindWorkByExternalID(ctx context.Context, externalID int) (*Work, error) {
	query, args, err := s.sb.Select(workColumns...).From("works").Where(sq.Eq{"external_id": externalID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build work lookup: %w", err)
	}
	work, err := scanWork(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find work %d: %w", externalID, err)
	}
	return work, nil
}

// GetWork fetches a work and all of its excerpts by primary key.
func (s *Store) GetWork(ctx context.Context, id int64) (*Work, error) {
	query, args, err := s.sb.Select(workColumns...).From("works").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build work get: %w", err)
	}
	work, err := scanWork(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get work %d: %w", id, err)
	}
	work.Excerpts, err = s.loadExcerpts(ctx, s.db, id, 0)
	if err != nil {
		return nil, err
	}
	return work, nil
}

// CreateWorkWithExcerpts inserts a work and its excerpts in one transaction.
// Excerpt sequences must run 1..n; zero values are filled in from position.
// A work whose external id already exists yields an error wrapping
// ErrDuplicateWork and leaves the database untouched.
func (s *Store) CreateWorkWithExcerpts(ctx context.Context, work Work, excerpts []Excerpt) (*Work, error) {
	if work.ExternalID <= 0 {
		return nil, fmt.Errorf("create work: external id must be positive, got %d", work.ExternalID)
	}
	if strings.TrimSpace(work.Title) == "" {
		return nil, errors.New("create work: title is required")
	}
	prepared := make([]Excerpt, len(excerpts))
	for i, excerpt := range excerpts {
		if excerpt.Sequence == 0 {
			excerpt.Sequence = i + 1
		}
		if excerpt.Sequence != i+1 {
			return nil, fmt.Errorf("create work: excerpt %d has sequence %d", i, excerpt.Sequence)
		}
		prepared[i] = excerpt
	}

	createdAt := work.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var created *Work
	err := s.runTx(ctx, func(tx *sql.Tx) error {
		query, args, err := s.sb.Insert("works").
			Columns("external_id", "title", "author", "cover_url", "created_at").
			Values(work.ExternalID, work.Title, work.Author, nullableString(work.CoverURL), createdAt.UTC().Format(timestampLayout)).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("build work insert: %w", err)
		}
		var workID int64
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&workID); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: external id %d", ErrDuplicateWork, work.ExternalID)
			}
			return fmt.Errorf("insert work: %w", err)
		}

		for start := 0; start < len(prepared); start += excerptBatchSize {
			end := min(start+excerptBatchSize, len(prepared))
			insert := s.sb.Insert("excerpts").Columns("work_id", "sequence", "text", "score")
			for _, excerpt := range prepared[start:end] {
				insert = insert.Values(workID, excerpt.Sequence, excerpt.Text, excerpt.Score)
			}
			query, args, err := insert.ToSql()
			if err != nil {
				return fmt.Errorf("build excerpt insert: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert excerpts %d-%d: %w", start+1, end, err)
			}
		}

		stored, err := s.loadExcerpts(ctx, tx, workID, 0)
		if err != nil {
			return err
		}
		created = &Work{
			ID:         workID,
			ExternalID: work.ExternalID,
			Title:      work.Title,
			Author:     work.Author,
			CoverURL:   work.CoverURL,
			CreatedAt:  createdAt.UTC(),
			Excerpts:   stored,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("work stored",
		logging.Int(logging.FieldExternalID, created.ExternalID),
		logging.Int64("work_id", created.ID),
		logging.Int("excerpts", len(created.Excerpts)),
	)
	return created, nil
}

// ListWorks returns works in insertion order with their excerpt counts. A
// limit of zero or less returns every work.
func (s *Store) ListWorks(ctx context.Context, limit int) ([]WorkSummary, error) {
	builder := s.sb.Select(
		"w.id", "w.external_id", "w.title", "w.author", "w.cover_url", "w.created_at", "COUNT(e.id)",
	).
		From("works w").
		LeftJoin("excerpts e ON e.work_id = w.id").
		GroupBy("w.id", "w.external_id", "w.title", "w.author", "w.cover_url", "w.created_at").
		OrderBy("w.id")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build work list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list works: %w", err)
	}
	defer rows.Close()

	var summaries []WorkSummary
	for rows.Next() {
		var (
			summary   WorkSummary
			coverURL  sql.NullString
			createdAt sql.NullString
		)
		if err := rows.Scan(
			&summary.ID,
			&summary.ExternalID,
			&summary.Title,
			&summary.Author,
			&coverURL,
			&createdAt,
			&summary.ExcerptCount,
		); err != nil {
			return nil, fmt.Errorf("scan work: %w", err)
		}
		summary.CoverURL = coverURL.String
		summary.CreatedAt = parseTimestamp(createdAt)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate works: %w", err)
	}
	return summaries, nil
}

// Excerpts returns the excerpts of a work in sequence order. A limit of zero
// or less returns all of them.
func (s *Store) Excerpts(ctx context.Context, workID int64, limit int) ([]Excerpt, error) {
	return s.loadExcerpts(ctx, s.db, workID, limit)
}

func (s *Store) loadExcerpts(ctx context.Context, q queryer, workID int64, limit int) ([]Excerpt, error) {
	builder := s.sb.Select(excerptColumns...).
		From("excerpts").
		Where(sq.Eq{"work_id": workID}).
		OrderBy("sequence")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build excerpt query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query excerpts for work %d: %w", workID, err)
	}
	defer rows.Close()

	excerpts := make([]Excerpt, 0)
	for rows.Next() {
		var excerpt Excerpt
		if err := rows.Scan(&excerpt.ID, &excerpt.WorkID, &excerpt.Sequence, &excerpt.Text, &excerpt.Score); err != nil {
			return nil, fmt.Errorf("scan excerpt: %w", err)
		}
		excerpts = append(excerpts, excerpt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate excerpts: %w", err)
	}
	return excerpts, nil
}
