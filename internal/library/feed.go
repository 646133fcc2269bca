package library

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// FeedPage returns excerpts scoring above q.MinScore in id order, starting
// after q.AfterID. NextCursor is set when more rows remain.
func (s *Store) FeedPage(ctx context.Context, q FeedQuery) (FeedPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	query, args, err := s.sb.Select(
		"e.id", "e.work_id", "e.sequence", "e.text", "e.score",
		"w.external_id", "w.title", "w.author", "w.cover_url",
	).
		From("excerpts e").
		Join("works w ON w.id = e.work_id").
		Where(sq.Gt{"e.score": q.MinScore}).
		Where(sq.Gt{"e.id": q.AfterID}).
		OrderBy("e.id").
		Limit(uint64(limit + 1)).
		ToSql()
	if err != nil {
		return FeedPage{}, fmt.Errorf("build feed query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return FeedPage{}, fmt.Errorf("query feed: %w", err)
	}
	defer rows.Close()

	page := FeedPage{Items: make([]FeedItem, 0, limit)}
	for rows.Next() {
		var (
			item     FeedItem
			coverURL sql.NullString
		)
		if err := rows.Scan(
			&item.ID,
			&item.WorkID,
			&item.Sequence,
			&item.Text,
			&item.Score,
			&item.ExternalID,
			&item.Title,
			&item.Author,
			&coverURL,
		); err != nil {
			return FeedPage{}, fmt.Errorf("scan feed item: %w", err)
		}
		item.CoverURL = coverURL.String
		page.Items = append(page.Items, item)
	}
	if err := rows.Err(); err != nil {
		return FeedPage{}, fmt.Errorf("iterate feed: %w", err)
	}

	if len(page.Items) > limit {
		page.Items = page.Items[:limit]
		page.NextCursor = page.Items[limit-1].ID
	}
	return page, nil
}

// Stats reports work and excerpt totals.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	query, args, err := s.sb.Select("COUNT(1)").From("works").ToSql()
	if err != nil {
		return Stats{}, fmt.Errorf("build stats query: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&stats.Works); err != nil {
		return Stats{}, fmt.Errorf("count works: %w", err)
	}

	query, args, err = s.sb.Select("COUNT(1)", "AVG(score)").From("excerpts").ToSql()
	if err != nil {
		return Stats{}, fmt.Errorf("build stats query: %w", err)
	}
	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&stats.Excerpts, &avg); err != nil {
		return Stats{}, fmt.Errorf("count excerpts: %w", err)
	}
	stats.AverageScore = avg.Float64
	return stats, nil
}
