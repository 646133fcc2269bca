package library

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/LarryLuggage/project-libris/internal/logging"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

//go:embed schema_postgres.sql
var postgresSchema string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

const (
	// DriverSQLite selects the embedded modernc SQLite engine.
	DriverSQLite = "sqlite"
	// DriverPostgres selects PostgreSQL through lib/pq.
	DriverPostgres = "postgres"
)

const (
	maxTxAttempts    = 3
	excerptBatchSize = 100
	defaultFeedLimit = 20
	maxFeedLimit     = 100
	timestampLayout  = time.RFC3339Nano
)

// Options configures Open.
type Options struct {
	Driver string
	DSN    string
	Logger *slog.Logger
}

// Store persists works and excerpts in SQLite or PostgreSQL.
type Store struct {
	db     *sql.DB
	driver string
	sb     sq.StatementBuilderType
	logger *slog.Logger
}

// Open connects to the configured database and applies the embedded schema
// when the database is new.
func Open(ctx context.Context, opts Options) (*Store, error) {
	driver := strings.ToLower(strings.TrimSpace(opts.Driver))
	if driver == "" {
		driver = DriverSQLite
	}
	if strings.TrimSpace(opts.DSN) == "" {
		return nil, errors.New("library: dsn is required")
	}

	store := &Store{
		driver: driver,
		logger: logging.NewComponentLogger(opts.Logger, "library"),
	}

	var err error
	switch driver {
	case DriverSQLite:
		store.sb = sq.StatementBuilder.PlaceholderFormat(sq.Question)
		store.db, err = openSQLite(ctx, opts.DSN)
	case DriverPostgres:
		store.sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
		store.db, err = openPostgres(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("library: unsupported driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := store.initSchema(ctx); err != nil {
		_ = store.db.Close()
		return nil, err
	}
	store.logger.Debug("library opened", logging.String("driver", driver))
	return store, nil
}

func openSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection; a single connection keeps them in force and
	// serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return db, nil
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Driver reports the active database driver.
func (s *Store) Driver() string {
	return s.driver
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)"); err != nil {
		return fmt.Errorf("ensure schema_version: %w", err)
	}

	var version sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if !version.Valid {
		return s.createSchema(ctx)
	}
	if version.Int64 != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete the database or point storage.dsn elsewhere)",
			ErrSchemaMismatch, version.Int64, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	schema := sqliteSchema
	if s.driver == DriverPostgres {
		schema = postgresSchema
	}
	return s.runTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		query, args, err := s.sb.Insert("schema_version").Columns("version").Values(schemaVersion).ToSql()
		if err != nil {
			return fmt.Errorf("build schema version insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		s.logger.Info("library schema created",
			logging.String("driver", s.driver),
			logging.Int("schema_version", schemaVersion),
		)
		return nil
	})
}

// runTx executes fn inside a transaction, retrying when SQLite reports the
// database as busy. fn must only use tx.
func (s *Store) runTx(ctx context.Context, fn func(*sql.Tx) error) error {
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := s.runTxOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isBusy(err) || attempt == maxTxAttempts-1 {
			return err
		}
		timer := time.NewTimer(time.Duration(100*(attempt+1)) * time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry transaction: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return errors.New("library: transaction retries exhausted")
}

func (s *Store) runTxOnce(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func nullableString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func parseTimestamp(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Time{}
	}
	for _, layout := range []string{timestampLayout, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw.String); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
