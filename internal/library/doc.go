// Package library persists ingested works and their scored excerpts.
//
// SQLite (modernc.org/sqlite) is the default backend; PostgreSQL is available
// through lib/pq. Both share one squirrel-built query layer and an embedded
// schema guarded by a schema_version row. A work and its excerpts are always
// written in a single transaction, and the UNIQUE constraint on external_id
// is the only duplicate check: callers racing on the same book receive
// ErrDuplicateWork and nothing is written.
//
// Read helpers (ListWorks, Excerpts, FeedPage, Stats) back the CLI listings
// and the feed read contract.
package library
