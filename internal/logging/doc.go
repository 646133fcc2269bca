// Package logging assembles the structured slog loggers used across libris.
//
// It owns the console and JSON handlers, level parsing and output plumbing,
// and context helpers that tag lines with the batch run id and the book being
// processed. The console handler prints a single header line per record
// ("INFO [ingest] Book #84 (3/10) – excerpts stored") followed by indented
// fields; JSON output keeps the raw keys for machine consumption.
//
// Prefer NewComponentLogger over ad-hoc logger.With calls so every component
// is labelled the same way, and WarnWithContext/ErrorWithContext for problems
// an operator may need to act on.
package logging
