// Package ingest orchestrates turning catalog entries into stored works.
//
// For each entry the Pipeline checks storage for an existing work, fetches
// the text from the archive, strips the boilerplate, chunks it into
// paragraphs, scores every chunk and stores the work with its excerpts in a
// single transaction. IngestBatch runs entries strictly one after another and
// absorbs every per-entry failure (fetch errors, empty books, storage faults
// and panics) into the returned Run so one bad book never stops the batch.
package ingest
