// Package catalog holds the curated list of Project Gutenberg works that
// libris ingests by default.
//
// The seed list ships embedded as classics.yaml and may be replaced by a file
// with the same layout (see catalog.path in the configuration). Entries keep
// their curation order; duplicate ids are resolved at construction time by
// keeping the first definition. Lookups by id never fail for unknown ids when
// going through ByIDs: a placeholder entry is returned so operators can ingest
// works that are not part of the curated set.
package catalog
