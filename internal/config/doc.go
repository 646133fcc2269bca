// Package config loads, normalizes, and validates libris configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LIBRIS_DATABASE_URL. The Config type gathers every knob the ingestion
// pipeline and CLI need: storage target, archive politeness, excerpt window,
// scorer tuning and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a canonical storage driver, and clear validation errors.
package config
