// Package main hosts the libris CLI entrypoint and command graph.
//
// The Cobra command tree wraps the ingestion pipeline and the read side of
// the excerpt library: catalog browsing, stored works, the paged feed and
// ad-hoc scoring. Configuration resolution, logger setup and store opening
// live in commandContext so subcommands only deal with presentation.
package main
