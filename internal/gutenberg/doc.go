// Package gutenberg is the HTTP client for the Project Gutenberg archive.
//
// The archive is a shared volunteer-run service, so the client is
// deliberately polite. Requests are serialized through a per-client rate
// limiter, server throttling (429) waits a full minute per attempt, and 5xx or
// timeout failures back off exponentially. A book's text is looked up at
// several conventional locations; a 404 moves on to the next one. When every
// location fails, FetchText returns a *FetchError that callers record and do
// not retry.
//
// Cover images are resolved by URL convention (CoverURL) or, when requested,
// confirmed with a HEAD request (VerifyCover).
package gutenberg
