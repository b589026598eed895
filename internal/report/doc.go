// Package report renders crawl state summaries.
//
// A Summary snapshots the per-category result counts and queue depths of
// a storage root. Two writers are provided: a plain-text writer for
// terminal display and a Markdown writer for documentation and sharing.
package report
