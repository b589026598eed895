// Package fetch turns batches of page identifiers into extracted links and
// entity references.
//
// The Engine issues concurrent HTTP fetches capped at a fixed in-flight
// limit and classifies each outcome by status code. Failures local to a
// single page are logged and dropped; only context cancellation aborts a
// batch. The network transport is consumed as a capability (a Func), so
// tests substitute a stub without any HTTP server.
package fetch
