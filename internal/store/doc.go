// Package store provides durable, crash-safe collections backed by SQLite.
//
// # Architecture
//
// Each collection owns exactly one database file. Three collection types are
// provided:
//
//   - Set: a persisted set of unique strings (visited pages, result sets)
//   - PageQueue: a persisted FIFO queue of page identifiers
//   - EntityQueue: a persisted FIFO queue of (category, identifier) pairs
//
// Design decision: We use modernc.org/sqlite through database/sql rather
// than an in-memory structure with periodic snapshots because:
//  1. Every mutation is its own committed transaction, so a crash at any
//     point loses at most the operation in flight
//  2. The crawl state can grow far beyond RAM; SQLite pages it from disk
//  3. Restarting the process resumes from exactly the persisted contents
//
// # Concurrency
//
// Every operation on a collection acquires that instance's mutex before
// touching storage and releases it before returning. Combined with a
// connection pool capped at a single connection, at most one storage
// operation per instance is in flight at a time. This is an internal
// invariant, not a caller concern: all methods are safe for concurrent use.
//
// # Length accounting
//
// Each collection caches its length in memory, seeded from an authoritative
// row count at open time. Inserts increment the cached length by the input
// count even when the storage layer ignores a duplicate row, so the cached
// length can exceed the true row count under duplicate-laden inserts. This
// mirrors the reference behavior; callers that need an exact count must use
// Count. The divergence is documented on each mutating method.
package store
