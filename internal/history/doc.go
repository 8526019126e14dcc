// Package history persists a ledger of encode runs in SQLite.
//
// Every engine read that reaches the encoder records one Run: codec, pass
// count, geometry, output size, timing and, for failures, the error kind.
// The CLI lists recent runs with `videoengine history`.
//
// The store uses modernc.org/sqlite (pure Go) in WAL mode and retries
// statements that hit SQLITE_BUSY so several processes can share one ledger.
package history
