// Package store provides storage backends for the retention engine.
//
// Two implementations of retention.Storage are available:
//
//   - SQLiteStore: the production backend. One database file holds accounts,
//     hyperparameter configurations, and call history, with WAL mode for
//     concurrent reads during writes.
//   - MemoryStore: an in-memory backend for tests and ephemeral runs.
//
// # Timestamps
//
// All timestamps are persisted as fixed-width UTC text
// ("2006-01-02T15:04:05.000000000Z"). The cascade machinery compares
// tombstones for exact equality and the sweeper compares them against a
// cutoff with SQL <, so the representation must make string equality and
// string ordering agree with time equality and time ordering. Driver-native
// time conversion does neither across both supported drivers.
//
// # Drivers
//
// The SQLite driver is selected at build time: cgo builds use
// github.com/mattn/go-sqlite3, pure-Go builds use modernc.org/sqlite. Both
// receive the same pragmas (foreign keys, busy timeout, WAL) through their
// respective DSN syntax, so every pooled connection is configured alike.
package store
