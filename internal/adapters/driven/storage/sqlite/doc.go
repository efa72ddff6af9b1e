// Package sqlite provides the SQLite-backed chunk store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Two tables hold the data: sources (one row per context document) and chunks
// (embedded segments, vectors stored as JSON text, timestamps in Unix milliseconds).
//
// # Data Location
//
// By default, the database is stored at .data/context.sqlite under the project root.
//
// # Thread Safety
//
// All operations are thread-safe. Writes are serialised by SQLite itself in WAL
// mode; no application-level locking is added.
package sqlite
