// Package sqlite implements the chunk store (driven.ChunkStore) on top of
// modernc.org/sqlite, a pure Go SQLite implementation that requires no
// CGO, keeping cross-compilation simple even though the vector and lexical
// indexes this store feeds have CGO-backed native variants.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.ragcore/data/chunks.db.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
