// Package database implements the device media index: a SQLite database of
// albums and assets that backs the device media source and the library
// indexer.
//
// The database opens with WAL journaling, NORMAL synchronous mode, an
// in-memory temp store, and a busy timeout, all set through connection
// string pragmas. The schema self-initializes on open. An asset's ID is the
// hex SHA-256 of its file content, so the same file reachable through
// multiple album paths shares one ID across rows — the property the engine's
// deduplication step relies on.
//
// All read operations are context-aware and guarded by an RWMutex; bulk
// writes go through BeginBatch/EndBatch transactions. Lookups that match no
// rows return ErrNotFound.
package database
