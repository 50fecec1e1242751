// Package store provides the durable state behind partycollage using SQLite.
//
// # Architecture
//
// Two independent facilities share one storage origin:
//
//   - SlotStore: string values under string keys (parties, currentUser,
//     the legacy media array and its backup)
//   - MediaStore: the media table, one row per MediaItem keyed by ID
//
// SQLiteStore implements both in a single struct on one database file.
// MockStore is the in-memory equivalent used by unit tests.
//
// # SQLite Configuration
//
//	PRAGMA journal_mode=WAL;
//
// Two drivers are registered: "sqlite" (modernc.org/sqlite, the default) and
// "sqlite3" (github.com/mattn/go-sqlite3, cgo only). Use ":memory:" for an
// ephemeral database.
//
// # Error Handling
//
// GetSlot and DeleteMedia return ErrNotFound for missing entries. All other
// failures are wrapped with context and returned unchanged; degrading them to
// empty results is the caller's policy, not the store's.
//
// # Testing
//
//	s := store.NewMockStore()
//	s.FailWith(errors.New("disk full")) // simulate storage failure
package store
