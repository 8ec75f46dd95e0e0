// Package sqlite persists the prcache cache in a single SQLite database.
//
// The driver is modernc.org/sqlite, which needs no CGO. One connection backs
// every store:
//
//   - CacheStore: cached pull requests, work items and pipeline runs
//   - UpdateStateStore: LastUpdated per refresh scope
//   - SavedSearchStore: saved work-item searches
//
// # Schema
//
// Versioned migrations live in migrations/ as .up.sql and .down.sql pairs and
// are applied in order when the store opens.
//
// # Data Location
//
// By default, the database is stored at ~/.prcache/data/cache.db
//
// # Thread Safety
//
// Stores are safe for concurrent use. Replacing the rows of one scope runs in a
// transaction, so readers never see a half-written refresh.
package sqlite
