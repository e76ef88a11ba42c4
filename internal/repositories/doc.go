// Package repositories implements SQLite persistence for the local cache.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [MangaRepository] : Cached catalogue entries with remote-id lookups
//   - [LibraryRepository] : The last synced snapshot of the user's library
//   - [MangaCacheAdapter] : Write-through caching of fetched catalogue pages with upsert-by-remote-id semantics
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
