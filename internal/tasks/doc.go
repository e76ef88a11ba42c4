// Package tasks orchestrates long-running library operations with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines two operations:
//
//  1. [Engine.Sync] : Refresh the local cache from the catalogue service
//     - Fetches the authenticated user's library
//     - Replaces the cached library snapshot in a single transaction
//     - Caches the embedded catalogue entries for offline display
//
//  2. [Engine.BulkExport] : Export library entries concurrently
//     - Fetches full catalogue details for each entry, rate limited
//     - Writes per-entry files in the selected format via a worker pool
//     - Generates a manifest file summarizing successes and failures
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [LibraryEngine] implements [Engine] with dependencies on:
//   - [CatalogueClient] : the catalogue service HTTP client
//   - [LibraryCacher] : optional persistence layer (repositories.LibraryRepository)
//   - [MangaCacher] : optional persistence layer (repositories.MangaCacheAdapter)
package tasks
