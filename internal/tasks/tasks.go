package tasks

import (
	"context"
	"fmt"

	"github.com/ryozaki/mbx/internal/models"
	"github.com/ryozaki/mbx/internal/shared"
)

// SyncResult contains all data from a full library sync.
type SyncResult struct {
	Entries       []models.LibraryEntry // Entries fetched from the catalogue service
	CachedEntries int                   // Library rows written to the local cache
	CachedManga   int                   // Catalogue entries written to the local cache
	CacheErrors   []error               // Non-fatal per-entry cache failures
}

// CatalogueClient defines the catalogue service operations the engine needs.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type CatalogueClient interface {
	Library(ctx context.Context) ([]models.LibraryEntry, error)
	GetManga(ctx context.Context, id int) (*models.Manga, error)
	Me(ctx context.Context) (*models.User, error)
}

// LibraryCacher persists library snapshots locally.
// Implemented by repositories.LibraryRepository.
type LibraryCacher interface {
	ReplaceSnapshot(entries []models.LibraryEntry) error
}

// MangaCacher persists catalogue entries locally.
// Implemented by repositories.MangaCacheAdapter.
type MangaCacher interface {
	CacheManga(m models.Manga) (*models.CachedManga, error)
}

// Engine defines long-running library operations.
type Engine interface {
	// Sync refreshes the local cache from the catalogue service.
	Sync(ctx context.Context, progress chan<- ProgressUpdate) (*SyncResult, error)

	// BulkExport exports library entries concurrently with rate limiting.
	BulkExport(ctx context.Context, progress chan<- ProgressUpdate, opts BulkExportOpts) (*BulkExportResult, error)
}

// LibraryEngine implements Engine for library operations.
// Contains dependencies on the catalogue client and optional cache layers.
type LibraryEngine struct {
	client  CatalogueClient
	library LibraryCacher
	manga   MangaCacher
}

// NewLibraryEngine creates a new LibraryEngine with the provided client and caches.
// Either cacher may be nil, in which case the corresponding writes are skipped.
func NewLibraryEngine(client CatalogueClient, library LibraryCacher, manga MangaCacher) *LibraryEngine {
	return &LibraryEngine{
		client:  client,
		library: library,
		manga:   manga,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *LibraryEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Sync fetches the user's library and replaces the local snapshot.
//
// The library snapshot swap is transactional. Catalogue entry caching is best
// effort: failures are collected in the result rather than aborting the sync.
func (e *LibraryEngine) Sync(ctx context.Context, progress chan<- ProgressUpdate) (*SyncResult, error) {
	if e.client == nil {
		return nil, fmt.Errorf("%w: catalogue client not initialized", shared.ErrServiceUnavailable)
	}

	result := &SyncResult{}

	e.sendProgress(progress, fetchLibraryUpdate(1, 1))

	entries, err := e.client.Library(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch library: %v", shared.ErrAPIRequest, err)
	}

	result.Entries = entries
	e.sendProgress(progress, foundLibraryUpdate(1, 1, entries))

	if e.library != nil {
		e.sendProgress(progress, cacheLibraryUpdate(1, 1))
		if err := e.library.ReplaceSnapshot(entries); err != nil {
			return result, fmt.Errorf("failed to cache library snapshot: %w", err)
		}
		result.CachedEntries = len(entries)
	}

	if e.manga != nil {
		total := len(entries)
		for i, entry := range entries {
			if entry.Manga == nil {
				continue
			}
			if _, err := e.manga.CacheManga(*entry.Manga); err != nil {
				result.CacheErrors = append(result.CacheErrors, fmt.Errorf("manga %d: %w", entry.MangaID, err))
				continue
			}
			result.CachedManga++
			e.sendProgress(progress, cachedEntryUpdate(i+1, total, entry.Manga.Title))
		}
	}

	return result, nil
}
