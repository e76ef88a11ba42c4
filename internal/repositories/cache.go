package repositories

import (
	"database/sql"
	"errors"

	"github.com/ryozaki/mbx/internal/models"
	"github.com/ryozaki/mbx/internal/shared"
)

// MangaCacheAdapter bridges catalogue responses and the local cache. Entries
// are keyed by the catalogue service's identifier, so re-fetching a page
// refreshes rows instead of duplicating them.
type MangaCacheAdapter struct {
	repo *MangaRepository
}

// NewMangaCacheAdapter creates an adapter over the given repository.
func NewMangaCacheAdapter(repo *MangaRepository) *MangaCacheAdapter {
	return &MangaCacheAdapter{repo: repo}
}

// CacheManga stores a catalogue entry, updating the existing row when the
// remote id is already cached.
func (a *MangaCacheAdapter) CacheManga(m models.Manga) (*models.CachedManga, error) {
	existing, err := a.repo.GetByRemoteID(m.ID)
	if err == nil {
		existing.SetManga(m)
		if err := a.repo.Update(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, shared.ErrMangaNotFound) && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	cached := models.NewCachedManga(0, m)
	if err := a.repo.Create(cached); err != nil {
		return nil, err
	}
	return cached, nil
}

// CachePage stores every entry of a catalogue page and reports how many rows
// were written.
func (a *MangaCacheAdapter) CachePage(page models.MangaPage) (int, error) {
	count := 0
	for _, m := range page.Results {
		if _, err := a.CacheManga(m); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
