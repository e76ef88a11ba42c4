package models

import (
	"fmt"
	"time"
)

// entity holds the identity and lifecycle fields shared by all persisted models.
type entity struct {
	id        string
	sequence  int
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

func newEntity(sequence int) entity {
	now := time.Now()
	return entity{sequence: sequence, createdAt: now, updatedAt: now}
}

func (e *entity) ID() string                { return e.id }
func (e *entity) Sequence() int             { return e.sequence }
func (e *entity) CreatedAt() time.Time      { return e.createdAt }
func (e *entity) UpdatedAt() time.Time      { return e.updatedAt }
func (e *entity) DeletedAt() *time.Time     { return e.deletedAt }
func (e *entity) SetID(id string)           { e.id = id }
func (e *entity) SetSequence(seq int)       { e.sequence = seq }
func (e *entity) SetCreatedAt(t time.Time)  { e.createdAt = t }
func (e *entity) SetUpdatedAt(t time.Time)  { e.updatedAt = t }
func (e *entity) SetDeletedAt(t *time.Time) { e.deletedAt = t }

// CachedManga is a locally persisted copy of a catalogue entry.
type CachedManga struct {
	entity
	manga Manga
}

// NewCachedManga creates a cache entity wrapping the given catalogue entry.
func NewCachedManga(sequence int, manga Manga) *CachedManga {
	return &CachedManga{entity: newEntity(sequence), manga: manga}
}

// Manga returns the wrapped catalogue entry.
func (c *CachedManga) Manga() Manga { return c.manga }

// SetManga replaces the wrapped catalogue entry.
func (c *CachedManga) SetManga(m Manga) { c.manga = m }

// RemoteID returns the catalogue service's identifier for this entry.
func (c *CachedManga) RemoteID() int { return c.manga.ID }

func (c *CachedManga) Validate() error {
	if c.manga.ID <= 0 {
		return fmt.Errorf("cached manga requires a positive remote id, got %d", c.manga.ID)
	}
	if c.manga.Title == "" {
		return fmt.Errorf("cached manga requires a title")
	}
	return nil
}

// CachedLibraryEntry is a locally persisted snapshot of one library entry.
type CachedLibraryEntry struct {
	entity
	mangaRemoteID int
	title         string
	status        Status
	progress      int
	rating        float64
}

// NewCachedLibraryEntry creates a cache entity for a library entry.
// The title and rating are denormalized from the catalogue entry for offline display.
func NewCachedLibraryEntry(sequence, mangaRemoteID int, title string, status Status, progress int, rating float64) *CachedLibraryEntry {
	return &CachedLibraryEntry{
		entity:        newEntity(sequence),
		mangaRemoteID: mangaRemoteID,
		title:         title,
		status:        status,
		progress:      progress,
		rating:        rating,
	}
}

func (c *CachedLibraryEntry) MangaRemoteID() int { return c.mangaRemoteID }
func (c *CachedLibraryEntry) Title() string      { return c.title }
func (c *CachedLibraryEntry) Status() Status     { return c.status }
func (c *CachedLibraryEntry) Progress() int      { return c.progress }
func (c *CachedLibraryEntry) Rating() float64    { return c.rating }

func (c *CachedLibraryEntry) SetStatus(s Status)  { c.status = s }
func (c *CachedLibraryEntry) SetProgress(p int)   { c.progress = p }
func (c *CachedLibraryEntry) SetRating(r float64) { c.rating = r }

func (c *CachedLibraryEntry) Validate() error {
	if c.mangaRemoteID <= 0 {
		return fmt.Errorf("library entry requires a positive manga id, got %d", c.mangaRemoteID)
	}
	if c.title == "" {
		return fmt.Errorf("library entry requires a title")
	}
	if !c.status.Valid() {
		return fmt.Errorf("library entry has invalid status %q", c.status)
	}
	if c.progress < 0 {
		return fmt.Errorf("library entry progress cannot be negative")
	}
	return nil
}
