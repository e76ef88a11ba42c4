package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ryozaki/mbx/internal/models"
	"github.com/ryozaki/mbx/internal/shared"
)

// LibraryRepository implements [models.Repository] for [models.CachedLibraryEntry] persistence.
type LibraryRepository struct {
	db *sql.DB
}

// NewLibraryRepository creates a new [LibraryRepository] with the given database connection
func NewLibraryRepository(db *sql.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

// Create inserts a new library entry into the database with generated ID and sequence
func (r *LibraryRepository) Create(entry *models.CachedLibraryEntry) error {
	sequence, err := NextSequence(r.db, "library_entries")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	entry.SetID(id)
	entry.SetSequence(sequence)

	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO library_entries (id, sequence, manga_remote_id, title, status, progress, rating, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, entry.MangaRemoteID(), entry.Title(),
		string(entry.Status()), entry.Progress(), entry.Rating(), entry.CreatedAt(), entry.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert library entry: %w", err)
	}

	return nil
}

// Get retrieves a library entry by ID, excluding soft-deleted rows
func (r *LibraryRepository) Get(id string) (*models.CachedLibraryEntry, error) {
	query := `
		SELECT id, sequence, manga_remote_id, title, status, progress, rating, created_at, updated_at, deleted_at
		FROM library_entries
		WHERE id = ? AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByRemoteID retrieves a library entry by the catalogue service's manga identifier
func (r *LibraryRepository) GetByRemoteID(remoteID int) (*models.CachedLibraryEntry, error) {
	query := `
		SELECT id, sequence, manga_remote_id, title, status, progress, rating, created_at, updated_at, deleted_at
		FROM library_entries
		WHERE manga_remote_id = ? AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRow(query, remoteID))
}

func (r *LibraryRepository) scanOne(row *sql.Row) (*models.CachedLibraryEntry, error) {
	var (
		id        string
		sequence  int
		remoteID  int
		title     string
		status    string
		progress  int
		rating    float64
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &remoteID, &title, &status, &progress, &rating, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: not in library", shared.ErrEntryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query library entry: %w", err)
	}

	entry := models.NewCachedLibraryEntry(sequence, remoteID, title, models.Status(status), progress, rating)
	entry.SetID(id)
	entry.SetCreatedAt(createdAt)
	entry.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		entry.SetDeletedAt(&deletedAt.Time)
	}

	return entry, nil
}

// Update modifies an existing library entry in the database
func (r *LibraryRepository) Update(entry *models.CachedLibraryEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	entry.SetUpdatedAt(now)

	query := `
		UPDATE library_entries
		SET title = ?, status = ?, progress = ?, rating = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, entry.Title(), string(entry.Status()), entry.Progress(), entry.Rating(), now, entry.ID())
	if err != nil {
		return fmt.Errorf("failed to update library entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("library entry not found or already deleted: %s", entry.ID())
	}

	return nil
}

// Delete soft-deletes a library entry by ID
func (r *LibraryRepository) Delete(id string) error {
	query := `
		UPDATE library_entries
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete library entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("library entry not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all library entries matching the given criteria, excluding soft-deleted rows
func (r *LibraryRepository) List(criteria map[string]any) ([]*models.CachedLibraryEntry, error) {
	query := `
		SELECT id, sequence, manga_remote_id, title, status, progress, rating, created_at, updated_at, deleted_at
		FROM library_entries
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query library entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.CachedLibraryEntry
	for rows.Next() {
		var (
			id        string
			sequence  int
			remoteID  int
			title     string
			status    string
			progress  int
			rating    float64
			createdAt time.Time
			updatedAt time.Time
			deletedAt sql.NullTime
		)

		err := rows.Scan(&id, &sequence, &remoteID, &title, &status, &progress, &rating, &createdAt, &updatedAt, &deletedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan library entry: %w", err)
		}

		entry := models.NewCachedLibraryEntry(sequence, remoteID, title, models.Status(status), progress, rating)
		entry.SetID(id)
		entry.SetCreatedAt(createdAt)
		entry.SetUpdatedAt(updatedAt)
		if deletedAt.Valid {
			entry.SetDeletedAt(&deletedAt.Time)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// ReplaceSnapshot swaps the cached library for a freshly synced one. The old
// rows are removed and the new entries inserted inside a single transaction,
// so a failed sync never leaves a half-replaced library behind.
func (r *LibraryRepository) ReplaceSnapshot(entries []models.LibraryEntry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM library_entries"); err != nil {
		return fmt.Errorf("failed to clear library: %w", err)
	}

	now := time.Now()
	for _, e := range entries {
		if _, err := tx.Exec("UPDATE library_entries_sequence SET value = value + 1 WHERE id = 1"); err != nil {
			return fmt.Errorf("failed to increment sequence: %w", err)
		}
		var seq int
		if err := tx.QueryRow("SELECT value FROM library_entries_sequence WHERE id = 1").Scan(&seq); err != nil {
			return fmt.Errorf("failed to get sequence value: %w", err)
		}

		title, rating := "", 0.0
		if e.Manga != nil {
			title = e.Manga.Title
			rating = e.Manga.Rating
		}

		entry := models.NewCachedLibraryEntry(seq, e.MangaID, title, e.Status, e.Progress, rating)
		entry.SetID(shared.GenerateID())
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		_, err = tx.Exec(`
			INSERT INTO library_entries (id, sequence, manga_remote_id, title, status, progress, rating, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, entry.ID(), seq, e.MangaID, title, string(e.Status), e.Progress, rating, now, now)
		if err != nil {
			return fmt.Errorf("failed to insert library entry: %w", err)
		}
	}

	return tx.Commit()
}

// GroupByStatus returns live entries bucketed by reading status, in status
// display order.
func (r *LibraryRepository) GroupByStatus() (map[models.Status][]*models.CachedLibraryEntry, error) {
	entries, err := r.List(nil)
	if err != nil {
		return nil, err
	}

	grouped := make(map[models.Status][]*models.CachedLibraryEntry)
	for _, e := range entries {
		grouped[e.Status()] = append(grouped[e.Status()], e)
	}

	return grouped, nil
}
