package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ryozaki/mbx/internal/models"
	"github.com/ryozaki/mbx/internal/shared"
)

// MangaRepository implements [models.Repository] for [models.CachedManga] persistence.
type MangaRepository struct {
	db *sql.DB
}

// NewMangaRepository creates a new [MangaRepository] with the given database connection
func NewMangaRepository(db *sql.DB) *MangaRepository {
	return &MangaRepository{db: db}
}

// Create inserts a new cached entry into the database with generated ID and sequence
func (r *MangaRepository) Create(cached *models.CachedManga) error {
	sequence, err := NextSequence(r.db, "manga")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	cached.SetID(id)
	cached.SetSequence(sequence)

	if err := cached.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	m := cached.Manga()
	query := `
		INSERT INTO manga (id, sequence, remote_id, title, description, year, rating, tags, cover, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, m.ID, m.Title, m.Description, m.Year, m.Rating,
		joinTags(m.Tags), m.Cover, cached.CreatedAt(), cached.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert manga: %w", err)
	}

	return nil
}

// Get retrieves a cached entry by ID, excluding soft-deleted rows
func (r *MangaRepository) Get(id string) (*models.CachedManga, error) {
	query := `
		SELECT id, sequence, remote_id, title, description, year, rating, tags, cover, created_at, updated_at, deleted_at
		FROM manga
		WHERE id = ? AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByRemoteID retrieves a cached entry by the catalogue service's identifier
func (r *MangaRepository) GetByRemoteID(remoteID int) (*models.CachedManga, error) {
	query := `
		SELECT id, sequence, remote_id, title, description, year, rating, tags, cover, created_at, updated_at, deleted_at
		FROM manga
		WHERE remote_id = ? AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRow(query, remoteID))
}

func (r *MangaRepository) scanOne(row *sql.Row) (*models.CachedManga, error) {
	var (
		id          string
		sequence    int
		remoteID    int
		title       string
		description string
		year        sql.NullInt64
		rating      float64
		tags        string
		cover       string
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := row.Scan(&id, &sequence, &remoteID, &title, &description, &year, &rating, &tags, &cover, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: not cached", shared.ErrMangaNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query manga: %w", err)
	}

	manga := models.Manga{
		ID:          remoteID,
		Title:       title,
		Description: description,
		Rating:      rating,
		Tags:        splitTags(tags),
		Cover:       cover,
	}
	if year.Valid {
		manga.Year = int(year.Int64)
	}

	cached := models.NewCachedManga(sequence, manga)
	cached.SetID(id)
	cached.SetCreatedAt(createdAt)
	cached.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		cached.SetDeletedAt(&deletedAt.Time)
	}

	return cached, nil
}

// Update modifies an existing cached entry in the database
func (r *MangaRepository) Update(cached *models.CachedManga) error {
	if err := cached.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	cached.SetUpdatedAt(now)

	m := cached.Manga()
	query := `
		UPDATE manga
		SET title = ?, description = ?, year = ?, rating = ?, tags = ?, cover = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, m.Title, m.Description, m.Year, m.Rating, joinTags(m.Tags), m.Cover, now, cached.ID())
	if err != nil {
		return fmt.Errorf("failed to update manga: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("manga not found or already deleted: %s", cached.ID())
	}

	return nil
}

// Delete soft-deletes a cached entry by ID
func (r *MangaRepository) Delete(id string) error {
	query := `
		UPDATE manga
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete manga: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("manga not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all cached entries matching the given criteria, excluding soft-deleted rows
func (r *MangaRepository) List(criteria map[string]any) ([]*models.CachedManga, error) {
	query := `
		SELECT id, sequence, remote_id, title, description, year, rating, tags, cover, created_at, updated_at, deleted_at
		FROM manga
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if title, ok := criteria["title"].(string); ok && title != "" {
		query += " AND title LIKE ?"
		args = append(args, "%"+title+"%")
	}
	if tag, ok := criteria["tag"].(string); ok && tag != "" {
		query += " AND (',' || tags || ',') LIKE ?"
		args = append(args, "%,"+tag+",%")
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query manga: %w", err)
	}
	defer rows.Close()

	var cached []*models.CachedManga
	for rows.Next() {
		var (
			id          string
			sequence    int
			remoteID    int
			title       string
			description string
			year        sql.NullInt64
			rating      float64
			tags        string
			cover       string
			createdAt   time.Time
			updatedAt   time.Time
			deletedAt   sql.NullTime
		)

		err := rows.Scan(&id, &sequence, &remoteID, &title, &description, &year, &rating, &tags, &cover, &createdAt, &updatedAt, &deletedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan manga: %w", err)
		}

		manga := models.Manga{
			ID:          remoteID,
			Title:       title,
			Description: description,
			Rating:      rating,
			Tags:        splitTags(tags),
			Cover:       cover,
		}
		if year.Valid {
			manga.Year = int(year.Int64)
		}

		c := models.NewCachedManga(sequence, manga)
		c.SetID(id)
		c.SetCreatedAt(createdAt)
		c.SetUpdatedAt(updatedAt)
		if deletedAt.Valid {
			c.SetDeletedAt(&deletedAt.Time)
		}

		cached = append(cached, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return cached, nil
}

// Count returns the number of live cached entries.
func (r *MangaRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM manga WHERE deleted_at IS NULL").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count manga: %w", err)
	}
	return count, nil
}

// Purge hard-deletes all cached entries and resets the sequence counter.
func (r *MangaRepository) Purge() error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM manga"); err != nil {
		return fmt.Errorf("failed to purge manga: %w", err)
	}
	if _, err := tx.Exec("UPDATE manga_sequence SET value = 0 WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to reset sequence: %w", err)
	}

	return tx.Commit()
}
