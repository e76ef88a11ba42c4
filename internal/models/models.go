// package models defines the data model for the mbx manga client
package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all locally persisted models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for local cache access.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Manga represents a catalogue entry as returned by the service.
type Manga struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Year        int      `json:"year,omitempty"`
	Rating      float64  `json:"rating"`
	Tags        []string `json:"tags,omitempty"`
	Cover       string   `json:"cover,omitempty"`
}

// MangaPage represents one page of catalogue search results.
type MangaPage struct {
	Results []Manga `json:"results"`
	Total   int     `json:"total"`
}

// User represents the authenticated account identity.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// LibraryEntry represents a catalogue entry in the user's library.
type LibraryEntry struct {
	MangaID  int    `json:"manga_id"`
	Status   Status `json:"status"`
	Progress int    `json:"progress"`
	Manga    *Manga `json:"manga,omitempty"`
}

// LibraryExport bundles a user's library with its full catalogue entries
// for writing to disk.
type LibraryExport struct {
	User    *User          `json:"user,omitempty"`
	Entries []LibraryEntry `json:"entries"`
}

// Review represents a user review attached to a catalogue entry.
type Review struct {
	ID      int     `json:"id"`
	MangaID int     `json:"manga_id"`
	UserID  int     `json:"user_id"`
	Content string  `json:"content"`
	Rating  float64 `json:"rating"`
}

// Status enumerates reading statuses for library entries.
type Status string

const (
	StatusReading    Status = "reading"
	StatusCompleted  Status = "completed"
	StatusOnHold     Status = "on-hold"
	StatusDropped    Status = "dropped"
	StatusPlanToRead Status = "plan-to-read"
)

// Statuses lists all valid reading statuses in display order.
func Statuses() []Status {
	return []Status{StatusReading, StatusCompleted, StatusOnHold, StatusDropped, StatusPlanToRead}
}

// Valid reports whether s is one of the known reading statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusReading, StatusCompleted, StatusOnHold, StatusDropped, StatusPlanToRead:
		return true
	}
	return false
}

// ParseStatus converts a string into a [Status], rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("invalid status %q (expected one of %v)", s, Statuses())
	}
	return status, nil
}
