package tasks

import (
	"fmt"

	"github.com/ryozaki/mbx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchLibrary Phase = iota
	CacheLibrary
	FetchDetails
	ExportEntry
)

func (p Phase) String() string {
	switch p {
	case FetchLibrary:
		return "fetch_library"
	case CacheLibrary:
		return "cache_library"
	case FetchDetails:
		return "fetch_details"
	case ExportEntry:
		return "export_entry"
	default:
		return ""
	}
}

func fetchLibraryUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    step,
		Total:   total,
		Message: "Fetching library from catalogue service...",
	}
}

func foundLibraryUpdate(step, total int, entries []models.LibraryEntry) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found %d library entries", len(entries)),
		Data:    entries,
	}
}

func cacheLibraryUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheLibrary,
		Step:    step,
		Total:   total,
		Message: "Writing library snapshot to local cache...",
	}
}

func cachedEntryUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheLibrary,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Cached: %s", step, total, title),
	}
}

func fetchDetailUpdate(step, total int, mangaID int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDetails,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching details for #%d...", step, total, mangaID),
	}
}

func exportCompletedUpdate(step, total int, title string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportEntry,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, title, filesCount),
	}
}

func exportFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportEntry,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}
