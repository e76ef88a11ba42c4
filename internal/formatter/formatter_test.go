package formatter

import (
	"strings"
	"testing"

	"github.com/ryozaki/mbx/internal/models"
	th "github.com/ryozaki/mbx/internal/testing"
)

func sampleExport() *models.LibraryExport {
	return &models.LibraryExport{
		User: &models.User{ID: 1, Username: "miura_fan", Email: "reader@example.com"},
		Entries: []models.LibraryEntry{
			{
				MangaID:  100,
				Status:   models.StatusReading,
				Progress: 42,
				Manga: &models.Manga{
					ID:     100,
					Title:  "Berserk",
					Rating: 4.8,
					Tags:   []string{"action", "dark fantasy"},
				},
			},
			{
				MangaID:  200,
				Status:   models.StatusCompleted,
				Progress: 327,
				Manga: &models.Manga{
					ID:     200,
					Title:  "Vagabond",
					Rating: 4.7,
					Tags:   []string{"historical"},
				},
			},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "ID,Title,Status,Progress,Rating,Tags") {
			t.Errorf("CSV missing headers, got: %s", output)
		}

		if !strings.Contains(output, "100") {
			t.Errorf("CSV missing first entry ID")
		}
		if !strings.Contains(output, "Berserk") {
			t.Errorf("CSV missing first entry title")
		}
		if !strings.Contains(output, "reading") {
			t.Errorf("CSV missing first entry status")
		}
		if !strings.Contains(output, "action;dark fantasy") {
			t.Errorf("CSV missing joined tags, got: %s", output)
		}
	})

	t.Run("ExportToCSV without catalogue entry", func(t *testing.T) {
		export := &models.LibraryExport{
			Entries: []models.LibraryEntry{
				{MangaID: 300, Status: models.StatusOnHold, Progress: 3},
			},
		}

		data, err := ExportToCSV(export)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		if !strings.Contains(string(data), "300,,on-hold,3,0.0,") {
			t.Errorf("CSV missing bare entry row, got: %s", string(data))
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleExport())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "# miura_fan's Library") {
			t.Errorf("Markdown missing title, got: %s", output)
		}
		if !strings.Contains(output, "**Entries**: 2") {
			t.Errorf("Markdown missing entry count")
		}
		if !strings.Contains(output, "## Reading") {
			t.Errorf("Markdown missing reading section")
		}
		if !strings.Contains(output, "## Completed") {
			t.Errorf("Markdown missing completed section")
		}
		if strings.Contains(output, "## Dropped") {
			t.Errorf("Markdown should skip empty sections")
		}
		if !strings.Contains(output, "1. Berserk (ch. 42) [4.8/5]") {
			t.Errorf("Markdown missing reading entry, got: %s", output)
		}
		if !strings.Contains(output, "1. Vagabond (ch. 327) [4.7/5]") {
			t.Errorf("Markdown missing completed entry")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleExport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Library: miura_fan") {
			t.Errorf("Text missing username")
		}
		if !strings.Contains(output, "Entries: 2") {
			t.Errorf("Text missing entry count")
		}
		if !strings.Contains(output, "1. Berserk - reading (ch. 42)") {
			t.Errorf("Text missing first entry, got: %s", output)
		}
		if !strings.Contains(output, "2. Vagabond - completed (ch. 327)") {
			t.Errorf("Text missing second entry")
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		user := models.User{ID: 1, Username: "miura_fan", Email: "reader@example.com"}

		data, err := ToMetadataJSON(user)
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, `"username": "miura_fan"`) {
			t.Errorf("JSON missing username field, got: %s", output)
		}
		if !strings.Contains(output, `"email": "reader@example.com"`) {
			t.Errorf("JSON missing email field")
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(sampleExport())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, `"miura_fan"`) {
			t.Errorf("JSON missing username")
		}
		if !strings.Contains(output, `"Berserk"`) {
			t.Errorf("JSON missing first entry title")
		}
		if !strings.Contains(output, `"reading"`) {
			t.Errorf("JSON missing entry status")
		}
	})
}

func TestDownloadCover(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		_, err := DownloadCover("")
		if err == nil {
			t.Error("DownloadCover with empty URL should return error")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		export := sampleExport()

		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteCSVExport(export, "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.EntriesFile != "library_entries.csv" {
				t.Errorf("Expected entries file 'library_entries.csv', got '%s'", result.EntriesFile)
			}
			if result.MetadataFile != "library_metadata.json" {
				t.Errorf("Expected metadata file 'library_metadata.json', got '%s'", result.MetadataFile)
			}

			th.AssertFileExists(t, result.EntriesFile)
			th.AssertFileExists(t, result.MetadataFile)

			csvContent := th.MustReadFile(t, result.EntriesFile)
			if !strings.Contains(csvContent, "ID,Title,Status,Progress,Rating,Tags") {
				t.Errorf("CSV missing headers")
			}
			if !strings.Contains(csvContent, "Berserk") {
				t.Errorf("CSV missing entry data")
			}

			metadataContent := th.MustReadFile(t, result.MetadataFile)
			if !strings.Contains(metadataContent, "miura_fan") {
				t.Errorf("Metadata JSON missing expected fields")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteCSVExport(export, "backup")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.EntriesFile != "backup_entries.csv" {
				t.Errorf("Expected 'backup_entries.csv', got '%s'", result.EntriesFile)
			}
			if result.MetadataFile != "backup_metadata.json" {
				t.Errorf("Expected 'backup_metadata.json', got '%s'", result.MetadataFile)
			}
		})

		t.Run("WithoutUser", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			anonymous := &models.LibraryExport{Entries: export.Entries}
			result, err := WriteCSVExport(anonymous, "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.MetadataFile != "" {
				t.Errorf("Expected no metadata file without user, got '%s'", result.MetadataFile)
			}
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		result, err := WriteMarkdownExport(sampleExport(), "", false)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}

		if result.Directory != "library" {
			t.Errorf("Expected directory 'library', got '%s'", result.Directory)
		}

		th.AssertDirExists(t, result.Directory)
		th.AssertFileExists(t, "library/README.md")

		mdContent := th.MustReadFile(t, "library/README.md")
		if !strings.Contains(mdContent, "# miura_fan's Library") {
			t.Errorf("Markdown missing title")
		}
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		path, err := WriteTextExport(sampleExport(), "")
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}

		if path != "library_entries.txt" {
			t.Errorf("Expected 'library_entries.txt', got '%s'", path)
		}

		th.AssertFileExists(t, path)
	})
}
