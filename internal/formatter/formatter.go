// package formatter provides functions to export library data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ryozaki/mbx/internal/models"
	"github.com/ryozaki/mbx/internal/shared"
)

// ExportToCSV converts a LibraryExport to CSV format with columns: ID, Title, Status, Progress, Rating, Tags
func ExportToCSV(export *models.LibraryExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Status", "Progress", "Rating", "Tags"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range export.Entries {
		title, rating, tags := "", 0.0, ""
		if entry.Manga != nil {
			title = entry.Manga.Title
			rating = entry.Manga.Rating
			tags = strings.Join(entry.Manga.Tags, ";")
		}

		record := []string{
			strconv.Itoa(entry.MangaID),
			title,
			string(entry.Status),
			strconv.Itoa(entry.Progress),
			strconv.FormatFloat(rating, 'f', 1, 64),
			tags,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a LibraryExport to Markdown format, grouping entries by reading status
func ExportToMarkdown(export *models.LibraryExport) ([]byte, error) {
	var buf bytes.Buffer

	title := "Library"
	if export.User != nil && export.User.Username != "" {
		title = fmt.Sprintf("%s's Library", export.User.Username)
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Entries**: %d\n\n", len(export.Entries)))

	grouped := make(map[models.Status][]models.LibraryEntry)
	for _, entry := range export.Entries {
		grouped[entry.Status] = append(grouped[entry.Status], entry)
	}

	for _, status := range models.Statuses() {
		entries := grouped[status]
		if len(entries) == 0 {
			continue
		}

		buf.WriteString(fmt.Sprintf("## %s\n\n", statusHeading(status)))
		for i, entry := range entries {
			title, rating := fmt.Sprintf("#%d", entry.MangaID), ""
			if entry.Manga != nil {
				title = entry.Manga.Title
				rating = fmt.Sprintf(" [%s]", shared.FormatRating(entry.Manga.Rating))
			}
			buf.WriteString(fmt.Sprintf("%d. %s (ch. %d)%s\n", i+1, title, entry.Progress, rating))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a LibraryExport to plain text format
func ExportToText(export *models.LibraryExport) ([]byte, error) {
	var buf bytes.Buffer

	if export.User != nil && export.User.Username != "" {
		buf.WriteString(fmt.Sprintf("Library: %s\n", export.User.Username))
	}
	buf.WriteString(fmt.Sprintf("Entries: %d\n\n", len(export.Entries)))

	for i, entry := range export.Entries {
		title := fmt.Sprintf("#%d", entry.MangaID)
		if entry.Manga != nil {
			title = entry.Manga.Title
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s (ch. %d)\n", i+1, title, entry.Status, entry.Progress))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a LibraryExport to indented JSON
func ExportToJSON(export *models.LibraryExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

func statusHeading(s models.Status) string {
	switch s {
	case models.StatusReading:
		return "Reading"
	case models.StatusCompleted:
		return "Completed"
	case models.StatusOnHold:
		return "On Hold"
	case models.StatusDropped:
		return "Dropped"
	case models.StatusPlanToRead:
		return "Plan to Read"
	}
	return string(s)
}

// DownloadCover downloads a cover image from the given URL and returns the raw bytes
func DownloadCover(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download cover: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read cover data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of the account identity
func ToMetadataJSON(user models.User) ([]byte, error) {
	return shared.MarshalJSON(user, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	EntriesFile  string
	MetadataFile string
}

// WriteCSVExport exports a library to CSV format with accompanying metadata JSON file.
//
// Defaults to "library" as the base filename & creates {base}_entries.csv and {base}_metadata.json
func WriteCSVExport(export *models.LibraryExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "library"
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	entriesFile := baseFilepath + "_entries.csv"
	if err := os.WriteFile(entriesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	result := &CSVExportResult{EntriesFile: entriesFile}

	if export.User != nil {
		metadataJSON, err := ToMetadataJSON(*export.User)
		if err != nil {
			return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
		}

		metadataFile := baseFilepath + "_metadata.json"
		if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
			return nil, fmt.Errorf("failed to write metadata file: %w", err)
		}
		result.MetadataFile = metadataFile
	}

	return result, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Covers    []string
}

// WriteMarkdownExport exports a library to Markdown format in a dedicated directory.
//
// Directory name defaults to "library". When downloadCovers is set, cover
// images are fetched into {dir}/covers/; a failed download logs a warning and
// the export continues without it.
func WriteMarkdownExport(export *models.LibraryExport, outputDir string, downloadCovers bool) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = "library"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	if downloadCovers {
		coversDir := fmt.Sprintf("%s/covers", outputDir)
		if err := os.MkdirAll(coversDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create covers directory: %w", err)
		}

		for _, entry := range export.Entries {
			if entry.Manga == nil || entry.Manga.Cover == "" {
				continue
			}
			imageData, err := DownloadCover(entry.Manga.Cover)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to download cover for %d: %v\n", entry.MangaID, err)
				continue
			}
			coverPath := fmt.Sprintf("%s/%d.jpg", coversDir, entry.MangaID)
			if err := os.WriteFile(coverPath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover for %d: %v\n", entry.MangaID, err)
				continue
			}
			result.Covers = append(result.Covers, coverPath)
			result.Files = append(result.Files, coverPath)
		}
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a library to plain text format.
//
// Defaults to library_entries.txt as the filename.
func WriteTextExport(export *models.LibraryExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = "library_entries.txt"
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
