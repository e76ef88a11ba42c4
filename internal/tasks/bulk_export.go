package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ryozaki/mbx/internal/formatter"
	"github.com/ryozaki/mbx/internal/models"
	"github.com/ryozaki/mbx/internal/shared"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for bulk library exports.
type BulkExportOpts struct {
	Format         string  // Export format: json, csv, markdown, txt
	OutputDir      string  // Base output directory (default: mbx_export_{epoch})
	NumWorkers     int     // Concurrent workers (default: 5)
	RateLimit      float64 // Requests per second (default: 5)
	DownloadCovers bool    // Fetch cover images alongside entry details
}

// EntryExportJob carries one library entry through the worker pool.
type EntryExportJob struct {
	Index int
	Entry models.LibraryEntry
}

// EntryExportResult represents the outcome of exporting a single entry.
type EntryExportResult struct {
	Index   int
	MangaID int
	Title   string
	Success bool
	Files   []string
	Entry   models.LibraryEntry
	Error   error
}

// BulkExportResult summarizes a bulk export run.
type BulkExportResult struct {
	TotalEntries      int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	LibraryFiles      []string
	Results           []EntryExportResult
}

// exportManifest is the JSON shape of the manifest file.
type exportManifest struct {
	Format       string    `json:"format"`
	GeneratedAt  time.Time `json:"generated_at"`
	TotalEntries int       `json:"total_entries"`
	Successful   int       `json:"successful"`
	Failed       int       `json:"failed"`
	LibraryFiles []string  `json:"library_files,omitempty"`
	Failures     []string  `json:"failures,omitempty"`
}

// BulkExport exports the user's library with rate limiting and progress tracking.
//
// This method implements a worker pool pattern: workers refresh each entry's
// catalogue details (and optionally its cover image) against the service, then
// the enriched library is written in the selected format. Partial failures are
// handled gracefully and summarized in a manifest file.
func (e *LibraryEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.client == nil {
		return nil, fmt.Errorf("%w: catalogue client not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("mbx_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	e.sendProgress(prog, fetchLibraryUpdate(1, 1))
	entries, err := e.client.Library(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch library: %v", shared.ErrAPIRequest, err)
	}

	result := &BulkExportResult{
		TotalEntries:    len(entries),
		OutputDirectory: opts.OutputDir,
		Results:         make([]EntryExportResult, 0, len(entries)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan EntryExportJob, len(entries))
	results := make(chan EntryExportResult, len(entries))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, limiter, opts)
	}

	go func() {
		for i, entry := range entries {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			e.sendProgress(prog, fetchDetailUpdate(i+1, len(entries), entry.MangaID))
			jobs <- EntryExportJob{Index: i, Entry: entry}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(entries), res.Title, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(entries), res.Title, res.Error))
		}
	}

	// Workers complete out of order; restore library ordering for output.
	sort.Slice(result.Results, func(i, j int) bool {
		return result.Results[i].Index < result.Results[j].Index
	})

	enriched := make([]models.LibraryEntry, 0, len(result.Results))
	for _, res := range result.Results {
		enriched = append(enriched, res.Entry)
	}

	export := &models.LibraryExport{Entries: enriched}
	if user, err := e.client.Me(ctx); err == nil {
		export.User = user
	}

	files, err := e.writeLibrary(export, opts)
	if err != nil {
		return result, err
	}
	result.LibraryFiles = files

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := e.writeManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker refreshes entry details from the jobs channel, respecting the shared rate limit.
func (e *LibraryEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan EntryExportJob,
	results chan<- EntryExportResult,
	limiter *rate.Limiter,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := limiter.Wait(ctx); err != nil {
			return
		}

		results <- e.exportSingleEntry(ctx, job, opts)
	}
}

// exportSingleEntry fetches full catalogue details for one entry and optionally its cover.
func (e *LibraryEngine) exportSingleEntry(
	ctx context.Context,
	j EntryExportJob,
	opts BulkExportOpts,
) EntryExportResult {
	result := EntryExportResult{
		Index:   j.Index,
		MangaID: j.Entry.MangaID,
		Title:   fmt.Sprintf("#%d", j.Entry.MangaID),
		Entry:   j.Entry,
		Files:   []string{},
	}
	if j.Entry.Manga != nil {
		result.Title = j.Entry.Manga.Title
	}

	manga, err := e.client.GetManga(ctx, j.Entry.MangaID)
	if err != nil {
		result.Error = fmt.Errorf("failed to fetch details: %w", err)
		return result
	}

	result.Entry.Manga = manga
	result.Title = manga.Title

	if opts.DownloadCovers && manga.Cover != "" {
		coversDir := filepath.Join(opts.OutputDir, "covers")
		if err := os.MkdirAll(coversDir, 0755); err != nil {
			result.Error = fmt.Errorf("failed to create covers directory: %w", err)
			return result
		}

		imageData, err := formatter.DownloadCover(manga.Cover)
		if err != nil {
			result.Error = fmt.Errorf("failed to download cover: %w", err)
			return result
		}

		coverPath := filepath.Join(coversDir, fmt.Sprintf("%d.jpg", manga.ID))
		if err := os.WriteFile(coverPath, imageData, 0644); err != nil {
			result.Error = fmt.Errorf("failed to save cover: %w", err)
			return result
		}
		result.Files = append(result.Files, coverPath)
	}

	result.Success = true
	return result
}

// writeLibrary writes the enriched library in the selected format.
func (e *LibraryEngine) writeLibrary(export *models.LibraryExport, opts BulkExportOpts) ([]string, error) {
	switch opts.Format {
	case "csv":
		base := filepath.Join(opts.OutputDir, "library")
		res, err := formatter.WriteCSVExport(export, base)
		if err != nil {
			return nil, fmt.Errorf("CSV export failed: %w", err)
		}
		files := []string{res.EntriesFile}
		if res.MetadataFile != "" {
			files = append(files, res.MetadataFile)
		}
		return files, nil

	case "markdown":
		res, err := formatter.WriteMarkdownExport(export, opts.OutputDir, false)
		if err != nil {
			return nil, fmt.Errorf("markdown export failed: %w", err)
		}
		return res.Files, nil

	case "txt":
		path, err := formatter.WriteTextExport(export, filepath.Join(opts.OutputDir, "library_entries.txt"))
		if err != nil {
			return nil, fmt.Errorf("text export failed: %w", err)
		}
		return []string{path}, nil

	case "json":
		fallthrough
	default:
		data, err := formatter.ExportToJSON(export)
		if err != nil {
			return nil, fmt.Errorf("JSON marshal failed: %w", err)
		}
		path := filepath.Join(opts.OutputDir, "library.json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("JSON write failed: %w", err)
		}
		return []string{path}, nil
	}
}

// writeManifest summarizes the run in a JSON file next to the exported data.
func (e *LibraryEngine) writeManifest(result *BulkExportResult, format, path string) error {
	if format == "" {
		format = "json"
	}

	manifest := exportManifest{
		Format:       format,
		GeneratedAt:  time.Now().UTC(),
		TotalEntries: result.TotalEntries,
		Successful:   result.SuccessfulExports,
		Failed:       result.FailedExports,
		LibraryFiles: result.LibraryFiles,
	}
	for _, res := range result.Results {
		if !res.Success {
			manifest.Failures = append(manifest.Failures, fmt.Sprintf("%s: %v", res.Title, res.Error))
		}
	}

	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
