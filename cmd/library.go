package main

import (
	"context"
	"fmt"

	"github.com/ryozaki/mbx/internal/models"
	"github.com/ryozaki/mbx/internal/repositories"
	"github.com/ryozaki/mbx/internal/shared"
	"github.com/ryozaki/mbx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// LibraryList lists tracked entries grouped by reading status.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	entries, err := r.api.Library(ctx)
	if err != nil {
		return err
	}

	if filter := cmd.String("status"); filter != "" {
		status, err := models.ParseStatus(filter)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		filtered := entries[:0]
		for _, entry := range entries {
			if entry.Status == status {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	grouped := make(map[models.Status][]models.LibraryEntry)
	for _, entry := range entries {
		grouped[entry.Status] = append(grouped[entry.Status], entry)
	}

	r.writePlainHeader(fmt.Sprintf("Library (%d entries)", len(entries)))
	for _, status := range models.Statuses() {
		bucket := grouped[status]
		if len(bucket) == 0 {
			continue
		}

		r.writePlainln("%s (%d):", status, len(bucket))
		for _, entry := range bucket {
			title := fmt.Sprintf("#%d", entry.MangaID)
			if entry.Manga != nil {
				title = entry.Manga.Title
			}
			r.writePlain("  %s (ch. %d)\n", title, entry.Progress)
		}
	}

	return nil
}

// LibraryAdd starts tracking a catalogue entry.
func (r *Runner) LibraryAdd(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if id <= 0 {
		return fmt.Errorf("%w: a positive entry id is required", shared.ErrMissingArgument)
	}

	status, err := models.ParseStatus(cmd.String("status"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	entry, err := r.api.AddToLibrary(ctx, id, status)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("#%d", entry.MangaID)
	if entry.Manga != nil {
		title = entry.Manga.Title
	}
	r.writePlain("✓ Tracking %s as %s\n", title, entry.Status)
	return nil
}

// LibrarySet changes the reading status of a tracked entry.
func (r *Runner) LibrarySet(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if id <= 0 {
		return fmt.Errorf("%w: a positive entry id is required", shared.ErrMissingArgument)
	}

	status, err := models.ParseStatus(cmd.String("status"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	entry, err := r.api.UpdateLibraryStatus(ctx, id, status)
	if err != nil {
		return err
	}

	r.writePlain("✓ #%d is now %s\n", entry.MangaID, entry.Status)
	return nil
}

// LibraryRemove stops tracking an entry.
func (r *Runner) LibraryRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if id <= 0 {
		return fmt.Errorf("%w: a positive entry id is required", shared.ErrMissingArgument)
	}

	if err := r.api.RemoveFromLibrary(ctx, id); err != nil {
		return err
	}

	r.writePlain("✓ Stopped tracking #%d\n", id)
	return nil
}

// LibrarySync refreshes the local cache from the catalogue service.
func (r *Runner) LibrarySync(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	library := repositories.NewLibraryRepository(db)
	adapter := repositories.NewMangaCacheAdapter(repositories.NewMangaRepository(db))
	engine := tasks.NewLibraryEngine(r.api, library, adapter)

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String())
		}
		close(done)
	}()

	result, err := engine.Sync(ctx, progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("✓ Library synced\n")
	r.writePlain("Entries: %d\n", result.CachedEntries)
	r.writePlain("Catalogue entries cached: %d\n", result.CachedManga)
	for _, cacheErr := range result.CacheErrors {
		r.logger.Warnf("cache: %v", cacheErr)
	}
	return nil
}

// LibraryExport exports the library with rate-limited detail fetches.
func (r *Runner) LibraryExport(ctx context.Context, cmd *cli.Command) error {
	opts := tasks.BulkExportOpts{
		Format:         cmd.String("format"),
		OutputDir:      cmd.String("output"),
		NumWorkers:     cmd.Int("workers"),
		RateLimit:      cmd.Float("rate"),
		DownloadCovers: cmd.Bool("covers"),
	}
	if opts.OutputDir == "" {
		opts.OutputDir = r.config.Export.OutputDir
	}
	if opts.NumWorkers == 0 {
		opts.NumWorkers = r.config.Export.NumWorkers
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = r.config.Export.RateLimit
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
		close(done)
	}()

	result, err := r.engine.BulkExport(ctx, progress, opts)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("✓ Export complete: %d/%d entries", result.SuccessfulExports, result.TotalEntries)
	if result.FailedExports > 0 {
		r.writePlain("Failed: %d (see manifest)\n", result.FailedExports)
	}
	r.writePlain("Output: %s\n", result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)
	return nil
}
