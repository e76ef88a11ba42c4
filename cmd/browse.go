package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ryozaki/mbx/internal/models"
	"github.com/ryozaki/mbx/internal/query"
	"github.com/ryozaki/mbx/internal/repositories"
	"github.com/ryozaki/mbx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Browse searches the catalogue and renders one page of results.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	controller := query.NewController(r.api, r.config.API.PageSize, r.logger)

	q := query.New()
	q.SetSearch(cmd.String("search"))
	for _, tag := range cmd.StringSlice("tag") {
		q.AddTag(tag)
	}
	q.SetMinRating(cmd.Float("rating"))
	q.SetSort(query.ParseSortKey(cmd.String("sort")))
	q.SetPage(cmd.Int("page"))
	controller.Restore(q)

	r.logger.Info("browsing catalogue", "params", q.Encode().Encode())

	if err := controller.Fetch(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	results := controller.Results()

	if cmd.Bool("cache") {
		if err := r.cacheResults(results); err != nil {
			r.logger.Warnf("failed to cache results: %v", err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"results": results,
			"total":   controller.Total(),
			"page":    controller.Query().Page(),
			"pages":   controller.TotalPages(),
		}, true)
	}

	r.writePlainHeader(fmt.Sprintf("Catalogue (%d results)", controller.Total()))
	for _, manga := range results {
		r.writePlain("#%-5d %s", manga.ID, manga.Title)
		r.writePlain("  [%s]", shared.FormatRating(manga.Rating))
		if len(manga.Tags) > 0 {
			r.writePlain("  %s", strings.Join(manga.Tags, ", "))
		}
		r.writePlain("\n")
	}

	r.writePlain("\nPage %s of %d\n", renderPageWindow(controller.Query().Page(), controller.TotalPages()), controller.TotalPages())
	return nil
}

// renderPageWindow renders reachable pages with the current one bracketed.
func renderPageWindow(current, totalPages int) string {
	var b strings.Builder
	for _, page := range query.PageWindow(current, totalPages) {
		if page == query.Ellipsis {
			b.WriteString("… ")
			continue
		}
		if page == current {
			b.WriteString(fmt.Sprintf("[%d] ", page))
		} else {
			b.WriteString(fmt.Sprintf("%d ", page))
		}
	}
	return strings.TrimSpace(b.String())
}

// cacheResults stores a page of results in the local cache.
func (r *Runner) cacheResults(results []models.Manga) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	adapter := repositories.NewMangaCacheAdapter(repositories.NewMangaRepository(db))
	for _, manga := range results {
		if _, err := adapter.CacheManga(manga); err != nil {
			return err
		}
	}
	return nil
}

// MangaShow displays a single catalogue entry with its reviews.
func (r *Runner) MangaShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if id <= 0 {
		return fmt.Errorf("%w: a positive entry id is required", shared.ErrMissingArgument)
	}

	manga, err := r.api.GetManga(ctx, id)
	if err != nil {
		return err
	}

	// Reviews are best effort; the entry renders without them.
	reviews, reviewsErr := r.api.Reviews(ctx, id)
	if reviewsErr != nil {
		r.logger.Warnf("failed to fetch reviews: %v", reviewsErr)
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"manga": manga, "reviews": reviews}, true)
	}

	r.writePlainHeader(manga.Title)
	if manga.Year > 0 {
		r.writePlain("Year: %d\n", manga.Year)
	}
	r.writePlain("Rating: %s\n", shared.FormatRating(manga.Rating))
	if len(manga.Tags) > 0 {
		r.writePlain("Tags: %s\n", strings.Join(manga.Tags, ", "))
	}
	if manga.Description != "" {
		r.writePlainln("%s", manga.Description)
	}

	if len(reviews) > 0 {
		r.writePlainln("Reviews (%d):", len(reviews))
		for _, review := range reviews {
			r.writePlain("  • %s %s\n", shared.FormatRating(review.Rating), review.Content)
		}
	}

	return nil
}

// MangaReview posts a review for a catalogue entry.
func (r *Runner) MangaReview(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if id <= 0 {
		return fmt.Errorf("%w: a positive entry id is required", shared.ErrMissingArgument)
	}

	content := cmd.String("content")
	rating := cmd.Float("rating")
	if rating < 0 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 0 and 5", shared.ErrInvalidFlag)
	}

	review, err := r.api.PostReview(ctx, id, content, rating)
	if err != nil {
		return err
	}

	r.writePlain("✓ Review posted for #%d (%s)\n", review.MangaID, shared.FormatRating(review.Rating))
	return nil
}

// TagsList lists the catalogue's tags.
func (r *Runner) TagsList(ctx context.Context, cmd *cli.Command) error {
	tags, err := r.api.Tags(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tags, true)
	}

	for _, tag := range tags {
		r.writePlain("%s\n", tag)
	}
	return nil
}
