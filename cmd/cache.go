package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ryozaki/mbx/internal/repositories"
	"github.com/ryozaki/mbx/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheList lists cached catalogue entries with optional filters.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewMangaRepository(db)

	criteria := map[string]any{}
	if title := cmd.String("title"); title != "" {
		criteria["title"] = title
	}
	if tag := cmd.String("tag"); tag != "" {
		criteria["tag"] = tag
	}

	cached, err := repo.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		entries := make([]map[string]any, 0, len(cached))
		for _, c := range cached {
			entries = append(entries, map[string]any{
				"id":      c.ID(),
				"manga":   c.Manga(),
				"updated": c.UpdatedAt(),
			})
		}
		return r.writeJSON(entries, true)
	}

	r.writePlainHeader(fmt.Sprintf("Cache (%d entries)", len(cached)))
	for _, c := range cached {
		manga := c.Manga()
		r.writePlain("#%-5d %s [%s]", manga.ID, manga.Title, shared.FormatRating(manga.Rating))
		if len(manga.Tags) > 0 {
			r.writePlain("  %s", strings.Join(manga.Tags, ", "))
		}
		r.writePlain("\n")
	}

	return nil
}

// CachePurge removes all cached catalogue entries.
func (r *Runner) CachePurge(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewMangaRepository(db)

	count, err := repo.Count()
	if err != nil {
		return err
	}

	if err := repo.Purge(); err != nil {
		return err
	}

	r.logger.Infof("purged %d cached entries", count)
	r.writePlain("✓ Removed %d cached entries\n", count)
	return nil
}
