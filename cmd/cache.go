package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/cinemania/internal/library"
	"github.com/desertthunder/cinemania/internal/models"
	"github.com/desertthunder/cinemania/internal/repositories"
	"github.com/desertthunder/cinemania/internal/shared"
	"github.com/desertthunder/cinemania/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CachePurge deletes cached movie details fetched before now minus --older-than.
func (r *Runner) CachePurge(ctx context.Context, cmd *cli.Command) error {
	olderThan := cmd.Duration("older-than")
	if olderThan < 0 {
		return fmt.Errorf("%w: --older-than must not be negative", shared.ErrInvalidFlag)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-olderThan)
	n, err := repositories.NewMovieCacheRepository(db).Purge(cutoff)
	if err != nil {
		return err
	}

	r.logger.Info("movie cache purged", "entries", n, "cutoff", cutoff)
	return r.writePlain("✓ Removed %d cached movie(s)\n", n)
}

// CacheWarm prefetches the details of saved movies into the local cache.
//
// Without --all only the signed-in user's library is warmed.
func (r *Runner) CacheWarm(ctx context.Context, cmd *cli.Command) error {
	if cmd.Float("rate") < 0 {
		return fmt.Errorf("%w: --rate must not be negative", shared.ErrInvalidFlag)
	}

	ids, err := r.warmTargets(cmd.Bool("all"))
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return r.writePlain("Nothing to cache.\n")
	}

	catalog, err := r.movieCatalog()
	if err != nil {
		return err
	}

	progress := make(chan library.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	opts := tasks.WarmOpts{Workers: int(cmd.Int("workers")), RateLimit: cmd.Float("rate")}
	result, err := tasks.NewCacheWarmer(catalog, r.logger).Warm(ctx, ids, opts, progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	if err := r.writePlain("✓ Cached %d of %d movies\n", result.Fetched, result.Requested); err != nil {
		return err
	}
	for _, id := range result.Failed {
		if err := r.writePlain("  ✗ %s\n", id); err != nil {
			return err
		}
	}
	return nil
}

// warmTargets returns the movie ids to prefetch, in saved order.
func (r *Runner) warmTargets(all bool) ([]models.MovieID, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	repo := repositories.NewLibraryRepository(db)

	if !all {
		session, err := r.requireSession()
		if err != nil {
			return nil, err
		}
		return repo.SavedMovieIDs(session.UserID)
	}

	entries, err := repo.List(map[string]any{})
	if err != nil {
		return nil, err
	}
	ids := make([]models.MovieID, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.MovieID())
	}
	return ids, nil
}
