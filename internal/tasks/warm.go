package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinemania/internal/library"
	"github.com/desertthunder/cinemania/internal/models"
	"github.com/desertthunder/cinemania/internal/services"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers = 5
	maxWorkers     = 10
)

// WarmOpts contains configuration for a cache warming run.
type WarmOpts struct {
	Workers   int     // Concurrent workers (default: 5, max: 10)
	RateLimit float64 // Jobs queued per second; 0 leaves pacing to the catalog
}

// WarmResult summarizes a cache warming run.
type WarmResult struct {
	Requested int              `json:"requested"`
	Fetched   int              `json:"fetched"`
	Failed    []models.MovieID `json:"failed,omitempty"`
}

type warmJob struct {
	index int
	id    models.MovieID
}

type warmOutcome struct {
	index int
	ok    bool
}

// CacheWarmer prefetches movie details.
type CacheWarmer struct {
	catalog services.MovieCatalog
	logger  *log.Logger
}

// NewCacheWarmer creates a CacheWarmer. logger may be nil.
func NewCacheWarmer(catalog services.MovieCatalog, logger *log.Logger) *CacheWarmer {
	if logger == nil {
		logger = log.Default()
	}
	return &CacheWarmer{catalog: catalog, logger: logger.With("component", "cache-warmer")}
}

// sendProgress sends a progress update through the channel without blocking.
func (w *CacheWarmer) sendProgress(progress chan<- library.ProgressUpdate, update library.ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Warm fetches every distinct id in ids. Failed ids are reported in saved order.
//
// A cancelled ctx stops queueing new jobs and returns the partial result with the context error.
func (w *CacheWarmer) Warm(ctx context.Context, ids []models.MovieID, opts WarmOpts, progress chan<- library.ProgressUpdate) (*WarmResult, error) {
	ids = dedupe(ids)
	result := &WarmResult{Requested: len(ids)}
	if len(ids) == 0 {
		w.sendProgress(progress, library.ProgressUpdate{Phase: library.Done, Message: "Nothing to warm"})
		return result, nil
	}

	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	opts.Workers = min(opts.Workers, maxWorkers, len(ids))

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	limiter := rate.NewLimiter(limit, 1)

	jobs := make(chan warmJob, len(ids))
	outcomes := make(chan warmOutcome, len(ids))

	var wg sync.WaitGroup
	for range opts.Workers {
		wg.Add(1)
		go w.worker(ctx, &wg, jobs, outcomes)
	}

	queued := make(chan error, 1)
	go func() {
		defer close(jobs)
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				queued <- err
				return
			}
			jobs <- warmJob{index: i, id: id}
		}
		queued <- nil
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	ok := make([]bool, len(ids))
	settled := 0
	for out := range outcomes {
		settled++
		ok[out.index] = out.ok
		if out.ok {
			result.Fetched++
		}
		w.sendProgress(progress, library.ProgressUpdate{
			Phase:   library.FetchDetails,
			Step:    settled,
			Total:   len(ids),
			Message: fmt.Sprintf("Cached %d of %d movies", result.Fetched, len(ids)),
		})
	}

	for i, id := range ids {
		if !ok[i] {
			result.Failed = append(result.Failed, id)
		}
	}

	if err := <-queued; err != nil {
		return result, fmt.Errorf("cache warming interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("cache warming interrupted: %w", err)
	}

	w.logger.Info("cache warmed", "requested", result.Requested, "fetched", result.Fetched, "failed", len(result.Failed))
	w.sendProgress(progress, library.ProgressUpdate{
		Phase:   library.Done,
		Step:    len(ids),
		Total:   len(ids),
		Message: fmt.Sprintf("Cached %d of %d movies", result.Fetched, len(ids)),
	})
	return result, nil
}

// worker fetches movies from jobs until the queue closes or ctx is done.
func (w *CacheWarmer) worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan warmJob, outcomes chan<- warmOutcome) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		movie := w.catalog.FetchMovieDetails(ctx, job.id)
		if movie == nil {
			w.logger.Debug("movie not cached", "id", job.id)
		}
		outcomes <- warmOutcome{index: job.index, ok: movie != nil}
	}
}

func dedupe(ids []models.MovieID) []models.MovieID {
	seen := make(map[models.MovieID]bool, len(ids))
	out := make([]models.MovieID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
