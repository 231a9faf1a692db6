package library

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinemania/internal/models"
	"github.com/desertthunder/cinemania/internal/services"
	"github.com/desertthunder/cinemania/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of a successful load.
type Result struct {
	Movies    []models.Movie // Fetched movies in saved order, failures dropped
	Requested int            // Number of saved ids
}

// Empty reports whether the library had no saved ids.
func (r Result) Empty() bool {
	return r.Requested == 0
}

// Dropped returns how many saved ids could not be resolved.
func (r Result) Dropped() int {
	return r.Requested - len(r.Movies)
}

// Loader runs the library load cycle.
type Loader struct {
	library services.LibrarySource
	catalog services.MovieCatalog
	logger  *log.Logger
}

// NewLoader creates a Loader. logger may be nil.
func NewLoader(library services.LibrarySource, catalog services.MovieCatalog, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{
		library: library,
		catalog: catalog,
		logger:  logger.With("component", "library-loader"),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (l *Loader) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Load fetches the saved ids for session and then every movie, concurrently.
//
// It waits for every fetch to settle. A fetch that yields nil is dropped; the remaining movies keep
// the saved order. Errors obtaining the ids, a panicking fetch, or a cancelled ctx fail the cycle
// with [shared.ErrLibraryLoad]. progress may be nil.
func (l *Loader) Load(ctx context.Context, session *models.Session, progress chan<- ProgressUpdate) (Result, error) {
	l.sendProgress(progress, fetchIDsUpdate())

	ids, err := l.library.SavedMovieIDs(ctx, session)
	if err != nil {
		return Result{}, fmt.Errorf("%w: saved movie ids: %w", shared.ErrLibraryLoad, err)
	}

	if len(ids) == 0 {
		l.logger.Debug("library is empty")
		l.sendProgress(progress, doneUpdate(0, 0))
		return Result{Movies: []models.Movie{}}, nil
	}

	fetched := make([]*models.Movie, len(ids))
	total := len(ids)
	var settled atomic.Int64

	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("fetch %s panicked: %v", id, r)
				}
			}()

			fetched[i] = l.catalog.FetchMovieDetails(ctx, id)
			step := int(settled.Add(1))
			l.sendProgress(progress, fetchDetailsUpdate(step, total, id, fetched[i] != nil))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", shared.ErrLibraryLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", shared.ErrLibraryLoad, err)
	}

	movies := make([]models.Movie, 0, len(ids))
	for i, movie := range fetched {
		if movie == nil {
			l.logger.Debug("dropping unresolved movie", "id", ids[i])
			continue
		}
		movies = append(movies, *movie)
	}

	l.logger.Info("library loaded", "requested", total, "loaded", len(movies))
	l.sendProgress(progress, doneUpdate(len(movies), total))

	return Result{Movies: movies, Requested: total}, nil
}
