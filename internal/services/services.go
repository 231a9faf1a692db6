package services

import (
	"context"

	"github.com/desertthunder/cinemania/internal/models"
)

// LibrarySource yields the ids a signed-in user has saved, in library order.
type LibrarySource interface {
	// SavedMovieIDs returns the saved ids for session. A nil session or an empty library yields no ids and no error.
	SavedMovieIDs(ctx context.Context, session *models.Session) ([]models.MovieID, error)
}

// MovieCatalog resolves a movie id to its details.
type MovieCatalog interface {
	// FetchMovieDetails returns the movie for id, or nil when it cannot be fetched. It never returns an error;
	// failures are logged by the implementation.
	FetchMovieDetails(ctx context.Context, id models.MovieID) *models.Movie
}

// SessionProvider notifies subscribers about sign-in and sign-out.
type SessionProvider interface {
	// OnSessionChange registers fn. fn is called once with the current session and again on every change.
	OnSessionChange(fn func(*models.Session)) Subscription
}

// Subscription is a registration returned by [SessionProvider.OnSessionChange].
type Subscription interface {
	Unsubscribe()
}
