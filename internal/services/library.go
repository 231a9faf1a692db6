package services

import (
	"context"

	"github.com/desertthunder/cinemania/internal/models"
)

var _ LibrarySource = (*UserLibrary)(nil)

// SavedIDStore lists the movie ids a user has saved, in library order.
type SavedIDStore interface {
	SavedMovieIDs(userID string) ([]models.MovieID, error)
}

// UserLibrary adapts a [SavedIDStore] to [LibrarySource].
type UserLibrary struct {
	store SavedIDStore
}

func NewUserLibrary(store SavedIDStore) *UserLibrary {
	return &UserLibrary{store: store}
}

// SavedMovieIDs implements [LibrarySource]. A signed-out session has an empty library.
func (l *UserLibrary) SavedMovieIDs(ctx context.Context, session *models.Session) ([]models.MovieID, error) {
	if session == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.store.SavedMovieIDs(session.UserID)
}
