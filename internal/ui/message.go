package ui

import (
	"github.com/desertthunder/cinemania/internal/library"
	"github.com/desertthunder/cinemania/internal/models"
)

// sessionChangedMsg carries a session notification into the update loop.
type sessionChangedMsg struct {
	session *models.Session
}

// loadProgressMsg is a progress event from the load tagged gen.
type loadProgressMsg struct {
	gen      uint64
	update   library.ProgressUpdate
	progress <-chan library.ProgressUpdate
}

// loadFinishedMsg ends the load tagged gen.
type loadFinishedMsg struct {
	gen    uint64
	result library.Result
	err    error
}

// heroMsg carries the details fetched for a featured movie; movie is nil when the fetch failed.
type heroMsg struct {
	id    models.MovieID
	movie *models.Movie
}
