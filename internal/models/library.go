package models

import "fmt"

var _ Model = (*LibraryEntry)(nil)

// LibraryEntry is a movie saved to a user's library.
//
// Entries are ordered by sequence, which follows the order movies were added.
type LibraryEntry struct {
	timestamps
	id       string
	sequence int
	userID   string
	movieID  MovieID
}

// NewLibraryEntry creates a [LibraryEntry] for userID and movieID.
func NewLibraryEntry(sequence int, userID string, movieID MovieID) *LibraryEntry {
	return &LibraryEntry{
		timestamps: newTimestamps(),
		sequence:   sequence,
		userID:     userID,
		movieID:    movieID,
	}
}

func (e *LibraryEntry) ID() string        { return e.id }
func (e *LibraryEntry) Sequence() int     { return e.sequence }
func (e *LibraryEntry) UserID() string    { return e.userID }
func (e *LibraryEntry) MovieID() MovieID  { return e.movieID }
func (e *LibraryEntry) SetID(id string)   { e.id = id }
func (e *LibraryEntry) SetSequence(s int) { e.sequence = s }

func (e *LibraryEntry) Validate() error {
	if e.id == "" {
		return fmt.Errorf("library entry id is required")
	}
	if e.userID == "" {
		return fmt.Errorf("library entry user id is required")
	}
	if e.movieID.IsZero() {
		return fmt.Errorf("library entry movie id is required")
	}
	return nil
}
