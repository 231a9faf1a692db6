package library

import "github.com/desertthunder/cinemania/internal/models"

// State is the library view's model: every loaded movie plus the active genre filter.
type State struct {
	AllMovies       []models.Movie
	SelectedGenreID string

	genres []GenreEntry
}

// NewState returns a State holding movies with the filter reset to [AllGenresID].
func NewState(movies []models.Movie) *State {
	s := &State{}
	s.Replace(movies)
	return s
}

// Replace swaps in a new movie list wholesale, resets the filter and rebuilds the genre list.
func (s *State) Replace(movies []models.Movie) {
	s.AllMovies = append([]models.Movie(nil), movies...)
	s.SelectedGenreID = AllGenresID
	s.genres = DeriveGenres(s.AllMovies)
}

// Genres returns the filter options for the current movies.
func (s *State) Genres() []GenreEntry {
	if s.genres == nil {
		return []GenreEntry{AllGenres()}
	}
	return append([]GenreEntry(nil), s.genres...)
}

// SelectedGenre returns the active filter entry. An id that is not in the genre list is reported with its id as name.
func (s *State) SelectedGenre() GenreEntry {
	id := s.SelectedGenreID
	if id == "" {
		id = AllGenresID
	}
	if entry, ok := FindGenre(s.Genres(), id); ok {
		return entry
	}
	return GenreEntry{ID: id, Name: id}
}

// SelectGenre sets the filter and returns the resulting displayed movies.
func (s *State) SelectGenre(id string) []models.Movie {
	if id == "" {
		id = AllGenresID
	}
	s.SelectedGenreID = id
	return s.Displayed()
}

// Displayed derives the visible movies from AllMovies and the selected genre.
func (s *State) Displayed() []models.Movie {
	id := s.SelectedGenreID
	if id == "" {
		id = AllGenresID
	}
	return Filter(s.AllMovies, id)
}

// Empty reports whether no movies are loaded.
func (s *State) Empty() bool {
	return len(s.AllMovies) == 0
}

// Featured returns the movie shown in the hero area after a load: the first loaded movie.
func (s *State) Featured() (models.Movie, bool) {
	if len(s.AllMovies) == 0 {
		return models.Movie{}, false
	}
	return s.AllMovies[0], true
}
