package library

import "github.com/desertthunder/cinemania/internal/models"

const (
	AllGenresID   = "all"
	AllGenresName = "All Genres"
)

// GenreEntry is one option of the genre filter.
type GenreEntry struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// AllGenres is the synthetic entry that disables filtering.
func AllGenres() GenreEntry {
	return GenreEntry{ID: AllGenresID, Name: AllGenresName}
}

// DeriveGenres collects the distinct genres of movies with [AllGenres] in front. An id keeps the
// position where it was first seen and the name it was last seen with. Movies without genre data
// contribute nothing.
func DeriveGenres(movies []models.Movie) []GenreEntry {
	entries := []GenreEntry{AllGenres()}
	index := map[string]int{AllGenresID: 0}

	for _, movie := range movies {
		for _, genre := range movie.Genres {
			if genre.ID == "" || genre.ID == AllGenresID {
				continue
			}
			if i, ok := index[genre.ID]; ok {
				entries[i].Name = genre.Name
				continue
			}
			index[genre.ID] = len(entries)
			entries = append(entries, GenreEntry{ID: genre.ID, Name: genre.Name})
		}
	}
	return entries
}

// HasGenre reports whether movie is tagged with genreID.
func HasGenre(movie models.Movie, genreID string) bool {
	for _, genre := range movie.Genres {
		if genre.ID == genreID {
			return true
		}
	}
	return false
}

// Filter returns the movies tagged with genreID, in order. [AllGenresID] returns every movie.
// The result is always a new slice.
func Filter(movies []models.Movie, genreID string) []models.Movie {
	out := make([]models.Movie, 0, len(movies))
	for _, movie := range movies {
		if genreID == AllGenresID || HasGenre(movie, genreID) {
			out = append(out, movie)
		}
	}
	return out
}

// FindGenre returns the entry with id from entries.
func FindGenre(entries []GenreEntry, id string) (GenreEntry, bool) {
	for _, entry := range entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return GenreEntry{}, false
}
