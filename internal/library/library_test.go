package library

import (
	"encoding/json"
	"testing"

	"github.com/desertthunder/cinemania/internal/models"
)

func movie(id string, genres ...models.Genre) models.Movie {
	return models.Movie{ID: models.MovieID(id), Title: "Movie " + id, Genres: genres}
}

func genre(id, name string) models.Genre {
	return models.Genre{ID: id, Name: name}
}

func mustDecodeMovie(t *testing.T, payload string) models.Movie {
	t.Helper()
	var m models.Movie
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		t.Fatalf("failed to decode movie: %v", err)
	}
	return m
}

func movieIDs(movies []models.Movie) []models.MovieID {
	ids := make([]models.MovieID, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
	}
	return ids
}

func genreIDs(entries []GenreEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}
