package library

import (
	"testing"

	"github.com/desertthunder/cinemania/internal/models"
	"github.com/google/go-cmp/cmp"
)

func TestDeriveGenres(t *testing.T) {
	action := genre("10", "Action")
	drama := genre("11", "Drama")
	comedy := genre("12", "Comedy")

	tests := []struct {
		name   string
		movies []models.Movie
		want   []GenreEntry
	}{
		{
			name:   "No Movies",
			movies: nil,
			want:   []GenreEntry{AllGenres()},
		},
		{
			name:   "No Genre Data",
			movies: []models.Movie{movie("1"), movie("2")},
			want:   []GenreEntry{AllGenres()},
		},
		{
			name:   "First Seen Order",
			movies: []models.Movie{movie("1", drama), movie("2", action, drama), movie("3", comedy)},
			want: []GenreEntry{
				AllGenres(),
				{ID: "11", Name: "Drama"},
				{ID: "10", Name: "Action"},
				{ID: "12", Name: "Comedy"},
			},
		},
		{
			name: "Duplicate IDs Keep First Position And Last Name",
			movies: []models.Movie{
				movie("1", genre("10", "Action")),
				movie("2", drama),
				movie("3", genre("10", "Action & Adventure")),
			},
			want: []GenreEntry{AllGenres(), {ID: "10", Name: "Action & Adventure"}, {ID: "11", Name: "Drama"}},
		},
		{
			name:   "Genre Named All Is Ignored",
			movies: []models.Movie{movie("1", genre("all", "Everything"), action)},
			want:   []GenreEntry{AllGenres(), {ID: "10", Name: "Action"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveGenres(tt.movies)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DeriveGenres() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("Properties", func(t *testing.T) {
		movies := []models.Movie{
			movie("1", action, drama),
			movie("2", drama, comedy, action),
			movie("3"),
			movie("4", comedy),
		}

		got := DeriveGenres(movies)
		if got[0] != AllGenres() {
			t.Errorf("expected all genres first, got %+v", got[0])
		}

		seen := map[string]bool{}
		for _, entry := range got {
			if seen[entry.ID] {
				t.Errorf("duplicate genre id %s", entry.ID)
			}
			seen[entry.ID] = true
		}
	})
}

func TestFilter(t *testing.T) {
	action := genre("10", "Action")
	drama := genre("11", "Drama")
	movies := []models.Movie{movie("1", action), movie("2", drama), movie("3", action, drama), movie("4")}

	tests := []struct {
		name    string
		genreID string
		want    []models.MovieID
	}{
		{name: "All", genreID: AllGenresID, want: []models.MovieID{"1", "2", "3", "4"}},
		{name: "Action", genreID: "10", want: []models.MovieID{"1", "3"}},
		{name: "Drama", genreID: "11", want: []models.MovieID{"2", "3"}},
		{name: "Unknown", genreID: "99", want: []models.MovieID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := movieIDs(Filter(movies, tt.genreID))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("Returns New Slice", func(t *testing.T) {
		got := Filter(movies, AllGenresID)
		got[0].Title = "changed"
		if movies[0].Title == "changed" {
			t.Error("Filter should not alias its input")
		}
	})

	t.Run("Malformed Genres", func(t *testing.T) {
		odd := mustDecodeMovie(t, `{"id": 5, "title": "Odd", "genres": "not-an-array"}`)
		broken := mustDecodeMovie(t, `{"id": 6, "title": "Broken", "genres": [{"name": "No ID"}]}`)
		list := append([]models.Movie{odd, broken}, movies...)

		for _, entry := range DeriveGenres(list) {
			if entry.ID == AllGenresID {
				continue
			}
			for _, m := range Filter(list, entry.ID) {
				if m.ID == "5" || m.ID == "6" {
					t.Errorf("movie %s with malformed genres included under %s", m.ID, entry.ID)
				}
			}
		}

		if got := len(Filter(list, AllGenresID)); got != len(list) {
			t.Errorf("expected %d movies under all, got %d", len(list), got)
		}
	})
}

func TestFindGenre(t *testing.T) {
	entries := []GenreEntry{AllGenres(), {ID: "10", Name: "Action"}}

	if got, ok := FindGenre(entries, "10"); !ok || got.Name != "Action" {
		t.Errorf("expected Action, got %+v (found=%v)", got, ok)
	}
	if _, ok := FindGenre(entries, "99"); ok {
		t.Error("expected missing genre")
	}
}
