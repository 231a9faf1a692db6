package models

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

var movieIDType = reflect.TypeOf(MovieID(""))

// MovieID is an opaque movie identifier.
//
// The movie database uses numbers while saved libraries and URLs carry strings, so both decode to the same value.
type MovieID string

// ParseMovieID trims s and returns it as a [MovieID].
func ParseMovieID(s string) MovieID {
	return MovieID(strings.TrimSpace(s))
}

func (id MovieID) String() string { return string(id) }
func (id MovieID) IsZero() bool   { return strings.TrimSpace(string(id)) == "" }

func (id *MovieID) UnmarshalJSON(data []byte) error {
	s, ok := decodeIdentifier(data)
	if !ok {
		return &json.UnmarshalTypeError{Value: string(data), Type: movieIDType}
	}
	*id = MovieID(s)
	return nil
}

func (id MovieID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// ImageBaseURL is the TMDB image CDN prefix; poster and backdrop paths are relative to it.
const ImageBaseURL = "https://image.tmdb.org/t/p/"

// Genre is a named genre attached to a movie. IDs are compared by their string form.
type Genre struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Movie is a movie record as supplied by the catalog. It is read-only to the library.
type Movie struct {
	ID           MovieID `json:"id" yaml:"id"`
	Title        string  `json:"title" yaml:"title"`
	Overview     string  `json:"overview,omitempty" yaml:"overview,omitempty"`
	Tagline      string  `json:"tagline,omitempty" yaml:"tagline,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty" yaml:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty" yaml:"backdrop_path,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty" yaml:"release_date,omitempty"`
	Runtime      int     `json:"runtime,omitempty" yaml:"runtime,omitempty"`
	VoteAverage  float64 `json:"vote_average" yaml:"vote_average"`
	Genres       []Genre `json:"genres" yaml:"genres"`
}

// Year returns the four digit release year, or "" when unknown.
func (m Movie) Year() string {
	if len(m.ReleaseDate) >= 4 {
		return m.ReleaseDate[:4]
	}
	return ""
}

// PosterURL returns the poster image URL at size (e.g. "w342"), or "" when the movie has no poster.
func (m Movie) PosterURL(size string) string {
	return imageURL(m.PosterPath, size)
}

// BackdropURL returns the backdrop image URL at size (e.g. "w1280"), or "" when the movie has no backdrop.
func (m Movie) BackdropURL(size string) string {
	return imageURL(m.BackdropPath, size)
}

func imageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = "original"
	}
	return ImageBaseURL + size + "/" + strings.TrimLeft(path, "/")
}

// GenreNames returns the names of the movie's genres in order.
func (m Movie) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}

// UnmarshalJSON decodes a movie, degrading bad genre data to an empty genre set instead of failing.
func (m *Movie) UnmarshalJSON(data []byte) error {
	type plain Movie
	var raw struct {
		plain
		Genres json.RawMessage `json:"genres"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Movie(raw.plain)
	m.Genres = decodeGenres(raw.Genres)
	return nil
}

// decodeGenres returns nil unless data is an array whose entries are all objects with a usable id.
func decodeGenres(data json.RawMessage) []Genre {
	var entries []json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &entries) != nil {
		return nil
	}

	genres := make([]Genre, 0, len(entries))
	for _, entry := range entries {
		var g struct {
			ID   json.RawMessage `json:"id"`
			Name json.RawMessage `json:"name"`
		}
		if json.Unmarshal(entry, &g) != nil {
			return nil
		}

		id, ok := decodeIdentifier(g.ID)
		if !ok || id == "" {
			return nil
		}

		var name string
		if len(g.Name) > 0 && json.Unmarshal(g.Name, &name) != nil {
			return nil
		}

		genres = append(genres, Genre{ID: id, Name: name})
	}
	return genres
}

// decodeIdentifier accepts a JSON string or number and returns its string form. Numbers are
// normalised to their shortest decimal form, so 10, 10.0 and 1e1 all decode to "10".
func decodeIdentifier(data []byte) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", false
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", false
	}
	return normalizeNumber(n), true
}

func normalizeNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
