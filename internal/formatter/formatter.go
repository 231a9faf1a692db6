// package formatter provides functions to export library data to various formats (JSON, YAML, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/cinemania/internal/library"
	"github.com/desertthunder/cinemania/internal/models"
	"github.com/desertthunder/cinemania/internal/shared"
	"gopkg.in/yaml.v3"
)

const libraryTitle = "My Library"

// Format names an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatJSON, FormatYAML, FormatCSV, FormatMarkdown, FormatText}

// ParseFormat resolves a format name. "md", "text" and "yml" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want json, yaml, csv, markdown or txt)", shared.ErrInvalidFlag, s)
	}
}

// Extension returns the file extension used for f, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatYAML:
		return "yaml"
	default:
		return string(f)
	}
}

// LibraryExport is a snapshot of a user's library, optionally narrowed to one genre.
type LibraryExport struct {
	Owner      string             `json:"owner" yaml:"owner"`
	Genre      library.GenreEntry `json:"genre" yaml:"genre"`
	ExportedAt time.Time          `json:"exported_at" yaml:"exported_at"`
	Movies     []models.Movie     `json:"movies" yaml:"movies"`
}

// NewLibraryExport snapshots the displayed movies of state.
func NewLibraryExport(owner string, state *library.State) *LibraryExport {
	movies := state.Displayed()
	return &LibraryExport{
		Owner:      owner,
		Genre:      state.SelectedGenre(),
		ExportedAt: time.Now().UTC(),
		Movies:     movies,
	}
}

// Export renders export in format.
func Export(export *LibraryExport, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportToJSON(export)
	case FormatYAML:
		return ExportToYAML(export)
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// ExportToJSON converts a LibraryExport to indented JSON
func ExportToJSON(export *LibraryExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// ExportToYAML converts a LibraryExport to YAML
func ExportToYAML(export *LibraryExport) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(export); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToCSV converts a LibraryExport to CSV format with columns: ID, Title, Year, Rating, Runtime, Genres
func ExportToCSV(export *LibraryExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Year", "Rating", "Runtime", "Genres"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, movie := range export.Movies {
		record := []string{
			movie.ID.String(),
			movie.Title,
			movie.Year(),
			strconv.FormatFloat(movie.VoteAverage, 'f', 1, 64),
			strconv.Itoa(movie.Runtime),
			strings.Join(movie.GenreNames(), "; "),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a LibraryExport to Markdown format with poster thumbnails
func ExportToMarkdown(export *LibraryExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", libraryTitle)

	if export.Owner != "" {
		fmt.Fprintf(&buf, "**Owner**: %s\n", export.Owner)
	}
	fmt.Fprintf(&buf, "**Genre**: %s\n", genreName(export))
	fmt.Fprintf(&buf, "**Movies**: %d\n\n", len(export.Movies))

	if len(export.Movies) == 0 {
		buf.WriteString("_No movies found for this genre._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("## Movies\n\n")
	for i, movie := range export.Movies {
		fmt.Fprintf(&buf, "%d. **%s**%s - ★ %.1f\n", i+1, movie.Title, yearSuffix(movie), movie.VoteAverage)
		if names := movie.GenreNames(); len(names) > 0 {
			fmt.Fprintf(&buf, "   - %s\n", strings.Join(names, ", "))
		}
		if poster := movie.PosterURL("w185"); poster != "" {
			fmt.Fprintf(&buf, "   - ![%s](%s)\n", movie.Title, poster)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a LibraryExport to plain text format
func ExportToText(export *LibraryExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", libraryTitle)
	if export.Owner != "" {
		fmt.Fprintf(&buf, "Owner: %s\n", export.Owner)
	}
	fmt.Fprintf(&buf, "Genre: %s\n", genreName(export))
	fmt.Fprintf(&buf, "Movies: %d\n\n", len(export.Movies))

	for i, movie := range export.Movies {
		fmt.Fprintf(&buf, "%d. %s%s\n", i+1, movie.Title, yearSuffix(movie))
	}

	return buf.Bytes(), nil
}

// WriteExport renders export in format and writes it to path.
//
// Defaults to library.{ext} in the working directory.
func WriteExport(export *LibraryExport, format Format, path string) (string, error) {
	if path == "" {
		path = "library." + format.Extension()
	}

	data, err := Export(export, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func genreName(export *LibraryExport) string {
	if export.Genre.Name == "" {
		return library.AllGenresName
	}
	return export.Genre.Name
}

func yearSuffix(movie models.Movie) string {
	if year := movie.Year(); year != "" {
		return " (" + year + ")"
	}
	return ""
}
