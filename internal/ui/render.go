package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/cinemania/internal/models"
	"github.com/mattn/go-runewidth"
)

const (
	cardWidth  = 30 // outer width, borders included
	cardLines  = 3
	cardHeight = cardLines + 2

	emptyGenreText   = "No movies found for this genre."
	emptyLibraryText = "Your library is empty. Save movies with `cinemania library add <id>`."
	emptyHeroText    = "Your Library is Empty"
	failureText      = "Something went wrong while loading your library. Press r to try again."
	heroOverviewRows = 3
)

// gridColumns returns how many cards fit side by side in width.
func gridColumns(width int) int {
	return max(1, width/cardWidth)
}

// renderMovies lays movies out as a grid of cards, in order. An empty list renders the
// "no movies found" placeholder across the full width.
func renderMovies(movies []models.Movie, width, cursor int) string {
	if len(movies) == 0 {
		return styles.placeholder.Width(max(width, 1)).Render(emptyGenreText)
	}

	cols := gridColumns(width)
	rows := make([]string, 0, (len(movies)+cols-1)/cols)
	for start := 0; start < len(movies); start += cols {
		end := min(start+cols, len(movies))
		cards := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cards = append(cards, renderMovieCard(movies[i], i == cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderMovieCard renders a fixed-size card: title, year and rating, genres.
func renderMovieCard(movie models.Movie, selected bool) string {
	textWidth := cardWidth - 4

	title := runewidth.Truncate(movie.Title, textWidth, "…")
	meta := fmt.Sprintf("★ %.1f", movie.VoteAverage)
	if year := movie.Year(); year != "" {
		meta = year + " · " + meta
	}
	genres := runewidth.Truncate(strings.Join(movie.GenreNames(), ", "), textWidth, "…")

	body := strings.Join([]string{
		styles.cardTitle.Render(title),
		meta,
		styles.help.Render(genres),
	}, "\n")

	if selected {
		return styles.cardSelected.Render(body)
	}
	return styles.card.Render(body)
}

// renderHero renders the featured movie, or placeholder when there is none.
func renderHero(movie *models.Movie, placeholder string, width int) string {
	width = max(width, 20)
	if movie == nil {
		return styles.heroBox.Render(styles.placeholder.Align(lipgloss.Left).Render(placeholder))
	}

	title := movie.Title
	if year := movie.Year(); year != "" {
		title += " (" + year + ")"
	}

	lines := []string{styles.heroTitle.Render(runewidth.Truncate(title, width-4, "…"))}

	meta := []string{fmt.Sprintf("★ %.1f", movie.VoteAverage)}
	if movie.Runtime > 0 {
		meta = append(meta, fmt.Sprintf("%dh %02dm", movie.Runtime/60, movie.Runtime%60))
	}
	if names := movie.GenreNames(); len(names) > 0 {
		meta = append(meta, strings.Join(names, ", "))
	}
	lines = append(lines, runewidth.Truncate(strings.Join(meta, " · "), width-4, "…"))

	if movie.Tagline != "" {
		lines = append(lines, styles.help.Render(runewidth.Truncate(movie.Tagline, width-4, "…")))
	}
	if movie.Overview != "" {
		overview := lipgloss.NewStyle().Width(width - 4).MaxHeight(heroOverviewRows).Render(movie.Overview)
		lines = append(lines, overview)
	}

	return styles.heroBox.Render(strings.Join(lines, "\n"))
}
