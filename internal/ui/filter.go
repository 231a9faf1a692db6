package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/cinemania/internal/library"
)

type menuState int

const (
	menuClosed menuState = iota
	menuOpen
)

type menuEvent int

const (
	headerActivated menuEvent = iota
	itemSelected
	pointerOutside
)

// filterMenu is the open/closed state of the genre dropdown plus its keyboard cursor.
type filterMenu struct {
	state  menuState
	cursor int
}

// apply advances the menu for ev. Item selection and outside presses only matter while open.
func (f *filterMenu) apply(ev menuEvent) {
	switch ev {
	case headerActivated:
		if f.state == menuOpen {
			f.state = menuClosed
		} else {
			f.state = menuOpen
		}
	case itemSelected, pointerOutside:
		f.state = menuClosed
	}
}

func (f filterMenu) isOpen() bool {
	return f.state == menuOpen
}

// renderFilterHeader renders the control that opens the genre menu.
func renderFilterHeader(selected library.GenreEntry, open bool) string {
	arrow := "▾"
	if open {
		arrow = "▴"
	}
	return styles.filter.Render("Genre: " + selected.Name + " " + arrow)
}

// renderFilterMenu renders genres one per line, marking the selected genre and the cursor.
func renderFilterMenu(genres []library.GenreEntry, selectedID string, cursor int) string {
	width := 0
	for _, g := range genres {
		width = max(width, lipgloss.Width(g.Name)+2)
	}

	lines := make([]string, len(genres))
	for i, g := range genres {
		mark := "  "
		if g.ID == selectedID {
			mark = "● "
		}
		style := styles.menuItem
		if i == cursor {
			style = styles.menuActive
		}
		lines[i] = style.Width(width + 2).Render(mark + g.Name)
	}
	return styles.menu.Render(strings.Join(lines, "\n"))
}
