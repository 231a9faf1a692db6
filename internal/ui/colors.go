package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF4D4D", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style

	card         lipgloss.Style
	cardSelected lipgloss.Style
	cardTitle    lipgloss.Style
	heroTitle    lipgloss.Style
	heroBox      lipgloss.Style
	filter       lipgloss.Style
	menu         lipgloss.Style
	menuItem     lipgloss.Style
	menuActive   lipgloss.Style
	placeholder  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),

		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(h)).
			Padding(0, 1).
			Width(cardWidth - 2).
			Height(cardLines),
		cardSelected: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color(t)).
			Padding(0, 1).
			Width(cardWidth - 2).
			Height(cardLines),
		cardTitle: NewBold("#FAFAFA"),
		heroTitle: NewBold(t),
		heroBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color(t)).
			PaddingLeft(2),
		filter:      NewBold(s),
		menu:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), false, true, true, true).BorderForeground(lipgloss.Color(h)),
		menuItem:    lipgloss.NewStyle().Padding(0, 1),
		menuActive:  lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color(t)),
		placeholder: NewEm(h).Align(lipgloss.Center),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
