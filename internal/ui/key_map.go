package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	left   key.Binding
	right  key.Binding
	enter  key.Binding
	filter key.Binding
	back   key.Binding
	reload key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "feature")),
		filter: key.NewBinding(key.WithKeys("f", "g"), key.WithHelp("f", "genres")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.filter, k.enter, k.reload, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.left, k.right},
		{k.enter, k.filter, k.back},
		{k.reload, k.quit},
	}
}

// menuHelp is shown while the genre menu is open.
func (k keyMap) menuHelp() []key.Binding {
	selectKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select"))
	return []key.Binding{k.up, k.down, selectKey, k.back}
}
