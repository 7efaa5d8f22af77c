package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the dashboard.
type keyMap struct {
	playPause key.Binding
	next      key.Binding
	prev      key.Binding
	stop      key.Binding
	seekBack  key.Binding
	seekFwd   key.Binding
	volUp     key.Binding
	volDown   key.Binding
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	open      key.Binding
	filter    key.Binding
	copyPath  key.Binding
	rescan    key.Binding
	focus     key.Binding
	help      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		playPause: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		prev:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		stop:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		seekBack:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "seek -5%")),
		seekFwd:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "seek +5%")),
		volUp:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		volDown:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play selected")),
		open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open file")),
		filter:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		copyPath:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy path")),
		rescan:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
		focus:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch panel")),
		help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.playPause, k.next, k.prev, k.seekFwd, k.volUp, k.open, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.playPause, k.next, k.prev, k.stop, k.seekBack, k.seekFwd},
		{k.volUp, k.volDown, k.up, k.down, k.enter},
		{k.open, k.filter, k.copyPath, k.rescan, k.focus, k.help, k.quit},
	}
}
