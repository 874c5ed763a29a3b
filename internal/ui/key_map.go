package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	field    key.Binding
	mode     key.Binding
	input    key.Binding
	analyze  key.Binding
	save     key.Binding
	lists    key.Binding
	refresh  key.Binding
	view     key.Binding
	play     key.Binding
	next     key.Binding
	previous key.Binding
	pause    key.Binding
	retry    key.Binding
	stop     key.Binding
	chart    key.Binding
	player   key.Binding
	logout   key.Binding
	quit     key.Binding
	abort    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		field:    key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		mode:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "login/register")),
		input:    key.NewBinding(key.WithKeys("/", "i"), key.WithHelp("/", "edit")),
		analyze:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "analyze")),
		save:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		lists:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "playlists")),
		refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		view:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view")),
		play:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		next:     key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next")),
		previous: key.NewBinding(key.WithKeys("b", "left"), key.WithHelp("b/←", "previous")),
		pause:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		retry:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "play")),
		stop:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		chart:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "chart")),
		player:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "player")),
		logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		abort:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.analyze, k.save, k.lists, k.refresh, k.view},
		{k.next, k.previous, k.pause, k.retry, k.stop},
		{k.chart, k.player, k.logout, k.quit},
	}
}
