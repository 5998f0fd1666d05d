package common

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the overlay's global and board bindings.
type KeyMap struct {
	Quit    key.Binding
	Hide    key.Binding // f2: hide/show the overlay
	Suspend key.Binding // f3: suspend/resume every system's keys
	Refresh key.Binding // f5: refetch the whole thread
	Menu    key.Binding // home: open/close the systems menu
	Left    key.Binding
	Right   key.Binding
	Focus   key.Binding // Enter post focus on the newest post
	Up      key.Binding
	Down    key.Binding
	Expand  key.Binding
	Exit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "f12"),
			key.WithHelp("f12", "quit"),
		),
		Hide: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "hide"),
		),
		Suspend: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("f3", "suspend keys"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("f5"),
			key.WithHelp("f5", "reload thread"),
		),
		Menu: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "menu"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next"),
		),
		Focus: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "browse"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "older"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "newer"),
		),
		Expand: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "expand"),
		),
		Exit: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc", "stop browsing"),
		),
	}
}

// Matches reports whether a dispatched key string belongs to any binding.
// Router events carry key names rather than tea.KeyMsg values.
func Matches(k string, bindings ...key.Binding) bool {
	for _, b := range bindings {
		if b.Enabled() && slices.Contains(b.Keys(), k) {
			return true
		}
	}
	return false
}
