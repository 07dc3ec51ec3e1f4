package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the player's key bindings.
type KeyMap struct {
	Quit    key.Binding
	Skip    key.Binding
	Restart key.Binding
	Pick    key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s", "enter"),
			key.WithHelp("s", "skip"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "replay"),
		),
		Pick: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "presets"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Skip, k.Restart, k.Pick, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
