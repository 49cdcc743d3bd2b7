package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap is the deck's key bindings. It implements help.KeyMap.
type keyMap struct {
	Play      key.Binding
	Stop      key.Binding
	Rewind    key.Binding
	Back      key.Binding
	Forward   key.Binding
	MarkIn    key.Binding
	MarkOut   key.Binding
	SelectAll key.Binding
	Export    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Play: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "play/stop"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		Rewind: key.NewBinding(
			key.WithKeys("home", "0"),
			key.WithHelp("home", "rewind"),
		),
		Back: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "back"),
		),
		Forward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "forward"),
		),
		MarkIn: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "mark in"),
		),
		MarkOut: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "mark out"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// setPlayback enables or hides the keys that drive the audio device
func (k *keyMap) setPlayback(enabled bool) {
	k.Play.SetEnabled(enabled)
	k.Stop.SetEnabled(enabled)
}

// ShortHelp returns the bindings shown in the collapsed help line
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.MarkIn, k.MarkOut, k.Export, k.Help, k.Quit}
}

// FullHelp returns the bindings shown in the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Stop, k.Rewind},
		{k.Back, k.Forward},
		{k.MarkIn, k.MarkOut, k.SelectAll},
		{k.Export, k.Help, k.Quit},
	}
}
