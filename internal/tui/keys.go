package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up, Down, Left, Right key.Binding
	ZoomIn, ZoomOut       key.Binding
	TiltUp, TiltDown      key.Binding
	TurnLeft, TurnRight   key.Binding
	Split, Merge          key.Binding
	Reset                 key.Binding
	Help                  key.Binding
	Quit                  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "w"), key.WithHelp("↑/w", "north")),
		Down:      key.NewBinding(key.WithKeys("down", "s"), key.WithHelp("↓/s", "south")),
		Left:      key.NewBinding(key.WithKeys("left", "a"), key.WithHelp("←/a", "west")),
		Right:     key.NewBinding(key.WithKeys("right", "d"), key.WithHelp("→/d", "east")),
		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		TiltUp:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "tilt to horizon")),
		TiltDown:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "tilt to nadir")),
		TurnLeft:  key.NewBinding(key.WithKeys(","), key.WithHelp(",", "turn left")),
		TurnRight: key.NewBinding(key.WithKeys("."), key.WithHelp(".", "turn right")),
		Split:     key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "split one")),
		Merge:     key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "merge one")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset view")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.ZoomIn, k.ZoomOut, k.TiltUp, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.ZoomIn, k.ZoomOut, k.TiltUp, k.TiltDown, k.TurnLeft, k.TurnRight},
		{k.Split, k.Merge, k.Reset, k.Help, k.Quit},
	}
}
