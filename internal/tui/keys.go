package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Start      key.Binding
	Pause      key.Binding
	Stop       key.Binding
	Reset      key.Binding
	OctaveDown key.Binding
	OctaveUp   key.Binding
	RootDown   key.Binding
	RootUp     key.Binding
	NextType   key.Binding
	TempoUp    key.Binding
	TempoDown  key.Binding
	PrevNote   key.Binding
	NextNote   key.Binding
	Random     key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Start: key.NewBinding(
		key.WithKeys(tea.KeyEnter.String()),
		key.WithHelp("enter", "start"),
	),
	Pause: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "pause"),
	),
	Stop: key.NewBinding(
		key.WithKeys(tea.KeyEsc.String()),
		key.WithHelp("esc", "stop"),
	),
	Reset: key.NewBinding(
		key.WithKeys(tea.KeyCtrlR.String()),
		key.WithHelp("ctrl+r", "reset"),
	),
	OctaveDown: key.NewBinding(
		key.WithKeys("z"),
		key.WithHelp("z/x", "octave"),
	),
	OctaveUp: key.NewBinding(
		key.WithKeys("x"),
	),
	RootDown: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[/]", "root"),
	),
	RootUp: key.NewBinding(
		key.WithKeys("]"),
	),
	NextType: key.NewBinding(
		key.WithKeys(tea.KeyTab.String()),
		key.WithHelp("tab", "scale"),
	),
	TempoUp: key.NewBinding(
		key.WithKeys(tea.KeyUp.String()),
		key.WithHelp("↑/↓", "tempo"),
	),
	TempoDown: key.NewBinding(
		key.WithKeys(tea.KeyDown.String()),
	),
	PrevNote: key.NewBinding(
		key.WithKeys(tea.KeyLeft.String()),
		key.WithHelp("←/→", "note"),
	),
	NextNote: key.NewBinding(
		key.WithKeys(tea.KeyRight.String()),
	),
	Random: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new scale"),
	),
	Quit: key.NewBinding(
		key.WithKeys(tea.KeyCtrlC.String()),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Pause, k.Stop, k.OctaveDown, k.RootDown, k.NextType, k.TempoUp, k.PrevNote, k.Random, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Reset}}
}
