package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the dashboard key bindings
type keyMap struct {
	ToggleTheme key.Binding
	Next        key.Binding
	Prev        key.Binding
	ExportPNG   key.Binding
	ExportSVG   key.Binding
	Remove      key.Binding
	Clear       key.Binding
	Reload      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ToggleTheme: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle theme")),
		Next:        key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next chart")),
		Prev:        key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous chart")),
		ExportPNG:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export png")),
		ExportSVG:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "export svg")),
		Remove:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove chart")),
		Clear:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear charts")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload dashboard")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.ToggleTheme, k.Next, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.ToggleTheme},
		{k.ExportPNG, k.ExportSVG},
		{k.Remove, k.Clear, k.Reload},
		{k.Help, k.Quit},
	}
}
