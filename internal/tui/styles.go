package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// styles are the lipgloss styles derived from a skin. They are rebuilt
// whenever the theme changes.
type styles struct {
	section       lipgloss.Style
	activeSection lipgloss.Style
	caption       lipgloss.Style
	chartError    lipgloss.Style
	placeholder   lipgloss.Style
	status        lipgloss.Style
	statusKey     lipgloss.Style
	statusError   lipgloss.Style
	help          lipgloss.Style
}

func newStyles(skin *Skin) styles {
	c := skin.Colors
	return styles{
		section: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(c.Border)).
			Padding(0, 1).
			Margin(0),

		activeSection: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(c.BorderActive)).
			Padding(0, 1).
			Margin(0),

		caption: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.ChartTitle)).
			Bold(true),

		chartError: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Error)),

		placeholder: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Disabled)).
			Italic(true),

		status: lipgloss.NewStyle().
			Background(lipgloss.Color(c.Background)).
			Foreground(lipgloss.Color(c.Text)),

		statusKey: lipgloss.NewStyle().
			Background(lipgloss.Color(c.Primary)).
			Foreground(lipgloss.Color(c.TextInverse)).
			Bold(true).
			Padding(0, 1),

		statusError: lipgloss.NewStyle().
			Background(lipgloss.Color(c.Background)).
			Foreground(lipgloss.Color(c.Error)),

		help: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Help)).
			Padding(1),
	}
}
