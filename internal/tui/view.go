package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// View renders the dashboard
func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "Initializing dashboard..."
	}

	sections := []string{m.renderGrid()}
	if m.showHelp {
		sections = append(sections, m.renderHelp())
	}
	sections = append(sections, m.renderStatusLine())

	return lipgloss.NewStyle().
		MaxHeight(m.height).
		MaxWidth(m.width).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderHelp() string {
	return m.styles.help.Render(m.help.View(m.keys))
}
