package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusLine renders the bottom bar: theme, status message, focus
func (m *Model) renderStatusLine() string {
	left := m.styles.statusKey.Render(strings.ToUpper(m.state.Current().String()))

	var right string
	if id, ok := m.focused(); ok {
		right = fmt.Sprintf("%s • ?: Help ", id)
	} else {
		right = "?: Help "
	}
	if m.width < 60 {
		right = "? "
	}

	msgStyle := m.styles.status
	if m.statusErr {
		msgStyle = m.styles.statusError
	}
	room := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	msg := m.status
	if room < 1 {
		msg = ""
	} else if lipgloss.Width(msg) > room {
		r := []rune(msg)
		msg = string(r[:min(len(r), room-1)]) + "…"
	}

	center := msgStyle.Width(max(room, 0) + 2).Render(" " + msg)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, center, m.styles.status.Render(right))
}
