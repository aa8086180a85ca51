package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/control-theory/plotdeck/internal/adapter"
	"github.com/control-theory/plotdeck/internal/dashboard"
)

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layoutGrid()
		if !m.loaded {
			m.loaded = true
			m.applyDefinition(m.def)
		} else {
			m.adapter.ResizeAll(context.Background())
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case eventMsg:
		m.handleEvent(adapter.Event(msg))
		return m, m.waitForEvent()

	case reloadMsg:
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("reload failed: %v", msg.Err), true)
		} else {
			m.applyDefinition(msg.Definition)
		}
		return m, m.waitForUpdate()

	case exportedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("export of %s failed: %v", msg.id, msg.err), true)
		} else {
			m.setStatus(fmt.Sprintf("exported %s.%s", msg.id, msg.format), false)
		}
		return m, nil
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.layoutGrid()
		m.adapter.ResizeAll(context.Background())

	case key.Matches(msg, m.keys.ToggleTheme):
		t := m.state.Toggle()
		m.setStatus(fmt.Sprintf("theme: %s", t), false)

	case key.Matches(msg, m.keys.Next):
		m.moveFocus(1)

	case key.Matches(msg, m.keys.Prev):
		m.moveFocus(-1)

	case key.Matches(msg, m.keys.ExportPNG):
		return m, m.export(adapter.FormatPNG)

	case key.Matches(msg, m.keys.ExportSVG):
		return m, m.export(adapter.FormatSVG)

	case key.Matches(msg, m.keys.Remove):
		id, ok := m.focused()
		if !ok {
			return m, nil
		}
		if err := m.adapter.RemoveChart(id); err != nil {
			m.setStatus(fmt.Sprintf("remove %s failed: %v", id, err), true)
		} else {
			m.setStatus(fmt.Sprintf("removed %s", id), false)
		}

	case key.Matches(msg, m.keys.Clear):
		if err := m.adapter.Clear(); err != nil {
			m.setStatus(fmt.Sprintf("clear failed: %v", err), true)
		} else {
			m.setStatus("cleared all charts", false)
		}

	case key.Matches(msg, m.keys.Reload):
		m.reload()
	}
	return m, nil
}

func (m *Model) export(format string) tea.Cmd {
	id, ok := m.focused()
	if !ok {
		return nil
	}
	m.setStatus(fmt.Sprintf("exporting %s.%s...", id, format), false)
	return m.exportCmd(id, format)
}

func (m *Model) reload() {
	if m.dashPath == "" {
		m.setStatus("no dashboard file to reload", true)
		return
	}
	def, err := dashboard.Load(m.dashPath)
	if err != nil {
		m.setStatus(fmt.Sprintf("reload failed: %v", err), true)
		return
	}
	m.applyDefinition(def)
}

// applyDefinition makes def the current dashboard and draws its charts.
// Containers are declared before the adapter runs so lookups resolve.
func (m *Model) applyDefinition(def *dashboard.Definition) {
	m.def = def
	m.setContainers(def.IDs())
	m.layoutGrid()

	err := dashboard.Apply(context.Background(), m.adapter, def)
	for _, id := range def.IDs() {
		if _, ok := m.adapter.Entry(id); ok {
			m.clearError(id)
		}
	}

	if n := len(def.Charts); m.focus >= n {
		m.focus = max(n-1, 0)
	}
	if err != nil {
		m.logger.Warn("dashboard applied with errors", "error", err)
		m.setStatus(fmt.Sprintf("%d of %d charts drawn", m.adapter.Count(), len(def.Charts)), true)
		return
	}
	m.setStatus(fmt.Sprintf("%d charts drawn", m.adapter.Count()), false)
}

func (m *Model) handleEvent(ev adapter.Event) {
	switch {
	case ev.Err == nil && ev.Op == adapter.OpDraw:
		m.clearError(ev.ID)
	case ev.Err != nil && ev.Op != adapter.OpDraw:
		m.setStatus(fmt.Sprintf("%s %s failed: %v", ev.Op, ev.ID, ev.Err), true)
	}
}

func (m *Model) moveFocus(delta int) {
	n := len(m.containerIDs())
	if n == 0 {
		return
	}
	m.focus = (m.focus + delta + n) % n
}

func (m *Model) focused() (string, bool) {
	ids := m.containerIDs()
	if m.focus < 0 || m.focus >= len(ids) {
		return "", false
	}
	return ids[m.focus], true
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}
