package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Chart grid geometry

const (
	statusLineHeight = 1
	captionHeight    = 1
	// border (2) + horizontal padding (2)
	frameWidth  = 4
	frameHeight = 2
)

// gridShape lays n containers out in at most two columns
func gridShape(n int) (cols, rows int) {
	if n <= 0 {
		return 0, 0
	}
	cols = 1
	if n > 1 {
		cols = 2
	}
	rows = (n + cols - 1) / cols
	return cols, rows
}

// cellSize returns the outer size of one grid cell
func (m *Model) cellSize(cols, rows int) (int, int) {
	if cols == 0 || rows == 0 {
		return 0, 0
	}
	usable := m.height - statusLineHeight
	if m.showHelp {
		usable -= lipgloss.Height(m.renderHelp())
	}
	return m.width / cols, max(usable/rows, frameHeight+captionHeight+1)
}

// chartBounds converts a cell's outer size into the drawable chart size
func chartBounds(cellWidth, cellHeight int) (int, int) {
	return max(cellWidth-frameWidth, 0), max(cellHeight-frameHeight-captionHeight, 0)
}

// layoutGrid pushes the current cell geometry to the terminal back-end
func (m *Model) layoutGrid() {
	ids := m.containerIDs()
	cols, rows := gridShape(len(ids))
	w, h := chartBounds(m.cellSize(cols, rows))
	for _, id := range ids {
		m.backend.SetBounds(id, w, h)
	}
}

// renderGrid renders every container, focused one highlighted
func (m *Model) renderGrid() string {
	ids := m.containerIDs()
	if len(ids) == 0 {
		return m.styles.placeholder.Padding(1).Render("No charts declared. Add charts to the dashboard file and press r to reload.")
	}

	cols, rows := gridShape(len(ids))
	cw, ch := m.cellSize(cols, rows)

	rowViews := make([]string, 0, rows)
	for r := 0; r < rows; r++ {
		var cells []string
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if i >= len(ids) {
				break
			}
			cells = append(cells, m.renderContainer(ids[i], i == m.focus, cw, ch))
		}
		rowViews = append(rowViews, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rowViews...)
}

// renderContainer renders one cell: the chart, its inline error, or a
// placeholder
func (m *Model) renderContainer(id string, focused bool, width, height int) string {
	style := m.styles.section
	if focused {
		style = m.styles.activeSection
	}
	style = style.Width(width - 2).Height(height - 2).MaxHeight(height)

	innerWidth, _ := chartBounds(width, height)
	caption := id
	if c, ok := m.def.Chart(id); ok && c.Title != "" {
		caption = c.Title
	}
	caption = m.styles.caption.MaxWidth(innerWidth).Render(caption)

	var body string
	_, drawn := m.adapter.Entry(id)
	view, rendered := m.backend.View(id)
	switch frag, failed := m.errorFor(id); {
	case drawn && rendered:
		body = view
	case failed:
		body = m.styles.chartError.Width(innerWidth).Render(frag.Text())
	default:
		body = m.styles.placeholder.Render("no chart")
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, caption, body))
}
