// Package terminal draws chart figures as styled text for the TUI.
package terminal

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/control-theory/plotdeck/internal/chart"
)

// Minimum drawable size in cells
const (
	MinWidth  = 12
	MinHeight = 4
)

var (
	// ErrTooSmall is returned when the bounds cannot hold a plot.
	ErrTooSmall = errors.New("pane too small to draw chart")
	// ErrNoData is returned when the series hold no drawable values.
	ErrNoData = errors.New("series has no drawable values")
)

// Render draws series with layout into a width x height block of text. A
// panic while drawing is returned as an error.
func Render(series []chart.Series, layout chart.Layout, width, height int) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("render panicked: %v", r)
		}
	}()
	if width < MinWidth || height < MinHeight {
		return "", ErrTooSmall
	}
	if !chart.Drawable(series) {
		return "", ErrNoData
	}

	var header []string
	if layout.Title.Text != "" {
		header = append(header, style(layout.Title.Font.Color).Bold(true).Render(truncate(layout.Title.Text, width)))
	}
	footer := axisCaption(layout, width)

	plotHeight := height - len(header) - len(footer)
	if plotHeight < 2 {
		return "", ErrTooSmall
	}

	var body string
	switch series[0].Type {
	case chart.KindBar:
		body, err = barBody(series[0], layout, width, plotHeight)
	case chart.KindHistogram:
		body, err = histogramBody(series[0], layout, width, plotHeight)
	case chart.KindPie:
		body, err = pieBody(series[0], layout, width, plotHeight)
	case chart.KindLine, chart.KindScatter:
		body, err = planeBody(series, layout, width, plotHeight)
	case chart.KindBox:
		body, err = boxBody(series, layout, width, plotHeight)
	case chart.KindHeatmap:
		body, err = heatmapBody(series[0], width, plotHeight)
	default:
		err = &chart.ErrUnsupportedChartKind{Kind: string(series[0].Type)}
	}
	if err != nil {
		return "", err
	}

	parts := append(header, body)
	parts = append(parts, footer...)
	return lipgloss.JoinVertical(lipgloss.Left, parts...), nil
}

func axisCaption(l chart.Layout, width int) []string {
	x, y := l.XAxis.Title, l.YAxis.Title
	if x == "" && y == "" {
		return nil
	}
	caption := x
	if y != "" {
		if caption != "" {
			caption += " → "
		}
		caption += y
	}
	return []string{style(l.XAxis.Font.Color).Faint(true).Render(truncate(caption, width))}
}

// style returns a foreground style for a layout color; non-hex colors such
// as the transparent background leave the terminal default
func style(c string) lipgloss.Style {
	s := lipgloss.NewStyle()
	if strings.HasPrefix(c, "#") {
		s = s.Foreground(lipgloss.Color(chart.NormalizeHex(c)))
	}
	return s
}

func barBody(s chart.Series, l chart.Layout, width, height int) (string, error) {
	labels := make([]string, len(s.X))
	values := make([]float64, len(s.X))
	for i, x := range s.X {
		labels[i] = x.String()
		values[i], _ = chart.FiniteFloat(s.Y[i])
	}
	return bars(labels, values, fills(s.Marker, l.Colorway, len(values)), width, height)
}

func histogramBody(s chart.Series, l chart.Layout, width, height int) (string, error) {
	bins := chart.Histogram(chart.Numbers(s.X))
	if len(bins) == 0 {
		return "", ErrNoData
	}
	labels := make([]string, len(bins))
	values := make([]float64, len(bins))
	for i, b := range bins {
		labels[i] = fmt.Sprintf("%.3g", (b.Lo+b.Hi)/2)
		values[i] = float64(b.Count)
	}
	color := chart.SeriesColor(l.Colorway, 0)
	if s.Marker != nil && s.Marker.Color != "" {
		color = s.Marker.Color
	}
	colors := make([]string, len(values))
	for i := range colors {
		colors[i] = color
	}
	return bars(labels, values, colors, width, height)
}

// bars draws one ntcharts bar per value. Negative values are drawn as empty
// bars since the bar chart has no negative axis.
func bars(labels []string, values []float64, colors []string, width, height int) (string, error) {
	if len(values) == 0 {
		return "", ErrNoData
	}
	const gap = 1
	barWidth := (width - gap*(len(values)-1)) / len(values)
	if barWidth < 1 {
		return "", ErrTooSmall
	}

	bc := barchart.New(width, height,
		barchart.WithBarGap(gap),
		barchart.WithBarWidth(barWidth),
	)
	for i, v := range values {
		bc.Push(barchart.BarData{
			Label: truncate(labels[i], barWidth),
			Values: []barchart.BarValue{{
				Name:  labels[i],
				Value: math.Max(0, v),
				Style: lipgloss.NewStyle().Foreground(lipgloss.Color(colors[i])),
			}},
		})
	}
	bc.Draw()
	return bc.View(), nil
}

// fills resolves one color per bar from the marker, defaulting to the first
// colorway entry
func fills(m *chart.Marker, colorway []string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = chart.SeriesColor(colorway, 0)
	}
	if m == nil {
		return out
	}
	switch {
	case m.Color != "" && strings.HasPrefix(m.Color, "#"):
		for i := range out {
			out[i] = m.Color
		}
	case len(m.Colors) > 0:
		lo, hi := extent(m.Colors)
		for i, v := range m.Colors {
			if chart.Finite(v) {
				out[i] = chart.ScaleColor(v, lo, hi)
			}
		}
	case len(m.ColorKeys) > 0:
		copy(out, chart.KeyColors(m.ColorKeys, colorway))
	}
	return out
}

func pieBody(s chart.Series, l chart.Layout, width, height int) (string, error) {
	total := 0.0
	for _, v := range s.Values {
		if v > 0 && chart.Finite(v) {
			total += v
		}
	}
	if total == 0 || !chart.Finite(total) {
		return "", ErrNoData
	}

	labelWidth := 0
	for _, label := range s.Labels {
		labelWidth = max(labelWidth, lipgloss.Width(label))
	}
	labelWidth = min(labelWidth, width/3)
	barWidth := width - labelWidth - 9
	if barWidth < 1 {
		return "", ErrTooSmall
	}

	var lines []string
	for i, label := range s.Labels {
		if len(lines) == height {
			break
		}
		share := 0.0
		if v := s.Values[i]; v > 0 && chart.Finite(v) {
			share = v / total
		}
		slice := lipgloss.NewStyle().Foreground(lipgloss.Color(chart.SeriesColor(l.Colorway, i)))
		lines = append(lines, fmt.Sprintf("%-*s %s %5.1f%%",
			labelWidth, truncate(label, labelWidth),
			slice.Render(padRight(strings.Repeat("█", int(math.Round(share*float64(barWidth)))), barWidth)),
			share*100))
	}
	return strings.Join(lines, "\n"), nil
}

// planeBody plots line and scatter points on a character grid
func planeBody(series []chart.Series, l chart.Layout, width, height int) (string, error) {
	type point struct {
		x, y  float64
		color string
	}
	var all [][]point
	var xs, ys []float64
	for si, s := range series {
		categorical := false
		for _, x := range s.X {
			if _, ok := x.Float(); !ok && !x.IsNull() {
				categorical = true
				break
			}
		}
		colors := fills(s.Marker, l.Colorway, len(s.X))
		if s.Marker == nil || (s.Marker.Color == "" && len(s.Marker.Colors) == 0 && len(s.Marker.ColorKeys) == 0) {
			for i := range colors {
				colors[i] = chart.SeriesColor(l.Colorway, si)
			}
		}

		var pts []point
		for i := range s.X {
			y, ok := chart.FiniteFloat(s.Y[i])
			if !ok {
				continue
			}
			x := float64(i)
			if !categorical {
				if x, ok = chart.FiniteFloat(s.X[i]); !ok {
					continue
				}
			}
			pts = append(pts, point{x: x, y: y, color: colors[i]})
			xs = append(xs, x)
			ys = append(ys, y)
		}
		all = append(all, pts)
	}
	if len(xs) == 0 {
		return "", ErrNoData
	}

	xlo, xhi := extent(xs)
	ylo, yhi := extent(ys)
	g := newGrid(width, height)
	col := func(x float64) int { return scale(x, xlo, xhi, width-1) }
	row := func(y float64) int { return height - 1 - scale(y, ylo, yhi, height-1) }

	for si, pts := range all {
		if series[si].Type == chart.KindLine {
			for i := 1; i < len(pts); i++ {
				a, b := pts[i-1], pts[i]
				c0, c1 := col(a.x), col(b.x)
				for c := min(c0, c1) + 1; c < max(c0, c1); c++ {
					t := float64(c-c0) / float64(c1-c0)
					g.set(c, row(a.y+t*(b.y-a.y)), '·', a.color)
				}
			}
		}
		for _, p := range pts {
			g.set(col(p.x), row(p.y), '●', p.color)
		}
	}
	return g.String(), nil
}

func boxBody(series []chart.Series, l chart.Layout, width, height int) (string, error) {
	type group struct {
		name  string
		stats chart.BoxStats
	}
	var groups []group
	var ext []float64
	labelWidth := 0
	for _, s := range series {
		st, ok := chart.Summarize(chart.Numbers(s.Y))
		if !ok {
			continue
		}
		groups = append(groups, group{name: s.Name, stats: st})
		ext = append(ext, st.Min, st.Max)
		labelWidth = max(labelWidth, lipgloss.Width(s.Name))
	}
	if len(groups) == 0 {
		return "", ErrNoData
	}
	labelWidth = min(labelWidth, width/4)
	span := width - labelWidth - 1
	if span < 5 {
		return "", ErrTooSmall
	}
	lo, hi := extent(ext)

	var lines []string
	for i, g := range groups {
		if len(lines) == height {
			break
		}
		cells := []rune(strings.Repeat(" ", span))
		pos := func(v float64) int { return scale(v, lo, hi, span-1) }
		for c := pos(g.stats.Min); c <= pos(g.stats.Max); c++ {
			cells[c] = '─'
		}
		for c := pos(g.stats.Q1); c <= pos(g.stats.Q3); c++ {
			cells[c] = '█'
		}
		cells[pos(g.stats.Min)] = '├'
		cells[pos(g.stats.Max)] = '┤'
		cells[pos(g.stats.Median)] = '┃'

		// Whiskers fade toward the grid color.
		c := chart.SeriesColor(l.Colorway, i)
		box, whisker := style(c), style(chart.Blend(c, l.YAxis.GridColor, 0.5))
		q1, q3 := pos(g.stats.Q1), pos(g.stats.Q3)
		drawn := whisker.Render(string(cells[:q1])) +
			box.Render(string(cells[q1:q3+1])) +
			whisker.Render(string(cells[q3+1:]))
		lines = append(lines, fmt.Sprintf("%-*s %s", labelWidth, truncate(g.name, labelWidth), drawn))
	}
	return strings.Join(lines, "\n"), nil
}

func heatmapBody(s chart.Series, width, height int) (string, error) {
	if len(s.Z) == 0 || len(s.Z[0]) == 0 {
		return "", ErrNoData
	}
	labelWidth := 0
	for _, y := range s.YLabels {
		labelWidth = max(labelWidth, lipgloss.Width(y))
	}
	labelWidth = min(labelWidth, width/4)
	cols := len(s.Z[0])
	cell := (width - labelWidth - 1) / cols
	if cell < 1 {
		return "", ErrTooSmall
	}
	lo, hi := chart.Extent(s.Z)

	var lines []string
	// last row first so row 0 sits at the bottom
	for r := len(s.Z) - 1; r >= 0 && len(lines) < height; r-- {
		label := ""
		if r < len(s.YLabels) {
			label = s.YLabels[r]
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%-*s ", labelWidth, truncate(label, labelWidth))
		for _, v := range s.Z[r] {
			b.WriteString(lipgloss.NewStyle().
				Background(lipgloss.Color(chart.ScaleColor(v, lo, hi))).
				Render(strings.Repeat(" ", cell)))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n"), nil
}

func extent(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if !chart.Finite(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

// scale maps v in [lo,hi] onto 0..n, clamped; a flat or non-finite range
// lands in the middle
func scale(v, lo, hi float64, n int) int {
	t := (v - lo) / (hi - lo)
	if hi <= lo || !chart.Finite(t) {
		return n / 2
	}
	return max(0, min(n, int(math.Round(t*float64(n)))))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

type grid struct {
	width  int
	cells  [][]rune
	colors [][]string
}

func newGrid(width, height int) *grid {
	g := &grid{width: width, cells: make([][]rune, height), colors: make([][]string, height)}
	for r := range g.cells {
		g.cells[r] = []rune(strings.Repeat(" ", width))
		g.colors[r] = make([]string, width)
	}
	return g
}

func (g *grid) set(col, row int, ch rune, color string) {
	if row < 0 || row >= len(g.cells) || col < 0 || col >= g.width {
		return
	}
	// points win over connecting segments
	if g.cells[row][col] == '●' && ch != '●' {
		return
	}
	g.cells[row][col] = ch
	g.colors[row][col] = color
}

func (g *grid) String() string {
	lines := make([]string, len(g.cells))
	for r, row := range g.cells {
		var b strings.Builder
		for c, ch := range row {
			if g.colors[r][c] == "" {
				b.WriteRune(ch)
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(g.colors[r][c])).Render(string(ch)))
		}
		lines[r] = b.String()
	}
	return strings.Join(lines, "\n")
}
