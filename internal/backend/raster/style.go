package raster

import (
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/control-theory/plotdeck/internal/chart"
)

// color converts a layout color string; unparseable colors are transparent
func color(s string) drawing.Color {
	c, ok := chart.RGBA(s)
	if !ok {
		return drawing.ColorTransparent
	}
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func titleStyle(l chart.Layout) gochart.Style {
	return gochart.Style{
		FontColor: color(l.Title.Font.Color),
		FontSize:  float64(l.Title.Font.Size),
	}
}

func backgroundStyle(l chart.Layout) gochart.Style {
	return gochart.Style{
		FillColor: color(l.PaperBG),
		Padding: gochart.Box{
			Top:    l.Margin.T,
			Left:   l.Margin.L,
			Right:  l.Margin.R,
			Bottom: l.Margin.B,
		},
	}
}

func canvasStyle(l chart.Layout) gochart.Style {
	return gochart.Style{FillColor: color(l.PlotBG)}
}

func axisStyle(a chart.Axis) gochart.Style {
	return gochart.Style{
		FontColor:   color(a.Font.Color),
		FontSize:    float64(a.Font.Size),
		StrokeColor: color(a.LineColor),
		StrokeWidth: 1,
	}
}

func gridStyle(a chart.Axis) gochart.Style {
	return gochart.Style{
		StrokeColor: color(a.GridColor),
		StrokeWidth: 1,
	}
}

func xAxis(l chart.Layout) gochart.XAxis {
	return gochart.XAxis{
		Name:           l.XAxis.Title,
		NameStyle:      gochart.Style{FontColor: color(l.XAxis.Font.Color)},
		Style:          axisStyle(l.XAxis),
		GridMajorStyle: gridStyle(l.XAxis),
	}
}

func yAxis(l chart.Layout) gochart.YAxis {
	return gochart.YAxis{
		Name:           l.YAxis.Title,
		NameStyle:      gochart.Style{FontColor: color(l.YAxis.Font.Color)},
		Style:          axisStyle(l.YAxis),
		GridMajorStyle: gridStyle(l.YAxis),
	}
}

// pointColors resolves the per-point fill colors of a marker. The result is
// nil when every point uses fallback.
func pointColors(m *chart.Marker, colorway []string, n int) []string {
	if m == nil {
		return nil
	}
	switch {
	case m.Color != "":
		out := make([]string, n)
		for i := range out {
			out[i] = m.Color
		}
		return out
	case len(m.Colors) > 0:
		lo, hi := bounds(m.Colors)
		out := make([]string, len(m.Colors))
		for i, v := range m.Colors {
			if !chart.Finite(v) {
				out[i] = chart.SeriesColor(colorway, 0)
				continue
			}
			out[i] = chart.ScaleColor(v, lo, hi)
		}
		return out
	case len(m.ColorKeys) > 0:
		return chart.KeyColors(m.ColorKeys, colorway)
	}
	return nil
}

// span returns a drawable range for values, padding degenerate ranges so
// go-chart never sees a zero delta
func span(values []float64, includeZero bool) *gochart.ContinuousRange {
	lo, hi := bounds(values)
	if includeZero {
		lo = min(lo, 0)
		hi = max(hi, 0)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

func bounds(values []float64) (lo, hi float64) {
	seen := false
	for _, v := range values {
		if !chart.Finite(v) {
			continue
		}
		if !seen || v < lo {
			lo = v
		}
		if !seen || v > hi {
			hi = v
		}
		seen = true
	}
	return lo, hi
}
