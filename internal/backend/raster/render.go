// Package raster renders chart figures to PNG or SVG images with go-chart.
package raster

import (
	"errors"
	"fmt"
	"io"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/control-theory/plotdeck/internal/chart"
	"github.com/control-theory/plotdeck/internal/table"
)

var (
	// ErrNoSeries is returned when a figure has nothing to draw.
	ErrNoSeries = errors.New("figure has no series")
	// ErrNoData is returned when the series hold no drawable values.
	ErrNoData = errors.New("series has no drawable values")
)

// renderable is satisfied by every go-chart chart type and by canvas
type renderable interface {
	Render(rp gochart.RendererProvider, w io.Writer) error
}

// Provider returns the go-chart renderer for an export format
func Provider(format string) (gochart.RendererProvider, error) {
	switch strings.ToLower(format) {
	case "png":
		return gochart.PNG, nil
	case "svg":
		return gochart.SVG, nil
	default:
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
}

// Render draws series with layout as a width x height image
func Render(w io.Writer, format string, width, height int, series []chart.Series, layout chart.Layout) error {
	rp, err := Provider(format)
	if err != nil {
		return err
	}
	fig, err := compose(width, height, series, layout)
	if err != nil {
		return err
	}
	return fig.Render(rp, w)
}

func compose(width, height int, series []chart.Series, layout chart.Layout) (renderable, error) {
	if len(series) == 0 {
		return nil, ErrNoSeries
	}
	if !chart.Drawable(series) {
		return nil, ErrNoData
	}
	switch series[0].Type {
	case chart.KindBar:
		return barFigure(width, height, series[0], layout)
	case chart.KindHistogram:
		return histogramFigure(width, height, series[0], layout)
	case chart.KindPie:
		return pieFigure(width, height, series[0], layout)
	case chart.KindLine, chart.KindScatter:
		return xyFigure(width, height, series, layout)
	case chart.KindBox:
		return boxFigure(width, height, series, layout)
	case chart.KindHeatmap:
		return heatmapFigure(width, height, series[0], layout)
	default:
		return nil, &chart.ErrUnsupportedChartKind{Kind: string(series[0].Type)}
	}
}

func barFigure(width, height int, s chart.Series, l chart.Layout) (renderable, error) {
	colors := pointColors(s.Marker, l.Colorway, len(s.X))
	bars := make([]gochart.Value, 0, len(s.X))
	values := make([]float64, 0, len(s.X))
	for i, x := range s.X {
		y, _ := chart.FiniteFloat(s.Y[i])
		fill := chart.SeriesColor(l.Colorway, 0)
		if colors != nil {
			fill = colors[i]
		}
		bars = append(bars, gochart.Value{
			Label: x.String(),
			Value: y,
			Style: gochart.Style{FillColor: color(fill), StrokeColor: color(fill)},
		})
		values = append(values, y)
	}
	return barChart(width, height, bars, values, l)
}

func histogramFigure(width, height int, s chart.Series, l chart.Layout) (renderable, error) {
	bins := chart.Histogram(chart.Numbers(s.X))
	if len(bins) == 0 {
		return nil, ErrNoData
	}
	fill := chart.SeriesColor(l.Colorway, 0)
	if s.Marker != nil && s.Marker.Color != "" {
		fill = s.Marker.Color
	}
	bars := make([]gochart.Value, len(bins))
	values := make([]float64, len(bins))
	for i, b := range bins {
		bars[i] = gochart.Value{
			Label: fmt.Sprintf("%.3g", (b.Lo+b.Hi)/2),
			Value: float64(b.Count),
			Style: gochart.Style{FillColor: color(fill), StrokeColor: color(fill)},
		}
		values[i] = float64(b.Count)
	}
	return barChart(width, height, bars, values, l)
}

func barChart(width, height int, bars []gochart.Value, values []float64, l chart.Layout) (renderable, error) {
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	slot := (width - l.Margin.L - l.Margin.R - 60) / len(bars)
	barWidth := max(1, slot*2/3)
	spacing := max(1, slot-barWidth)

	y := yAxis(l)
	y.Range = span(values, true)
	return gochart.BarChart{
		Title:      l.Title.Text,
		TitleStyle: titleStyle(l),
		Width:      width,
		Height:     height,
		Background: backgroundStyle(l),
		Canvas:     canvasStyle(l),
		XAxis:      axisStyle(l.XAxis),
		YAxis:      y,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Bars:       bars,
	}, nil
}

func pieFigure(width, height int, s chart.Series, l chart.Layout) (renderable, error) {
	values := make([]gochart.Value, 0, len(s.Labels))
	total := 0.0
	for i, label := range s.Labels {
		v := s.Values[i]
		if v <= 0 || !chart.Finite(v) {
			continue
		}
		total += v
		fill := chart.SeriesColor(l.Colorway, i)
		values = append(values, gochart.Value{
			Label: label,
			Value: v,
			Style: gochart.Style{
				FillColor:   color(fill),
				StrokeColor: color(l.PaperBG),
				FontColor:   color(l.Font.Color),
			},
		})
	}
	if total == 0 || !chart.Finite(total) {
		return nil, ErrNoData
	}
	return gochart.PieChart{
		Title:      l.Title.Text,
		TitleStyle: titleStyle(l),
		Width:      width,
		Height:     height,
		Background: backgroundStyle(l),
		Canvas:     canvasStyle(l),
		Values:     values,
	}, nil
}

// xyFigure draws line and scatter series on a continuous plane. A
// non-numeric x column is laid out by row index with the values as ticks.
func xyFigure(width, height int, series []chart.Series, l chart.Layout) (renderable, error) {
	var (
		all     []gochart.Series
		xs, ys  []float64
		ticks   []gochart.Tick
		legends bool
	)
	for si, s := range series {
		px, py, idx, labels := points(s)
		if len(px) == 0 {
			continue
		}
		if labels != nil && ticks == nil {
			for i, x := range px {
				ticks = append(ticks, gochart.Tick{Value: x, Label: labels[i]})
			}
		}
		xs = append(xs, px...)
		ys = append(ys, py...)

		if s.Type == chart.KindScatter && s.Marker != nil && len(s.Marker.ColorKeys) > 0 {
			all = append(all, scatterByKey(s, px, py, idx, l)...)
			legends = true
			continue
		}
		all = append(all, continuous(s, si, px, py, idx, l))
	}
	if len(all) == 0 {
		return nil, ErrNoData
	}

	x := xAxis(l)
	x.Range = span(xs, false)
	x.Ticks = ticks
	y := yAxis(l)
	y.Range = span(ys, false)

	c := &gochart.Chart{
		Title:      l.Title.Text,
		TitleStyle: titleStyle(l),
		Width:      width,
		Height:     height,
		Background: backgroundStyle(l),
		Canvas:     canvasStyle(l),
		XAxis:      x,
		YAxis:      y,
		Series:     all,
	}
	if legends && l.ShowLegend {
		c.Elements = []gochart.Renderable{gochart.Legend(c, gochart.Style{
			FillColor: color(l.Legend.BG),
			FontColor: color(l.Legend.Font.Color),
		})}
	}
	return c, nil
}

func continuous(s chart.Series, si int, px, py []float64, idx []int, l chart.Layout) gochart.ContinuousSeries {
	base := chart.SeriesColor(l.Colorway, si)
	if s.Marker != nil && s.Marker.Color != "" {
		base = s.Marker.Color
	}
	style := gochart.Style{
		StrokeColor: color(base),
		DotColor:    color(base),
	}

	if s.Type == chart.KindLine {
		style.StrokeWidth = 2
		if s.Line != nil {
			style.StrokeWidth = s.Line.Width
			if s.Line.Color != "" {
				style.StrokeColor = color(s.Line.Color)
			}
		}
		if s.Marker != nil {
			style.DotWidth = s.Marker.Size
		}
		return gochart.ContinuousSeries{Name: s.Name, Style: style, XValues: px, YValues: py}
	}

	m := s.Marker
	if m == nil {
		m = &chart.Marker{Size: 6}
	}
	style.StrokeWidth = gochart.Disabled
	style.DotWidth = m.Size
	if m.Opacity > 0 {
		style.DotColor = style.DotColor.WithAlpha(uint8(m.Opacity * 255))
	}
	if len(m.Colors) > 0 {
		colors := pointColors(m, l.Colorway, len(s.X))
		style.DotColorProvider = func(_, _ gochart.Range, i int, _, _ float64) drawing.Color {
			return color(colors[idx[i]])
		}
	}
	if len(m.Sizes) > 0 {
		sizes := m.Sizes
		style.DotWidthProvider = func(_, _ gochart.Range, i int, _, _ float64) float64 {
			return sizes[idx[i]]
		}
	}
	return gochart.ContinuousSeries{Name: s.Name, Style: style, XValues: px, YValues: py}
}

// scatterByKey splits a categorical scatter into one series per key so the
// legend names every category
func scatterByKey(s chart.Series, px, py []float64, idx []int, l chart.Layout) []gochart.Series {
	colors := chart.KeyColors(s.Marker.ColorKeys, l.Colorway)
	var order []string
	groups := make(map[string]*gochart.ContinuousSeries)
	for i := range px {
		row := idx[i]
		key := s.Marker.ColorKeys[row]
		g, ok := groups[key]
		if !ok {
			g = &gochart.ContinuousSeries{
				Name: key,
				Style: gochart.Style{
					StrokeWidth: gochart.Disabled,
					DotWidth:    s.Marker.Size,
					DotColor:    color(colors[row]),
				},
			}
			groups[key] = g
			order = append(order, key)
		}
		g.XValues = append(g.XValues, px[i])
		g.YValues = append(g.YValues, py[i])
	}
	out := make([]gochart.Series, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	return out
}

// points extracts the drawable (x, y) pairs of s. idx maps each pair back
// to its row; labels is non-nil when x had to be replaced by row index.
func points(s chart.Series) (px, py []float64, idx []int, labels []string) {
	categorical := false
	for _, x := range s.X {
		if _, ok := x.Float(); !ok && !x.IsNull() {
			categorical = true
			break
		}
	}
	for i := range s.X {
		y, ok := chart.FiniteFloat(s.Y[i])
		if !ok {
			continue
		}
		x, ok := xPosition(s.X[i], i, categorical)
		if !ok {
			continue
		}
		px = append(px, x)
		py = append(py, y)
		idx = append(idx, i)
		if categorical {
			labels = append(labels, s.X[i].String())
		}
	}
	return px, py, idx, labels
}

func xPosition(v table.Value, row int, categorical bool) (float64, bool) {
	if categorical {
		return float64(row), true
	}
	return chart.FiniteFloat(v)
}
