package raster

import (
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/control-theory/plotdeck/internal/chart"
)

// canvas draws figures go-chart has no chart type for directly on a
// renderer: box plots and heatmaps
type canvas struct {
	width, height int
	layout        chart.Layout
	plot          func(r gochart.Renderer, area gochart.Box)
}

func (c canvas) Render(rp gochart.RendererProvider, w io.Writer) error {
	r, err := rp(c.width, c.height)
	if err != nil {
		return err
	}
	font, err := gochart.GetDefaultFont()
	if err != nil {
		return err
	}
	r.SetFont(font)

	l := c.layout
	fillRect(r, gochart.Box{Right: c.width, Bottom: c.height}, color(l.PaperBG))

	top := l.Margin.T
	if l.Title.Text != "" {
		r.SetFontSize(float64(l.Title.Font.Size))
		r.SetFontColor(color(l.Title.Font.Color))
		tb := r.MeasureText(l.Title.Text)
		r.Text(l.Title.Text, (c.width-tb.Width())/2, l.Margin.T/2+tb.Height()/2)
	}

	area := gochart.Box{
		Top:    top,
		Left:   l.Margin.L + 40,
		Right:  c.width - l.Margin.R,
		Bottom: c.height - l.Margin.B - 20,
	}
	if area.Right <= area.Left || area.Bottom <= area.Top {
		return fmt.Errorf("image %dx%d too small for the plot margins", c.width, c.height)
	}
	fillRect(r, area, color(l.PlotBG))
	c.plot(r, area)

	r.SetFontSize(float64(l.Font.Size))
	r.SetFontColor(color(l.Font.Color))
	if l.XAxis.Title != "" {
		tb := r.MeasureText(l.XAxis.Title)
		r.Text(l.XAxis.Title, area.Left+(area.Width()-tb.Width())/2, c.height-l.Margin.B/3)
	}
	if l.YAxis.Title != "" {
		r.SetTextRotation(gochart.DegreesToRadians(270))
		tb := r.MeasureText(l.YAxis.Title)
		r.Text(l.YAxis.Title, l.Margin.L/2, area.Top+(area.Height()+tb.Width())/2)
		r.ClearTextRotation()
	}
	return r.Save(w)
}

func boxFigure(width, height int, series []chart.Series, l chart.Layout) (renderable, error) {
	type group struct {
		name  string
		stats chart.BoxStats
	}
	var groups []group
	var extent []float64
	for _, s := range series {
		st, ok := chart.Summarize(chart.Numbers(s.Y))
		if !ok {
			continue
		}
		groups = append(groups, group{name: s.Name, stats: st})
		extent = append(extent, st.Min, st.Max)
	}
	if len(groups) == 0 {
		return nil, ErrNoData
	}
	yr := span(extent, false)

	return canvas{width: width, height: height, layout: l, plot: func(r gochart.Renderer, area gochart.Box) {
		scaleY := func(v float64) int {
			t := (v - yr.Min) / (yr.Max - yr.Min)
			return area.Bottom - int(t*float64(area.Height()))
		}
		yTicks(r, area, yr, scaleY, l)

		slot := area.Width() / len(groups)
		for i, g := range groups {
			fill := color(chart.SeriesColor(l.Colorway, i))
			cx := area.Left + slot*i + slot/2
			half := max(2, slot/4)

			line(r, cx, scaleY(g.stats.Min), cx, scaleY(g.stats.Q1), fill, 1)
			line(r, cx, scaleY(g.stats.Q3), cx, scaleY(g.stats.Max), fill, 1)
			line(r, cx-half/2, scaleY(g.stats.Min), cx+half/2, scaleY(g.stats.Min), fill, 1)
			line(r, cx-half/2, scaleY(g.stats.Max), cx+half/2, scaleY(g.stats.Max), fill, 1)

			box := gochart.Box{Top: scaleY(g.stats.Q3), Bottom: scaleY(g.stats.Q1), Left: cx - half, Right: cx + half}
			fillRect(r, box, fill.WithAlpha(0x80))
			line(r, box.Left, scaleY(g.stats.Median), box.Right, scaleY(g.stats.Median), fill, 2)

			label(r, g.name, cx, area.Bottom+14, l.XAxis.Font)
		}
	}}, nil
}

func heatmapFigure(width, height int, s chart.Series, l chart.Layout) (renderable, error) {
	if len(s.Z) == 0 || len(s.Z[0]) == 0 {
		return nil, ErrNoData
	}
	lo, hi := chart.Extent(s.Z)

	return canvas{width: width, height: height, layout: l, plot: func(r gochart.Renderer, area gochart.Box) {
		rows, cols := len(s.Z), len(s.Z[0])
		cw := float64(area.Width()) / float64(cols)
		ch := float64(area.Height()) / float64(rows)
		for ri, row := range s.Z {
			// row 0 at the bottom, like a cartesian y axis
			bottom := area.Bottom - int(float64(ri)*ch)
			top := area.Bottom - int(float64(ri+1)*ch)
			for ci, v := range row {
				cell := gochart.Box{
					Top:    top,
					Bottom: bottom,
					Left:   area.Left + int(float64(ci)*cw),
					Right:  area.Left + int(float64(ci+1)*cw),
				}
				fillRect(r, cell, color(chart.ScaleColor(v, lo, hi)))
			}
			if ri < len(s.YLabels) {
				label(r, s.YLabels[ri], area.Left-24, (top+bottom)/2, l.YAxis.Font)
			}
		}
		for ci := 0; ci < cols && ci < len(s.XLabels); ci++ {
			x := area.Left + int((float64(ci)+0.5)*cw)
			label(r, s.XLabels[ci], x, area.Bottom+14, l.XAxis.Font)
		}
	}}, nil
}

func yTicks(r gochart.Renderer, area gochart.Box, yr *gochart.ContinuousRange, scale func(float64) int, l chart.Layout) {
	const n = 5
	grid := color(l.YAxis.GridColor)
	for i := 0; i <= n; i++ {
		v := yr.Min + (yr.Max-yr.Min)*float64(i)/n
		y := scale(v)
		line(r, area.Left, y, area.Right, y, grid, 1)
		label(r, fmt.Sprintf("%.4g", v), area.Left-24, y, l.YAxis.Font)
	}
	line(r, area.Left, area.Top, area.Left, area.Bottom, color(l.YAxis.LineColor), 1)
}

func fillRect(r gochart.Renderer, b gochart.Box, c drawing.Color) {
	r.SetFillColor(c)
	r.SetStrokeWidth(0)
	r.MoveTo(b.Left, b.Top)
	r.LineTo(b.Right, b.Top)
	r.LineTo(b.Right, b.Bottom)
	r.LineTo(b.Left, b.Bottom)
	r.Close()
	r.Fill()
}

func line(r gochart.Renderer, x1, y1, x2, y2 int, c drawing.Color, width float64) {
	r.SetStrokeColor(c)
	r.SetStrokeWidth(width)
	r.MoveTo(x1, y1)
	r.LineTo(x2, y2)
	r.Stroke()
}

// label draws text centered on (x, y)
func label(r gochart.Renderer, text string, x, y int, f chart.Font) {
	r.SetFontSize(float64(f.Size))
	r.SetFontColor(color(f.Color))
	tb := r.MeasureText(text)
	r.Text(text, x-tb.Width()/2, y+tb.Height()/2)
}
