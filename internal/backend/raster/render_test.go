package raster

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/control-theory/plotdeck/internal/adapter"
	"github.com/control-theory/plotdeck/internal/chart"
	"github.com/control-theory/plotdeck/internal/table"
	"github.com/control-theory/plotdeck/internal/theme"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sample() table.Table {
	return table.FromMaps([]map[string]any{
		{"region": "north", "sales": 12, "units": 40, "tier": "a"},
		{"region": "south", "sales": 7, "units": 90, "tier": "b"},
		{"region": "east", "sales": 15, "units": 10, "tier": "a"},
		{"region": "north", "sales": 9, "units": 55, "tier": "b"},
	})
}

func figureFor(t *testing.T, opts chart.Options) ([]chart.Series, chart.Layout) {
	t.Helper()
	series, err := chart.Build(sample(), opts)
	require.NoError(t, err)
	return series, chart.LayoutFor(theme.Dark, opts)
}

func TestRenderEveryKindAsPNG(t *testing.T) {
	cases := map[string]chart.Options{
		"bar":               chart.BarOptions{X: "region", Y: "sales", Title: "Sales"},
		"bar by field":      chart.BarOptions{X: "region", Y: "sales", Color: "units"},
		"line":              chart.LineOptions{X: "units", Y: "sales"},
		"line categorical":  chart.LineOptions{X: "region", Y: "sales"},
		"pie":               chart.PieOptions{X: "region", Values: "sales"},
		"scatter":           chart.ScatterOptions{X: "units", Y: "sales", Size: "units", Color: "sales"},
		"scatter by key":    chart.ScatterOptions{X: "units", Y: "sales", Color: "tier"},
		"box":               chart.BoxOptions{X: "tier", Y: "sales"},
		"histogram":         chart.HistogramOptions{X: "units"},
		"heatmap":           chart.HeatmapOptions{Matrix: [][]float64{{1, 2}, {3, 4}}, XLabels: []string{"a", "b"}, YLabels: []string{"r1", "r2"}},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			series, layout := figureFor(t, opts)
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, "png", 640, 400, series, layout))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}
}

func TestRenderNonFiniteValuesAsPNG(t *testing.T) {
	tbl := table.FromMaps([]map[string]any{
		{"region": "north", "v": 1, "w": 2, "tier": "a"},
		{"region": "south", "v": "inf", "w": math.Inf(1), "tier": "b"},
		{"region": "east", "v": 3, "w": "-inf", "tier": "a"},
		{"region": "west", "v": math.NaN(), "w": 5, "tier": "b"},
		{"region": "mid", "v": 4, "w": 6, "tier": "b"},
		{"region": "low", "v": 2, "w": 1, "tier": "a"},
	})
	cases := map[string]chart.Options{
		"histogram":   chart.HistogramOptions{X: "v"},
		"box grouped": chart.BoxOptions{X: "tier", Y: "v"},
		"box":         chart.BoxOptions{Y: "w"},
		"bar":         chart.BarOptions{X: "region", Y: "v", Color: "w"},
		"pie":         chart.PieOptions{X: "region", Values: "v"},
		"line":        chart.LineOptions{X: "w", Y: "v"},
		"scatter":     chart.ScatterOptions{X: "w", Y: "v", Size: "w", Color: "v"},
		"heatmap": chart.HeatmapOptions{Matrix: [][]float64{
			{1, math.Inf(1)},
			{math.NaN(), math.Inf(-1)},
		}},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			series, err := chart.Build(tbl, opts)
			require.NoError(t, err)
			var buf bytes.Buffer
			require.NotPanics(t, func() {
				err = Render(&buf, "png", 640, 400, series, chart.LayoutFor(theme.Dark, opts))
			})
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}
}

func TestRenderSVG(t *testing.T) {
	series, layout := figureFor(t, chart.BarOptions{X: "region", Y: "sales"})
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "svg", 640, 400, series, layout))
	assert.Contains(t, buf.String(), "<svg")
}

func TestRenderErrors(t *testing.T) {
	series, layout := figureFor(t, chart.BarOptions{X: "region", Y: "sales"})

	err := Render(&bytes.Buffer{}, "gif", 640, 400, series, layout)
	assert.Error(t, err)

	err = Render(&bytes.Buffer{}, "png", 640, 400, nil, layout)
	assert.ErrorIs(t, err, ErrNoSeries)

	empty, err := chart.Build(table.Table{}, chart.BarOptions{X: "region", Y: "sales"})
	require.NoError(t, err)
	err = Render(&bytes.Buffer{}, "png", 640, 400, empty, layout)
	assert.ErrorIs(t, err, ErrNoData)

	infinite := []chart.Series{{Type: chart.KindHistogram, X: []table.Value{table.String("inf"), table.Number(math.Inf(1))}}}
	err = Render(&bytes.Buffer{}, "png", 640, 400, infinite, layout)
	assert.ErrorIs(t, err, ErrNoData)

	hist := []chart.Series{{Type: chart.KindHistogram, X: []table.Value{table.String("n/a")}}}
	err = Render(&bytes.Buffer{}, "png", 640, 400, hist, layout)
	assert.ErrorIs(t, err, ErrNoData)

	radar := []chart.Series{{Type: chart.Kind("radar"), Y: []table.Value{table.Number(1)}}}
	err = Render(&bytes.Buffer{}, "png", 640, 400, radar, layout)
	assert.ErrorIs(t, err, chart.ErrUnsupported)
}

func TestBackendDrawRestylePurge(t *testing.T) {
	b := New(t.TempDir())
	ctx := context.Background()
	series, layout := figureFor(t, chart.BarOptions{X: "region", Y: "sales"})

	require.NoError(t, adapter.Wait(ctx, b.Draw(ctx, "c1", series, layout, chart.DefaultConfig())))
	dark, ok := b.Preview("c1")
	require.True(t, ok)
	assert.True(t, bytes.HasPrefix(dark, pngMagic))

	require.NoError(t, adapter.Wait(ctx, b.Restyle(ctx, "c1", layout.Restyle(theme.Light))))
	light, ok := b.Preview("c1")
	require.True(t, ok)
	assert.NotEqual(t, dark, light)

	require.NoError(t, b.Purge("c1"))
	_, ok = b.Preview("c1")
	assert.False(t, ok)
	assert.Error(t, adapter.Wait(ctx, b.Restyle(ctx, "c1", layout)))
	assert.NoError(t, b.Purge("c1"))
}

func TestBackendFailedDrawForgetsFigure(t *testing.T) {
	b := New(t.TempDir())
	ctx := context.Background()
	bad := []chart.Series{{Type: chart.KindPie, Labels: []string{"a"}, Values: []float64{0}}}

	err := adapter.Wait(ctx, b.Draw(ctx, "c1", bad, chart.BuildLayout(theme.Dark, ""), chart.DefaultConfig()))
	assert.ErrorIs(t, err, ErrNoData)
	_, ok := b.Preview("c1")
	assert.False(t, ok)
}

func TestAdapterExportsThroughBackend(t *testing.T) {
	dir := t.TempDir()
	surface := NewSurface("sales", "mix")
	a := adapter.New(New(dir), surface)
	ctx := context.Background()

	_, err := a.CreateChart(ctx, "sales", sample(), chart.BarOptions{X: "region", Y: "sales"})
	require.NoError(t, err)
	_, err = a.CreateChart(ctx, "mix", sample(), chart.PieOptions{X: "tier"})
	require.NoError(t, err)
	a.Wait()

	require.NoError(t, a.ExportAll(ctx, "png", 2))
	a.Wait()

	for _, name := range []string{"sales.png", "mix.png"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.True(t, bytes.HasPrefix(data, pngMagic), name)
	}
	assert.Empty(t, surface.Errors())
}
