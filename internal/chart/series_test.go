package chart

import (
	"errors"
	"testing"

	"github.com/control-theory/plotdeck/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(records ...map[string]any) table.Table {
	return table.FromMaps(records)
}

func strs(vs ...string) []table.Value {
	out := make([]table.Value, len(vs))
	for i, v := range vs {
		out[i] = table.String(v)
	}
	return out
}

func nums(vs ...float64) []table.Value {
	out := make([]table.Value, len(vs))
	for i, v := range vs {
		out[i] = table.Number(v)
	}
	return out
}

func TestBuildBar(t *testing.T) {
	tbl := rows(map[string]any{"a": "x", "b": 3}, map[string]any{"a": "y", "b": 5})

	series, err := Build(tbl, BarOptions{X: "a", Y: "b"})
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, KindBar, series[0].Type)
	assert.Equal(t, strs("x", "y"), series[0].X)
	assert.Equal(t, nums(3, 5), series[0].Y)
	assert.Nil(t, series[0].Marker)
}

func TestBuildBarKeepsDuplicates(t *testing.T) {
	tbl := rows(
		map[string]any{"a": "x", "b": 1},
		map[string]any{"a": "x", "b": 2},
	)
	series, err := Build(tbl, BarOptions{X: "a", Y: "b"})
	require.NoError(t, err)
	assert.Equal(t, strs("x", "x"), series[0].X)
	assert.Equal(t, nums(1, 2), series[0].Y)
}

func TestBuildLineKeepsRowOrder(t *testing.T) {
	tbl := rows(
		map[string]any{"t": 3, "v": 30},
		map[string]any{"t": 1, "v": 10},
		map[string]any{"t": 2, "v": 20},
	)
	series, err := Build(tbl, LineOptions{X: "t", Y: "v", Color: "#ff0000"})
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, nums(3, 1, 2), series[0].X)
	assert.Equal(t, "lines+markers", series[0].Mode)
	assert.Equal(t, "#ff0000", series[0].Line.Color)
}

func TestBuildPieCounts(t *testing.T) {
	tbl := rows(map[string]any{"cat": "p"}, map[string]any{"cat": "p"}, map[string]any{"cat": "q"})

	series, err := Build(tbl, PieOptions{X: "cat"})
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, []string{"p", "q"}, series[0].Labels)
	assert.Equal(t, []float64{2, 1}, series[0].Values)

	total := 0.0
	for _, v := range series[0].Values {
		assert.GreaterOrEqual(t, v, 1.0)
		total += v
	}
	assert.Equal(t, float64(len(tbl)), total)
}

func TestBuildPieValuesLastRowWins(t *testing.T) {
	tbl := rows(
		map[string]any{"k": "a", "n": 1},
		map[string]any{"k": "b", "n": 7},
		map[string]any{"k": "a", "n": 4},
	)
	series, err := Build(tbl, PieOptions{X: "k", Values: "n"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, series[0].Labels)
	assert.Equal(t, []float64{4, 7}, series[0].Values)
}

func TestBuildScatterSizesAndColors(t *testing.T) {
	tbl := rows(
		map[string]any{"x": 1, "y": 2, "s": 10, "c": 0},
		map[string]any{"x": 2, "y": 3, "s": 120, "c": 5},
		map[string]any{"x": 3, "y": 4, "s": 300, "c": nil},
	)
	series, err := Build(tbl, ScatterOptions{X: "x", Y: "y", Size: "s", Color: "c"})
	require.NoError(t, err)
	m := series[0].Marker
	require.NotNil(t, m)
	assert.Equal(t, []float64{5, 12, 20}, m.Sizes)
	assert.Equal(t, ScaleViridis, m.ColorScale)
	assert.True(t, m.ShowScale)
	require.Len(t, m.Colors, 3)
	assert.Equal(t, 5.0, m.Colors[1])
	assert.Equal(t, "markers", series[0].Mode)
}

func TestBuildScatterLiteralColor(t *testing.T) {
	tbl := rows(map[string]any{"x": 1, "y": 2})
	series, err := Build(tbl, ScatterOptions{X: "x", Y: "y", Color: "#abc"})
	require.NoError(t, err)
	assert.Equal(t, "#abc", series[0].Marker.Color)
	assert.Empty(t, series[0].Marker.Colors)
	assert.Empty(t, series[0].Marker.Sizes)
}

func TestBuildScatterCategoricalColor(t *testing.T) {
	tbl := rows(
		map[string]any{"x": 1, "y": 2, "region": "north"},
		map[string]any{"x": 2, "y": 1, "region": "south"},
	)
	series, err := Build(tbl, ScatterOptions{X: "x", Y: "y", Color: "region"})
	require.NoError(t, err)
	assert.Equal(t, []string{"north", "south"}, series[0].Marker.ColorKeys)
	assert.Empty(t, series[0].Marker.ColorScale)
}

func TestBuildBoxGroups(t *testing.T) {
	tbl := rows(
		map[string]any{"g": "b", "v": 1},
		map[string]any{"g": "a", "v": 2},
		map[string]any{"g": "b", "v": 3},
	)
	series, err := Build(tbl, BoxOptions{X: "g", Y: "v"})
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "b", series[0].Name)
	assert.Equal(t, nums(1, 3), series[0].Y)
	assert.Equal(t, "a", series[1].Name)
	assert.Equal(t, nums(2), series[1].Y)
}

func TestBuildBoxSingleColumn(t *testing.T) {
	tbl := rows(map[string]any{"v": 1}, map[string]any{"v": 2})
	for _, opts := range []BoxOptions{{Y: "v"}, {X: "v"}} {
		series, err := Build(tbl, opts)
		require.NoError(t, err)
		require.Len(t, series, 1)
		assert.Equal(t, "v", series[0].Name)
		assert.Equal(t, nums(1, 2), series[0].Y)
	}
}

func TestBuildHistogram(t *testing.T) {
	tbl := rows(map[string]any{"v": 2}, map[string]any{"v": 9}, map[string]any{"v": 2})
	series, err := Build(tbl, HistogramOptions{X: "v"})
	require.NoError(t, err)
	assert.Equal(t, nums(2, 9, 2), series[0].X)
}

func TestBuildHeatmapPassesThrough(t *testing.T) {
	opts := HeatmapOptions{
		Matrix:  [][]float64{{1, 2}, {3, 4}},
		XLabels: []string{"a", "b"},
		YLabels: []string{"r1", "r2"},
	}
	series, err := Build(nil, opts)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, opts.Matrix, series[0].Z)
	assert.Equal(t, opts.XLabels, series[0].XLabels)

	// the series owns its matrix
	opts.Matrix[0][0] = 99
	assert.Equal(t, 1.0, series[0].Z[0][0])
}

func TestBuildHeatmapRagged(t *testing.T) {
	_, err := Build(nil, HeatmapOptions{Matrix: [][]float64{{1, 2}, {3}}})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestBuildMissingField(t *testing.T) {
	tbl := rows(map[string]any{"a": "x", "b": 1}, map[string]any{"a": "y"})

	_, err := Build(tbl, BarOptions{X: "a", Y: "b"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissing)

	var mf *ErrMissingField
	require.True(t, errors.As(err, &mf))
	assert.Equal(t, "b", mf.Field)
	assert.Equal(t, 1, mf.Row)
}

func TestBuildEmptyTable(t *testing.T) {
	tests := []struct {
		opts   Options
		series int
	}{
		{BarOptions{X: "a", Y: "b"}, 1},
		{LineOptions{X: "a", Y: "b"}, 1},
		{PieOptions{X: "cat"}, 1},
		{ScatterOptions{X: "a", Y: "b", Color: "c"}, 1},
		{BoxOptions{Y: "b"}, 1},
		{BoxOptions{X: "a", Y: "b"}, 0},
		{HistogramOptions{X: "a"}, 1},
	}
	for _, tt := range tests {
		series, err := Build(table.Table{}, tt.opts)
		require.NoError(t, err, tt.opts.Kind())
		require.Len(t, series, tt.series, tt.opts.Kind())
		for _, s := range series {
			assert.Zero(t, s.Points(), tt.opts.Kind())
		}
	}

	series, err := Build(nil, PieOptions{X: "cat"})
	require.NoError(t, err)
	assert.Empty(t, series[0].Labels)
	assert.Empty(t, series[0].Values)
}

func TestBuildPieSkipsUnusableValues(t *testing.T) {
	tbl := rows(
		map[string]any{"k": "a", "n": 3},
		map[string]any{"k": "b", "n": "n/a"},
		map[string]any{"k": "c", "n": nil},
		map[string]any{"k": nil, "n": 2},
		map[string]any{"k": "a", "n": "inf"},
	)
	series, err := Build(tbl, PieOptions{X: "k", Values: "n"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", NullLabel}, series[0].Labels)
	assert.Equal(t, []float64{3, 2}, series[0].Values)
}

func TestBuildNullKeysAreLabelled(t *testing.T) {
	tbl := rows(
		map[string]any{"g": nil, "v": 1},
		map[string]any{"g": "a", "v": 2},
	)
	pie, err := Build(tbl, PieOptions{X: "g"})
	require.NoError(t, err)
	assert.Equal(t, []string{NullLabel, "a"}, pie[0].Labels)

	box, err := Build(tbl, BoxOptions{X: "g", Y: "v"})
	require.NoError(t, err)
	assert.Equal(t, NullLabel, box[0].Name)

	scatter, err := Build(tbl, ScatterOptions{X: "v", Y: "v", Color: "g"})
	require.NoError(t, err)
	assert.Equal(t, []string{NullLabel, "a"}, scatter[0].Marker.ColorKeys)
}

func TestBuildRequiresOptions(t *testing.T) {
	tbl := rows(map[string]any{"a": 1})
	_, err := Build(tbl, BarOptions{X: "a"})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = Build(tbl, BoxOptions{})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestBuildPreservesRowOrder(t *testing.T) {
	tbl := rows(
		map[string]any{"x": "c", "y": 1},
		map[string]any{"x": "a", "y": 2},
		map[string]any{"x": "b", "y": 3},
	)
	for _, opts := range []Options{
		BarOptions{X: "x", Y: "y"},
		LineOptions{X: "x", Y: "y"},
		ScatterOptions{X: "x", Y: "y"},
	} {
		series, err := Build(tbl, opts)
		require.NoError(t, err, opts.Kind())
		assert.Equal(t, strs("c", "a", "b"), series[0].X, opts.Kind())
		assert.Equal(t, nums(1, 2, 3), series[0].Y, opts.Kind())
	}
}
