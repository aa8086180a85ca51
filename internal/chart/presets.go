package chart

import (
	"fmt"
	"math"
	"sort"

	"github.com/control-theory/plotdeck/internal/table"
)

// Preset kinds accepted by OptionsFor. Each maps onto a plain kind with a
// generated title.
const (
	PresetDistribution = "distribution"
	PresetTrend        = "trend"
	PresetCategory     = "category"
)

// CorrelationTitle is the title of correlation heatmaps
const CorrelationTitle = "Correlation Matrix"

// AutoLimit is the most charts Auto proposes for one table
const AutoLimit = 4

// Distribution is a histogram of column
func Distribution(column string) HistogramOptions {
	return HistogramOptions{X: column, Title: "Distribution of " + column}
}

// Trend is a line of y over x
func Trend(x, y string) LineOptions {
	return LineOptions{X: x, Y: y, Title: fmt.Sprintf("%s Trend over %s", y, x)}
}

// Category is a pie of the row counts per value of column
func Category(column string) PieOptions {
	return PieOptions{X: column, Title: "Distribution of " + column}
}

// Correlation lays a correlation map out as a square heatmap over its sorted
// outer keys. Missing and NaN cells are 0.
func Correlation(m map[string]map[string]float64) HeatmapOptions {
	labels := make([]string, 0, len(m))
	for k := range m {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	matrix := make([][]float64, len(labels))
	for i, row := range labels {
		matrix[i] = make([]float64, len(labels))
		for j, col := range labels {
			if v, ok := m[row][col]; ok && !math.IsNaN(v) {
				matrix[i][j] = v
			}
		}
	}
	return HeatmapOptions{
		Matrix:  matrix,
		XLabels: labels,
		YLabels: append([]string(nil), labels...),
		Title:   CorrelationTitle,
	}
}

// CorrelationOf computes pairwise Pearson coefficients of columns over the
// rows where both values are finite numbers. Pairs without variance are NaN.
func CorrelationOf(tbl table.Table, columns []string) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(columns))
	for _, a := range columns {
		out[a] = make(map[string]float64, len(columns))
		for _, b := range columns {
			out[a][b] = pearson(tbl, a, b)
		}
	}
	return out
}

func pearson(tbl table.Table, a, b string) float64 {
	var xs, ys []float64
	for i := range tbl {
		av, okA := tbl.Lookup(i, a)
		bv, okB := tbl.Lookup(i, b)
		if !okA || !okB {
			continue
		}
		x, okX := FiniteFloat(av)
		y, okY := FiniteFloat(bv)
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}

	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(len(xs))
	my /= float64(len(ys))

	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	return sxy / math.Sqrt(sxx*syy)
}

// Columns splits the fields of tbl into numeric and categorical ones, in
// field order. A field is numeric when every non-null value is a number;
// fields holding only nulls are in neither list.
func Columns(tbl table.Table) (numeric, categorical []string) {
	for _, f := range tbl.Fields() {
		present, isNumeric := false, true
		for i := range tbl {
			v, ok := tbl.Lookup(i, f)
			if !ok || v.IsNull() {
				continue
			}
			present = true
			if _, ok := v.Float(); !ok {
				isNumeric = false
			}
		}
		switch {
		case !present:
		case isNumeric:
			numeric = append(numeric, f)
		default:
			categorical = append(categorical, f)
		}
	}
	return numeric, categorical
}

// Auto proposes up to AutoLimit charts for tbl: the distribution of the
// first numeric column, the categories of the first categorical column, the
// first two numeric columns against each other and the first numeric column
// by the first categorical one.
func Auto(tbl table.Table) []Options {
	numeric, categorical := Columns(tbl)
	var out []Options
	if len(numeric) > 0 {
		out = append(out, Distribution(numeric[0]))
	}
	if len(categorical) > 0 {
		out = append(out, Category(categorical[0]))
	}
	if len(numeric) >= 2 {
		out = append(out, ScatterOptions{
			X:     numeric[0],
			Y:     numeric[1],
			Title: fmt.Sprintf("%s vs %s", numeric[0], numeric[1]),
		})
	}
	if len(numeric) > 0 && len(categorical) > 0 {
		out = append(out, BarOptions{
			X:     categorical[0],
			Y:     numeric[0],
			Title: fmt.Sprintf("%s by %s", numeric[0], categorical[0]),
		})
	}
	if len(out) > AutoLimit {
		out = out[:AutoLimit]
	}
	return out
}
