package chart

import (
	"cmp"
	"fmt"
	"strings"
)

// Kind is a chart kind
type Kind string

const (
	KindBar       Kind = "bar"
	KindLine      Kind = "line"
	KindPie       Kind = "pie"
	KindScatter   Kind = "scatter"
	KindBox       Kind = "box"
	KindHistogram Kind = "histogram"
	KindHeatmap   Kind = "heatmap"
)

// Kinds lists every supported kind
var Kinds = []Kind{KindBar, KindLine, KindPie, KindScatter, KindBox, KindHistogram, KindHeatmap}

// ParseKind validates a kind string
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", &ErrUnsupportedChartKind{Kind: s}
}

// Options is the per-kind chart configuration. The concrete types below are
// the only implementations.
type Options interface {
	Kind() Kind
	ChartTitle() string
	// AxisTitles returns the field names shown as axis titles
	AxisTitles() (x, y string)
	validate() error
}

// BarOptions draws one bar per row
type BarOptions struct {
	X, Y  string
	Color string // field name or literal color
	Title string
}

// LineOptions draws connected points in row order
type LineOptions struct {
	X, Y  string
	Color string
	Title string
}

// PieOptions aggregates by X. Without Values the slices are counts.
type PieOptions struct {
	X      string
	Values string
	Title  string
}

// ScatterOptions draws markers; Size and Color are optional field names
// (Color may also be a literal color)
type ScatterOptions struct {
	X, Y  string
	Size  string
	Color string
	Title string
}

// BoxOptions groups Y by X when both are set, otherwise boxes one column
type BoxOptions struct {
	X, Y  string
	Title string
}

// HistogramOptions bins the raw X values
type HistogramOptions struct {
	X     string
	Title string
}

// HeatmapOptions carries a pre-built matrix; rows are Y, columns are X
type HeatmapOptions struct {
	Matrix  [][]float64
	XLabels []string
	YLabels []string
	Title   string
}

func (BarOptions) Kind() Kind       { return KindBar }
func (LineOptions) Kind() Kind      { return KindLine }
func (PieOptions) Kind() Kind       { return KindPie }
func (ScatterOptions) Kind() Kind   { return KindScatter }
func (BoxOptions) Kind() Kind       { return KindBox }
func (HistogramOptions) Kind() Kind { return KindHistogram }
func (HeatmapOptions) Kind() Kind   { return KindHeatmap }

func (o BarOptions) ChartTitle() string       { return o.Title }
func (o LineOptions) ChartTitle() string      { return o.Title }
func (o PieOptions) ChartTitle() string       { return o.Title }
func (o ScatterOptions) ChartTitle() string   { return o.Title }
func (o BoxOptions) ChartTitle() string       { return o.Title }
func (o HistogramOptions) ChartTitle() string { return o.Title }
func (o HeatmapOptions) ChartTitle() string   { return o.Title }

func (o BarOptions) AxisTitles() (string, string)       { return o.X, o.Y }
func (o LineOptions) AxisTitles() (string, string)      { return o.X, o.Y }
func (o PieOptions) AxisTitles() (string, string)       { return "", "" }
func (o ScatterOptions) AxisTitles() (string, string)   { return o.X, o.Y }
func (o BoxOptions) AxisTitles() (string, string)       { return o.X, o.Y }
func (o HistogramOptions) AxisTitles() (string, string) { return o.X, "Frequency" }
func (o HeatmapOptions) AxisTitles() (string, string)   { return "", "" }

func (o BarOptions) validate() error  { return requireXY(KindBar, o.X, o.Y) }
func (o LineOptions) validate() error { return requireXY(KindLine, o.X, o.Y) }

func (o PieOptions) validate() error {
	if o.X == "" {
		return invalid(KindPie, "x is required")
	}
	return nil
}

func (o ScatterOptions) validate() error { return requireXY(KindScatter, o.X, o.Y) }

func (o BoxOptions) validate() error {
	if o.X == "" && o.Y == "" {
		return invalid(KindBox, "x or y is required")
	}
	return nil
}

func (o HistogramOptions) validate() error {
	if o.X == "" {
		return invalid(KindHistogram, "x is required")
	}
	return nil
}

func (o HeatmapOptions) validate() error {
	if len(o.Matrix) == 0 {
		return invalid(KindHeatmap, "matrix is required")
	}
	width := len(o.Matrix[0])
	for i, row := range o.Matrix {
		if len(row) != width {
			return invalid(KindHeatmap, "matrix row %d has %d columns, want %d", i, len(row), width)
		}
	}
	if len(o.XLabels) > 0 && len(o.XLabels) != width {
		return invalid(KindHeatmap, "%d x labels for %d columns", len(o.XLabels), width)
	}
	if len(o.YLabels) > 0 && len(o.YLabels) != len(o.Matrix) {
		return invalid(KindHeatmap, "%d y labels for %d rows", len(o.YLabels), len(o.Matrix))
	}
	return nil
}

func requireXY(k Kind, x, y string) error {
	switch {
	case x == "":
		return invalid(k, "x is required")
	case y == "":
		return invalid(k, "y is required")
	}
	return nil
}

// Bag is the loosely typed options form found in dashboard files
type Bag map[string]any

// OptionsFor converts a kind string and an options bag into the typed
// options for that kind. The preset kinds distribution, trend and category
// are accepted too.
func OptionsFor(kind string, bag Bag) (Options, error) {
	title := bag.str("title")
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case PresetDistribution:
		o := Distribution(bag.str("x"))
		o.Title = cmp.Or(title, o.Title)
		return o, nil
	case PresetTrend:
		o := Trend(bag.str("x"), bag.str("y"))
		o.Title = cmp.Or(title, o.Title)
		return o, nil
	case PresetCategory:
		o := Category(bag.str("x"))
		o.Title = cmp.Or(title, o.Title)
		return o, nil
	}

	k, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}
	switch k {
	case KindBar:
		return BarOptions{X: bag.str("x"), Y: bag.str("y"), Color: bag.str("color"), Title: title}, nil
	case KindLine:
		return LineOptions{X: bag.str("x"), Y: bag.str("y"), Color: bag.str("color"), Title: title}, nil
	case KindPie:
		return PieOptions{X: bag.str("x"), Values: bag.str("values"), Title: title}, nil
	case KindScatter:
		return ScatterOptions{X: bag.str("x"), Y: bag.str("y"), Size: bag.str("size"), Color: bag.str("color"), Title: title}, nil
	case KindBox:
		return BoxOptions{X: bag.str("x"), Y: bag.str("y"), Title: title}, nil
	case KindHistogram:
		return HistogramOptions{X: bag.str("x"), Title: title}, nil
	default:
		matrix, err := bag.matrix("matrix")
		if err != nil {
			return nil, invalid(KindHeatmap, "%v", err)
		}
		return HeatmapOptions{
			Matrix:  matrix,
			XLabels: bag.strings("xLabels"),
			YLabels: bag.strings("yLabels"),
			Title:   title,
		}, nil
	}
}

func (b Bag) str(key string) string {
	v, ok := b[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (b Bag) strings(key string) []string {
	raw, ok := b[key].([]any)
	if !ok {
		if s, ok := b[key].([]string); ok {
			return append([]string(nil), s...)
		}
		return nil
	}
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func (b Bag) matrix(key string) ([][]float64, error) {
	switch m := b[key].(type) {
	case nil:
		return nil, nil
	case [][]float64:
		return m, nil
	case []any:
		out := make([][]float64, len(m))
		for i, row := range m {
			cells, ok := row.([]any)
			if !ok {
				return nil, fmt.Errorf("matrix row %d is not a list", i)
			}
			out[i] = make([]float64, len(cells))
			for j, c := range cells {
				f, ok := toFloat(c)
				if !ok {
					return nil, fmt.Errorf("matrix cell [%d][%d] is not a number", i, j)
				}
				out[i][j] = f
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("matrix must be a list of lists")
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
