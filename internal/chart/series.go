package chart

import (
	"math"

	"github.com/control-theory/plotdeck/internal/table"
)

// Scatter marker sizes are the size field divided by sizeDivisor, clamped
// into [MinMarkerSize, MaxMarkerSize].
const (
	MinMarkerSize = 5.0
	MaxMarkerSize = 20.0
	sizeDivisor   = 10.0
)

// Series is one abstract trace. Field names follow the plotly trace schema
// so a Series can be handed to a web renderer unchanged.
type Series struct {
	Type Kind   `json:"type"`
	Name string `json:"name,omitempty"`

	X []table.Value `json:"x,omitempty"`
	Y []table.Value `json:"y,omitempty"`

	// pie
	Labels []string  `json:"labels,omitempty"`
	Values []float64 `json:"values,omitempty"`
	Hole   float64   `json:"hole,omitempty"`

	// heatmap
	Z          [][]float64 `json:"z,omitempty"`
	XLabels    []string    `json:"-"`
	YLabels    []string    `json:"-"`
	ColorScale string      `json:"colorscale,omitempty"`

	Mode   string  `json:"mode,omitempty"`
	Marker *Marker `json:"marker,omitempty"`
	Line   *Line   `json:"line,omitempty"`
}

// Marker styles points, bars and slices
type Marker struct {
	// Color is a fixed color; empty means "use the layout colorway"
	Color string `json:"color,omitempty"`
	// Colors are per-point values mapped through ColorScale
	Colors     []float64 `json:"-"`
	ColorScale string    `json:"colorscale,omitempty"`
	ShowScale  bool      `json:"showscale,omitempty"`
	// ColorKeys are per-point categories, colored from the colorway in
	// first-seen order
	ColorKeys []string `json:"-"`

	Size    float64   `json:"-"`
	Sizes   []float64 `json:"-"`
	Opacity float64   `json:"opacity,omitempty"`
}

// Line styles connected series
type Line struct {
	Width float64 `json:"width"`
	Color string  `json:"color,omitempty"`
}

// Points returns the number of data points carried by the series
func (s Series) Points() int {
	switch {
	case len(s.Z) > 0:
		return len(s.Z) * len(s.Z[0])
	case len(s.Values) > 0:
		return len(s.Values)
	case len(s.Y) > 0:
		return len(s.Y)
	default:
		return len(s.X)
	}
}

// Drawable reports whether any of series carries a data point
func Drawable(series []Series) bool {
	for _, s := range series {
		if s.Points() > 0 {
			return true
		}
	}
	return false
}

// Build turns a table into series for the kind named by opts. It is pure:
// the table is only read. An empty table yields empty series.
func Build(tbl table.Table, opts Options) ([]Series, error) {
	if opts == nil {
		return nil, &ErrUnsupportedChartKind{Kind: ""}
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	switch o := opts.(type) {
	case BarOptions:
		return buildBar(tbl, o)
	case LineOptions:
		return buildLine(tbl, o)
	case PieOptions:
		return buildPie(tbl, o)
	case ScatterOptions:
		return buildScatter(tbl, o)
	case BoxOptions:
		return buildBox(tbl, o)
	case HistogramOptions:
		return buildHistogram(tbl, o)
	case HeatmapOptions:
		return buildHeatmap(o), nil
	default:
		return nil, &ErrUnsupportedChartKind{Kind: string(opts.Kind())}
	}
}

func buildBar(tbl table.Table, o BarOptions) ([]Series, error) {
	x, y, err := columns(tbl, o.X, o.Y)
	if err != nil {
		return nil, err
	}
	marker, err := colorMarker(tbl, o.Color)
	if err != nil {
		return nil, err
	}
	return []Series{{Type: KindBar, Name: o.Y, X: x, Y: y, Marker: marker}}, nil
}

func buildLine(tbl table.Table, o LineOptions) ([]Series, error) {
	// Row order is kept; callers pre-sort when they need chronological order.
	x, y, err := columns(tbl, o.X, o.Y)
	if err != nil {
		return nil, err
	}
	marker := &Marker{Size: 4}
	line := &Line{Width: 2}
	if IsColorLiteral(o.Color) {
		marker.Color = o.Color
		line.Color = o.Color
	}
	return []Series{{
		Type:   KindLine,
		Name:   o.Y,
		X:      x,
		Y:      y,
		Mode:   "lines+markers",
		Marker: marker,
		Line:   line,
	}}, nil
}

func buildPie(tbl table.Table, o PieOptions) ([]Series, error) {
	var labels []string
	index := make(map[string]int)
	var values []float64

	for i := range tbl {
		key, err := field(tbl, i, o.X)
		if err != nil {
			return nil, err
		}

		// Rows without a usable value are skipped.
		var f float64
		if o.Values != "" {
			v, err := field(tbl, i, o.Values)
			if err != nil {
				return nil, err
			}
			var ok bool
			if f, ok = FiniteFloat(v); !ok {
				continue
			}
		}

		k := label(key)
		pos, seen := index[k]
		if !seen {
			pos = len(labels)
			index[k] = pos
			labels = append(labels, k)
			values = append(values, 0)
		}
		if o.Values == "" {
			values[pos]++
			continue
		}
		// Last row wins; no summation.
		values[pos] = f
	}

	name := o.Values
	if name == "" {
		name = o.X
	}
	return []Series{{
		Type:   KindPie,
		Name:   name,
		Labels: labels,
		Values: values,
		Hole:   0.3,
	}}, nil
}

func buildScatter(tbl table.Table, o ScatterOptions) ([]Series, error) {
	x, y, err := columns(tbl, o.X, o.Y)
	if err != nil {
		return nil, err
	}

	marker := &Marker{Size: 6, Opacity: 0.7}
	if o.Size != "" {
		marker.Sizes = make([]float64, len(tbl))
		for i := range tbl {
			v, err := field(tbl, i, o.Size)
			if err != nil {
				return nil, err
			}
			marker.Sizes[i] = markerSize(v)
		}
	}

	if o.Color != "" {
		cm, err := colorMarker(tbl, o.Color)
		if err != nil {
			return nil, err
		}
		marker.Color = cm.Color
		marker.Colors = cm.Colors
		marker.ColorKeys = cm.ColorKeys
		marker.ColorScale = cm.ColorScale
		marker.ShowScale = cm.ShowScale
	}

	return []Series{{
		Type:   KindScatter,
		Name:   o.Y,
		X:      x,
		Y:      y,
		Mode:   "markers",
		Marker: marker,
	}}, nil
}

func buildBox(tbl table.Table, o BoxOptions) ([]Series, error) {
	if o.X == "" || o.Y == "" {
		col := o.Y
		if col == "" {
			col = o.X
		}
		values := make([]table.Value, len(tbl))
		for i := range tbl {
			v, err := field(tbl, i, col)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return []Series{{Type: KindBox, Name: col, Y: values}}, nil
	}

	var order []string
	groups := make(map[string][]table.Value)
	for i := range tbl {
		key, err := field(tbl, i, o.X)
		if err != nil {
			return nil, err
		}
		v, err := field(tbl, i, o.Y)
		if err != nil {
			return nil, err
		}
		k := label(key)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], v)
	}

	series := make([]Series, 0, len(order))
	for _, k := range order {
		series = append(series, Series{Type: KindBox, Name: k, Y: groups[k]})
	}
	return series, nil
}

func buildHistogram(tbl table.Table, o HistogramOptions) ([]Series, error) {
	values := make([]table.Value, len(tbl))
	for i := range tbl {
		v, err := field(tbl, i, o.X)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return []Series{{Type: KindHistogram, Name: o.X, X: values}}, nil
}

func buildHeatmap(o HeatmapOptions) []Series {
	z := make([][]float64, len(o.Matrix))
	for i, row := range o.Matrix {
		z[i] = append([]float64(nil), row...)
	}
	return []Series{{
		Type:       KindHeatmap,
		Z:          z,
		XLabels:    append([]string(nil), o.XLabels...),
		YLabels:    append([]string(nil), o.YLabels...),
		ColorScale: ScaleViridis,
	}}
}

// colorMarker resolves the color option: a literal becomes a fixed color, a
// field becomes per-point scale values (numeric) or keys (categorical).
func colorMarker(tbl table.Table, color string) (*Marker, error) {
	if color == "" {
		return nil, nil
	}
	if IsColorLiteral(color) {
		return &Marker{Color: color}, nil
	}

	values := make([]table.Value, len(tbl))
	numeric := true
	for i := range tbl {
		v, err := field(tbl, i, color)
		if err != nil {
			return nil, err
		}
		values[i] = v
		if _, ok := v.Float(); !ok && !v.IsNull() {
			numeric = false
		}
	}

	m := &Marker{}
	if numeric {
		m.Colors = make([]float64, len(values))
		for i, v := range values {
			f, ok := v.Float()
			if !ok {
				f = math.NaN()
			}
			m.Colors[i] = f
		}
		m.ColorScale = ScaleViridis
		m.ShowScale = true
		return m, nil
	}

	m.ColorKeys = make([]string, len(values))
	for i, v := range values {
		m.ColorKeys[i] = label(v)
	}
	return m, nil
}

// NullLabel names the category of null keys
const NullLabel = "null"

// label is the category name of a key value
func label(v table.Value) string {
	if v.IsNull() {
		return NullLabel
	}
	return v.String()
}

func markerSize(v table.Value) float64 {
	f, ok := FiniteFloat(v)
	if !ok {
		return MinMarkerSize
	}
	return clamp(f/sizeDivisor, MinMarkerSize, MaxMarkerSize)
}

func columns(tbl table.Table, xField, yField string) ([]table.Value, []table.Value, error) {
	x := make([]table.Value, len(tbl))
	y := make([]table.Value, len(tbl))
	for i := range tbl {
		xv, err := field(tbl, i, xField)
		if err != nil {
			return nil, nil, err
		}
		yv, err := field(tbl, i, yField)
		if err != nil {
			return nil, nil, err
		}
		x[i], y[i] = xv, yv
	}
	return x, y, nil
}

func field(tbl table.Table, row int, name string) (table.Value, error) {
	v, ok := tbl.Lookup(row, name)
	if !ok {
		return table.Value{}, &ErrMissingField{Field: name, Row: row}
	}
	return v, nil
}
