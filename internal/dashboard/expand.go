package dashboard

import (
	"cmp"
	"fmt"
	"sort"

	"github.com/control-theory/plotdeck/internal/chart"
)

// Chart kinds that stand for generated charts. They are expanded when the
// definition is parsed.
const (
	// KindAuto becomes the charts chart.Auto proposes for the chart's rows,
	// with ids <id>-<kind>.
	KindAuto = "auto"
	// KindCorrelation becomes a heatmap of the pairwise correlation of the
	// "columns" option, or of every numeric column when it is unset.
	KindCorrelation = "correlation"
)

// expand replaces generated kinds with the charts they stand for
func (d *Definition) expand() error {
	var out []Chart
	for _, c := range d.Charts {
		switch c.Kind {
		case KindAuto:
			out = append(out, d.auto(c)...)
		case KindCorrelation:
			cc, err := d.correlation(c)
			if err != nil {
				return err
			}
			out = append(out, cc)
		default:
			out = append(out, c)
		}
	}
	d.Charts = out
	return nil
}

func (d *Definition) auto(c Chart) []Chart {
	var out []Chart
	for _, opts := range chart.Auto(d.Table(c)) {
		out = append(out, Chart{
			ID:    fmt.Sprintf("%s-%s", c.ID, opts.Kind()),
			Kind:  string(opts.Kind()),
			Data:  c.Data,
			Rows:  c.Rows,
			typed: opts,
		})
	}
	return out
}

func (d *Definition) correlation(c Chart) (Chart, error) {
	tbl := d.Table(c)
	columns, err := stringList(c.Options["columns"])
	if err != nil {
		return Chart{}, fmt.Errorf("%w: chart %q: columns: %v", ErrInvalid, c.ID, err)
	}
	if len(columns) == 0 {
		columns, _ = chart.Columns(tbl)
	}
	opts := chart.Correlation(chart.CorrelationOf(tbl, columns))
	opts.Title = cmp.Or(c.Title, opts.Title)

	c.Kind = string(chart.KindHeatmap)
	c.typed = opts
	return c, nil
}

// AddAuto appends the generated charts of every named dataset, in name
// order, as if each was declared with kind auto and the dataset's name as id
func (d *Definition) AddAuto() error {
	names := make([]string, 0, len(d.Data))
	for name := range d.Data {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d.Charts = append(d.Charts, d.auto(Chart{ID: name, Data: name})...)
	}
	return d.Validate()
}

func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, len(t))
		for i, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("entry %d is %T, not a string", i, e)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of column names, got %T", v)
	}
}
