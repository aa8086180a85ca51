// Package dashboard loads dashboard definitions: the charts to show, their
// options and the inline rows they are built from.
package dashboard

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/control-theory/plotdeck/internal/chart"
	"github.com/control-theory/plotdeck/internal/table"
)

// ErrInvalid is matched by every validation failure of a definition.
var ErrInvalid = errors.New("invalid dashboard")

// Definition is a decoded dashboard file
type Definition struct {
	Title string `yaml:"title"`
	// Theme is a preferred theme; the persisted user choice wins over it
	Theme string `yaml:"theme,omitempty"`
	// Data holds named datasets shared by charts
	Data   map[string][]map[string]any `yaml:"data,omitempty"`
	Charts []Chart                     `yaml:"charts"`
}

// Chart declares one chart and the container it is drawn into
type Chart struct {
	ID      string           `yaml:"id"`
	Kind    string           `yaml:"kind"`
	Title   string           `yaml:"title,omitempty"`
	Data    string           `yaml:"data,omitempty"`
	Rows    []map[string]any `yaml:"rows,omitempty"`
	Options map[string]any   `yaml:"options,omitempty"`

	// typed is set on charts generated from auto and correlation kinds
	typed chart.Options
}

// Load reads and validates the definition at path
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Parse decodes and validates a definition
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse dashboard: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	// Generated ids may collide with declared ones.
	if err := def.expand(); err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks ids and dataset references. Chart kinds and options are
// checked when the chart is created so failures land in its container.
func (d *Definition) Validate() error {
	seen := make(map[string]bool, len(d.Charts))
	for i, c := range d.Charts {
		if c.ID == "" {
			return fmt.Errorf("%w: chart %d has no id", ErrInvalid, i)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate chart id %q", ErrInvalid, c.ID)
		}
		seen[c.ID] = true
		if c.Data != "" {
			if _, ok := d.Data[c.Data]; !ok {
				return fmt.Errorf("%w: chart %q references unknown data %q", ErrInvalid, c.ID, c.Data)
			}
		}
	}
	return nil
}

// IDs returns the chart ids in declaration order
func (d *Definition) IDs() []string {
	ids := make([]string, len(d.Charts))
	for i, c := range d.Charts {
		ids[i] = c.ID
	}
	return ids
}

// Chart returns the declaration of id
func (d *Definition) Chart(id string) (Chart, bool) {
	for _, c := range d.Charts {
		if c.ID == id {
			return c, true
		}
	}
	return Chart{}, false
}

// Table returns the rows of c: its own rows, else its named dataset
func (d *Definition) Table(c Chart) table.Table {
	rows := c.Rows
	if len(rows) == 0 && c.Data != "" {
		rows = d.Data[c.Data]
	}
	return table.FromMaps(rows)
}

// Bag returns the chart options with the chart title folded in
func (c Chart) Bag() chart.Bag {
	bag := make(chart.Bag, len(c.Options)+1)
	for k, v := range c.Options {
		bag[k] = v
	}
	if c.Title != "" {
		bag["title"] = c.Title
	}
	return bag
}

// Typed decodes the options of c into their per-kind form. Generated charts
// return the options they were generated with.
func (c Chart) Typed() (chart.Options, error) {
	if c.typed != nil {
		return c.typed, nil
	}
	return chart.OptionsFor(c.Kind, c.Bag())
}
