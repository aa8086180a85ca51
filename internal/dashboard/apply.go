package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/control-theory/plotdeck/internal/adapter"
)

// Apply draws every chart of d through a and removes displayed charts d no
// longer declares. Creation failures are already shown in their containers;
// they are also returned, joined.
func Apply(ctx context.Context, a *adapter.Adapter, d *Definition) error {
	declared := make(map[string]bool, len(d.Charts))
	for _, c := range d.Charts {
		declared[c.ID] = true
	}

	var errs []error
	for _, id := range a.IDs() {
		if declared[id] {
			continue
		}
		if err := a.RemoveChart(id); err != nil {
			errs = append(errs, err)
		}
	}

	for _, c := range d.Charts {
		var err error
		if c.typed != nil {
			_, err = a.CreateChart(ctx, c.ID, d.Table(c), c.typed)
		} else {
			_, err = a.CreateFromBag(ctx, c.ID, d.Table(c), c.Kind, c.Bag())
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("chart %q: %w", c.ID, err))
		}
	}
	return errors.Join(errs...)
}
