package terminal

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/control-theory/plotdeck/internal/adapter"
	"github.com/control-theory/plotdeck/internal/chart"
	"github.com/control-theory/plotdeck/internal/logging"
)

// Default pane size used until the TUI reports real bounds
const (
	DefaultWidth  = 60
	DefaultHeight = 16
)

type pane struct {
	series []chart.Series
	layout chart.Layout
	cfg    chart.Config
	width  int
	height int
	view   string
}

// Backend keeps one rendered text block per container. Image exports are
// handed to an Exporter.
type Backend struct {
	exporter adapter.Backend
	logger   *log.Logger

	mu     sync.Mutex
	panes  map[string]*pane
	bounds map[string][2]int
}

// New creates a Backend; exporter may be nil, in which case exports fail
func New(exporter adapter.Backend, logger *log.Logger) *Backend {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Backend{
		exporter: exporter,
		logger:   logger,
		panes:    make(map[string]*pane),
		bounds:   make(map[string][2]int),
	}
}

// SetBounds records the inner size of container id. It takes effect on the
// next draw or resize.
func (b *Backend) SetBounds(id string, width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bounds[id] = [2]int{width, height}
}

// View returns the rendered text of id
func (b *Backend) View(id string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.panes[id]
	if !ok {
		return "", false
	}
	return p.view, true
}

// Draw renders the figure at the container's bounds. Rendering is cheap, so
// the task is already settled when Draw returns.
func (b *Backend) Draw(_ context.Context, id string, series []chart.Series, layout chart.Layout, cfg chart.Config) adapter.Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	w, h := b.sizeLocked(id)
	view, err := Render(series, layout, w, h)
	if err != nil {
		delete(b.panes, id)
		return adapter.Completed(err)
	}
	b.panes[id] = &pane{series: series, layout: layout, cfg: cfg, width: w, height: h, view: view}
	return adapter.Completed(nil)
}

// Restyle re-renders id with a new layout, keeping its series
func (b *Backend) Restyle(_ context.Context, id string, layout chart.Layout) adapter.Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.panes[id]
	if !ok {
		return adapter.Completed(fmt.Errorf("restyle %q: nothing drawn", id))
	}
	view, err := Render(p.series, layout, p.width, p.height)
	if err != nil {
		return adapter.Completed(err)
	}
	p.layout, p.view = layout, view
	return adapter.Completed(nil)
}

// Resize re-renders id at its current bounds
func (b *Backend) Resize(_ context.Context, id string) adapter.Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.panes[id]
	if !ok {
		return adapter.Completed(fmt.Errorf("resize %q: nothing drawn", id))
	}
	w, h := b.sizeLocked(id)
	if w == p.width && h == p.height {
		return adapter.Completed(nil)
	}
	view, err := Render(p.series, p.layout, w, h)
	if err != nil {
		return adapter.Completed(err)
	}
	p.width, p.height, p.view = w, h, view
	return adapter.Completed(nil)
}

// Purge drops the pane of id and any exporter state
func (b *Backend) Purge(id string) error {
	b.mu.Lock()
	delete(b.panes, id)
	b.mu.Unlock()

	if b.exporter != nil {
		return b.exporter.Purge(id)
	}
	return nil
}

// ExportImage draws the pane's figure on the exporter and exports it there
func (b *Backend) ExportImage(ctx context.Context, id string, req adapter.ExportRequest) adapter.Task {
	b.mu.Lock()
	p, ok := b.panes[id]
	b.mu.Unlock()
	switch {
	case !ok:
		return adapter.Completed(fmt.Errorf("export %q: nothing drawn", id))
	case b.exporter == nil:
		return adapter.Completed(fmt.Errorf("export %q: no image exporter configured", id))
	}

	return adapter.Go(func() error {
		if err := adapter.Wait(ctx, b.exporter.Draw(ctx, id, p.series, p.layout, p.cfg)); err != nil {
			return err
		}
		return adapter.Wait(ctx, b.exporter.ExportImage(ctx, id, req))
	})
}

func (b *Backend) sizeLocked(id string) (int, int) {
	if wh, ok := b.bounds[id]; ok {
		return wh[0], wh[1]
	}
	return DefaultWidth, DefaultHeight
}
