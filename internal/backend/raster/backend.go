package raster

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/control-theory/plotdeck/internal/adapter"
	"github.com/control-theory/plotdeck/internal/chart"
	"github.com/control-theory/plotdeck/internal/logging"
)

// Default preview size of a drawn figure
const (
	DefaultWidth  = 800
	DefaultHeight = chart.LayoutHeight
)

type figure struct {
	series  []chart.Series
	layout  chart.Layout
	preview []byte
}

// Backend is a headless drawing back-end: every draw renders a PNG preview
// in memory and exports are written below Dir.
type Backend struct {
	Dir    string
	Width  int
	Height int
	Logger *log.Logger

	mu      sync.Mutex
	figures map[string]*figure
}

// New creates a Backend exporting into dir
func New(dir string) *Backend {
	return &Backend{
		Dir:     dir,
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		Logger:  logging.Discard(),
		figures: make(map[string]*figure),
	}
}

// Draw stores the figure and renders its preview asynchronously
func (b *Backend) Draw(ctx context.Context, id string, series []chart.Series, layout chart.Layout, _ chart.Config) adapter.Task {
	fig := &figure{series: series, layout: layout}
	b.mu.Lock()
	b.figures[id] = fig
	b.mu.Unlock()

	return adapter.Go(func() error {
		if err := ctx.Err(); err != nil {
			b.forget(id, fig)
			return err
		}
		if err := b.preview(fig); err != nil {
			b.forget(id, fig)
			return err
		}
		return nil
	})
}

// Restyle replaces the layout of a stored figure and re-renders it
func (b *Backend) Restyle(_ context.Context, id string, layout chart.Layout) adapter.Task {
	b.mu.Lock()
	fig, ok := b.figures[id]
	if ok {
		next := &figure{series: fig.series, layout: layout}
		b.figures[id] = next
		fig = next
	}
	b.mu.Unlock()
	if !ok {
		return adapter.Completed(fmt.Errorf("restyle %q: no figure drawn", id))
	}
	return adapter.Go(func() error { return b.preview(fig) })
}

// Resize is a no-op: raster figures have a fixed size
func (b *Backend) Resize(_ context.Context, id string) adapter.Task {
	b.Logger.Debug("resize ignored by raster back-end", "id", id)
	return adapter.Completed(nil)
}

// Purge forgets the figure of id
func (b *Backend) Purge(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.figures, id)
	return nil
}

// ExportImage renders the figure of id to Dir/req.Filename
func (b *Backend) ExportImage(ctx context.Context, id string, req adapter.ExportRequest) adapter.Task {
	b.mu.Lock()
	fig, ok := b.figures[id]
	b.mu.Unlock()
	if !ok {
		return adapter.Completed(fmt.Errorf("export %q: no figure drawn", id))
	}

	return adapter.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.MkdirAll(b.Dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
		path := filepath.Join(b.Dir, filepath.Base(req.Filename))

		var buf bytes.Buffer
		if err := Render(&buf, req.Format, req.Width, req.Height, fig.series, fig.layout); err != nil {
			return fmt.Errorf("render %q: %w", id, err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		b.Logger.Info("chart exported", "id", id, "path", path, "bytes", buf.Len())
		return nil
	})
}

// Preview returns the last rendered PNG of id
func (b *Backend) Preview(id string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fig, ok := b.figures[id]
	if !ok || fig.preview == nil {
		return nil, false
	}
	return fig.preview, true
}

func (b *Backend) preview(fig *figure) error {
	var buf bytes.Buffer
	if err := Render(&buf, adapter.FormatPNG, b.Width, b.Height, fig.series, fig.layout); err != nil {
		return err
	}
	b.mu.Lock()
	fig.preview = buf.Bytes()
	b.mu.Unlock()
	return nil
}

// forget drops id only if it still holds fig
func (b *Backend) forget(id string, fig *figure) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.figures[id] == fig {
		delete(b.figures, id)
	}
}

// Surface is the headless container set used with Backend: every declared
// id exists and inline errors are collected rather than displayed.
type Surface struct {
	mu     sync.Mutex
	ids    map[string]bool
	errors map[string]adapter.ErrorFragment
}

// NewSurface declares the containers ids
func NewSurface(ids ...string) *Surface {
	s := &Surface{ids: make(map[string]bool), errors: make(map[string]adapter.ErrorFragment)}
	for _, id := range ids {
		s.ids[id] = true
	}
	return s
}

// Exists implements adapter.Surface
func (s *Surface) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids[id]
}

// ShowError implements adapter.Surface
func (s *Surface) ShowError(id string, frag adapter.ErrorFragment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[id] = frag
}

// Errors returns the collected inline errors by container id
func (s *Surface) Errors() map[string]adapter.ErrorFragment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]adapter.ErrorFragment, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}
