// Package adapter turns tables into drawn charts and keeps every displayed
// chart consistent with the current theme.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/control-theory/plotdeck/internal/chart"
	"github.com/control-theory/plotdeck/internal/logging"
	"github.com/control-theory/plotdeck/internal/registry"
	"github.com/control-theory/plotdeck/internal/table"
	"github.com/control-theory/plotdeck/internal/theme"
)

// Adapter is the chart orchestrator. Per container it moves through
// Absent -> Creating -> Displayed (-> restyled in place) -> Removed.
type Adapter struct {
	backend  Backend
	surface  Surface
	registry *registry.Registry
	logger   *log.Logger
	cfg      chart.Config
	notify   func(Event)

	mu    sync.Mutex
	theme theme.Theme
	unsub func()

	gen     atomic.Uint64
	pending sync.WaitGroup
}

// Option configures an Adapter
type Option func(*Adapter)

// WithLogger sets the logger
func WithLogger(l *log.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// WithRegistry replaces the default registry
func WithRegistry(r *registry.Registry) Option {
	return func(a *Adapter) { a.registry = r }
}

// WithConfig sets the draw configuration
func WithConfig(cfg chart.Config) Option {
	return func(a *Adapter) { a.cfg = cfg }
}

// WithTheme sets the initial theme
func WithTheme(t theme.Theme) Option {
	return func(a *Adapter) { a.theme = t }
}

// WithNotify registers a callback for settled asynchronous operations. It
// runs on the goroutine that observed the completion.
func WithNotify(fn func(Event)) Option {
	return func(a *Adapter) { a.notify = fn }
}

// New creates an Adapter drawing on backend into containers owned by surface
func New(backend Backend, surface Surface, opts ...Option) *Adapter {
	a := &Adapter{
		backend: backend,
		surface: surface,
		cfg:     chart.DefaultConfig(),
		theme:   theme.Default,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.registry == nil {
		a.registry = registry.New(registry.DefaultMaxCharts)
	}
	if a.logger == nil {
		a.logger = logging.Discard()
	}
	return a
}

// Theme returns the theme new charts are styled with
func (a *Adapter) Theme() theme.Theme {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.theme
}

// Attach follows state: the adapter adopts its current theme and restyles
// every chart on each change. A previous attachment is dropped.
func (a *Adapter) Attach(state *theme.State) {
	a.mu.Lock()
	if a.unsub != nil {
		a.unsub()
	}
	a.theme = state.Current()
	a.mu.Unlock()

	unsub := state.Subscribe(func(t theme.Theme) {
		a.SetTheme(context.Background(), t)
	})

	a.mu.Lock()
	a.unsub = unsub
	a.mu.Unlock()
}

// Close detaches from the theme state and waits for in-flight completions
func (a *Adapter) Close() {
	a.mu.Lock()
	if a.unsub != nil {
		a.unsub()
		a.unsub = nil
	}
	a.mu.Unlock()
	a.pending.Wait()
}

// Wait blocks until every observed back-end task has settled and its
// completion has been applied
func (a *Adapter) Wait() {
	a.pending.Wait()
}

// CreateChart builds and draws a chart into container id. Failures other
// than a missing container are also rendered inline into the container.
func (a *Adapter) CreateChart(ctx context.Context, id string, tbl table.Table, opts chart.Options) (string, error) {
	if !a.surface.Exists(id) {
		err := &ErrContainerNotFound{ID: id}
		a.logger.Error("cannot create chart", "id", id, "error", err)
		return "", err
	}

	if !a.registry.HasRoom(id) {
		return "", a.fail(id, &ErrRegistryFull{Max: a.registry.Max()})
	}

	series, err := chart.Build(tbl, opts)
	if err != nil {
		a.discard(id)
		return "", a.fail(id, err)
	}
	layout := chart.LayoutFor(a.Theme(), opts)

	return a.draw(ctx, id, registry.Entry{
		Kind:    opts.Kind(),
		Series:  series,
		Layout:  layout,
		Options: opts,
	})
}

// CreateFromBag is CreateChart for the loosely typed options form
func (a *Adapter) CreateFromBag(ctx context.Context, id string, tbl table.Table, kind string, bag chart.Bag) (string, error) {
	if !a.surface.Exists(id) {
		err := &ErrContainerNotFound{ID: id}
		a.logger.Error("cannot create chart", "id", id, "error", err)
		return "", err
	}
	opts, err := chart.OptionsFor(kind, bag)
	if err != nil {
		a.discard(id)
		return "", a.fail(id, err)
	}
	return a.CreateChart(ctx, id, tbl, opts)
}

// Redraw draws the last-applied entry of id again, restyled for the
// current theme. Unknown ids are a no-op.
func (a *Adapter) Redraw(ctx context.Context, id string) error {
	e, ok := a.registry.Get(id)
	if !ok {
		return nil
	}
	e.Layout = e.Layout.Restyle(a.Theme())
	_, err := a.draw(ctx, id, e)
	return err
}

func (a *Adapter) draw(ctx context.Context, id string, e registry.Entry) (string, error) {
	e.Generation = a.gen.Add(1)
	task := a.backend.Draw(ctx, id, e.Series, e.Layout, a.cfg)

	if done, err := settled(task); done && err != nil {
		a.discard(id)
		return "", a.fail(id, &ErrDrawBackend{ID: id, cause: err})
	}

	a.registry.Put(id, e)
	a.logger.Debug("chart drawn", "id", id, "kind", e.Kind, "series", len(e.Series), "generation", e.Generation)
	a.observe(id, e.Generation, OpDraw, task)
	return id, nil
}

// RemoveChart purges the back-end and forgets the chart. Removing an id that
// is not displayed is a no-op. If the purge fails the entry is kept.
func (a *Adapter) RemoveChart(id string) error {
	if _, ok := a.registry.Get(id); !ok {
		return nil
	}
	if err := a.backend.Purge(id); err != nil {
		a.logger.Error("purge failed", "id", id, "error", err)
		return &ErrDrawBackend{ID: id, cause: err}
	}
	a.registry.Remove(id)
	a.logger.Debug("chart removed", "id", id)
	a.emit(Event{ID: id, Op: OpRemove})
	return nil
}

// Clear removes every displayed chart. Charts whose purge fails stay
// displayed and their errors are joined.
func (a *Adapter) Clear() error {
	var errs []error
	for _, id := range a.IDs() {
		if err := a.RemoveChart(id); err != nil {
			errs = append(errs, err)
		}
	}
	a.logger.Debug("charts cleared", "kept", len(errs))
	return errors.Join(errs...)
}

// ResizeChart asks the back-end to fit chart id to its container. Unknown
// ids are a no-op; failures are only logged.
func (a *Adapter) ResizeChart(ctx context.Context, id string) {
	e, ok := a.registry.Get(id)
	if !ok {
		return
	}
	a.observe(id, e.Generation, OpResize, a.backend.Resize(ctx, id))
}

// ResizeAll resizes every displayed chart
func (a *Adapter) ResizeAll(ctx context.Context) {
	a.registry.ForEach(func(id string, _ registry.Entry) {
		a.ResizeChart(ctx, id)
	})
}

// ExportChart asks the back-end for an image of chart id at the configured
// export resolution. Problems are logged, never shown in the container.
func (a *Adapter) ExportChart(ctx context.Context, id, format string) Task {
	format = strings.ToLower(strings.TrimSpace(format))
	e, ok := a.registry.Get(id)
	if !ok {
		a.logger.Warn("export skipped", "id", id, "error", ErrNotDisplayed)
		return Completed(fmt.Errorf("export %q: %w", id, ErrNotDisplayed))
	}
	if format != FormatPNG && format != FormatSVG {
		a.logger.Warn("export skipped", "id", id, "format", format, "error", ErrUnsupportedFormat)
		return Completed(fmt.Errorf("export %q as %q: %w", id, format, ErrUnsupportedFormat))
	}

	task := a.backend.ExportImage(ctx, id, ExportRequest{
		Format:   format,
		Width:    a.cfg.ExportWidth,
		Height:   a.cfg.ExportHeight,
		Filename: id + "." + format,
	})
	a.observe(id, e.Generation, OpExport, task)
	return task
}

// ExportAll exports every displayed chart, running at most limit exports at
// once (no limit when limit <= 0). It returns the first failure.
func (a *Adapter) ExportAll(ctx context.Context, format string, limit int) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, id := range a.IDs() {
		g.Go(func() error {
			return Wait(ctx, a.ExportChart(ctx, id, format))
		})
	}
	return g.Wait()
}

// SetTheme switches the theme and restyles every displayed chart in
// registry order. Only layouts change; series are never rebuilt.
func (a *Adapter) SetTheme(ctx context.Context, t theme.Theme) {
	a.mu.Lock()
	a.theme = t
	a.mu.Unlock()

	a.registry.ForEach(func(id string, e registry.Entry) {
		layout := e.Layout.Restyle(t)
		updated := a.registry.Update(id, e.Generation, func(cur *registry.Entry) {
			cur.Layout = layout
		})
		if !updated {
			return
		}
		a.observe(id, e.Generation, OpRestyle, a.backend.Restyle(ctx, id, layout))
	})
	a.logger.Info("theme applied", "theme", t, "charts", a.registry.Count())
}

// Entry returns the registered state of id
func (a *Adapter) Entry(id string) (registry.Entry, bool) {
	return a.registry.Get(id)
}

// IDs returns the displayed container ids in creation order
func (a *Adapter) IDs() []string {
	return a.registry.IDs()
}

// Count returns the number of displayed charts
func (a *Adapter) Count() int {
	return a.registry.Count()
}

// observe waits for task off the caller's goroutine and applies its outcome
// only if the chart is still the same generation.
func (a *Adapter) observe(id string, generation uint64, op Op, task Task) {
	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		<-task.Done()
		a.settle(id, generation, op, task.Err())
	}()
}

func (a *Adapter) settle(id string, generation uint64, op Op, err error) {
	current, ok := a.registry.Get(id)
	if !ok || current.Generation != generation {
		a.logger.Debug("stale completion dropped", "id", id, "op", op, "generation", generation)
		return
	}

	if err == nil {
		a.emit(Event{ID: id, Op: op})
		return
	}

	if op != OpDraw {
		a.logger.Warn("chart operation failed", "id", id, "op", op, "error", err)
		a.emit(Event{ID: id, Op: op, Err: err})
		return
	}

	if a.registry.RemoveIf(id, generation) {
		a.fail(id, &ErrDrawBackend{ID: id, cause: err})
	}
}

// discard drops a chart whose container is about to show an inline error
// instead
func (a *Adapter) discard(id string) {
	if _, ok := a.registry.Get(id); !ok {
		return
	}
	if err := a.backend.Purge(id); err != nil {
		a.logger.Warn("purge failed", "id", id, "error", err)
	}
	a.registry.Remove(id)
}

func (a *Adapter) fail(id string, err error) error {
	a.logger.Error("cannot create chart", "id", id, "error", err)
	a.surface.ShowError(id, NewErrorFragment(err))
	a.emit(Event{ID: id, Op: OpDraw, Err: err})
	return err
}

func (a *Adapter) emit(ev Event) {
	if a.notify != nil {
		a.notify(ev)
	}
}
