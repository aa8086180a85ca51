package adapter

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/control-theory/plotdeck/internal/chart"
	"github.com/control-theory/plotdeck/internal/registry"
	"github.com/control-theory/plotdeck/internal/table"
	"github.com/control-theory/plotdeck/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	op     Op
	id     string
	layout chart.Layout
	series []chart.Series
	req    ExportRequest
}

// fakeBackend records calls. Draws settle immediately unless hold is set,
// in which case the Future is kept for the test to resolve.
type fakeBackend struct {
	mu       sync.Mutex
	calls    []call
	hold     bool
	held     []*Future
	drawErr  error
	purgeErr error
}

func (b *fakeBackend) record(c call) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, c)
}

func (b *fakeBackend) Draw(_ context.Context, id string, series []chart.Series, layout chart.Layout, _ chart.Config) Task {
	b.record(call{op: OpDraw, id: id, series: series, layout: layout})
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hold {
		f := NewFuture()
		b.held = append(b.held, f)
		return f
	}
	return Completed(b.drawErr)
}

func (b *fakeBackend) Restyle(_ context.Context, id string, layout chart.Layout) Task {
	b.record(call{op: OpRestyle, id: id, layout: layout})
	return Completed(nil)
}

func (b *fakeBackend) Resize(_ context.Context, id string) Task {
	b.record(call{op: OpResize, id: id})
	return Completed(errors.New("no geometry"))
}

func (b *fakeBackend) Purge(id string) error {
	b.record(call{op: OpRemove, id: id})
	return b.purgeErr
}

func (b *fakeBackend) ExportImage(_ context.Context, id string, req ExportRequest) Task {
	b.record(call{op: OpExport, id: id, req: req})
	return Completed(nil)
}

func (b *fakeBackend) ops(op Op) []call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []call
	for _, c := range b.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

type fakeSurface struct {
	mu         sync.Mutex
	containers map[string]bool
	errors     map[string]ErrorFragment
}

func newSurface(ids ...string) *fakeSurface {
	s := &fakeSurface{containers: make(map[string]bool), errors: make(map[string]ErrorFragment)}
	for _, id := range ids {
		s.containers[id] = true
	}
	return s
}

func (s *fakeSurface) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.containers[id]
}

func (s *fakeSurface) ShowError(id string, frag ErrorFragment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[id] = frag
}

func (s *fakeSurface) errorFor(id string) (ErrorFragment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.errors[id]
	return f, ok
}

func salesTable() table.Table {
	return table.FromMaps([]map[string]any{
		{"a": "x", "b": 3},
		{"a": "y", "b": 5},
	})
}

func TestCreateAndRemoveRoundTrip(t *testing.T) {
	be := &fakeBackend{}
	a := New(be, newSurface("c1"))
	ctx := context.Background()

	id, err := a.CreateChart(ctx, "c1", salesTable(), chart.BarOptions{X: "a", Y: "b"})
	require.NoError(t, err)
	assert.Equal(t, "c1", id)
	a.Wait()

	e, ok := a.Entry("c1")
	require.True(t, ok)
	assert.Equal(t, chart.KindBar, e.Kind)
	require.Len(t, e.Series, 1)
	assert.Equal(t, []table.Value{table.String("x"), table.String("y")}, e.Series[0].X)

	require.NoError(t, a.RemoveChart("c1"))
	_, ok = a.Entry("c1")
	assert.False(t, ok)
	assert.Len(t, be.ops(OpRemove), 1)

	require.NoError(t, a.RemoveChart("c1"))
	assert.Len(t, be.ops(OpRemove), 1)
}

func TestCreateContainerNotFound(t *testing.T) {
	be := &fakeBackend{}
	surface := newSurface()
	a := New(be, surface)

	_, err := a.CreateChart(context.Background(), "missing", salesTable(), chart.BarOptions{X: "a", Y: "b"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, be.ops(OpDraw))
	_, shown := surface.errorFor("missing")
	assert.False(t, shown)
}

func TestCreateUnsupportedKindShowsInlineError(t *testing.T) {
	be := &fakeBackend{}
	surface := newSurface("c1")
	a := New(be, surface)

	_, err := a.CreateFromBag(context.Background(), "c1", salesTable(), "radar", chart.Bag{"x": "a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, chart.ErrUnsupported)
	assert.Zero(t, a.Count())
	assert.Empty(t, be.ops(OpDraw))

	frag, shown := surface.errorFor("c1")
	require.True(t, shown)
	assert.Contains(t, frag.Text(), "Error creating chart:")
	assert.Contains(t, frag.Text(), "radar")
}

func TestCreateMissingFieldShowsInlineError(t *testing.T) {
	surface := newSurface("c1")
	a := New(&fakeBackend{}, surface)

	_, err := a.CreateChart(context.Background(), "c1", salesTable(), chart.BarOptions{X: "a", Y: "nope"})
	assert.ErrorIs(t, err, chart.ErrMissing)
	_, shown := surface.errorFor("c1")
	assert.True(t, shown)
	assert.Zero(t, a.Count())
}

func TestCreateDrawFailureImmediate(t *testing.T) {
	be := &fakeBackend{drawErr: errors.New("canvas lost")}
	surface := newSurface("c1")
	a := New(be, surface)

	_, err := a.CreateChart(context.Background(), "c1", salesTable(), chart.BarOptions{X: "a", Y: "b"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackend)
	assert.Zero(t, a.Count())
	frag, _ := surface.errorFor("c1")
	assert.Contains(t, frag.Message, "canvas lost")
}

func TestLateDrawFailureRemovesEntry(t *testing.T) {
	be := &fakeBackend{hold: true}
	surface := newSurface("c1")
	var events []Event
	var mu sync.Mutex
	a := New(be, surface, WithNotify(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	}))

	_, err := a.CreateChart(context.Background(), "c1", salesTable(), chart.BarOptions{X: "a", Y: "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, a.Count())

	be.held[0].Resolve(errors.New("webgl context lost"))
	a.Wait()

	assert.Zero(t, a.Count())
	_, shown := surface.errorFor("c1")
	assert.True(t, shown)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, events)
	assert.ErrorIs(t, events[len(events)-1].Err, ErrBackend)
}

func TestStaleDrawDoesNotResurrectRemovedChart(t *testing.T) {
	be := &fakeBackend{hold: true}
	surface := newSurface("c1")
	a := New(be, surface)

	_, err := a.CreateChart(context.Background(), "c1", salesTable(), chart.BarOptions{X: "a", Y: "b"})
	require.NoError(t, err)
	require.NoError(t, a.RemoveChart("c1"))

	be.held[0].Resolve(nil)
	a.Wait()
	assert.Zero(t, a.Count())

	// a failing stale draw must not touch the container either
	_, err = a.CreateChart(context.Background(), "c1", salesTable(), chart.BarOptions{X: "a", Y: "b"})
	require.NoError(t, err)
	_, err = a.CreateChart(context.Background(), "c1", salesTable(), chart.LineOptions{X: "a", Y: "b"})
	require.NoError(t, err)

	be.held[1].Resolve(errors.New("superseded draw failed"))
	be.held[2].Resolve(nil)
	a.Wait()

	e, ok := a.Entry("c1")
	require.True(t, ok)
	assert.Equal(t, chart.KindLine, e.Kind)
	_, shown := surface.errorFor("c1")
	assert.False(t, shown)
}

func TestThemeChangeRestylesEveryChart(t *testing.T) {
	be := &fakeBackend{}
	a := New(be, newSurface("c1", "c2"))
	state := theme.NewState(theme.Dark)
	a.Attach(state)
	defer a.Close()
	ctx := context.Background()

	_, err := a.CreateChart(ctx, "c1", salesTable(), chart.BarOptions{X: "a", Y: "b", Title: "Bars"})
	require.NoError(t, err)
	_, err = a.CreateChart(ctx, "c2", salesTable(), chart.PieOptions{X: "a"})
	require.NoError(t, err)
	a.Wait()

	before1, _ := a.Entry("c1")
	before2, _ := a.Entry("c2")

	state.Toggle()
	a.Wait()

	restyles := be.ops(OpRestyle)
	require.Len(t, restyles, 2)
	assert.Equal(t, "c1", restyles[0].id)
	assert.Equal(t, "c2", restyles[1].id)
	assert.Equal(t, "#333333", restyles[0].layout.Font.Color)
	assert.Equal(t, "Bars", restyles[0].layout.Title.Text)

	after1, _ := a.Entry("c1")
	after2, _ := a.Entry("c2")
	assert.Equal(t, before1.Series, after1.Series)
	assert.Equal(t, before2.Series, after2.Series)
	assert.NotEqual(t, before1.Layout.Font.Color, after1.Layout.Font.Color)
	assert.Equal(t, "#e6e6e6", after1.Layout.XAxis.GridColor)

	// series are never redrawn on a theme change
	assert.Len(t, be.ops(OpDraw), 2)
	assert.Equal(t, theme.Light, a.Theme())
}

func TestCapacityEnforcedForNewIDs(t *testing.T) {
	surface := newSurface("a", "b", "c")
	a := New(&fakeBackend{}, surface, WithRegistry(registry.New(2)))
	ctx := context.Background()
	opts := chart.BarOptions{X: "a", Y: "b"}

	_, err := a.CreateChart(ctx, "a", salesTable(), opts)
	require.NoError(t, err)
	_, err = a.CreateChart(ctx, "b", salesTable(), opts)
	require.NoError(t, err)

	_, err = a.CreateChart(ctx, "c", salesTable(), opts)
	assert.ErrorIs(t, err, ErrFull)
	_, shown := surface.errorFor("c")
	assert.True(t, shown)

	// replacing an existing chart is always allowed
	_, err = a.CreateChart(ctx, "a", salesTable(), chart.LineOptions{X: "a", Y: "b"})
	assert.NoError(t, err)
	assert.Equal(t, 2, a.Count())
	a.Wait()
}

func TestRemoveKeepsEntryWhenPurgeFails(t *testing.T) {
	be := &fakeBackend{}
	a := New(be, newSurface("c1"))
	_, err := a.CreateChart(context.Background(), "c1", salesTable(), chart.BarOptions{X: "a", Y: "b"})
	require.NoError(t, err)
	a.Wait()

	be.purgeErr = errors.New("busy")
	err = a.RemoveChart("c1")
	assert.ErrorIs(t, err, ErrBackend)
	assert.Equal(t, 1, a.Count())
}

func TestExportChart(t *testing.T) {
	be := &fakeBackend{}
	a := New(be, newSurface("c1"))
	ctx := context.Background()

	task := a.ExportChart(ctx, "nope", "png")
	assert.ErrorIs(t, Wait(ctx, task), ErrNotDisplayed)
	assert.Empty(t, be.ops(OpExport))

	_, err := a.CreateChart(ctx, "c1", salesTable(), chart.BarOptions{X: "a", Y: "b"})
	require.NoError(t, err)

	task = a.ExportChart(ctx, "c1", "gif")
	assert.ErrorIs(t, Wait(ctx, task), ErrUnsupportedFormat)

	task = a.ExportChart(ctx, "c1", "PNG")
	require.NoError(t, Wait(ctx, task))
	a.Wait()

	exports := be.ops(OpExport)
	require.Len(t, exports, 1)
	assert.Equal(t, ExportRequest{
		Format:   "png",
		Width:    chart.DefaultExportWidth,
		Height:   chart.DefaultExportHeight,
		Filename: "c1.png",
	}, exports[0].req)
}

func TestResizeFailuresAreLoggedOnly(t *testing.T) {
	be := &fakeBackend{}
	surface := newSurface("c1", "c2")
	a := New(be, surface)
	ctx := context.Background()

	a.ResizeChart(ctx, "unknown")
	assert.Empty(t, be.ops(OpResize))

	_, err := a.CreateChart(ctx, "c1", salesTable(), chart.BarOptions{X: "a", Y: "b"})
	require.NoError(t, err)
	_, err = a.CreateChart(ctx, "c2", salesTable(), chart.BarOptions{X: "a", Y: "b"})
	require.NoError(t, err)

	a.ResizeAll(ctx)
	a.Wait()

	assert.Len(t, be.ops(OpResize), 2)
	assert.Equal(t, 2, a.Count())
	_, shown := surface.errorFor("c1")
	assert.False(t, shown)
}

func TestRedrawUsesCurrentTheme(t *testing.T) {
	be := &fakeBackend{}
	a := New(be, newSurface("c1"), WithTheme(theme.Light))
	ctx := context.Background()

	_, err := a.CreateChart(ctx, "c1", salesTable(), chart.BarOptions{X: "a", Y: "b"})
	require.NoError(t, err)
	before, _ := a.Entry("c1")

	require.NoError(t, a.Redraw(ctx, "c1"))
	a.Wait()

	after, _ := a.Entry("c1")
	assert.Greater(t, after.Generation, before.Generation)
	assert.Equal(t, "#333333", after.Layout.Font.Color)
	assert.Len(t, be.ops(OpDraw), 2)

	assert.NoError(t, a.Redraw(ctx, "unknown"))
}

func TestErrorFragmentHTMLEscapes(t *testing.T) {
	frag := NewErrorFragment(errors.New(`<script>"x"</script>`))
	assert.Equal(t, `Error creating chart: <script>"x"</script>`, frag.Text())
	assert.NotContains(t, frag.HTML(), "<script>")
	assert.Contains(t, frag.HTML(), `class="chart-error"`)
}

func TestExportAll(t *testing.T) {
	be := &fakeBackend{}
	a := New(be, newSurface("a", "b", "c"))
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := a.CreateChart(ctx, id, salesTable(), chart.BarOptions{X: "a", Y: "b"})
		require.NoError(t, err)
	}

	require.NoError(t, a.ExportAll(ctx, "svg", 2))
	a.Wait()

	var names []string
	for _, c := range be.ops(OpExport) {
		names = append(names, c.req.Filename)
	}
	assert.ElementsMatch(t, []string{"a.svg", "b.svg", "c.svg"}, names)

	assert.ErrorIs(t, a.ExportAll(ctx, "bmp", 0), ErrUnsupportedFormat)
}

func TestFailedRecreateReplacesPreviousChart(t *testing.T) {
	be := &fakeBackend{}
	surface := newSurface("c1")
	a := New(be, surface)
	ctx := context.Background()

	_, err := a.CreateChart(ctx, "c1", salesTable(), chart.BarOptions{X: "a", Y: "b"})
	require.NoError(t, err)
	a.Wait()

	_, err = a.CreateChart(ctx, "c1", salesTable(), chart.BarOptions{X: "a", Y: "missing"})
	assert.ErrorIs(t, err, chart.ErrMissing)
	assert.Zero(t, a.Count())
	assert.Len(t, be.ops(OpRemove), 1)
	_, shown := surface.errorFor("c1")
	assert.True(t, shown)
}

func TestClearRemovesEveryChart(t *testing.T) {
	var (
		mu      sync.Mutex
		removed []string
	)
	be := &fakeBackend{}
	a := New(be, newSurface("a", "b", "c"), WithNotify(func(ev Event) {
		if ev.Op == OpRemove {
			mu.Lock()
			removed = append(removed, ev.ID)
			mu.Unlock()
		}
	}))
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := a.CreateChart(ctx, id, salesTable(), chart.BarOptions{X: "a", Y: "b"})
		require.NoError(t, err)
	}
	a.Wait()

	require.NoError(t, a.Clear())
	assert.Zero(t, a.Count())
	assert.ElementsMatch(t, []string{"a", "b", "c"}, removed)

	require.NoError(t, a.Clear())
	assert.Len(t, be.ops(OpRemove), 3)
}

func TestClearKeepsChartsWhosePurgeFails(t *testing.T) {
	be := &fakeBackend{}
	a := New(be, newSurface("a", "b"))
	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		_, err := a.CreateChart(ctx, id, salesTable(), chart.BarOptions{X: "a", Y: "b"})
		require.NoError(t, err)
	}
	a.Wait()

	be.purgeErr = errors.New("busy")
	err := a.Clear()
	assert.ErrorIs(t, err, ErrBackend)
	assert.Equal(t, 2, a.Count())
}

func TestGoRecoversPanics(t *testing.T) {
	f := Go(func() error { panic("index out of range") })
	err := Wait(context.Background(), f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index out of range")

	assert.NoError(t, Wait(context.Background(), Go(func() error { return nil })))
}

func TestPanickingDrawBecomesInlineError(t *testing.T) {
	be := &panicBackend{fakeBackend: &fakeBackend{}}
	surface := newSurface("c1")
	a := New(be, surface)

	// The panic surfaces either at once or once the draw settles.
	_, _ = a.CreateChart(context.Background(), "c1", salesTable(), chart.BarOptions{X: "a", Y: "b"})
	a.Wait()

	assert.Zero(t, a.Count())
	frag, shown := surface.errorFor("c1")
	require.True(t, shown)
	assert.Contains(t, frag.Text(), "panicked")
}

// panicBackend draws on a goroutine that panics
type panicBackend struct {
	*fakeBackend
}

func (b *panicBackend) Draw(context.Context, string, []chart.Series, chart.Layout, chart.Config) Task {
	return Go(func() error { panic("boom") })
}
