package tui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/control-theory/plotdeck/internal/backend/raster"
	"github.com/control-theory/plotdeck/internal/dashboard"
	"github.com/control-theory/plotdeck/internal/theme"
)

const dashYAML = `
title: test
data:
  sales:
    - {region: north, amount: 12}
    - {region: south, amount: 7}
charts:
  - {id: bars, kind: bar, title: Sales, data: sales, options: {x: region, y: amount}}
  - {id: share, kind: pie, data: sales, options: {x: region, values: amount}}
  - {id: broken, kind: radar, data: sales}
`

func newTestModel(t *testing.T, opts Options) *Model {
	t.Helper()
	if opts.Definition == nil {
		def, err := dashboard.Parse([]byte(dashYAML))
		require.NoError(t, err)
		opts.Definition = def
	}
	m := New(opts)
	t.Cleanup(m.Close)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.adapter.Wait()
	return m
}

func press(m *Model, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		msg = tea.KeyMsg{Type: tea.KeyShiftTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func TestModelDrawsDashboardOnFirstResize(t *testing.T) {
	m := newTestModel(t, Options{})

	assert.ElementsMatch(t, []string{"bars", "share"}, m.adapter.IDs())
	frag, ok := m.errorFor("broken")
	require.True(t, ok)
	assert.Contains(t, frag.Text(), "radar")

	view := m.View()
	assert.Contains(t, view, "Sales")
	assert.Contains(t, view, "Error creating chart")
	assert.Contains(t, m.status, "2 of 3 charts drawn")
}

func TestModelThemeToggle(t *testing.T) {
	state := theme.NewState(theme.Dark)
	m := newTestModel(t, Options{State: state})
	before, _ := m.adapter.Entry("bars")

	press(m, "t")
	m.adapter.Wait()

	assert.Equal(t, theme.Light, state.Current())
	assert.Equal(t, theme.Light, m.adapter.Theme())
	assert.Equal(t, "light", m.skin.Name)
	after, _ := m.adapter.Entry("bars")
	assert.Equal(t, before.Series, after.Series)
	assert.NotEqual(t, before.Layout.Font.Color, after.Layout.Font.Color)
	assert.Contains(t, m.View(), "LIGHT")
}

func TestModelFocusAndRemove(t *testing.T) {
	m := newTestModel(t, Options{})

	id, _ := m.focused()
	assert.Equal(t, "bars", id)
	press(m, "shift+tab")
	id, _ = m.focused()
	assert.Equal(t, "broken", id)
	press(m, "tab")
	press(m, "tab")
	id, _ = m.focused()
	assert.Equal(t, "share", id)

	press(m, "x")
	_, ok := m.adapter.Entry("share")
	assert.False(t, ok)
	assert.Equal(t, "removed share", m.status)
	assert.Contains(t, m.View(), "no chart")
}

func TestModelClear(t *testing.T) {
	m := newTestModel(t, Options{})
	require.Len(t, m.adapter.IDs(), 2)

	press(m, "c")
	assert.Zero(t, m.adapter.Count())
	assert.Equal(t, "cleared all charts", m.status)
	assert.False(t, m.statusErr)
	assert.Contains(t, m.View(), "no chart")

	press(m, "c")
	assert.Equal(t, "cleared all charts", m.status)
}

func TestModelExport(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t, Options{Exporter: raster.New(dir)})

	cmd := press(m, "e")
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Equal(t, "exported bars.png", m.status)
	_, err := os.Stat(filepath.Join(dir, "bars.png"))
	assert.NoError(t, err)

	noExporter := newTestModel(t, Options{})
	cmd = press(noExporter, "s")
	noExporter.Update(cmd())
	assert.True(t, noExporter.statusErr)
}

func TestModelReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dashYAML), 0o644))
	def, err := dashboard.Load(path)
	require.NoError(t, err)

	m := newTestModel(t, Options{Definition: def, DashboardPath: path})
	require.NoError(t, os.WriteFile(path, []byte(`
charts:
  - {id: only, kind: histogram, rows: [{v: 1}, {v: 3}], options: {x: v}}
`), 0o644))

	press(m, "r")
	m.adapter.Wait()
	assert.Equal(t, []string{"only"}, m.adapter.IDs())
	assert.Equal(t, []string{"only"}, m.containerIDs())
	_, failed := m.errorFor("broken")
	assert.False(t, failed)

	m.Update(reloadMsg{Err: assert.AnError})
	assert.True(t, m.statusErr)
}

func TestModelMaxCharts(t *testing.T) {
	m := newTestModel(t, Options{MaxCharts: 1})
	assert.Equal(t, []string{"bars"}, m.adapter.IDs())
	frag, ok := m.errorFor("share")
	require.True(t, ok)
	assert.Contains(t, frag.Text(), "chart limit reached")
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t, Options{})
	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestGridShape(t *testing.T) {
	cases := []struct{ n, cols, rows int }{
		{0, 0, 0}, {1, 1, 1}, {2, 2, 1}, {3, 2, 2}, {4, 2, 2}, {5, 2, 3},
	}
	for _, c := range cases {
		cols, rows := gridShape(c.n)
		assert.Equal(t, c.cols, cols, "n=%d", c.n)
		assert.Equal(t, c.rows, rows, "n=%d", c.n)
	}
}

func TestLoadSkinForTheme(t *testing.T) {
	dir := t.TempDir()

	skin, err := LoadSkinForTheme(dir, theme.Dark)
	require.NoError(t, err)
	assert.Equal(t, DefaultSkin(theme.Dark), skin)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "light.yaml"), []byte("name: paper\ncolors:\n  primary: \"#123456\"\n"), 0o644))
	skin, err = LoadSkinForTheme(dir, theme.Light)
	require.NoError(t, err)
	assert.Equal(t, "paper", skin.Name)
	assert.Equal(t, "#123456", skin.Colors.Primary)
	assert.Equal(t, DefaultSkin(theme.Light).Colors.Error, skin.Colors.Error)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "dark.yaml"), []byte("colors: [\n"), 0o644))
	skin, err = LoadSkinForTheme(dir, theme.Dark)
	assert.Error(t, err)
	assert.Equal(t, "dark", skin.Name)
}
