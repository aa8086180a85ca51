// Package tui is the interactive terminal dashboard: a grid of chart
// containers drawn by the terminal back-end.
package tui

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/control-theory/plotdeck/internal/adapter"
	"github.com/control-theory/plotdeck/internal/backend/terminal"
	"github.com/control-theory/plotdeck/internal/chart"
	"github.com/control-theory/plotdeck/internal/dashboard"
	"github.com/control-theory/plotdeck/internal/logging"
	"github.com/control-theory/plotdeck/internal/registry"
	"github.com/control-theory/plotdeck/internal/theme"
)

// Options configures a Model
type Options struct {
	Definition    *dashboard.Definition
	DashboardPath string
	State         *theme.State
	// Exporter renders image exports; nil disables export
	Exporter  adapter.Backend
	MaxCharts int
	Config    chart.Config
	SkinsDir  string
	Logger    *log.Logger
	// Updates delivers live reloads of the dashboard file
	Updates <-chan dashboard.Update
}

// Model is the dashboard TUI model. It is also the adapter's Surface: every
// chart declared by the dashboard owns one container.
type Model struct {
	width  int
	height int

	adapter  *adapter.Adapter
	backend  *terminal.Backend
	state    *theme.State
	logger   *log.Logger
	def      *dashboard.Definition
	dashPath string
	skinsDir string
	skin     *Skin
	styles   styles

	focus     int
	loaded    bool
	showHelp  bool
	status    string
	statusErr bool

	keys keyMap
	help help.Model

	updates <-chan dashboard.Update
	events  chan adapter.Event
	unsub   func()

	mu         sync.Mutex
	containers []string
	errors     map[string]adapter.ErrorFragment
}

// New creates the model and the adapter drawing into it
func New(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	state := opts.State
	if state == nil {
		state = theme.NewState(theme.Default)
	}
	def := opts.Definition
	if def == nil {
		def = &dashboard.Definition{}
	}
	cfg := opts.Config
	if cfg == (chart.Config{}) {
		cfg = chart.DefaultConfig()
	}

	m := &Model{
		backend:  terminal.New(opts.Exporter, logger),
		state:    state,
		logger:   logger,
		def:      def,
		dashPath: opts.DashboardPath,
		skinsDir: opts.SkinsDir,
		keys:     defaultKeyMap(),
		help:     help.New(),
		updates:  opts.Updates,
		events:   make(chan adapter.Event, 64),
		errors:   make(map[string]adapter.ErrorFragment),
	}
	m.containers = def.IDs()

	m.adapter = adapter.New(m.backend, m,
		adapter.WithLogger(logger),
		adapter.WithRegistry(registry.New(opts.MaxCharts)),
		adapter.WithConfig(cfg),
		adapter.WithNotify(m.notify),
	)
	m.adapter.Attach(state)
	m.unsub = state.Subscribe(func(t theme.Theme) { m.applySkin(t) })
	m.applySkin(state.Current())
	return m
}

// Adapter returns the chart adapter driving the model
func (m *Model) Adapter() *adapter.Adapter { return m.adapter }

// Close detaches from the theme state and waits for pending chart work
func (m *Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
	m.adapter.Close()
}

// Exists implements adapter.Surface
func (m *Model) Exists(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.containers {
		if c == id {
			return true
		}
	}
	return false
}

// ShowError implements adapter.Surface
func (m *Model) ShowError(id string, frag adapter.ErrorFragment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[id] = frag
}

func (m *Model) errorFor(id string) (adapter.ErrorFragment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	frag, ok := m.errors[id]
	return frag, ok
}

func (m *Model) clearError(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.errors, id)
}

func (m *Model) containerIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.containers...)
}

func (m *Model) setContainers(ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.containers = append([]string(nil), ids...)
	for id := range m.errors {
		if !contains(ids, id) {
			delete(m.errors, id)
		}
	}
}

// notify runs on adapter goroutines; events are dropped rather than block
// when the UI falls behind
func (m *Model) notify(ev adapter.Event) {
	select {
	case m.events <- ev:
	default:
	}
}

// applySkin switches the chrome to the skin of t
func (m *Model) applySkin(t theme.Theme) {
	skin, err := LoadSkinForTheme(m.skinsDir, t)
	if err != nil {
		m.logger.Warn("skin load failed, using built-in skin", "theme", t, "error", err)
	}
	m.skin = skin
	m.styles = newStyles(skin)
}

// Init starts listening for adapter events and dashboard reloads
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForEvent()}
	if m.updates != nil {
		cmds = append(cmds, m.waitForUpdate())
	}
	return tea.Batch(cmds...)
}

// eventMsg wraps a settled adapter operation
type eventMsg adapter.Event

// reloadMsg carries a dashboard reload from the watcher
type reloadMsg dashboard.Update

// exportedMsg reports a finished export
type exportedMsg struct {
	id     string
	format string
	err    error
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-m.events)
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.updates
		if !ok {
			return nil
		}
		return reloadMsg(u)
	}
}

func (m *Model) exportCmd(id, format string) tea.Cmd {
	task := m.adapter.ExportChart(context.Background(), id, format)
	return func() tea.Msg {
		return exportedMsg{id: id, format: format, err: adapter.Wait(context.Background(), task)}
	}
}

func contains(ids []string, id string) bool {
	for _, c := range ids {
		if c == id {
			return true
		}
	}
	return false
}
