package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/control-theory/plotdeck/internal/backend/raster"
	"github.com/control-theory/plotdeck/internal/dashboard"
	"github.com/control-theory/plotdeck/internal/logging"
	"github.com/control-theory/plotdeck/internal/theme"
	"github.com/control-theory/plotdeck/internal/tui"
)

// runApp initializes and runs the dashboard TUI
func runApp(cmd *cobra.Command, args []string) error {
	// Check if version flag was used
	if v, _ := cmd.Flags().GetBool("version"); v {
		versionCmd.Run(cmd, args)
		return nil
	}
	if cfg.Dashboard == "" {
		return fmt.Errorf("no dashboard file given; use -d or set dashboard in the config file")
	}

	logFile := cfg.LogFile
	if logFile == "" {
		if dir, err := theme.ConfigDir(); err == nil {
			logFile = filepath.Join(dir, "plotdeck.log")
		}
	}
	logger, closeLog, err := logging.New(logging.Options{Level: cfg.LogLevel, File: logFile})
	if err != nil {
		return err
	}
	defer closeLog()

	info := buildInfo()
	logger.Info("starting plotdeck", "version", info.Version, "dev", info.IsDev(), "dashboard", cfg.Dashboard)

	state, store, err := loadThemeState(logger)
	if err != nil {
		return err
	}
	if store != nil {
		unsubscribe := store.Persist(state, func(err error) {
			logger.Warn("failed to persist theme", "error", err)
		})
		defer unsubscribe()
	}

	def, err := dashboard.Load(cfg.Dashboard)
	if err != nil {
		return err
	}

	// Create cancellable context for the application
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var updates <-chan dashboard.Update
	if cfg.Watch {
		w, err := dashboard.NewWatcher(cfg.Dashboard, logger)
		if err != nil {
			return err
		}
		defer w.Close()
		updates = w.Start(ctx)
	}

	exporter := raster.New(cfg.ExportDir)
	exporter.Logger = logger

	model := tui.New(tui.Options{
		Definition:    def,
		DashboardPath: cfg.Dashboard,
		State:         state,
		Exporter:      exporter,
		MaxCharts:     cfg.MaxCharts,
		Config:        cfg.chartConfig(),
		SkinsDir:      skinsDir(),
		Logger:        logger,
		Updates:       updates,
	})
	defer model.Close()

	var p *tea.Program
	if cfg.TestMode {
		// Test mode - no TTY requirements
		p = tea.NewProgram(model, tea.WithInput(nil), tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	} else {
		p = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	}

	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal. Try --test-mode for non-interactive testing")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// loadThemeState builds the theme state from the persisted theme, overridden
// by --theme. A nil store means persistence is unavailable.
func loadThemeState(logger *log.Logger) (*theme.State, *theme.Store, error) {
	var store *theme.Store
	initial := theme.Default
	if path, err := theme.DefaultStorePath(); err != nil {
		logger.Warn("theme will not be persisted", "error", err)
	} else {
		store = theme.NewStore(path)
		if initial, err = store.Load(); err != nil {
			logger.Warn("failed to load persisted theme", "path", path, "error", err)
		}
	}

	if cfg.Theme != "" {
		t, err := theme.Parse(cfg.Theme)
		if err != nil {
			return nil, nil, err
		}
		initial = t
	}
	return theme.NewState(initial), store, nil
}

func skinsDir() string {
	if cfg.SkinsDir != "" {
		return cfg.SkinsDir
	}
	dir, err := theme.ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "skins")
}
