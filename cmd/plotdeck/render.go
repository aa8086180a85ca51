package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/control-theory/plotdeck/internal/adapter"
	"github.com/control-theory/plotdeck/internal/backend/raster"
	"github.com/control-theory/plotdeck/internal/dashboard"
	"github.com/control-theory/plotdeck/internal/logging"
	"github.com/control-theory/plotdeck/internal/registry"
	"github.com/control-theory/plotdeck/internal/theme"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Export every chart of a dashboard as an image",
	Long: `Draw every chart of a dashboard without the TUI and write one image per chart.

Charts that cannot be drawn are reported and skipped; the command fails if any chart failed.
With --auto, charts are also generated for every named dataset of the dashboard.`,
	Example: `  plotdeck render -d sales.yaml -o out
  plotdeck render -d sales.yaml -o out --format svg --theme light
  plotdeck render -d sales.yaml -o out --auto`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir, _ := cmd.Flags().GetString("out")
		format, _ := cmd.Flags().GetString("format")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		auto, _ := cmd.Flags().GetBool("auto")

		logger, closeLog, err := logging.New(logging.Options{
			Level:  cfg.LogLevel,
			File:   cfg.LogFile,
			Output: cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}
		defer closeLog()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return renderDashboard(ctx, renderOptions{
			dashboard:   cfg.Dashboard,
			outDir:      outDir,
			format:      format,
			concurrency: concurrency,
			auto:        auto,
			theme:       cfg.Theme,
			maxCharts:   cfg.MaxCharts,
			logger:      logger,
		}, cmd)
	},
}

func init() {
	renderCmd.Flags().StringP("out", "o", ".", "Output directory")
	renderCmd.Flags().String("format", adapter.FormatPNG, "Image format: png or svg")
	renderCmd.Flags().Int("concurrency", 4, "Maximum number of charts exported at once")
	renderCmd.Flags().Bool("auto", false, "Also generate charts for every named dataset")
}

type renderOptions struct {
	dashboard   string
	outDir      string
	format      string
	concurrency int
	auto        bool
	theme       string
	maxCharts   int
	logger      *log.Logger
}

// renderDashboard draws def headlessly on the raster back-end and exports
// every chart that could be drawn
func renderDashboard(ctx context.Context, opts renderOptions, cmd *cobra.Command) error {
	if opts.dashboard == "" {
		return fmt.Errorf("no dashboard file given; use -d")
	}
	format := strings.ToLower(opts.format)
	if format != adapter.FormatPNG && format != adapter.FormatSVG {
		return fmt.Errorf("%w: %q", adapter.ErrUnsupportedFormat, opts.format)
	}

	def, err := dashboard.Load(opts.dashboard)
	if err != nil {
		return err
	}
	if opts.auto {
		if err := def.AddAuto(); err != nil {
			return err
		}
	}

	t := theme.Default
	switch {
	case opts.theme != "":
		if t, err = theme.Parse(opts.theme); err != nil {
			return err
		}
	case def.Theme != "":
		if t, err = theme.Parse(def.Theme); err != nil {
			return err
		}
	}

	backend := raster.New(opts.outDir)
	backend.Logger = opts.logger
	surface := raster.NewSurface(def.IDs()...)
	a := adapter.New(backend, surface,
		adapter.WithLogger(opts.logger),
		adapter.WithTheme(t),
		adapter.WithRegistry(registry.New(opts.maxCharts)),
		adapter.WithConfig(cfg.chartConfig()),
	)
	defer a.Close()

	applyErr := dashboard.Apply(ctx, a, def)
	a.Wait()

	if err := a.ExportAll(ctx, format, opts.concurrency); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, id := range a.IDs() {
		fmt.Fprintln(out, filepath.Join(opts.outDir, id+"."+format))
	}
	for _, id := range def.IDs() {
		if frag, ok := surface.Errors()[id]; ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", id, frag.Text())
		}
	}
	if applyErr != nil {
		return fmt.Errorf("%d of %d charts could not be drawn", len(def.Charts)-a.Count(), len(def.Charts))
	}
	return nil
}
