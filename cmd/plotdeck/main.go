package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/control-theory/plotdeck/internal/chart"
	"github.com/control-theory/plotdeck/internal/registry"
	"github.com/control-theory/plotdeck/internal/version"
)

// Build variables - set by ldflags during build
var (
	buildVersion = "dev"
	commit       = "unknown"
	buildTime    = "unknown"
	goVersion    = "unknown"
)

// Config struct for application configuration
type Config struct {
	ConfigFile   string `mapstructure:"config"`
	Dashboard    string `mapstructure:"dashboard"`
	Watch        bool   `mapstructure:"watch"`
	Theme        string `mapstructure:"theme"`
	MaxCharts    int    `mapstructure:"max-charts"`
	ExportWidth  int    `mapstructure:"export-width"`
	ExportHeight int    `mapstructure:"export-height"`
	ExportDir    string `mapstructure:"export-dir"`
	SkinsDir     string `mapstructure:"skins-dir"`
	LogFile      string `mapstructure:"log-file"`
	LogLevel     string `mapstructure:"log-level"`
	TestMode     bool   `mapstructure:"test-mode"`
}

// chartConfig returns the draw configuration for the configured export size
func (c Config) chartConfig() chart.Config {
	cfg := chart.DefaultConfig()
	if c.ExportWidth > 0 {
		cfg.ExportWidth = c.ExportWidth
	}
	if c.ExportHeight > 0 {
		cfg.ExportHeight = c.ExportHeight
	}
	return cfg
}

var (
	cfg     Config
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "plotdeck",
		Short: "Themed chart dashboards for the terminal",
		Long: `Plotdeck - Draw dashboards of bar, line, pie, scatter, box, histogram and heatmap charts.

Charts are declared in a YAML dashboard file and restyle live when the dark/light theme is toggled.
Any chart can be exported as PNG or SVG.`,
		Example: `  # Open a dashboard
  plotdeck -d sales.yaml

  # Redraw whenever the file changes
  plotdeck -d sales.yaml --watch

  # Start in the light theme
  plotdeck -d sales.yaml --theme light

  # Export every chart without opening the TUI
  plotdeck render -d sales.yaml -o out --format svg

  # Persist the theme for the next run
  plotdeck theme toggle`,
		RunE: runApp,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information about Plotdeck.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), buildInfo().String())
		},
	}
)

func buildInfo() version.Info {
	return version.Resolve(version.Info{
		Version:   buildVersion,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: goVersion,
	})
}

func init() {
	cobra.OnInitialize(initConfig)

	// Root command flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/plotdeck/config.yml)")
	rootCmd.PersistentFlags().StringP("dashboard", "d", "", "Dashboard YAML file")
	rootCmd.PersistentFlags().String("theme", "", "Theme to start with: dark or light (default is the persisted theme)")
	rootCmd.PersistentFlags().Int("max-charts", registry.DefaultMaxCharts, "Maximum number of charts displayed at once (0 for no limit)")
	rootCmd.PersistentFlags().Int("export-width", chart.DefaultExportWidth, "Width of exported images in pixels")
	rootCmd.PersistentFlags().Int("export-height", chart.DefaultExportHeight, "Height of exported images in pixels")
	rootCmd.PersistentFlags().String("log-file", "", "Log file (default is plotdeck.log in the config directory for the TUI, stderr otherwise)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().BoolP("watch", "w", false, "Reload the dashboard when the file changes")
	rootCmd.Flags().String("export-dir", ".", "Directory exported images are written to")
	rootCmd.Flags().String("skins-dir", "", "Directory holding dark.yaml/light.yaml skins (default is skins in the config directory)")
	rootCmd.Flags().Bool("test-mode", false, "Run in test mode (works without TTY)")
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")

	// Bind flags to viper
	viper.BindPFlag("dashboard", rootCmd.PersistentFlags().Lookup("dashboard"))
	viper.BindPFlag("theme", rootCmd.PersistentFlags().Lookup("theme"))
	viper.BindPFlag("max-charts", rootCmd.PersistentFlags().Lookup("max-charts"))
	viper.BindPFlag("export-width", rootCmd.PersistentFlags().Lookup("export-width"))
	viper.BindPFlag("export-height", rootCmd.PersistentFlags().Lookup("export-height"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("watch", rootCmd.Flags().Lookup("watch"))
	viper.BindPFlag("export-dir", rootCmd.Flags().Lookup("export-dir"))
	viper.BindPFlag("skins-dir", rootCmd.Flags().Lookup("skins-dir"))
	viper.BindPFlag("test-mode", rootCmd.Flags().Lookup("test-mode"))

	rootCmd.AddCommand(versionCmd, renderCmd, themeCmd)
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find XDG config directory
		home, err := os.UserHomeDir()
		if err != nil {
			log.Printf("Error finding home directory: %v", err)
		} else {
			viper.AddConfigPath(home + "/.config/plotdeck")
			viper.SetConfigType("yaml")
			viper.SetConfigName("config")
		}
	}

	// Support environment variables
	viper.SetEnvPrefix("PLOTDECK")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err == nil {
		log.Printf("Using config file: %s", viper.ConfigFileUsed())
	}

	// Unmarshal config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
