package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/control-theory/plotdeck/internal/theme"
)

// SkinColors defines the chrome colors of the TUI with semantic naming.
// Chart colors come from the theme palette and are not skinnable.
type SkinColors struct {
	// UI Component Colors
	Primary       string `yaml:"primary"`        // Main accent color (focused borders, highlights)
	Secondary     string `yaml:"secondary"`      // Secondary accent color
	Background    string `yaml:"background"`     // Status line background
	Surface       string `yaml:"surface"`        // Help panel background
	Border        string `yaml:"border"`         // Default border color
	BorderActive  string `yaml:"border_active"`  // Focused container border
	Text          string `yaml:"text"`           // Primary text color
	TextSecondary string `yaml:"text_secondary"` // Secondary/muted text
	TextInverse   string `yaml:"text_inverse"`   // Text on colored backgrounds

	ChartTitle string `yaml:"chart_title"` // Container captions

	// Status Colors
	Success string `yaml:"success"`
	Warning string `yaml:"warning"`
	Error   string `yaml:"error"` // Inline chart errors
	Info    string `yaml:"info"`

	Help      string `yaml:"help"`
	Highlight string `yaml:"highlight"`
	Disabled  string `yaml:"disabled"` // Empty containers
}

// Skin is a complete chrome color scheme for one theme
type Skin struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Author      string     `yaml:"author,omitempty"`
	Colors      SkinColors `yaml:"colors"`
}

// DefaultSkin returns the built-in skin for t
func DefaultSkin(t theme.Theme) *Skin {
	if t == theme.Light {
		return &Skin{
			Name:        "light",
			Description: "Default plotdeck color scheme - Light theme",
			Colors: SkinColors{
				Primary:       "#0d6efd", // Blue
				Secondary:     "#198754", // Green
				Background:    "#e9ecef", // Light gray
				Surface:       "#f8f9fa", // Off white
				Border:        "#adb5bd", // Gray
				BorderActive:  "#0d6efd", // Blue
				Text:          "#333333", // Charcoal
				TextSecondary: "#6c757d", // Slate
				TextInverse:   "#ffffff", // White

				ChartTitle: "#0d6efd", // Blue

				Success: "#198754", // Green
				Warning: "#b8860b", // Dark yellow
				Error:   "#dc3545", // Red
				Info:    "#0d6efd", // Blue

				Help:      "#6c757d", // Slate
				Highlight: "#d63384", // Pink
				Disabled:  "#adb5bd", // Gray
			},
		}
	}
	return &Skin{
		Name:        "dark",
		Description: "Default plotdeck color scheme - Dark theme",
		Colors: SkinColors{
			Primary:       "#0f93fc", // Blue
			Secondary:     "#49E209", // Green
			Background:    "#081C39", // Navy
			Surface:       "#2D2D2D", // Dark gray
			Border:        "#BCBEC0", // Gray
			BorderActive:  "#0f93fc", // Blue
			Text:          "#FFFFFF", // White
			TextSecondary: "#BCBEC0", // Gray
			TextInverse:   "#000000", // Black

			ChartTitle: "#0f93fc", // Blue

			Success: "#49E209", // Green
			Warning: "#FFD93D", // Yellow
			Error:   "#FF6B6B", // Red
			Info:    "#0f93fc", // Blue

			Help:      "#BCBEC0", // Gray
			Highlight: "#FF69B4", // Pink
			Disabled:  "#666666", // Dark gray
		},
	}
}

// LoadSkin loads a skin from a YAML file, filling missing colors from the
// built-in skin for t
func LoadSkin(path string, t theme.Theme) (*Skin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skin file: %w", err)
	}

	var skin Skin
	if err := yaml.Unmarshal(data, &skin); err != nil {
		return nil, fmt.Errorf("failed to parse skin file: %w", err)
	}

	applyDefaults(&skin.Colors, &DefaultSkin(t).Colors)
	return &skin, nil
}

// LoadSkinForTheme loads <dir>/<theme>.yaml, or the built-in skin when the
// directory is unset or has no file for t. A broken file yields the built-in
// skin and the error.
func LoadSkinForTheme(dir string, t theme.Theme) (*Skin, error) {
	if dir == "" {
		return DefaultSkin(t), nil
	}
	path := filepath.Join(dir, t.String()+".yaml")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultSkin(t), nil
	}
	skin, err := LoadSkin(path, t)
	if err != nil {
		return DefaultSkin(t), err
	}
	return skin, nil
}

// applyDefaults fills in any missing colors with defaults
func applyDefaults(colors *SkinColors, defaults *SkinColors) {
	fields := []struct{ dst, src *string }{
		{&colors.Primary, &defaults.Primary},
		{&colors.Secondary, &defaults.Secondary},
		{&colors.Background, &defaults.Background},
		{&colors.Surface, &defaults.Surface},
		{&colors.Border, &defaults.Border},
		{&colors.BorderActive, &defaults.BorderActive},
		{&colors.Text, &defaults.Text},
		{&colors.TextSecondary, &defaults.TextSecondary},
		{&colors.TextInverse, &defaults.TextInverse},
		{&colors.ChartTitle, &defaults.ChartTitle},
		{&colors.Success, &defaults.Success},
		{&colors.Warning, &defaults.Warning},
		{&colors.Error, &defaults.Error},
		{&colors.Info, &defaults.Info},
		{&colors.Help, &defaults.Help},
		{&colors.Highlight, &defaults.Highlight},
		{&colors.Disabled, &defaults.Disabled},
	}
	for _, f := range fields {
		if *f.dst == "" {
			*f.dst = *f.src
		}
	}
}
