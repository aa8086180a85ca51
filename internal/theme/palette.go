package theme

// Palette is the fixed set of plot colors for a theme
type Palette struct {
	Foreground string
	Grid       string
	AxisLine   string
	ZeroLine   string
	LegendBG   string
	Background string // always transparent so the surrounding page shows through
	Accent     string
	Series     []string
}

// Transparent is the background color used by every plot
const Transparent = "rgba(0,0,0,0)"

var darkPalette = Palette{
	Foreground: "#ffffff",
	Grid:       "#444444",
	AxisLine:   "#666666",
	ZeroLine:   "#666666",
	LegendBG:   "rgba(0,0,0,0.3)",
	Background: Transparent,
	Accent:     "#0f93fc",
	Series: []string{
		"#0f93fc", "#49e209", "#ff8c42", "#ff69b4",
		"#ffd93d", "#00cac7", "#ff6b6b", "#bcbec0",
	},
}

var lightPalette = Palette{
	Foreground: "#333333",
	Grid:       "#e6e6e6",
	AxisLine:   "#cccccc",
	ZeroLine:   "#cccccc",
	LegendBG:   "rgba(255,255,255,0.8)",
	Background: Transparent,
	Accent:     "#0d6efd",
	Series: []string{
		"#0d6efd", "#198754", "#fd7e14", "#d63384",
		"#ffc107", "#20c997", "#dc3545", "#6c757d",
	},
}

// PaletteFor returns a copy of the palette for t
func PaletteFor(t Theme) Palette {
	p := darkPalette
	if t == Light {
		p = lightPalette
	}
	p.Series = append([]string(nil), p.Series...)
	return p
}
