package chart

import (
	"github.com/control-theory/plotdeck/internal/theme"
)

// Fixed layout geometry
const (
	LayoutHeight   = 400
	FontFamily     = "Inter, system-ui, sans-serif"
	FontSize       = 12
	TitleFontSize  = 16
	marginSide     = 40
	marginTop      = 50
	marginBottom   = 40
	legendBorderPx = 1
)

// Layout is the theme-derived visual envelope of a chart
type Layout struct {
	Title      Title    `json:"title"`
	Font       Font     `json:"font"`
	PaperBG    string   `json:"paper_bgcolor"`
	PlotBG     string   `json:"plot_bgcolor"`
	XAxis      Axis     `json:"xaxis"`
	YAxis      Axis     `json:"yaxis"`
	Legend     Legend   `json:"legend"`
	ShowLegend bool     `json:"showlegend"`
	Margin     Margin   `json:"margin"`
	Height     int      `json:"height"`
	AutoSize   bool     `json:"autosize"`
	Colorway   []string `json:"colorway"`
}

// Title is the chart heading; empty text renders no title
type Title struct {
	Text string `json:"text"`
	Font Font   `json:"font"`
}

// Font describes text styling
type Font struct {
	Family string `json:"family,omitempty"`
	Size   int    `json:"size,omitempty"`
	Color  string `json:"color"`
}

// Axis styling; Title holds the axis caption
type Axis struct {
	Title         string `json:"title,omitempty"`
	GridColor     string `json:"gridcolor"`
	LineColor     string `json:"linecolor"`
	ZeroLineColor string `json:"zerolinecolor"`
	TickColor     string `json:"tickcolor"`
	Font          Font   `json:"tickfont"`
}

// Legend styling
type Legend struct {
	BG          string `json:"bgcolor"`
	BorderWidth int    `json:"borderwidth"`
	Font        Font   `json:"font"`
}

// Margin in logical units
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// BuildLayout derives the layout for a theme and title. It has no hidden
// state: equal arguments give equal layouts.
func BuildLayout(t theme.Theme, title string) Layout {
	p := theme.PaletteFor(t)
	font := Font{Family: FontFamily, Size: FontSize, Color: p.Foreground}
	axis := Axis{
		GridColor:     p.Grid,
		LineColor:     p.AxisLine,
		ZeroLineColor: p.ZeroLine,
		TickColor:     p.Grid,
		Font:          font,
	}

	return Layout{
		Title: Title{
			Text: title,
			Font: Font{Family: FontFamily, Size: TitleFontSize, Color: p.Foreground},
		},
		Font:       font,
		PaperBG:    p.Background,
		PlotBG:     p.Background,
		XAxis:      axis,
		YAxis:      axis,
		Legend:     Legend{BG: p.LegendBG, BorderWidth: legendBorderPx, Font: font},
		ShowLegend: true,
		Margin:     Margin{L: marginSide, R: marginSide, T: marginTop, B: marginBottom},
		Height:     LayoutHeight,
		AutoSize:   true,
		Colorway:   p.Series,
	}
}

// WithAxisTitles returns a copy of l with axis captions set
func (l Layout) WithAxisTitles(x, y string) Layout {
	l.XAxis.Title = x
	l.YAxis.Title = y
	l.Colorway = append([]string(nil), l.Colorway...)
	return l
}

// LayoutFor builds the full layout for opts: theme colors, the options'
// title and its axis captions
func LayoutFor(t theme.Theme, opts Options) Layout {
	x, y := opts.AxisTitles()
	return BuildLayout(t, opts.ChartTitle()).WithAxisTitles(x, y)
}

// Restyle rebuilds l for a new theme, keeping its title and axis captions
func (l Layout) Restyle(t theme.Theme) Layout {
	return BuildLayout(t, l.Title.Text).WithAxisTitles(l.XAxis.Title, l.YAxis.Title)
}

// Config is the draw configuration handed to the back-end with each chart
type Config struct {
	Responsive   bool `json:"responsive"`
	DisplayLogo  bool `json:"displaylogo"`
	ExportWidth  int  `json:"-"`
	ExportHeight int  `json:"-"`
}

// Default export resolution
const (
	DefaultExportWidth  = 1200
	DefaultExportHeight = 800
)

// DefaultConfig returns the standard draw configuration
func DefaultConfig() Config {
	return Config{
		Responsive:   true,
		ExportWidth:  DefaultExportWidth,
		ExportHeight: DefaultExportHeight,
	}
}
