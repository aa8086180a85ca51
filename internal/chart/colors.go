package chart

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ScaleViridis is the continuous color scale used for scatter color fields
const ScaleViridis = "Viridis"

// viridis anchor stops, evenly spaced on [0,1]
var viridisStops = []string{
	"#440154", "#482878", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// IsColorLiteral reports whether s is a literal color rather than a field
// name: #rgb, #rrggbb, rgb(...) or rgba(...)
func IsColorLiteral(s string) bool {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba(") {
		return strings.HasSuffix(s, ")")
	}
	if !strings.HasPrefix(s, "#") {
		return false
	}
	_, err := colorful.Hex(expandShortHex(s))
	return err == nil
}

// NormalizeHex lower-cases a hex color and expands the #rgb form.
// Non-hex input is returned unchanged.
func NormalizeHex(s string) string {
	c, err := colorful.Hex(expandShortHex(strings.TrimSpace(s)))
	if err != nil {
		return s
	}
	return c.Hex()
}

// ScaleColor maps v within [lo,hi] onto the viridis scale and returns a hex
// color. A degenerate range or NaN maps to the middle of the scale.
func ScaleColor(v, lo, hi float64) string {
	t := 0.5
	if hi > lo && Finite(hi-lo) && !math.IsNaN(v) {
		t = (v - lo) / (hi - lo)
	}
	return viridisAt(t).Hex()
}

// Blend mixes two hex colors in Lab space; t=0 yields a, t=1 yields b
func Blend(a, b string, t float64) string {
	ca, errA := colorful.Hex(expandShortHex(a))
	cb, errB := colorful.Hex(expandShortHex(b))
	if errA != nil || errB != nil {
		return a
	}
	return ca.BlendLab(cb, clamp(t, 0, 1)).Clamped().Hex()
}

// SeriesColor picks the i-th color of a colorway, wrapping around
func SeriesColor(colorway []string, i int) string {
	if len(colorway) == 0 {
		return "#1f77b4"
	}
	return colorway[i%len(colorway)]
}

// KeyColors assigns colorway entries to categorical keys in first-seen order
func KeyColors(keys []string, colorway []string) []string {
	seen := make(map[string]int)
	out := make([]string, len(keys))
	for i, k := range keys {
		n, ok := seen[k]
		if !ok {
			n = len(seen)
			seen[k] = n
		}
		out[i] = SeriesColor(colorway, n)
	}
	return out
}

// RGBA parses a hex, rgb() or rgba() color. Alpha in rgba() is a 0..1 float.
func RGBA(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(expandShortHex(s))
		if err != nil {
			return color.RGBA{}, false
		}
		r, g, b := c.RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 0xff}, true
	}

	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return color.RGBA{}, false
	}
	fn := s[:open]
	parts := strings.Split(s[open+1:end], ",")
	if (fn != "rgb" || len(parts) != 3) && (fn != "rgba" || len(parts) != 4) {
		return color.RGBA{}, false
	}

	var ch [4]uint8
	ch[3] = 0xff
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return color.RGBA{}, false
		}
		if i == 3 {
			f *= 255
		}
		ch[i] = uint8(math.Round(clamp(f, 0, 255)))
	}
	return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, true
}

func viridisAt(t float64) colorful.Color {
	if math.IsNaN(t) {
		t = 0.5
	}
	t = clamp(t, 0, 1)
	segments := float64(len(viridisStops) - 1)
	pos := t * segments
	i := int(math.Floor(pos))
	if i >= len(viridisStops)-1 {
		c, _ := colorful.Hex(viridisStops[len(viridisStops)-1])
		return c
	}
	a, _ := colorful.Hex(viridisStops[i])
	b, _ := colorful.Hex(viridisStops[i+1])
	return a.BlendLab(b, pos-float64(i)).Clamped()
}

func expandShortHex(s string) string {
	if len(s) == 4 && s[0] == '#' {
		return string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
