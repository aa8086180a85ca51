package chart

import (
	"math"
	"sort"

	"github.com/control-theory/plotdeck/internal/table"
)

// Bin is one histogram bucket covering [Lo, Hi)
type Bin struct {
	Lo, Hi float64
	Count  int
}

// BoxStats is the five-number summary drawn by box plots
type BoxStats struct {
	Min, Q1, Median, Q3, Max float64
	N                        int
}

// Finite reports whether f is neither NaN nor infinite
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// FiniteFloat is Value.Float restricted to drawable numbers
func FiniteFloat(v table.Value) (float64, bool) {
	f, ok := v.Float()
	if !ok || !Finite(f) {
		return 0, false
	}
	return f, true
}

// Numbers returns the finite numeric values of vs in order, skipping the rest
func Numbers(vs []table.Value) []float64 {
	out := make([]float64, 0, len(vs))
	for _, v := range vs {
		if f, ok := FiniteFloat(v); ok {
			out = append(out, f)
		}
	}
	return out
}

// Histogram buckets the finite values into Sturges-rule bins. The last bin
// is closed so the maximum is counted.
func Histogram(values []float64) []Bin {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if Finite(v) {
			finite = append(finite, v)
		}
	}
	values = finite
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi || !Finite(hi-lo) {
		return []Bin{{Lo: lo - 0.5, Hi: hi + 0.5, Count: len(values)}}
	}

	n := int(math.Ceil(math.Log2(float64(len(values))))) + 1
	width := (hi - lo) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lo = lo + float64(i)*width
		bins[i].Hi = lo + float64(i+1)*width
	}
	for _, v := range values {
		i := int((v - lo) / width)
		i = max(0, min(i, n-1))
		bins[i].Count++
	}
	return bins
}

// Summarize computes box statistics with linearly interpolated quartiles.
// ok is false for an empty input.
func Summarize(values []float64) (BoxStats, bool) {
	if len(values) == 0 {
		return BoxStats{}, false
	}
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	return BoxStats{
		Min:    s[0],
		Q1:     quantile(s, 0.25),
		Median: quantile(s, 0.5),
		Q3:     quantile(s, 0.75),
		Max:    s[len(s)-1],
		N:      len(s),
	}, true
}

func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	i := int(math.Floor(pos))
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(i)
	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}

// Extent returns the min and max of every finite Z cell
func Extent(z [][]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range z {
		for _, v := range row {
			if !Finite(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}
