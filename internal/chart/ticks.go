package chart

import "time"

// YTicks returns the BMI gridline values from 0 to top in steps of 5.
func YTicks(top float64) []float64 {
	var ticks []float64
	for v := 0.0; v <= top; v += yTickStep {
		ticks = append(ticks, v)
	}
	return ticks
}

// XTicks returns n evenly spaced instants covering [from, to], endpoints
// included. n below 2 yields the two endpoints.
func XTicks(from, to time.Time, n int) []time.Time {
	if n < 2 {
		n = 2
	}
	step := to.Sub(from) / time.Duration(n-1)
	ticks := make([]time.Time, n)
	for i := range ticks {
		ticks[i] = from.Add(step * time.Duration(i))
	}
	ticks[n-1] = to
	return ticks
}

// tickLayout picks a date format fine enough to tell ticks apart.
func tickLayout(span time.Duration) string {
	switch {
	case span < 2*24*time.Hour:
		return "01-02 15:04"
	case span < 365*24*time.Hour:
		return "2006-01-02"
	default:
		return "2006-01"
	}
}
