package bmi

import (
	"math"

	"bmitrack/internal/types"
)

// Band is the closed-open BMI interval [Min, Max) covered by one category.
type Band struct {
	Category types.Category
	Min      float64
	Max      float64
}

// Contains reports whether v falls inside the band.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v < b.Max
}

// Bands returns the four category bands in ascending order. The first band
// starts at 0 and the last one ends at ceiling, which lets a chart clip the
// open-ended Obese range to its visible area. A ceiling at or below the
// Obese threshold yields an unbounded last band.
func (e *Engine) Bands(ceiling float64) []Band {
	t := e.thresholds
	top := ceiling
	if top <= t.Overweight {
		top = math.Inf(1)
	}
	return []Band{
		{Category: types.CategoryUnderweight, Min: 0, Max: t.Underweight},
		{Category: types.CategoryNormal, Min: t.Underweight, Max: t.Normal},
		{Category: types.CategoryOverweight, Min: t.Normal, Max: t.Overweight},
		{Category: types.CategoryObese, Min: t.Overweight, Max: top},
	}
}
