// Package bmi implements the Body Mass Index formula and the category
// classification table.
//
// BMI is weight in kilograms divided by the square of height in meters,
// rounded to two decimal places (halves away from zero). The engine always
// works in meters; callers holding centimeters convert at their boundary.
//
// Categories partition the real line into four contiguous closed-open
// ranges:
//
//	(-inf, Underweight)       Underweight
//	[Underweight, Normal)     Normal weight
//	[Normal, Overweight)      Overweight
//	[Overweight, +inf)        Obese
//
// where Underweight/Normal/Overweight are the configured Thresholds.
package bmi

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"bmitrack/internal/types"
)

// Thresholds are the upper bounds (exclusive) of the first three categories.
type Thresholds struct {
	Underweight float64
	Normal      float64
	Overweight  float64
}

// DefaultThresholds returns the WHO adult cut-offs 18.5 / 25 / 30.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Underweight: 18.5,
		Normal:      25,
		Overweight:  30,
	}
}

// Validate checks that the thresholds are positive, finite and strictly
// ascending, which keeps the four ranges free of gaps and overlaps.
func (t Thresholds) Validate() error {
	bounds := []float64{t.Underweight, t.Normal, t.Overweight}
	for _, b := range bounds {
		if math.IsNaN(b) || math.IsInf(b, 0) || b <= 0 {
			return types.NewAppError(types.ErrCodeValidationThresholds,
				fmt.Sprintf("threshold %v must be a positive finite number", b), nil)
		}
	}
	if !(t.Underweight < t.Normal && t.Normal < t.Overweight) {
		return types.NewAppError(types.ErrCodeValidationThresholds,
			fmt.Sprintf("thresholds must be strictly ascending, got %v < %v < %v",
				t.Underweight, t.Normal, t.Overweight), nil)
	}
	return nil
}

// Engine computes and classifies BMI values. It holds no mutable state.
type Engine struct {
	thresholds Thresholds
}

// New creates an Engine for the given thresholds.
func New(t Thresholds) (*Engine, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Engine{thresholds: t}, nil
}

// Compute returns weightKg / heightM², rounded to two decimals.
// Both inputs must be finite and strictly positive.
func (e *Engine) Compute(weightKg, heightM float64) (float64, error) {
	if !positive(weightKg) {
		return 0, types.InvalidInput("weight must be a positive number, got %v", weightKg)
	}
	if !positive(heightM) {
		return 0, types.InvalidInput("height must be a positive number, got %v", heightM)
	}
	return types.Round2(weightKg / (heightM * heightM)), nil
}

// Categorize maps a BMI value to its category. It is total: negative
// values are Underweight and there is no upper bound on Obese.
func (e *Engine) Categorize(bmi float64) types.Category {
	switch {
	case bmi < e.thresholds.Underweight:
		return types.CategoryUnderweight
	case bmi < e.thresholds.Normal:
		return types.CategoryNormal
	case bmi < e.thresholds.Overweight:
		return types.CategoryOverweight
	default:
		return types.CategoryObese
	}
}

// Measure computes and classifies one sample taken at the given time.
func (e *Engine) Measure(weightKg, heightM float64, at time.Time) (types.Measurement, error) {
	value, err := e.Compute(weightKg, heightM)
	if err != nil {
		return types.Measurement{}, err
	}
	return types.Measurement{
		ID:        uuid.New(),
		Timestamp: at.Truncate(time.Second),
		WeightKg:  weightKg,
		HeightM:   heightM,
		BMI:       value,
		Category:  e.Categorize(value),
	}, nil
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
