package types

import (
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the on-disk and display format for measurement times.
const TimestampLayout = "2006-01-02 15:04:05"

// Measurement is one BMI sample. BMI and Category are derived from the
// weight and height by the engine and cached here; a Measurement is never
// modified once it has been appended to the history.
type Measurement struct {
	// ID identifies the measurement within a process run. It is not
	// persisted.
	ID        uuid.UUID
	Timestamp time.Time
	WeightKg  float64
	HeightM   float64
	BMI       float64
	Category  Category
}

// HeightCm returns the height in centimeters. The meter to centimeter
// product is cut to 15 significant digits, which drops the float noise of
// the multiplication (175.00000000000003) while keeping every digit the
// user typed, so HeightCm()/100 gives back HeightM exactly.
func (m Measurement) HeightCm() float64 {
	cm, err := strconv.ParseFloat(strconv.FormatFloat(m.HeightM*100, 'g', 15, 64), 64)
	if err != nil {
		return m.HeightM * 100
	}
	return cm
}

// Round2 rounds x to two decimal places, halves away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
