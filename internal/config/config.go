// Package config defines the configuration structure for the BMI tracker.
// Configuration is loaded once at process start and is immutable thereafter.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> Struct Defaults (Lowest)
//
// Command-line flags may override individual paths per invocation; that
// happens in cmd/bmi, after loading.
package config

import (
	"fmt"
	"time"

	"bmitrack/internal/bmi"
)

// Config is the top-level configuration struct.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"warn" validate:"oneof=debug info warn error"`

	// Domain Configurations
	Store      StoreConfig
	Chart      ChartConfig
	Thresholds ThresholdConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// StoreConfig locates the history file.
type StoreConfig struct {
	DataFile string `envconfig:"BMI_DATA_FILE" default:"bmi_data.csv" validate:"required"`
	// Timezone is an IANA name used for the date column. Empty means the
	// system's local zone.
	Timezone string `envconfig:"BMI_TIMEZONE" validate:"omitempty,timezone"`
}

// ChartConfig controls the rendered history chart.
type ChartConfig struct {
	File   string `envconfig:"BMI_CHART_FILE" default:"bmi_history.png" validate:"required"`
	Width  int    `envconfig:"BMI_CHART_WIDTH" default:"700" validate:"min=200,max=4000"`
	Height int    `envconfig:"BMI_CHART_HEIGHT" default:"500" validate:"min=150,max=4000"`
}

// ThresholdConfig holds the category cut-offs. Each must exceed the one
// before it so the four ranges stay contiguous.
type ThresholdConfig struct {
	Underweight float64 `envconfig:"BMI_THRESHOLD_UNDERWEIGHT" default:"18.5" validate:"gt=0"`
	Normal      float64 `envconfig:"BMI_THRESHOLD_NORMAL" default:"25" validate:"gtfield=Underweight"`
	Overweight  float64 `envconfig:"BMI_THRESHOLD_OVERWEIGHT" default:"30" validate:"gtfield=Normal"`
}

// Engine converts the configured cut-offs into engine thresholds.
func (t ThresholdConfig) Engine() bmi.Thresholds {
	return bmi.Thresholds{
		Underweight: t.Underweight,
		Normal:      t.Normal,
		Overweight:  t.Overweight,
	}
}

// Location resolves the configured time zone.
func (s StoreConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string `ignored:"true"`
	Commit    string `ignored:"true"`
	BuildTime string `ignored:"true"`
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrDotenv indicates an explicitly requested .env file could not be read.
	ErrDotenv ConfigErrorType = "DOTENV_FAILED"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
