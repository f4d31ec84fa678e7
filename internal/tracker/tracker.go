// Package tracker runs one BMI calculation request as a sequence of
// independent stages:
//
//	validate -> compute -> persist
//
// Each stage fails on its own. A validation failure stops the request
// with an InvalidInput error that the caller can recover from by asking
// again. A persistence failure does not discard the computed result: it is
// reported next to the measurement in Result.PersistErr.
package tracker

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"bmitrack/internal/bmi"
	"bmitrack/internal/types"
)

// Store is the persistence the tracker writes to and reads history from.
type Store interface {
	Append(m types.Measurement) error
	ReadAll() ([]types.Measurement, error)
}

// Clock abstracts time.Now for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// Input is one user sample in canonical units.
type Input struct {
	WeightKg float64 `label:"weight" validate:"gt=0"`
	HeightM  float64 `label:"height" validate:"gt=0"`
}

// InputFromCentimeters converts a height given in centimeters, as the
// record form accepts it, into an Input.
func InputFromCentimeters(weightKg, heightCm float64) Input {
	return Input{WeightKg: weightKg, HeightM: heightCm / 100}
}

// Result is the outcome of Record. The measurement is always valid;
// PersistErr is set when it could not be saved.
type Result struct {
	Measurement types.Measurement
	PersistErr  error
}

// Saved reports whether the measurement reached the store.
func (r Result) Saved() bool { return r.PersistErr == nil }

// ErrNoStore is returned by Record and History on a tracker built without
// a store.
var ErrNoStore = errors.New("tracker: no history store configured")

// Tracker wires the engine to an optional store.
type Tracker struct {
	engine   *bmi.Engine
	store    Store
	clock    Clock
	validate *validator.Validate
	logger   *slog.Logger

	// last is the most recent timestamp handed out, used to keep
	// measurement times non-decreasing when the wall clock steps back.
	last time.Time
}

// New creates a Tracker. store may be nil for calculation-only use; clock
// defaults to SystemClock and logger to a discarding logger.
func New(engine *bmi.Engine, store Store, clock Clock, logger *slog.Logger) *Tracker {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("label"); name != "" {
			return name
		}
		return f.Name
	})

	return &Tracker{
		engine:   engine,
		store:    store,
		clock:    clock,
		validate: v,
		logger:   logger.With("component", "tracker"),
	}
}

// Validate checks that both values are finite and strictly positive.
func (t *Tracker) Validate(in Input) error {
	if err := t.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return types.InvalidInput("%s must be a positive number", verrs[0].Field())
		}
		return types.InvalidInput("%v", err)
	}
	if math.IsInf(in.WeightKg, 0) {
		return types.InvalidInput("weight must be a finite number")
	}
	if math.IsInf(in.HeightM, 0) {
		return types.InvalidInput("height must be a finite number")
	}
	return nil
}

// Calculate validates the input and computes a measurement stamped with the
// current time. Nothing is persisted.
func (t *Tracker) Calculate(in Input) (types.Measurement, error) {
	if err := t.Validate(in); err != nil {
		return types.Measurement{}, err
	}

	m, err := t.engine.Measure(in.WeightKg, in.HeightM, t.now())
	if err != nil {
		return types.Measurement{}, err
	}

	t.logger.Debug("bmi calculated",
		"measurement_id", m.ID,
		"bmi", m.BMI,
		"category", m.Category,
	)
	return m, nil
}

// Record calculates a measurement and appends it to the store. An invalid
// input returns an error and no result; a failed write returns the result
// with PersistErr set and a nil error.
func (t *Tracker) Record(in Input) (Result, error) {
	if t.store == nil {
		return Result{}, ErrNoStore
	}

	m, err := t.Calculate(in)
	if err != nil {
		return Result{}, err
	}

	res := Result{Measurement: m}
	if err := t.store.Append(m); err != nil {
		t.logger.Warn("measurement not saved",
			"measurement_id", m.ID,
			"error", err,
		)
		res.PersistErr = err
		return res, nil
	}

	t.logger.Info("measurement saved", "measurement_id", m.ID)
	return res, nil
}

// History returns every stored measurement in chronological order.
func (t *Tracker) History() ([]types.Measurement, error) {
	if t.store == nil {
		return nil, ErrNoStore
	}
	ms, err := t.store.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return ms, nil
}

func (t *Tracker) now() time.Time {
	ts := t.clock.Now().Truncate(time.Second)
	if ts.Before(t.last) {
		ts = t.last
	}
	t.last = ts
	return ts
}

// Reasons attached to ParsePositive errors under the "reason" detail key.
const (
	ReasonNotNumber   = "not_a_number"
	ReasonNotPositive = "not_positive"
)

// ParsePositive parses user-typed text as a positive number. field names
// the value in the error message.
func ParsePositive(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, types.NewAppError(types.ErrCodeValidationInvalidInput,
			fmt.Sprintf("invalid input, please enter a number for %s", field), nil).
			WithDetails(map[string]any{"reason": ReasonNotNumber})
	}
	if v <= 0 {
		return 0, types.NewAppError(types.ErrCodeValidationInvalidInput,
			fmt.Sprintf("%s must be a positive number", field), nil).
			WithDetails(map[string]any{"reason": ReasonNotPositive})
	}
	return v, nil
}

// InputReason returns the "reason" detail of a ParsePositive error, or ""
// for any other error.
func InputReason(err error) string {
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		return ""
	}
	reason, _ := appErr.Details["reason"].(string)
	return reason
}
