// Package history persists measurements to an append-only CSV file and
// reads them back in insertion order.
//
// File layout:
//
//	date,weight_kg,height_cm,bmi
//	2026-10-17 08:30:00,70,175,22.86
//
// The date column uses types.TimestampLayout in the store's location and
// carries no UTC offset. In a zone with daylight saving time the repeated
// hour at the end of DST is ambiguous, so two rows written an hour apart
// inside it read back as the same wall-clock time. Configure a fixed zone
// such as UTC when exact instants matter.
// Heights are written in centimeters; the in-memory model uses meters.
// Rows are only ever appended. There is no locking: the file belongs to a
// single interactive user.
package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"bmitrack/internal/types"
)

// Header is the fixed column schema of the history file.
var Header = []string{"date", "weight_kg", "height_cm", "bmi"}

// Classifier assigns a category to a stored BMI value on read-back.
type Classifier interface {
	Categorize(bmi float64) types.Category
}

// Options configures a Store.
type Options struct {
	// Path is the history file. Parent directories are created on Init.
	Path string

	// Location is the zone used to format and parse the date column.
	// Defaults to time.Local.
	Location *time.Location

	// Classifier fills Measurement.Category on ReadAll. When nil the
	// category is left empty.
	Classifier Classifier

	// Logger receives debug events. Nil discards them.
	Logger *slog.Logger
}

// Store is the CSV-backed measurement log.
type Store struct {
	path       string
	loc        *time.Location
	classifier Classifier
	logger     *slog.Logger
}

// New creates a Store. It does not touch the filesystem; call Init to
// create the file.
func New(opts Options) *Store {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		path:       opts.Path,
		loc:        loc,
		classifier: opts.Classifier,
		logger:     logger.With("component", "history", "path", opts.Path),
	}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Init creates the history file with its header row if it does not exist
// yet, or if it exists but is empty. An existing file with content is left
// untouched, so Init is safe to call any number of times.
func (s *Store) Init() error {
	info, err := os.Stat(s.path)
	switch {
	case err == nil && info.Size() > 0:
		return nil
	case err == nil:
		// Zero-length file: only the header is missing.
	case errors.Is(err, fs.ErrNotExist):
		if dir := filepath.Dir(s.path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return types.StoreWriteError(s.path, err)
			}
		}
	default:
		return types.StoreWriteError(s.path, err)
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return types.StoreWriteError(s.path, err)
	}
	if err := writeRows(f, Header); err != nil {
		return types.StoreWriteError(s.path, err)
	}
	s.logger.Debug("history file initialized")
	return nil
}

// Append writes m as the next row of the history file. Existing rows are
// never rewritten. The file is initialized first if needed.
func (s *Store) Append(m types.Measurement) error {
	if err := s.Init(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return types.StoreWriteError(s.path, err)
	}
	if err := writeRows(f, s.encode(m)); err != nil {
		return types.StoreWriteError(s.path, err)
	}

	s.logger.Debug("measurement appended",
		"measurement_id", m.ID,
		"bmi", m.BMI,
	)
	return nil
}

// ReadAll parses the whole history file in insertion order, which is also
// chronological order. A missing, empty or header-only file yields an
// empty slice and no error; a malformed row yields a store_read_failed
// error naming the line.
func (s *Store) ReadAll() ([]types.Measurement, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []types.Measurement{}, nil
	}
	if err != nil {
		return nil, types.StoreReadError(s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)
	r.TrimLeadingSpace = true
	r.ReuseRecord = true

	out := []types.Measurement{}
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, types.StoreReadError(s.path, err)
		}

		if first {
			first = false
			if err := checkHeader(record); err != nil {
				return nil, types.StoreReadError(s.path, err)
			}
			continue
		}

		line, _ := r.FieldPos(0)
		m, err := s.decode(record)
		if err != nil {
			return nil, types.StoreReadError(s.path, fmt.Errorf("line %d: %w", line, err))
		}
		out = append(out, m)
	}

	s.logger.Debug("history read", "count", len(out))
	return out, nil
}

func (s *Store) encode(m types.Measurement) []string {
	return []string{
		m.Timestamp.In(s.loc).Format(types.TimestampLayout),
		formatFloat(m.WeightKg),
		formatFloat(m.HeightCm()),
		formatFloat(m.BMI),
	}
}

func (s *Store) decode(record []string) (types.Measurement, error) {
	ts, err := time.ParseInLocation(types.TimestampLayout, strings.TrimSpace(record[0]), s.loc)
	if err != nil {
		return types.Measurement{}, fmt.Errorf("date %q: %w", record[0], err)
	}
	weight, err := parsePositive("weight_kg", record[1])
	if err != nil {
		return types.Measurement{}, err
	}
	heightCm, err := parsePositive("height_cm", record[2])
	if err != nil {
		return types.Measurement{}, err
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
	if err != nil {
		return types.Measurement{}, fmt.Errorf("bmi %q: %w", record[3], err)
	}

	m := types.Measurement{
		Timestamp: ts,
		WeightKg:  weight,
		HeightM:   heightCm / 100,
		BMI:       value,
	}
	if s.classifier != nil {
		m.Category = s.classifier.Categorize(value)
	}
	return m, nil
}

func checkHeader(record []string) error {
	for i, col := range Header {
		if strings.TrimSpace(record[i]) != col {
			return fmt.Errorf("unexpected header %q, want %q", strings.Join(record, ","), strings.Join(Header, ","))
		}
	}
	return nil
}

func parsePositive(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", field, raw, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s %q: must be positive", field, raw)
	}
	return v, nil
}

// formatFloat renders the shortest decimal text that parses back to v.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// writeRows writes CSV rows to f and closes it, reporting the first error.
func writeRows(f *os.File, rows ...[]string) error {
	w := csv.NewWriter(f)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
