package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmitrack/internal/bmi"
	"bmitrack/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	engine, err := bmi.New(bmi.DefaultThresholds())
	require.NoError(t, err)
	return New(Options{
		Path:       filepath.Join(t.TempDir(), "bmi_data.csv"),
		Location:   time.UTC,
		Classifier: engine,
	})
}

func sample(at time.Time, weight, heightM, value float64) types.Measurement {
	return types.Measurement{
		Timestamp: at,
		WeightKg:  weight,
		HeightM:   heightM,
		BMI:       value,
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestStore_Init_CreatesHeader(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Init())
	assert.Equal(t, "date,weight_kg,height_cm,bmi\n", readFile(t, s.Path()))
}

func TestStore_Init_Idempotent(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC)

	require.NoError(t, s.Init())
	require.NoError(t, s.Append(sample(at, 70, 1.75, 22.86)))
	before := readFile(t, s.Path())

	require.NoError(t, s.Init())
	require.NoError(t, s.Init())

	after := readFile(t, s.Path())
	assert.Equal(t, before, after)
	assert.Equal(t, 1, strings.Count(after, "date,weight_kg"))
}

func TestStore_Init_EmptyFileGetsHeader(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), nil, 0o644))

	require.NoError(t, s.Init())
	assert.Equal(t, "date,weight_kg,height_cm,bmi\n", readFile(t, s.Path()))
}

func TestStore_Init_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "bmi_data.csv")
	s := New(Options{Path: path})

	require.NoError(t, s.Init())
	assert.FileExists(t, path)
}

func TestStore_Append_RowFormat(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2026, 10, 17, 8, 30, 5, 0, time.UTC)

	require.NoError(t, s.Append(sample(at, 70, 1.75, 22.86)))
	require.NoError(t, s.Append(sample(at.Add(time.Minute), 82.5, 1.7, 28.55)))

	want := "date,weight_kg,height_cm,bmi\n" +
		"2026-10-17 08:30:05,70,175,22.86\n" +
		"2026-10-17 08:31:05,82.5,170,28.55\n"
	assert.Equal(t, want, readFile(t, s.Path()))
}

func TestStore_Append_DoesNotRewriteExistingRows(t *testing.T) {
	s := newTestStore(t)
	legacy := "date,weight_kg,height_cm,bmi\n2024-01-01 10:00:00,70.0,175.0,22.86\n"
	require.NoError(t, os.WriteFile(s.Path(), []byte(legacy), 0o644))

	at := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append(sample(at, 71, 1.75, 23.18)))

	got := readFile(t, s.Path())
	assert.True(t, strings.HasPrefix(got, legacy), "existing rows must be preserved byte for byte")
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	start := time.Date(2026, 5, 1, 7, 0, 0, 0, time.UTC)

	written := []types.Measurement{
		sample(start, 70, 1.75, 22.86),
		sample(start.Add(24*time.Hour), 50, 1.6, 19.53),
		sample(start.Add(48*time.Hour), 45, 1.7, 15.57),
		sample(start.Add(72*time.Hour), 100, 1.7, 34.6),
		sample(start.Add(96*time.Hour), 68.35, 1.755, 22.19),
	}
	for _, m := range written {
		require.NoError(t, s.Append(m))
	}

	got, err := s.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, len(written))

	for i, m := range written {
		assert.True(t, m.Timestamp.Equal(got[i].Timestamp), "row %d timestamp", i)
		assert.Equal(t, m.WeightKg, got[i].WeightKg, "row %d weight", i)
		assert.Equal(t, m.HeightM, got[i].HeightM, "row %d height", i)
		assert.Equal(t, m.BMI, got[i].BMI, "row %d bmi", i)
	}

	assert.Equal(t, types.CategoryNormal, got[0].Category)
	assert.Equal(t, types.CategoryUnderweight, got[2].Category)
	assert.Equal(t, types.CategoryObese, got[3].Category)
}

func TestStore_RoundTrip_FineHeights(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2026, 5, 1, 7, 0, 0, 0, time.UTC)

	heightsCm := []float64{175.555, 170.0001, 181.33333}
	for i, cm := range heightsCm {
		require.NoError(t, s.Append(sample(at.Add(time.Duration(i)*time.Hour), 70, cm/100, 22.71)))
	}

	content := readFile(t, s.Path())
	assert.Contains(t, content, ",70,175.555,22.71\n")
	assert.Contains(t, content, ",70,170.0001,22.71\n")
	assert.Contains(t, content, ",70,181.33333,22.71\n")

	got, err := s.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, len(heightsCm))
	for i, cm := range heightsCm {
		assert.Equal(t, cm/100, got[i].HeightM, "height %v cm", cm)
	}
}

func TestStore_ReadAll_EmptyCases(t *testing.T) {
	tests := []struct {
		name    string
		content *string
	}{
		{"missing file", nil},
		{"empty file", ptr("")},
		{"header only", ptr("date,weight_kg,height_cm,bmi\n")},
		{"header with spaces", ptr("date, weight_kg, height_cm, bmi\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			if tt.content != nil {
				require.NoError(t, os.WriteFile(s.Path(), []byte(*tt.content), 0o644))
			}

			got, err := s.ReadAll()
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestStore_ReadAll_AcceptsLegacyRows(t *testing.T) {
	s := newTestStore(t)
	content := "date,weight_kg,height_cm,bmi\n2024-01-01 10:00:00,70.0,175.0,22.86\n"
	require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o644))

	got, err := s.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1.75, got[0].HeightM)
	assert.Equal(t, 22.86, got[0].BMI)
}

func TestStore_ReadAll_Corruption(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"bad date", "date,weight_kg,height_cm,bmi\nyesterday,70,175,22.86\n", "line 2"},
		{"bad weight", "date,weight_kg,height_cm,bmi\n2026-01-01 10:00:00,abc,175,22.86\n", "weight_kg"},
		{"zero height", "date,weight_kg,height_cm,bmi\n2026-01-01 10:00:00,70,0,22.86\n", "height_cm"},
		{"bad bmi", "date,weight_kg,height_cm,bmi\n2026-01-01 10:00:00,70,175,x\n", "bmi"},
		{"missing column", "date,weight_kg,height_cm,bmi\n2026-01-01 10:00:00,70,175\n", "fields"},
		{"wrong header", "when,kg,cm,index\n", "unexpected header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			require.NoError(t, os.WriteFile(s.Path(), []byte(tt.content), 0o644))

			_, err := s.ReadAll()
			require.Error(t, err)
			assert.True(t, types.IsCode(err, types.ErrCodeStoreRead))
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestStore_Append_UnwritableLocation(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := New(Options{Path: filepath.Join(blocker, "bmi_data.csv")})
	err := s.Append(sample(time.Now(), 70, 1.75, 22.86))
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodeStoreWrite))
}

func TestStore_LocationIsApplied(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	s := New(Options{Path: filepath.Join(t.TempDir(), "h.csv"), Location: loc})

	at := time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append(sample(at, 70, 1.75, 22.86)))
	assert.Contains(t, readFile(t, s.Path()), "2026-10-17 08:00:00")

	got, err := s.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, at.Equal(got[0].Timestamp))
	assert.Empty(t, got[0].Category, "no classifier configured")
}

func ptr(s string) *string { return &s }

func TestStore_FixedZoneKeepsRepeatedHourDistinct(t *testing.T) {
	s := newTestStore(t)

	// 01:30 EDT and 01:30 EST on the night New York leaves daylight saving.
	first := time.Date(2026, 11, 1, 5, 30, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	require.NoError(t, s.Append(sample(first, 70, 1.75, 22.86)))
	require.NoError(t, s.Append(sample(second, 70, 1.75, 22.86)))

	got, err := s.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, first.Equal(got[0].Timestamp))
	assert.True(t, second.Equal(got[1].Timestamp))
}
