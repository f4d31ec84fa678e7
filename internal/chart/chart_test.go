package chart

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmitrack/internal/bmi"
	"bmitrack/internal/types"
)

func testSeries() []types.Measurement {
	start := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	values := []float64{24.1, 23.8, 25.3, 26.0, 24.9}
	ms := make([]types.Measurement, len(values))
	for i, v := range values {
		ms[i] = types.Measurement{
			Timestamp: start.Add(time.Duration(i) * 72 * time.Hour),
			WeightKg:  v * 1.75 * 1.75,
			HeightM:   1.75,
			BMI:       v,
		}
	}
	return ms
}

func testBands(t *testing.T, ms []types.Measurement) []bmi.Band {
	t.Helper()
	e, err := bmi.New(bmi.DefaultThresholds())
	require.NoError(t, err)
	return e.Bands(Ceiling(ms))
}

func TestCeiling(t *testing.T) {
	assert.Equal(t, MinCeiling, Ceiling(nil))
	assert.Equal(t, MinCeiling, Ceiling([]types.Measurement{{BMI: 22}}))
	assert.Equal(t, 45.5, Ceiling([]types.Measurement{{BMI: 22}, {BMI: 43.5}}))
}

func TestRender_ProducesPNG(t *testing.T) {
	ms := testSeries()
	opts := DefaultOptions()
	opts.Location = time.UTC

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, ms, testBands(t, ms), opts))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 700, img.Bounds().Dx())
	assert.Equal(t, 500, img.Bounds().Dy())
}

func TestRender_ShadesCategoryBands(t *testing.T) {
	ms := testSeries()
	opts := Options{Width: 400, Height: 300, Location: time.UTC}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, ms, testBands(t, ms), opts))
	img, err := png.Decode(&buf)
	require.NoError(t, err)

	p := newPlot(ms, opts)
	// Sample just right of the left axis, away from the series and legend.
	x := int(p.x0) + 3
	underweight := img.At(x, int(p.py(9)))
	obese := img.At(x, int(p.py(36)))

	r1, _, b1, _ := underweight.RGBA()
	r2, g2, b2, _ := obese.RGBA()
	assert.Greater(t, b1, r1, "underweight band is tinted blue")
	assert.Greater(t, r2, g2, "obese band is tinted red")
	assert.Greater(t, r2, b2, "obese band is tinted red")
}

func TestRender_SingleMeasurement(t *testing.T) {
	ms := testSeries()[:1]

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, ms, testBands(t, ms), DefaultOptions()))
	assert.NotZero(t, buf.Len())
}

func TestRender_Errors(t *testing.T) {
	var buf bytes.Buffer

	err := Render(&buf, nil, nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrNoData)

	err = Render(&buf, testSeries(), nil, Options{Width: 50, Height: 50})
	assert.ErrorContains(t, err, "too small")
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.png")
	ms := testSeries()

	require.NoError(t, RenderFile(path, ms, testBands(t, ms), DefaultOptions()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestRenderFile_NoDataLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.png")

	err := RenderFile(path, nil, nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrNoData)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestYTicks(t *testing.T) {
	assert.Equal(t, []float64{0, 5, 10, 15, 20, 25, 30, 35, 40}, YTicks(40))
	assert.Equal(t, []float64{0, 5, 10, 15, 20, 25, 30, 35, 40, 45}, YTicks(47.3))
}

func TestXTicks(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(8 * 24 * time.Hour)

	ticks := XTicks(from, to, 5)
	require.Len(t, ticks, 5)
	assert.Equal(t, from, ticks[0])
	assert.Equal(t, from.Add(4*24*time.Hour), ticks[2])
	assert.Equal(t, to, ticks[4])

	assert.Len(t, XTicks(from, to, 0), 2)
}

func TestTickLayout(t *testing.T) {
	assert.Equal(t, "01-02 15:04", tickLayout(3*time.Hour))
	assert.Equal(t, "2006-01-02", tickLayout(30*24*time.Hour))
	assert.Equal(t, "2006-01", tickLayout(800*24*time.Hour))
}

func TestPlot_Scale(t *testing.T) {
	ms := testSeries()
	p := newPlot(ms, Options{Width: 400, Height: 300})

	assert.InDelta(t, p.x0, p.px(ms[0].Timestamp), 1e-9)
	assert.InDelta(t, p.x1, p.px(ms[len(ms)-1].Timestamp), 1e-9)
	assert.InDelta(t, p.y1, p.py(0), 1e-9)
	assert.InDelta(t, p.y0, p.py(p.yMax), 1e-9)
	assert.InDelta(t, p.y0, p.py(math.Inf(1)), 1e-9, "values above the ceiling are clamped")
}
