// Package chart renders the BMI history as a PNG line chart with the
// category ranges shaded behind the series.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"bmitrack/internal/bmi"
	"bmitrack/internal/types"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("chart: no measurements to plot")

// MinCeiling is the lowest top of the BMI axis, so the Obese band is always
// visible.
const MinCeiling = 40.0

// Options controls the output image.
type Options struct {
	Width  int
	Height int
	Title  string

	// Location is used for the date tick labels. Defaults to time.Local.
	Location *time.Location
}

// DefaultOptions returns a 700x500 chart titled "BMI Trend Over Time".
func DefaultOptions() Options {
	return Options{
		Width:  700,
		Height: 500,
		Title:  "BMI Trend Over Time",
	}
}

// bandAlpha is roughly 30% opacity.
const bandAlpha = 77

var (
	colorBackground = color.White
	colorAxis       = color.NRGBA{R: 47, G: 79, B: 79, A: 255} // dark slate gray
	colorGrid       = color.NRGBA{R: 160, G: 160, B: 160, A: 255}
	colorSeries     = color.NRGBA{R: 70, G: 130, B: 180, A: 255} // steel blue

	bandColors = map[types.Category]color.NRGBA{
		types.CategoryUnderweight: {R: 173, G: 216, B: 230, A: bandAlpha}, // light blue
		types.CategoryNormal:      {R: 144, G: 238, B: 144, A: bandAlpha}, // light green
		types.CategoryOverweight:  {R: 255, G: 228, B: 181, A: bandAlpha}, // moccasin
		types.CategoryObese:       {R: 240, G: 128, B: 128, A: bandAlpha}, // light coral
	}
)

const (
	marginLeft   = 60.0
	marginRight  = 24.0
	marginTop    = 44.0
	marginBottom = 64.0
	markerRadius = 3.5
	xTickCount   = 5
	yTickStep    = 5.0
)

// Ceiling returns the top of the BMI axis for ms: the larger of MinCeiling
// and the highest BMI plus 2.
func Ceiling(ms []types.Measurement) float64 {
	top := MinCeiling
	for _, m := range ms {
		if m.BMI+2 > top {
			top = m.BMI + 2
		}
	}
	return top
}

// Render draws the chart for ms over the given bands and writes it to w as
// a PNG. Bands are clipped to the visible BMI range.
func Render(w io.Writer, ms []types.Measurement, bands []bmi.Band, opts Options) error {
	if len(ms) == 0 {
		return ErrNoData
	}
	if opts.Width <= int(marginLeft+marginRight) || opts.Height <= int(marginTop+marginBottom) {
		return fmt.Errorf("chart: image %dx%d is too small", opts.Width, opts.Height)
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	p := newPlot(ms, opts)
	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(colorBackground)
	dc.Clear()

	p.drawBands(dc, bands)
	p.drawGrid(dc)
	p.drawSeries(dc, ms)
	p.drawAxes(dc)
	p.drawLabels(dc, opts.Title)
	p.drawLegend(dc, bands)

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("chart: encoding PNG: %w", err)
	}
	return nil
}

// RenderFile renders the chart to path. The file is written to a temporary
// sibling first and renamed into place, so a failed render never leaves a
// truncated image behind.
func RenderFile(path string, ms []types.Measurement, bands []bmi.Band, opts Options) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".chart-*.png")
	if err != nil {
		return fmt.Errorf("chart: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := Render(tmp, ms, bands, opts); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("chart: closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("chart: moving chart into place: %w", err)
	}
	return nil
}

// plot maps data coordinates to pixels.
type plot struct {
	x0, y0, x1, y1 float64 // plot area in pixels, (x0,y0) top-left
	tMin, tMax     time.Time
	yMax           float64
	loc            *time.Location
}

func newPlot(ms []types.Measurement, opts Options) *plot {
	tMin, tMax := ms[0].Timestamp, ms[0].Timestamp
	for _, m := range ms[1:] {
		if m.Timestamp.Before(tMin) {
			tMin = m.Timestamp
		}
		if m.Timestamp.After(tMax) {
			tMax = m.Timestamp
		}
	}
	if !tMax.After(tMin) {
		tMin = tMin.Add(-time.Hour)
		tMax = tMax.Add(time.Hour)
	}

	return &plot{
		x0:   marginLeft,
		y0:   marginTop,
		x1:   float64(opts.Width) - marginRight,
		y1:   float64(opts.Height) - marginBottom,
		tMin: tMin,
		tMax: tMax,
		yMax: Ceiling(ms),
		loc:  opts.Location,
	}
}

func (p *plot) px(t time.Time) float64 {
	span := p.tMax.Sub(p.tMin).Seconds()
	frac := t.Sub(p.tMin).Seconds() / span
	return p.x0 + frac*(p.x1-p.x0)
}

func (p *plot) py(v float64) float64 {
	v = math.Max(0, math.Min(v, p.yMax))
	return p.y1 - v/p.yMax*(p.y1-p.y0)
}

func (p *plot) drawBands(dc *gg.Context, bands []bmi.Band) {
	for _, b := range bands {
		lo, hi := math.Max(b.Min, 0), math.Min(b.Max, p.yMax)
		if hi <= lo {
			continue
		}
		dc.SetColor(bandColors[b.Category])
		top := p.py(hi)
		dc.DrawRectangle(p.x0, top, p.x1-p.x0, p.py(lo)-top)
		dc.Fill()
	}
}

func (p *plot) drawGrid(dc *gg.Context) {
	dc.Push()
	defer dc.Pop()

	dc.SetColor(colorGrid)
	dc.SetLineWidth(0.5)
	dc.SetDash(4, 3)

	for _, v := range YTicks(p.yMax) {
		y := p.py(v)
		dc.DrawLine(p.x0, y, p.x1, y)
		dc.Stroke()
	}
	for _, t := range XTicks(p.tMin, p.tMax, xTickCount) {
		x := p.px(t)
		dc.DrawLine(x, p.y0, x, p.y1)
		dc.Stroke()
	}
}

func (p *plot) drawSeries(dc *gg.Context, ms []types.Measurement) {
	dc.SetColor(colorSeries)
	dc.SetLineWidth(2)
	for i, m := range ms {
		x, y := p.px(m.Timestamp), p.py(m.BMI)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.Stroke()

	for _, m := range ms {
		dc.DrawCircle(p.px(m.Timestamp), p.py(m.BMI), markerRadius)
		dc.Fill()
	}
}

func (p *plot) drawAxes(dc *gg.Context) {
	dc.SetColor(colorAxis)
	dc.SetLineWidth(1)
	dc.DrawRectangle(p.x0, p.y0, p.x1-p.x0, p.y1-p.y0)
	dc.Stroke()

	for _, v := range YTicks(p.yMax) {
		dc.DrawStringAnchored(fmt.Sprintf("%g", v), p.x0-6, p.py(v), 1, 0.5)
	}

	layout := tickLayout(p.tMax.Sub(p.tMin))
	for _, t := range XTicks(p.tMin, p.tMax, xTickCount) {
		x := p.px(t)
		dc.Push()
		dc.RotateAbout(gg.Radians(-30), x, p.y1+8)
		dc.DrawStringAnchored(t.In(p.loc).Format(layout), x, p.y1+8, 1, 1)
		dc.Pop()
	}
}

func (p *plot) drawLabels(dc *gg.Context, title string) {
	dc.SetColor(colorAxis)
	cx := (p.x0 + p.x1) / 2
	dc.DrawStringAnchored(title, cx, p.y0/2, 0.5, 0.5)
	dc.DrawStringAnchored("Date", cx, p.y1+marginBottom-10, 0.5, 0)

	dc.Push()
	dc.RotateAbout(gg.Radians(-90), 14, (p.y0+p.y1)/2)
	dc.DrawStringAnchored("BMI", 14, (p.y0+p.y1)/2, 0.5, 0.5)
	dc.Pop()
}

func (p *plot) drawLegend(dc *gg.Context, bands []bmi.Band) {
	const (
		pad    = 6.0
		row    = 16.0
		swatch = 12.0
		width  = 130.0
	)
	x, y := p.x1-width-pad, p.y0+pad
	height := pad*2 + row*float64(len(bands)+1)

	dc.SetRGBA(1, 1, 1, 0.85)
	dc.DrawRectangle(x, y, width, height)
	dc.Fill()
	dc.SetColor(colorGrid)
	dc.SetLineWidth(0.5)
	dc.DrawRectangle(x, y, width, height)
	dc.Stroke()

	cy := y + pad + row/2
	dc.SetColor(colorSeries)
	dc.SetLineWidth(2)
	dc.DrawLine(x+pad, cy, x+pad+swatch, cy)
	dc.Stroke()
	dc.SetColor(colorAxis)
	dc.DrawStringAnchored("BMI", x+pad*2+swatch, cy, 0, 0.5)

	for _, b := range bands {
		cy += row
		c := bandColors[b.Category]
		c.A = 160
		dc.SetColor(c)
		dc.DrawRectangle(x+pad, cy-swatch/2, swatch, swatch)
		dc.Fill()
		dc.SetColor(colorAxis)
		dc.DrawStringAnchored(b.Category.String(), x+pad*2+swatch, cy, 0, 0.5)
	}
}
