// Package render draws the dashboard charts onto fixed-size RGBA rasters.
// Rendering is deterministic: equal input produces byte-equal pixels, and no
// state survives a call.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"tally/internal/core"
)

const (
	PieSize   = 360
	pieRadius = 140

	BarWidth  = 480
	BarHeight = 300

	barMargin    = 40
	barColumnW   = 80
	barGap       = 60
	barChartH    = BarHeight - 2*barMargin
	barFloor     = 100
	barBaselineY = BarHeight - barMargin
)

var (
	background = color.RGBA{255, 255, 255, 255}
	axisColor  = color.RGBA{107, 114, 128, 255}
	textColor  = color.RGBA{55, 65, 81, 255}

	incomeColor  = color.RGBA{34, 197, 94, 255}
	expenseColor = color.RGBA{239, 68, 68, 255}

	// palette colors slices and legend entries share, cycled by index.
	palette = []color.RGBA{
		{162, 155, 254, 255},
		{116, 185, 255, 255},
		{129, 236, 236, 255},
		{255, 234, 167, 255},
		{250, 177, 160, 255},
		{223, 230, 233, 255},
		{85, 239, 196, 255},
		{253, 121, 168, 255},
		{225, 112, 85, 255},
		{0, 206, 201, 255},
	}
)

// SliceColor returns the palette color for a slice index.
func SliceColor(i int) color.RGBA {
	return palette[i%len(palette)]
}

// SliceColorHex returns the palette color as a CSS hex string for the HTML
// legend, which must match the raster slice colors in the same order.
func SliceColorHex(i int) string {
	c := SliceColor(i)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// PieChart renders category shares as a pie. Slices are drawn in the input
// order starting at twelve o'clock and proceeding clockwise; slices carry no
// labels (the legend maps colors to names). A zero or empty total renders a
// centered "no data" placeholder and nothing else.
func PieChart(data []core.CategoryAmount) *image.RGBA {
	img := newCanvas(PieSize, PieSize)

	var total float64
	for _, d := range data {
		if d.Amount > 0 {
			total += d.Amount
		}
	}
	if total <= 0 {
		drawTextCentered(img, PieSize/2, PieSize/2, "NO DATA", textColor)
		return img
	}

	cx, cy := float64(PieSize)/2, float64(PieSize)/2
	angle := -math.Pi / 2 // twelve o'clock; y grows downward, so increasing angle is clockwise
	for i, d := range data {
		if d.Amount <= 0 {
			continue
		}
		span := d.Amount / total * 2 * math.Pi
		fillFan(img, cx, cy, pieRadius, angle, angle+span, SliceColor(i))
		angle += span
	}
	return img
}

// BarChart renders income and expense as two fixed-width bars. The taller of
// income, expense and a floor of 100 maps to the full chart height, so a zero
// pair still renders without a division by zero.
func BarChart(income, expense float64) *image.RGBA {
	img := newCanvas(BarWidth, BarHeight)

	scale := math.Max(math.Max(income, expense), barFloor)

	// Axes.
	drawVLine(img, barMargin, barMargin, barBaselineY, axisColor)
	drawHLine(img, barMargin, BarWidth-barMargin, barBaselineY, axisColor)

	incomeX := barMargin + barGap
	expenseX := incomeX + barColumnW + barGap
	drawBar(img, incomeX, income, scale, incomeColor)
	drawBar(img, expenseX, expense, scale, expenseColor)

	drawTextCentered(img, incomeX+barColumnW/2, barBaselineY+14, "INCOME", textColor)
	drawTextCentered(img, expenseX+barColumnW/2, barBaselineY+14, "EXPENSE", textColor)
	return img
}

// EncodePNG serializes a rendered chart for HTTP delivery.
func EncodePNG(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode chart png: %w", err)
	}
	return buf.Bytes(), nil
}

// BarPixelHeight reports the rendered height in pixels of a bar for a value
// under the given other value, mirroring BarChart's scaling.
func BarPixelHeight(value, other float64) int {
	scale := math.Max(math.Max(value, other), barFloor)
	return int(math.Round(value / scale * barChartH))
}

func newCanvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, background)
		}
	}
	return img
}

func drawBar(img *image.RGBA, x int, value, scale float64, col color.RGBA) {
	if value <= 0 {
		return
	}
	h := int(math.Round(value / scale * barChartH))
	if h < 1 {
		h = 1
	}
	for y := barBaselineY - h; y < barBaselineY; y++ {
		for dx := 0; dx < barColumnW; dx++ {
			img.SetRGBA(x+dx, y, col)
		}
	}
}

func drawHLine(img *image.RGBA, x0, x1, y int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y, col)
	}
}

func drawVLine(img *image.RGBA, x, y0, y1 int, col color.RGBA) {
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x, y, col)
	}
}

// fillFan rasterizes a pie slice as a fan of thin triangles anchored at the
// center, subdividing the arc so no triangle spans more than ~2.9 degrees.
func fillFan(img *image.RGBA, cx, cy, r, from, to float64, col color.RGBA) {
	const maxStep = 0.05 // radians
	span := to - from
	steps := int(math.Ceil(span / maxStep))
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		a0 := from + span*float64(i)/float64(steps)
		a1 := from + span*float64(i+1)/float64(steps)
		fillTriangle(img,
			cx, cy,
			cx+r*math.Cos(a0), cy+r*math.Sin(a0),
			cx+r*math.Cos(a1), cy+r*math.Sin(a1),
			col)
	}
}

// fillTriangle fills a triangle via edge-function tests over its bounding
// box. Edges count as inside so adjacent fan triangles leave no seams.
func fillTriangle(img *image.RGBA, x0, y0, x1, y1, x2, y2 float64, col color.RGBA) {
	minX := int(math.Floor(math.Min(x0, math.Min(x1, x2))))
	maxX := int(math.Ceil(math.Max(x0, math.Max(x1, x2))))
	minY := int(math.Floor(math.Min(y0, math.Min(y1, y2))))
	maxY := int(math.Ceil(math.Max(y0, math.Max(y1, y2))))

	area := edge(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		return
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			w0 := edge(x1, y1, x2, y2, px, py)
			w1 := edge(x2, y2, x0, y0, px, py)
			w2 := edge(x0, y0, x1, y1, px, py)
			if area > 0 {
				if w0 >= 0 && w1 >= 0 && w2 >= 0 {
					img.SetRGBA(x, y, col)
				}
			} else {
				if w0 <= 0 && w1 <= 0 && w2 <= 0 {
					img.SetRGBA(x, y, col)
				}
			}
		}
	}
}

func edge(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}
