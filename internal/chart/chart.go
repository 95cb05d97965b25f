// Package chart renders the dashboard charts as PNG images. Labels are not
// drawn; the HTML legend uses the same palette.
package chart

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"expensetracker/internal/core"
)

const (
	PieSize   = 360
	BarWidth  = 640
	BarHeight = 320

	barPadding = 24
	barGap     = 8
)

var (
	background = color.RGBA{0xff, 0xff, 0xff, 0xff}
	axis       = color.RGBA{0x99, 0x99, 0x99, 0xff}
	barColor   = color.RGBA{0x36, 0xa2, 0xeb, 0xff}

	palette = map[core.Category]color.RGBA{
		core.Food:      {0xff, 0x63, 0x84, 0xff},
		core.Transport: {0x36, 0xa2, 0xeb, 0xff},
		core.Bills:     {0xff, 0xce, 0x56, 0xff},
		core.Others:    {0x4b, 0xc0, 0xc0, 0xff},
	}
)

// CategoryColor returns the category's chart color as "#rrggbb".
func CategoryColor(c core.Category) string {
	return hex(palette[c])
}

// BarColor returns the monthly bar color as "#rrggbb".
func BarColor() string {
	return hex(barColor)
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func newCanvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)
	return img
}

type slice struct {
	end   float64 // cumulative angle in radians, clockwise from 12 o'clock
	color color.RGBA
}

// CategoryPie draws one slice per category proportional to its total.
// Categories with a zero total are skipped; with no data only the
// background is drawn.
func CategoryPie(w io.Writer, totals []core.CategoryTotal) error {
	img := newCanvas(PieSize, PieSize)

	sum := core.SumCategories(totals).Cents
	if sum > 0 {
		var slices []slice
		acc := 0.0
		for _, t := range totals {
			if t.Total.Cents <= 0 {
				continue
			}
			acc += 2 * math.Pi * float64(t.Total.Cents) / float64(sum)
			slices = append(slices, slice{end: acc, color: palette[t.Category]})
		}
		slices[len(slices)-1].end = 2 * math.Pi

		c := float64(PieSize) / 2
		r := c - 4
		for y := 0; y < PieSize; y++ {
			for x := 0; x < PieSize; x++ {
				dx, dy := float64(x)+0.5-c, float64(y)+0.5-c
				if dx*dx+dy*dy > r*r {
					continue
				}
				img.SetRGBA(x, y, sliceAt(slices, angle(dx, dy)))
			}
		}
	}
	return png.Encode(w, img)
}

// angle measures clockwise from 12 o'clock in [0, 2π).
func angle(dx, dy float64) float64 {
	a := math.Atan2(dx, -dy)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

func sliceAt(slices []slice, a float64) color.RGBA {
	for _, s := range slices {
		if a < s.end {
			return s.color
		}
	}
	return slices[len(slices)-1].color
}

// MonthlyBars draws one bar per month, in the given order, scaled to the
// largest total.
func MonthlyBars(w io.Writer, months []core.MonthTotal) error {
	img := newCanvas(BarWidth, BarHeight)

	base := BarHeight - barPadding
	fill(img, image.Rect(barPadding, base, BarWidth-barPadding, base+1), axis)

	var max int64
	for _, m := range months {
		if m.Total.Cents > max {
			max = m.Total.Cents
		}
	}
	if len(months) > 0 && max > 0 {
		for _, r := range barRects(months, max) {
			if !r.Empty() {
				fill(img, r, barColor)
			}
		}
	}
	return png.Encode(w, img)
}

// barRects lays the bars out left to right above the axis. Slot edges are
// placed proportionally, so more months than pixels still span the whole
// axis with neighbouring bars sharing columns.
func barRects(months []core.MonthTotal, max int64) []image.Rectangle {
	n := len(months)
	usable := BarWidth - 2*barPadding
	gap := barGap
	if usable <= n*2*gap {
		gap = 0
	}
	maxHeight := BarHeight - 2*barPadding
	base := BarHeight - barPadding

	rects := make([]image.Rectangle, n)
	for i, m := range months {
		h := int(float64(maxHeight) * float64(m.Total.Cents) / float64(max))
		x0 := barPadding + i*usable/n + gap/2
		x1 := barPadding + (i+1)*usable/n - gap/2
		if x1 <= x0 {
			x1 = x0 + 1
		}
		rects[i] = image.Rect(x0, base-h, x1, base)
	}
	return rects
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r, &image.Uniform{c}, image.Point{}, draw.Src)
}
