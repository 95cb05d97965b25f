package chart

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"expensetracker/internal/core"
)

func decode(t *testing.T, buf *bytes.Buffer) image.Image {
	t.Helper()
	img, err := png.Decode(buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	return img
}

func rgba(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func TestCategoryPie(t *testing.T) {
	var buf bytes.Buffer
	err := CategoryPie(&buf, []core.CategoryTotal{
		{Category: core.Food, Total: core.Money{Cents: 150000}},
		{Category: core.Bills, Total: core.Money{Cents: 150000}},
	})
	if err != nil {
		t.Fatalf("CategoryPie: %v", err)
	}
	img := decode(t, &buf)
	if img.Bounds().Dx() != PieSize || img.Bounds().Dy() != PieSize {
		t.Fatalf("unexpected size %v", img.Bounds())
	}

	c := PieSize / 2
	// Right half is the first slice (clockwise from 12), left half the second.
	if got := rgba(img.At(c+40, c)); got != palette[core.Food] {
		t.Errorf("right half = %v, want food color", got)
	}
	if got := rgba(img.At(c-40, c)); got != palette[core.Bills] {
		t.Errorf("left half = %v, want bills color", got)
	}
	if got := rgba(img.At(0, 0)); got != background {
		t.Errorf("corner = %v, want background", got)
	}
}

func TestCategoryPieEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := CategoryPie(&buf, nil); err != nil {
		t.Fatalf("CategoryPie: %v", err)
	}
	img := decode(t, &buf)
	if got := rgba(img.At(PieSize/2, PieSize/2)); got != background {
		t.Errorf("empty pie center = %v, want background", got)
	}
}

func TestMonthlyBars(t *testing.T) {
	months := []core.MonthTotal{
		{Label: core.MonthLabel{Year: 2024, Month: 1}, Total: core.Money{Cents: 150000}},
		{Label: core.MonthLabel{Year: 2024, Month: 2}, Total: core.Money{Cents: 300000}},
	}
	var buf bytes.Buffer
	if err := MonthlyBars(&buf, months); err != nil {
		t.Fatalf("MonthlyBars: %v", err)
	}
	img := decode(t, &buf)
	if img.Bounds().Dx() != BarWidth || img.Bounds().Dy() != BarHeight {
		t.Fatalf("unexpected size %v", img.Bounds())
	}

	rects := barRects(months, 300000)
	if rects[1].Dy() != 2*rects[0].Dy() {
		t.Errorf("bar heights %d and %d are not proportional", rects[0].Dy(), rects[1].Dy())
	}
	if rects[0].Max.X > rects[1].Min.X {
		t.Errorf("bars overlap: %v %v", rects[0], rects[1])
	}
	mid := rects[1].Min.Add(rects[1].Size().Div(2))
	if got := rgba(img.At(mid.X, mid.Y)); got != barColor {
		t.Errorf("bar pixel = %v, want bar color", got)
	}
}

func TestMonthlyBarsMoreMonthsThanPixels(t *testing.T) {
	months := make([]core.MonthTotal, 1000)
	for i := range months {
		months[i] = core.MonthTotal{
			Label: core.MonthLabel{Year: 1900 + i/12, Month: i%12 + 1},
			Total: core.Money{Cents: 100},
		}
	}

	rects := barRects(months, 100)
	if rects[0].Min.X != barPadding {
		t.Errorf("first bar starts at %d, want %d", rects[0].Min.X, barPadding)
	}
	if last := rects[len(rects)-1]; last.Max.X != BarWidth-barPadding {
		t.Errorf("last bar ends at %d, want %d", last.Max.X, BarWidth-barPadding)
	}
	for i := 1; i < len(rects); i++ {
		if rects[i].Min.X < rects[i-1].Min.X {
			t.Fatalf("bar %d starts left of bar %d: %v %v", i, i-1, rects[i], rects[i-1])
		}
		if rects[i].Dx() < 1 {
			t.Fatalf("bar %d is empty: %v", i, rects[i])
		}
	}

	var buf bytes.Buffer
	if err := MonthlyBars(&buf, months); err != nil {
		t.Fatalf("MonthlyBars: %v", err)
	}
	img := decode(t, &buf)
	if got := rgba(img.At(BarWidth-barPadding-1, BarHeight-barPadding-1)); got != barColor {
		t.Errorf("right edge pixel = %v, want bar color", got)
	}
}

func TestMonthlyBarsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := MonthlyBars(&buf, nil); err != nil {
		t.Fatalf("MonthlyBars: %v", err)
	}
	decode(t, &buf)
}

func TestColors(t *testing.T) {
	if got := CategoryColor(core.Food); got != "#ff6384" {
		t.Errorf("CategoryColor(Food) = %s", got)
	}
	for _, c := range core.Categories() {
		if len(CategoryColor(c)) != 7 {
			t.Errorf("missing color for %s", c)
		}
	}
	if BarColor() != "#36a2eb" {
		t.Errorf("BarColor() = %s", BarColor())
	}
}
