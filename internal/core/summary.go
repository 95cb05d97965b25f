package core

import (
	"fmt"
	"sort"
	"time"
)

// CategoryTotal is the sum of amounts for one category.
type CategoryTotal struct {
	Category Category
	Total    Money
}

// MonthLabel identifies a calendar month of a specific year.
type MonthLabel struct {
	Year  int
	Month int // 1-12
}

// String renders the label as "Jan-2024".
func (l MonthLabel) String() string {
	return fmt.Sprintf("%s-%d", time.Month(l.Month).String()[:3], l.Year)
}

// Before orders labels chronologically.
func (l MonthLabel) Before(o MonthLabel) bool {
	if l.Year != o.Year {
		return l.Year < o.Year
	}
	return l.Month < o.Month
}

type MonthTotal struct {
	Label MonthLabel
	Total Money
}

type YearTotal struct {
	Year  int
	Total Money
}

// Dashboard bundles the aggregate views rendered on the charts page.
type Dashboard struct {
	ByCategory []CategoryTotal
	ByMonth    []MonthTotal
	ByYear     []YearTotal
}

// SortCategoryTotals orders totals by the fixed category order.
func SortCategoryTotals(in []CategoryTotal) {
	sort.SliceStable(in, func(i, j int) bool {
		return in[i].Category.Index() < in[j].Category.Index()
	})
}

// SumCategories adds up every category total.
func SumCategories(in []CategoryTotal) Money {
	var m Money
	for _, c := range in {
		m = m.Add(c.Total)
	}
	return m
}

func SumYears(in []YearTotal) Money {
	var m Money
	for _, y := range in {
		m = m.Add(y.Total)
	}
	return m
}

// MaxCategory returns the largest category total, or false when in is empty.
func MaxCategory(in []CategoryTotal) (CategoryTotal, bool) {
	var best CategoryTotal
	found := false
	for _, c := range in {
		if !found || c.Total.Cents > best.Total.Cents {
			best = c
			found = true
		}
	}
	return best, found
}
