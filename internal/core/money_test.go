package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,500", 150000, true},
		{"1,500,000", 150000000, true},
		{"12,345.67", 1234567, true},
		{"1,23", 0, false},
		{"12,34", 0, false},
		{"1,5000", 0, false},
		{",500", 0, false},
		{"0.01", 1, true},
		{"0", 0, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"1000", 100000, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1e3", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		cents    int64
		currency string
		want     string
	}{
		{150000, "MMK", "1,500 MMK"},
		{0, "MMK", "0 MMK"},
		{123456789, "", "1,234,568"},
		{50, "EUR", "1 EUR"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).Format(tc.currency); got != tc.want {
			t.Fatalf("Format(%d, %q) = %q, want %q", tc.cents, tc.currency, got, tc.want)
		}
	}
	if s := (Money{Cents: 1234}).String(); s != "12.34" {
		t.Fatalf("String() = %q", s)
	}
}
