package core

import (
	"errors"
	"testing"
)

func TestParseCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"117.34", 11734, true},
		{"648.60", 64860, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half away from zero
		{" 2.50 ", 250, true},
		{"-1", -100, true},
		{"", 0, true},
		{"   ", 0, true},
		{"0", 0, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"12,34", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
			}
		}
	}
}

func TestFormatCents(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		1:      "0.01",
		-11734: "-117.34",
		64860:  "648.60",
		10000:  "100.00",
	}
	for in, want := range cases {
		if got := FormatCents(in); got != want {
			t.Fatalf("FormatCents(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestParseAndFormatDay(t *testing.T) {
	got, err := ParseDay("2024-01-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1704067200 {
		t.Fatalf("ParseDay(2024-01-01) = %d, want 1704067200", got)
	}
	if s := FormatDay(got); s != "2024-01-01" {
		t.Fatalf("FormatDay(%d) = %q", got, s)
	}

	for _, bad := range []string{"", "2024/01/01", "2024-13-01", "yesterday"} {
		if _, err := ParseDay(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", bad, err)
		}
	}
}
