package timeline_test

import (
	"testing"
	"time"

	"betboard/internal/timeline"
)

func TestMidnightPinsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	in := time.Date(2025, 6, 13, 3, 0, 0, 0, loc) // 2025-06-12 17:00 UTC
	got := timeline.Midnight(in)
	want := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDaysBetweenSigned(t *testing.T) {
	a := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	if got := timeline.DaysBetween(a, b); got != 201 {
		t.Fatalf("forward: expected 201, got %d", got)
	}
	if got := timeline.DaysBetween(b, a); got != -201 {
		t.Fatalf("backward: expected -201, got %d", got)
	}
	if got := timeline.DaysBetween(a, a); got != 0 {
		t.Fatalf("same day: expected 0, got %d", got)
	}
}

func TestParseDayRejectsGarbage(t *testing.T) {
	if _, err := timeline.ParseDay("13/06/2025"); err == nil {
		t.Fatal("expected error for display-format input")
	}
	got, err := timeline.ParseDay("2025-06-13")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Hour() != 0 || got.Location() != time.UTC {
		t.Fatalf("expected UTC midnight, got %v", got)
	}
}

func TestFormatDay(t *testing.T) {
	d := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	if got := timeline.FormatDay(d); got != "05/06/2025" {
		t.Fatalf("expected 05/06/2025, got %q", got)
	}
}

func TestWeekCommencing(t *testing.T) {
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		// Friday maps back to the same week's Monday.
		{time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)},
		// Monday maps to itself.
		{time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)},
		// Sunday belongs to the week that started six days earlier.
		{time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := timeline.WeekCommencing(tc.in); !got.Equal(tc.want) {
			t.Errorf("WeekCommencing(%v): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}
