package domain

import (
	"testing"
	"time"
)

func TestWeekStartAlignsToMonday(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"monday stays put", time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC), "2024-01-01"},
		{"wednesday rewinds", time.Date(2024, 1, 3, 23, 59, 0, 0, time.UTC), "2024-01-01"},
		{"saturday rewinds", time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), "2024-01-01"},
		{"sunday belongs to previous monday", time.Date(2024, 1, 7, 8, 0, 0, 0, time.UTC), "2024-01-01"},
		{"next monday starts a new week", time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), "2024-01-08"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := WeekStart(tc.in)
			if ToISODate(got) != tc.want {
				t.Fatalf("WeekStart(%v) = %s, want %s", tc.in, ToISODate(got), tc.want)
			}
			if got.Hour() != 0 || got.Minute() != 0 {
				t.Fatalf("WeekStart must be midnight, got %v", got)
			}
		})
	}
}

func TestDateForDayOfWeek(t *testing.T) {
	// Monday 2024-01-01 opens the window.
	weekStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		dayOfWeek int
		want      string
	}{
		{1, "2024-01-01"}, // Monday, first day of the window
		{2, "2024-01-02"},
		{3, "2024-01-03"},
		{4, "2024-01-04"},
		{5, "2024-01-05"},
		{6, "2024-01-06"},
		{0, "2024-01-07"}, // Sunday closes the window
	}

	for _, tc := range tests {
		got := ToISODate(DateForDayOfWeek(weekStart, tc.dayOfWeek))
		if got != tc.want {
			t.Fatalf("DateForDayOfWeek(%d) = %s, want %s", tc.dayOfWeek, got, tc.want)
		}
	}
}
