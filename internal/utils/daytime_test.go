package utils

import (
	"testing"
	"time"
)

func TestTimeOfDayLabel(t *testing.T) {
	tests := []struct {
		hour     int
		minute   int
		expected string
	}{
		{4, 59, LabelNight},
		{5, 0, LabelMorning},
		{11, 59, LabelMorning},
		{12, 0, LabelAfternoon},
		{16, 59, LabelAfternoon},
		{17, 0, LabelEvening},
		{20, 59, LabelEvening},
		{21, 0, LabelNight},
		{0, 0, LabelNight},
	}

	for _, tt := range tests {
		clock := time.Date(2026, 8, 20, tt.hour, tt.minute, 0, 0, time.Local)
		if got := TimeOfDayLabel(clock); got != tt.expected {
			t.Errorf("TimeOfDayLabel(%02d:%02d): expected %s, got %s", tt.hour, tt.minute, tt.expected, got)
		}
	}
}

func TestSeason(t *testing.T) {
	tests := []struct {
		month    time.Month
		day      int
		expected string
	}{
		{time.February, 28, "Winter"},
		{time.March, 1, "Spring"},
		{time.May, 31, "Spring"},
		{time.June, 1, "Summer"},
		{time.August, 31, "Summer"},
		{time.September, 1, "Autumn"},
		{time.November, 30, "Autumn"},
		{time.December, 1, "Winter"},
		{time.January, 15, "Winter"},
	}

	for _, tt := range tests {
		date := time.Date(2026, tt.month, tt.day, 12, 0, 0, 0, time.Local)
		if got := Season(date); got != tt.expected {
			t.Errorf("Season(%s %d): expected %s, got %s", tt.month, tt.day, tt.expected, got)
		}
	}
}

func TestWeekday(t *testing.T) {
	// 2026-08-17 is a Monday.
	monday := time.Date(2026, 8, 17, 9, 0, 0, 0, time.Local)
	if got := Weekday(monday); got != "Monday" {
		t.Errorf("Expected Monday, got %s", got)
	}
}
