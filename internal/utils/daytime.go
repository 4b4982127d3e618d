package utils

import "time"

// Time-of-day labels used by the prompt corpus's times restriction.
const (
	LabelMorning   = "Morning"
	LabelAfternoon = "Afternoon"
	LabelEvening   = "Evening"
	LabelNight     = "Night"
)

// TimeOfDayLabel buckets a clock time into the four display labels.
// Morning runs 5-11, Afternoon 12-16, Evening 17-20, Night otherwise.
func TimeOfDayLabel(t time.Time) string {
	switch hour := t.Hour(); {
	case hour >= 5 && hour < 12:
		return LabelMorning
	case hour >= 12 && hour < 17:
		return LabelAfternoon
	case hour >= 17 && hour < 21:
		return LabelEvening
	default:
		return LabelNight
	}
}

// Season returns the display season for a date. Boundaries are the first
// of March, June, September and December.
func Season(t time.Time) string {
	switch month := t.Month(); {
	case month >= time.March && month < time.June:
		return "Spring"
	case month >= time.June && month < time.September:
		return "Summer"
	case month >= time.September && month < time.December:
		return "Autumn"
	default:
		return "Winter"
	}
}

// Weekday returns the English weekday name used for prompt placeholders.
func Weekday(t time.Time) string {
	return t.Weekday().String()
}
