package models

import (
	"testing"
	"time"
)

func TestObservationTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		obs      Observation
		expected string
		ok       bool
	}{
		{
			"recorded_at wins",
			Observation{Date: "2026-08-20", RecordedAt: "2026-08-20T14:30:00"},
			"2026-08-20T14:30:00",
			true,
		},
		{
			"missing recorded_at falls back to midnight",
			Observation{Date: "2026-08-20"},
			"2026-08-20T00:00:00",
			true,
		},
		{
			"bad recorded_at falls back to midnight",
			Observation{Date: "2026-08-20", RecordedAt: "yesterday-ish"},
			"2026-08-20T00:00:00",
			true,
		},
		{
			"no usable fields",
			Observation{Mood: "joyful"},
			"",
			false,
		},
		{
			"bad date and no recorded_at",
			Observation{Date: "20th of August"},
			"",
			false,
		},
	}

	for _, tt := range tests {
		ts, ok := tt.obs.Timestamp()
		if ok != tt.ok {
			t.Errorf("%s: expected ok=%v, got %v", tt.name, tt.ok, ok)
			continue
		}
		if !ok {
			continue
		}
		if got := ts.Format("2006-01-02T15:04:05"); got != tt.expected {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.expected, got)
		}
	}
}

func TestObservationOnDay(t *testing.T) {
	day := time.Date(2026, 8, 20, 13, 45, 0, 0, time.Local)

	obs := Observation{Date: "2026-08-20"}
	if !obs.OnDay(day) {
		t.Error("Expected observation to match its own day")
	}

	other := Observation{Date: "2026-08-19"}
	if other.OnDay(day) {
		t.Error("Expected observation from another day not to match")
	}

	undated := Observation{Mood: "okay"}
	if undated.OnDay(day) {
		t.Error("Expected undated observation not to match any day")
	}
}
