package models

import (
	"time"
)

// Observation is a single mood/energy record from the external log.
// The log is owned by an outside system; records are appended by the
// reconciliation writer and never mutated or deleted here.
type Observation struct {
	Date       string `yaml:"date" json:"date"`
	Energy     any    `yaml:"energy,omitempty" json:"energy,omitempty"`
	Mood       string `yaml:"mood,omitempty" json:"mood,omitempty"`
	RecordedAt string `yaml:"recorded_at,omitempty" json:"recorded_at,omitempty"`
}

// recordedAtLayouts covers the timestamp formats the external log has
// been observed to contain.
var recordedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Day parses the observation's calendar date.
func (o Observation) Day() (time.Time, bool) {
	if o.Date == "" {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation("2006-01-02", o.Date, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// Timestamp returns the moment the observation was recorded. A missing
// or unparsable recorded_at falls back to midnight of the observation's
// date; without either the observation has no usable timestamp.
func (o Observation) Timestamp() (time.Time, bool) {
	if o.RecordedAt != "" {
		for _, layout := range recordedAtLayouts {
			if ts, err := time.ParseInLocation(layout, o.RecordedAt, time.Local); err == nil {
				return ts, true
			}
		}
	}
	return o.Day()
}

// OnDay reports whether the observation belongs to the given calendar day.
func (o Observation) OnDay(day time.Time) bool {
	d, ok := o.Day()
	if !ok {
		return false
	}
	return d.Year() == day.Year() && d.Month() == day.Month() && d.Day() == day.Day()
}
