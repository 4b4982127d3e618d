package models

// Snapshot is the engine's best current estimate of the user's mood and
// energy "today", derived from the external log. Created fresh on every
// read; never persisted.
type Snapshot struct {
	Mood          MoodCategory   `json:"mood,omitempty"`
	Energy        EnergyCategory `json:"energy,omitempty"`
	LastEntryDate string         `json:"last_entry_date,omitempty"`
	HasTodayEntry bool           `json:"has_today_entry"`
	Enabled       bool           `json:"enabled"`
	Available     bool           `json:"available"`
}
