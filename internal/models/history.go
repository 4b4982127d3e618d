package models

import "time"

// SelectionRecord is one row of the selection history. Generated marks
// selections whose prompt came from the generation collaborator rather
// than the corpus.
type SelectionRecord struct {
	ID        string    `json:"id"`
	PromptID  string    `json:"prompt_id,omitempty"`
	Anchor    string    `json:"anchor,omitempty"`
	Mood      string    `json:"mood,omitempty"`
	Energy    string    `json:"energy,omitempty"`
	Style     string    `json:"style,omitempty"`
	TimeLabel string    `json:"time_label,omitempty"`
	Generated bool      `json:"generated,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReconciliationRecord tracks the outcome of one day's reconciliation.
// A day stays pending (Recorded false) until a retry succeeds or the
// retention window expires.
type ReconciliationRecord struct {
	ID        int64     `json:"id"`
	Day       string    `json:"day"`
	Mood      string    `json:"mood"`
	Energy    string    `json:"energy"`
	Recorded  bool      `json:"recorded"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryStats aggregates the stored history for the stats endpoint.
type HistoryStats struct {
	TotalSelections      int            `json:"total_selections"`
	SelectionsByAnchor   map[string]int `json:"selections_by_anchor"`
	TotalReconciliations int            `json:"total_reconciliations"`
	RecordedDays         int            `json:"recorded_days"`
	PendingDays          int            `json:"pending_days"`
}
