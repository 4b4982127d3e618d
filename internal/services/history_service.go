package services

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/EoghannIrving/echo-journal/internal/database"
	"github.com/EoghannIrving/echo-journal/internal/models"
)

// HistoryService persists prompt selections and reconciliation outcomes.
// Selections feed the recent-activity view and the stats endpoint; the
// reconciliation rows let the background sweep retry days that failed to
// write to the mood log.
type HistoryService struct {
	db  *database.DB
	now func() time.Time
}

// NewHistoryService creates a new history service
func NewHistoryService(db *database.DB) *HistoryService {
	return &HistoryService{db: db, now: time.Now}
}

// RecordSelection stores one selection outcome. Selections with no
// chosen template (empty corpus) are not recorded.
func (s *HistoryService) RecordSelection(selection models.Selection, mood, energy, timeLabel string, generated bool) error {
	if selection.ID == "" {
		return nil
	}

	createdAt := s.now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`
		INSERT INTO selections (id, prompt_id, anchor, mood, energy, style, time_label, generated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), selection.ID, string(selection.Anchor), mood, energy, selection.Style, timeLabel, boolToInt(generated), createdAt)

	if err != nil {
		return fmt.Errorf("failed to record selection: %w", err)
	}
	return nil
}

// RecentSelections returns the newest selections, capped at 200 rows.
func (s *HistoryService) RecentSelections(limit int) ([]models.SelectionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}

	rows, err := s.db.Query(`
		SELECT id, prompt_id, anchor, mood, energy, style, time_label, generated, created_at
		FROM selections
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query selections: %w", err)
	}
	defer rows.Close()

	var records []models.SelectionRecord
	for rows.Next() {
		var r models.SelectionRecord
		var promptID, anchor, mood, energy, style, timeLabel, lastCreated sql.NullString
		var generated int
		if err := rows.Scan(&r.ID, &promptID, &anchor, &mood, &energy, &style, &timeLabel, &generated, &lastCreated); err != nil {
			return nil, fmt.Errorf("failed to scan selection: %w", err)
		}
		r.PromptID = promptID.String
		r.Anchor = anchor.String
		r.Mood = mood.String
		r.Energy = energy.String
		r.Style = style.String
		r.TimeLabel = timeLabel.String
		r.Generated = generated != 0
		if lastCreated.Valid {
			r.CreatedAt, _ = time.Parse(time.RFC3339, lastCreated.String)
		}
		records = append(records, r)
	}

	return records, nil
}

// Stats aggregates the stored history.
func (s *HistoryService) Stats() (*models.HistoryStats, error) {
	stats := &models.HistoryStats{SelectionsByAnchor: make(map[string]int)}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM selections`).Scan(&stats.TotalSelections); err != nil {
		return nil, fmt.Errorf("failed to count selections: %w", err)
	}

	rows, err := s.db.Query(`SELECT anchor, COUNT(*) FROM selections GROUP BY anchor`)
	if err != nil {
		return nil, fmt.Errorf("failed to group selections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var anchor sql.NullString
		var count int
		if err := rows.Scan(&anchor, &count); err != nil {
			return nil, fmt.Errorf("failed to scan selection group: %w", err)
		}
		label := anchor.String
		if label == "" {
			label = "none"
		}
		stats.SelectionsByAnchor[label] = count
	}

	var recorded int
	err = s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(recorded), 0) FROM reconciliations`).
		Scan(&stats.TotalReconciliations, &recorded)
	if err != nil {
		return nil, fmt.Errorf("failed to count reconciliations: %w", err)
	}
	stats.RecordedDays = recorded
	stats.PendingDays = stats.TotalReconciliations - recorded

	return stats, nil
}

// RecordReconciliationOutcome upserts the outcome for one day. The
// recorded flag is sticky so a later failed retry can't un-record a day.
func (s *HistoryService) RecordReconciliationOutcome(day, mood, energy string, recorded bool, lastError string) error {
	now := s.now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`
		INSERT INTO reconciliations (day, mood, energy, recorded, attempts, last_error, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			mood = excluded.mood,
			energy = excluded.energy,
			recorded = MAX(reconciliations.recorded, excluded.recorded),
			attempts = reconciliations.attempts + 1,
			last_error = excluded.last_error,
			updated_at = excluded.updated_at
	`, day, mood, energy, boolToInt(recorded), lastError, now, now)

	if err != nil {
		return fmt.Errorf("failed to record reconciliation: %w", err)
	}
	return nil
}

// PendingToday returns today's unrecorded reconciliation, or nil when
// today is already reconciled or was never attempted.
func (s *HistoryService) PendingToday() (*models.ReconciliationRecord, error) {
	day := s.now().Format("2006-01-02")

	var r models.ReconciliationRecord
	var lastError sql.NullString
	var recorded int
	var createdAt, updatedAt string
	err := s.db.QueryRow(`
		SELECT id, day, mood, energy, recorded, attempts, last_error, created_at, updated_at
		FROM reconciliations
		WHERE day = ? AND recorded = 0
	`, day).Scan(&r.ID, &r.Day, &r.Mood, &r.Energy, &recorded, &r.Attempts, &lastError, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil // Nothing pending, not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pending reconciliation: %w", err)
	}

	r.Recorded = recorded != 0
	r.LastError = lastError.String
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &r, nil
}

// PruneOlderThan deletes history rows older than the retention window
// and returns how many rows were removed.
func (s *HistoryService) PruneOlderThan(days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := s.now().AddDate(0, 0, -days)

	selResult, err := s.db.Exec(`DELETE FROM selections WHERE created_at < ?`,
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to prune selections: %w", err)
	}
	selCount, _ := selResult.RowsAffected()

	recResult, err := s.db.Exec(`DELETE FROM reconciliations WHERE day < ?`,
		cutoff.Format("2006-01-02"))
	if err != nil {
		return selCount, fmt.Errorf("failed to prune reconciliations: %w", err)
	}
	recCount, _ := recResult.RowsAffected()

	total := selCount + recCount
	if total > 0 {
		log.Printf("🗑️ [HISTORY] Pruned %d rows older than %d days", total, days)
	}
	return total, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
