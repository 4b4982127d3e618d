package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/EoghannIrving/echo-journal/internal/models"
	"github.com/EoghannIrving/echo-journal/internal/services"
)

func TestHistoryCleanup_PrunesOldRows(t *testing.T) {
	db := newTestDB(t)
	history := services.NewHistoryService(db)

	old := time.Now().UTC().AddDate(0, 0, -120).Format(time.RFC3339)
	if _, err := db.Exec(
		`INSERT INTO selections (id, prompt_id, anchor, mood, energy, style, time_label, generated, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		"old-row", "soft-1", "soft", "", "", "", "Morning", old,
	); err != nil {
		t.Fatalf("Failed to seed old selection: %v", err)
	}
	if _, err := db.Exec(
		`INSERT INTO reconciliations (day, mood, energy, recorded, attempts, created_at, updated_at)
		 VALUES (?, ?, ?, 1, 1, ?, ?)`,
		"2026-04-01", "joyful", "ok", old, old,
	); err != nil {
		t.Fatalf("Failed to seed old reconciliation: %v", err)
	}

	fresh := models.Selection{ID: "soft-2", Text: "How was today?", Anchor: models.AnchorSoft}
	if err := history.RecordSelection(fresh, "meh", "low", "Evening", false); err != nil {
		t.Fatalf("Failed to record fresh selection: %v", err)
	}

	job := NewHistoryCleanupJob(history, func() int { return 90 }, "0 2 * * *")
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	recent, err := history.RecentSelections(10)
	if err != nil {
		t.Fatalf("RecentSelections failed: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("Expected 1 surviving selection, got %d", len(recent))
	}
	if recent[0].PromptID != "soft-2" {
		t.Errorf("Expected the fresh selection to survive, got %q", recent[0].PromptID)
	}

	var reconciliations int
	if err := db.QueryRow("SELECT COUNT(*) FROM reconciliations").Scan(&reconciliations); err != nil {
		t.Fatalf("Failed to count reconciliations: %v", err)
	}
	if reconciliations != 0 {
		t.Errorf("Expected old reconciliation pruned, got %d rows", reconciliations)
	}
}

func TestHistoryCleanup_DisabledRetention(t *testing.T) {
	db := newTestDB(t)
	history := services.NewHistoryService(db)

	old := time.Now().UTC().AddDate(0, 0, -120).Format(time.RFC3339)
	if _, err := db.Exec(
		`INSERT INTO selections (id, prompt_id, anchor, mood, energy, style, time_label, generated, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		"old-row", "soft-1", "soft", "", "", "", "Morning", old,
	); err != nil {
		t.Fatalf("Failed to seed old selection: %v", err)
	}

	job := NewHistoryCleanupJob(history, func() int { return 0 }, "0 2 * * *")
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	recent, err := history.RecentSelections(10)
	if err != nil {
		t.Fatalf("RecentSelections failed: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("Expected the old row untouched, got %d rows", len(recent))
	}
}
