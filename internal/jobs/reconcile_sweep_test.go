package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/EoghannIrving/echo-journal/internal/database"
	"github.com/EoghannIrving/echo-journal/internal/services"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	return db
}

func TestReconcileSweep_RecordsPendingDay(t *testing.T) {
	db := newTestDB(t)
	history := services.NewHistoryService(db)

	logPath := filepath.Join(t.TempDir(), "moods.yaml")
	moodLog := services.NewMoodLogService(func() string { return logPath }, func() bool { return true })

	today := time.Now().Format("2006-01-02")
	if err := history.RecordReconciliationOutcome(today, "joyful", "energized", false, "log unavailable"); err != nil {
		t.Fatalf("Failed to seed pending day: %v", err)
	}

	job := NewReconcileSweepJob(history, moodLog, "*/30 * * * *")
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Expected mood log to be written: %v", err)
	}
	if !strings.Contains(string(data), "Joyful") {
		t.Errorf("Expected Joyful entry in log, got:\n%s", data)
	}

	pending, err := history.PendingToday()
	if err != nil {
		t.Fatalf("PendingToday failed: %v", err)
	}
	if pending != nil {
		t.Errorf("Expected no pending day after sweep, got %+v", pending)
	}
}

func TestReconcileSweep_SettlesWhenLogAlreadyCovered(t *testing.T) {
	db := newTestDB(t)
	history := services.NewHistoryService(db)

	today := time.Now().Format("2006-01-02")
	logPath := filepath.Join(t.TempDir(), "moods.yaml")
	content := fmt.Sprintf("- date: %q\n  energy: 3\n  mood: \"Calm\"\n", today)
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	moodLog := services.NewMoodLogService(func() string { return logPath }, func() bool { return true })

	if err := history.RecordReconciliationOutcome(today, "joyful", "energized", false, "log unavailable"); err != nil {
		t.Fatalf("Failed to seed pending day: %v", err)
	}

	job := NewReconcileSweepJob(history, moodLog, "*/30 * * * *")
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	pending, err := history.PendingToday()
	if err != nil {
		t.Fatalf("PendingToday failed: %v", err)
	}
	if pending != nil {
		t.Errorf("Expected reconciliation settled by existing entry, got %+v", pending)
	}

	data, _ := os.ReadFile(logPath)
	if got := strings.Count(string(data), "mood:"); got != 1 {
		t.Errorf("Expected the existing entry left alone, got %d entries:\n%s", got, data)
	}
}

func TestReconcileSweep_NothingPending(t *testing.T) {
	db := newTestDB(t)
	history := services.NewHistoryService(db)

	logPath := filepath.Join(t.TempDir(), "moods.yaml")
	moodLog := services.NewMoodLogService(func() string { return logPath }, func() bool { return true })

	job := NewReconcileSweepJob(history, moodLog, "*/30 * * * *")
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Error("Expected no mood log write on an idle sweep")
	}
}

func TestReconcileSweep_KeepsPendingOnFailedRetry(t *testing.T) {
	db := newTestDB(t)
	history := services.NewHistoryService(db)

	logPath := filepath.Join(t.TempDir(), "moods.yaml")
	moodLog := services.NewMoodLogService(func() string { return logPath }, func() bool { return true })

	today := time.Now().Format("2006-01-02")
	if err := history.RecordReconciliationOutcome(today, "joyful", "sideways", false, "log unavailable"); err != nil {
		t.Fatalf("Failed to seed pending day: %v", err)
	}

	job := NewReconcileSweepJob(history, moodLog, "*/30 * * * *")
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	pending, err := history.PendingToday()
	if err != nil {
		t.Fatalf("PendingToday failed: %v", err)
	}
	if pending == nil {
		t.Fatal("Expected the day to stay pending after a failed retry")
	}
	if pending.Attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", pending.Attempts)
	}
	if pending.LastError == "" {
		t.Error("Expected a retry error to be recorded")
	}
}

func TestReconcileSweep_DisabledMoodTracking(t *testing.T) {
	db := newTestDB(t)
	history := services.NewHistoryService(db)

	moodLog := services.NewMoodLogService(func() string { return "" }, func() bool { return false })

	today := time.Now().Format("2006-01-02")
	if err := history.RecordReconciliationOutcome(today, "joyful", "energized", false, "log unavailable"); err != nil {
		t.Fatalf("Failed to seed pending day: %v", err)
	}

	job := NewReconcileSweepJob(history, moodLog, "*/30 * * * *")
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	pending, err := history.PendingToday()
	if err != nil {
		t.Fatalf("PendingToday failed: %v", err)
	}
	if pending == nil {
		t.Error("Expected the pending day untouched while tracking is disabled")
	}
}
