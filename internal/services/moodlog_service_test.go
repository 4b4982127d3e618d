package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gopkg.in/yaml.v3"

	"github.com/EoghannIrving/echo-journal/internal/models"
)

func newTestMoodLog(t *testing.T, content string, clock time.Time) (*MoodLogService, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "moods.yaml")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write fixture: %v", err)
		}
	}

	svc := NewMoodLogService(func() string { return path }, func() bool { return true })
	svc.now = func() time.Time { return clock }
	return svc, path
}

func TestGetSnapshot_Disabled(t *testing.T) {
	svc := NewMoodLogService(func() string { return "unused.yaml" }, func() bool { return false })

	snapshot := svc.GetSnapshot()

	if snapshot.Enabled {
		t.Error("Expected disabled snapshot")
	}
	if snapshot.Mood != "" || snapshot.Energy != "" {
		t.Errorf("Expected empty mood/energy, got %q/%q", snapshot.Mood, snapshot.Energy)
	}
}

func TestGetSnapshot_MissingLog(t *testing.T) {
	clock := time.Date(2026, time.August, 17, 9, 0, 0, 0, time.Local)
	svc, _ := newTestMoodLog(t, "", clock)

	snapshot := svc.GetSnapshot()

	if !snapshot.Enabled {
		t.Error("Expected enabled snapshot")
	}
	if snapshot.Available {
		t.Error("Expected unavailable snapshot for missing log")
	}
	if snapshot.Mood != "" || snapshot.Energy != "" {
		t.Errorf("Expected empty mood/energy, got %q/%q", snapshot.Mood, snapshot.Energy)
	}
}

func TestGetSnapshot_MalformedLog(t *testing.T) {
	clock := time.Date(2026, time.August, 17, 9, 0, 0, 0, time.Local)
	svc, _ := newTestMoodLog(t, "{{{not yaml", clock)

	snapshot := svc.GetSnapshot()

	if !snapshot.Enabled || snapshot.Available {
		t.Errorf("Expected enabled but unavailable snapshot, got enabled=%v available=%v",
			snapshot.Enabled, snapshot.Available)
	}
}

func TestGetSnapshot_WeightsEveningOverMorning(t *testing.T) {
	content := `- date: "2026-08-17"
  energy: 3
  mood: Sad
  recorded_at: "2026-08-17T08:00:00"
- date: "2026-08-17"
  energy: 3
  mood: Joyful
  recorded_at: "2026-08-17T20:00:00"
`
	clock := time.Date(2026, time.August, 17, 21, 0, 0, 0, time.Local)
	svc, _ := newTestMoodLog(t, content, clock)

	snapshot := svc.GetSnapshot()

	if snapshot.Mood != models.MoodJoyful {
		t.Errorf("Expected joyful, got %q", snapshot.Mood)
	}
	if snapshot.Energy != models.EnergyOk {
		t.Errorf("Expected ok, got %q", snapshot.Energy)
	}
	if !snapshot.HasTodayEntry {
		t.Error("Expected has_today_entry")
	}
	if snapshot.LastEntryDate != "2026-08-17" {
		t.Errorf("Expected last entry 2026-08-17, got %q", snapshot.LastEntryDate)
	}
}

func TestGetSnapshot_RoundsEnergyHalfUp(t *testing.T) {
	// Two evening observations, levels 2 and 3: mean 2.5 rounds to 3.
	content := `- date: "2026-08-17"
  energy: 2
  mood: Meh
  recorded_at: "2026-08-17T20:00:00"
- date: "2026-08-17"
  energy: 3
  mood: Meh
  recorded_at: "2026-08-17T21:00:00"
`
	clock := time.Date(2026, time.August, 17, 22, 0, 0, 0, time.Local)
	svc, _ := newTestMoodLog(t, content, clock)

	snapshot := svc.GetSnapshot()

	if snapshot.Energy != models.EnergyOk {
		t.Errorf("Expected ok, got %q", snapshot.Energy)
	}
}

func TestGetSnapshot_MoodTieBrokenByRecency(t *testing.T) {
	// Both observations carry evening weight; the later one wins the tie.
	content := `- date: "2026-08-17"
  energy: 2
  mood: Sad
  recorded_at: "2026-08-17T20:00:00"
- date: "2026-08-17"
  energy: 3
  mood: Joyful
  recorded_at: "2026-08-17T21:00:00"
`
	clock := time.Date(2026, time.August, 17, 22, 0, 0, 0, time.Local)
	svc, _ := newTestMoodLog(t, content, clock)

	snapshot := svc.GetSnapshot()

	if snapshot.Mood != models.MoodJoyful {
		t.Errorf("Expected joyful, got %q", snapshot.Mood)
	}
}

func TestGetSnapshot_FallsBackToLatestEntry(t *testing.T) {
	content := `- date: "2026-08-14"
  energy: 4
  mood: Happy
`
	clock := time.Date(2026, time.August, 17, 9, 0, 0, 0, time.Local)
	svc, _ := newTestMoodLog(t, content, clock)

	snapshot := svc.GetSnapshot()

	if snapshot.Mood != models.MoodJoyful {
		t.Errorf("Expected joyful, got %q", snapshot.Mood)
	}
	if snapshot.Energy != models.EnergyEnergized {
		t.Errorf("Expected energized, got %q", snapshot.Energy)
	}
	if snapshot.HasTodayEntry {
		t.Error("Expected no entry for today")
	}
	if snapshot.LastEntryDate != "2026-08-14" {
		t.Errorf("Expected last entry 2026-08-14, got %q", snapshot.LastEntryDate)
	}
}

func TestGetSnapshot_LatestEntryWins(t *testing.T) {
	content := `- date: "2026-08-15"
  energy: 3
  mood: Calm
- date: "2026-08-16"
  energy: 2
  mood: Tired
`
	clock := time.Date(2026, time.August, 17, 9, 0, 0, 0, time.Local)
	svc, _ := newTestMoodLog(t, content, clock)

	snapshot := svc.GetSnapshot()

	if snapshot.Mood != models.MoodMeh {
		t.Errorf("Expected meh, got %q", snapshot.Mood)
	}
	if snapshot.Energy != models.EnergyLow {
		t.Errorf("Expected low, got %q", snapshot.Energy)
	}
	if snapshot.LastEntryDate != "2026-08-16" {
		t.Errorf("Expected last entry 2026-08-16, got %q", snapshot.LastEntryDate)
	}
}

func TestRecordIfMissing_AppendsOnce(t *testing.T) {
	clock := time.Date(2026, time.August, 17, 9, 30, 0, 0, time.Local)
	svc, path := newTestMoodLog(t, "", clock)

	if !svc.RecordIfMissing("joyful", "energized") {
		t.Fatal("Expected first record to succeed")
	}
	if svc.RecordIfMissing("sad", "low") {
		t.Error("Expected second record on the same day to be skipped")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	var observations []models.Observation
	if err := yaml.Unmarshal(data, &observations); err != nil {
		t.Fatalf("Failed to parse log: %v", err)
	}
	if len(observations) != 1 {
		t.Fatalf("Expected 1 observation, got %d", len(observations))
	}

	o := observations[0]
	if o.Date != "2026-08-17" {
		t.Errorf("Expected date 2026-08-17, got %q", o.Date)
	}
	if o.Mood != "Joyful" {
		t.Errorf("Expected mood Joyful, got %q", o.Mood)
	}
	if value, ok := models.NormalizeEnergy(o.Energy); !ok || value != 4 {
		t.Errorf("Expected energy 4, got %v", o.Energy)
	}
	if o.RecordedAt != "2026-08-17T09:30:00" {
		t.Errorf("Expected recorded_at 2026-08-17T09:30:00, got %q", o.RecordedAt)
	}
}

func TestRecordIfMissing_PreservesExistingEntries(t *testing.T) {
	content := `- date: "2026-08-16"
  energy: 2
  mood: Tired
`
	clock := time.Date(2026, time.August, 17, 9, 30, 0, 0, time.Local)
	svc, path := newTestMoodLog(t, content, clock)

	if !svc.RecordIfMissing("okay", "ok") {
		t.Fatal("Expected record to succeed")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	var observations []models.Observation
	if err := yaml.Unmarshal(data, &observations); err != nil {
		t.Fatalf("Failed to parse log: %v", err)
	}
	if len(observations) != 2 {
		t.Fatalf("Expected 2 observations, got %d", len(observations))
	}
	if observations[0].Mood != "Tired" {
		t.Errorf("Expected first entry untouched, got %q", observations[0].Mood)
	}
	if observations[1].Mood != "Okay" {
		t.Errorf("Expected appended mood Okay, got %q", observations[1].Mood)
	}
}

func TestRecordIfMissing_RejectsBlankInputs(t *testing.T) {
	clock := time.Date(2026, time.August, 17, 9, 30, 0, 0, time.Local)
	svc, path := newTestMoodLog(t, "", clock)

	if svc.RecordIfMissing("", "ok") {
		t.Error("Expected blank mood to be rejected")
	}
	if svc.RecordIfMissing("joyful", "") {
		t.Error("Expected blank energy to be rejected")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected no log file to be created")
	}
}

func TestRecordIfMissing_RejectsUnknownEnergy(t *testing.T) {
	clock := time.Date(2026, time.August, 17, 9, 30, 0, 0, time.Local)
	svc, path := newTestMoodLog(t, "", clock)

	if svc.RecordIfMissing("joyful", "sideways") {
		t.Error("Expected unknown energy to be rejected")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected no log file to be created")
	}
}

func TestRecordIfMissing_SkipsWhenTodayExists(t *testing.T) {
	content := `- date: "2026-08-17"
  energy: 3
  mood: Okay
  recorded_at: "2026-08-17T08:00:00"
`
	clock := time.Date(2026, time.August, 17, 20, 0, 0, 0, time.Local)
	svc, _ := newTestMoodLog(t, content, clock)

	if svc.RecordIfMissing("joyful", "energized") {
		t.Error("Expected record to be skipped when today already has an entry")
	}
}

func TestRecordIfMissing_CountsOutcomes(t *testing.T) {
	metrics := InitMetrics(nil)
	t.Cleanup(func() { globalMetrics = nil })

	outcome := func(label string) float64 {
		return testutil.ToFloat64(metrics.Reconciliations.WithLabelValues(label))
	}

	clock := time.Date(2026, time.August, 17, 23, 30, 0, 0, time.Local)
	svc, path := newTestMoodLog(t, "", clock)

	if !svc.RecordIfMissing("joyful", "ok") {
		t.Fatal("Expected first reconciliation to record")
	}
	if got := outcome("recorded"); got != 1 {
		t.Errorf("Expected recorded count 1, got %v", got)
	}

	if svc.RecordIfMissing("meh", "low") {
		t.Fatal("Expected second reconciliation to be skipped")
	}
	if got := outcome("skipped"); got != 1 {
		t.Errorf("Expected skipped count 1, got %v", got)
	}

	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatalf("Failed to overwrite fixture: %v", err)
	}
	if svc.RecordIfMissing("meh", "low") {
		t.Fatal("Expected reconciliation against a malformed log to fail")
	}
	if got := outcome("failed"); got != 1 {
		t.Errorf("Expected failed count 1, got %v", got)
	}
}
