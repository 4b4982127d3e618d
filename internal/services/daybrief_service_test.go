package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/EoghannIrving/echo-journal/internal/config"
	"github.com/EoghannIrving/echo-journal/internal/models"
)

func newTestDayBrief(t *testing.T, clock time.Time) *DayBriefService {
	t.Helper()

	weatherServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current_weather":{"temperature":21.4,"weathercode":2}}`))
	}))
	t.Cleanup(weatherServer.Close)

	wordServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"word":"petrichor","note":"From Greek petra.","definitions":[{"text":"The smell of rain on dry earth."}]}`))
	}))
	t.Cleanup(wordServer.Close)

	factServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"August 17th is the 229th day of the year."}`))
	}))
	t.Cleanup(factServer.Close)

	photoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"assets":{"items":[{"id":"photo-1","fileCreatedAt":"2026-08-17T10:00:00Z","originalFileName":"lake.jpg"}]}}`))
	}))
	t.Cleanup(photoServer.Close)

	weather := NewWeatherService(func() (float64, float64) { return 51.5, -0.1 })
	weather.baseURL = weatherServer.URL

	wordDay := NewWordDayService(func() string { return "wordnik-key" })
	wordDay.baseURL = wordServer.URL
	wordDay.now = func() time.Time { return clock }

	dateFact := NewDateFactService()
	dateFact.baseURL = factServer.URL
	dateFact.now = func() time.Time { return clock }

	cfg := &config.Config{ImmichURL: photoServer.URL}
	media := NewMediaService(cfg, nil)

	moodLog, _ := newTestMoodLog(t, `- date: "2026-08-17"
  energy: 3
  mood: "Joyful"
  recorded_at: "2026-08-17T08:00:00"
`, clock)

	svc := NewDayBriefService(weather, wordDay, dateFact, media, moodLog)
	svc.now = func() time.Time { return clock }
	return svc
}

func TestBrief_AssemblesSections(t *testing.T) {
	clock := time.Date(2026, time.August, 17, 9, 0, 0, 0, time.Local)
	svc := newTestDayBrief(t, clock)

	brief := svc.Brief(context.Background(), 0, 0)

	if brief.Date != "2026-08-17" {
		t.Errorf("Expected date 2026-08-17, got %q", brief.Date)
	}
	if brief.Weekday != "Monday" {
		t.Errorf("Expected Monday, got %q", brief.Weekday)
	}
	if brief.Season != "Summer" {
		t.Errorf("Expected Summer, got %q", brief.Season)
	}
	if brief.TimeOfDay != "Morning" {
		t.Errorf("Expected Morning, got %q", brief.TimeOfDay)
	}

	if brief.Snapshot.Mood != models.MoodJoyful {
		t.Errorf("Expected joyful snapshot, got %q", brief.Snapshot.Mood)
	}
	if !brief.Snapshot.HasTodayEntry {
		t.Error("Expected snapshot to report today's entry")
	}

	if brief.Weather == nil {
		t.Fatal("Expected a weather section")
	}
	if brief.Weather.Summary != "21.4°C, partly cloudy" {
		t.Errorf("Expected weather summary, got %q", brief.Weather.Summary)
	}

	if brief.WordOfDay == nil {
		t.Fatal("Expected a word of the day")
	}
	if brief.WordOfDay.Word != "petrichor" {
		t.Errorf("Expected petrichor, got %q", brief.WordOfDay.Word)
	}

	if brief.DateFact == "" {
		t.Error("Expected a date fact")
	}

	if len(brief.Photos) != 1 {
		t.Fatalf("Expected one photo, got %v", brief.Photos)
	}
	if brief.Photos[0].URL != "/api/asset/photo-1" {
		t.Errorf("Expected proxied asset URL, got %q", brief.Photos[0].URL)
	}
	if brief.Photos[0].Caption != "lake.jpg" {
		t.Errorf("Expected lake.jpg caption, got %q", brief.Photos[0].Caption)
	}
}

func TestBrief_DropsFailedSections(t *testing.T) {
	clock := time.Date(2026, time.August, 17, 21, 30, 0, 0, time.Local)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(failing.Close)

	weather := NewWeatherService(func() (float64, float64) { return 51.5, -0.1 })
	weather.baseURL = failing.URL

	wordDay := NewWordDayService(func() string { return "" }) // unconfigured

	dateFact := NewDateFactService()
	dateFact.baseURL = failing.URL
	dateFact.now = func() time.Time { return clock }

	media := NewMediaService(&config.Config{}, nil)

	moodLog, _ := newTestMoodLog(t, "[]\n", clock)

	svc := NewDayBriefService(weather, wordDay, dateFact, media, moodLog)
	svc.now = func() time.Time { return clock }

	brief := svc.Brief(context.Background(), 0, 0)

	if brief.TimeOfDay != "Night" {
		t.Errorf("Expected Night, got %q", brief.TimeOfDay)
	}
	if brief.Weather != nil {
		t.Errorf("Expected no weather section, got %v", brief.Weather)
	}
	if brief.WordOfDay != nil {
		t.Errorf("Expected no word of the day, got %v", brief.WordOfDay)
	}
	if brief.DateFact != "" {
		t.Errorf("Expected no date fact, got %q", brief.DateFact)
	}
	if len(brief.Photos) != 0 || len(brief.TopTracks) != 0 || len(brief.Listening) != 0 {
		t.Error("Expected empty media sections")
	}
	if !brief.Snapshot.Enabled || !brief.Snapshot.Available {
		t.Error("Expected the snapshot itself to still be present")
	}
}
