package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/EoghannIrving/echo-journal/internal/config"
	"github.com/EoghannIrving/echo-journal/internal/models"
)

func TestOutboundLimiter_CreatesPerHostLimiters(t *testing.T) {
	limiter := NewOutboundLimiter(100)

	if err := limiter.Wait(context.Background(), "api.example.com"); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if err := limiter.Wait(context.Background(), "other.example.com"); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	if _, ok := limiter.perHostLimiters.Load("api.example.com"); !ok {
		t.Error("Expected a limiter for api.example.com")
	}
	if _, ok := limiter.perHostLimiters.Load("other.example.com"); !ok {
		t.Error("Expected a limiter for other.example.com")
	}
}

func TestOutboundLimiter_CancelledContext(t *testing.T) {
	limiter := NewOutboundLimiter(100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Wait(ctx, "api.example.com"); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

// hostRegistered reports whether a request to the given upstream went
// through the shared limiter; Wait creates the per-host limiter before
// the request is issued.
func hostRegistered(serverURL string) bool {
	host := strings.TrimPrefix(serverURL, "http://")
	_, ok := sharedOutbound.perHostLimiters.Load(host)
	return ok
}

func TestCollaboratorClientsUseSharedLimiter(t *testing.T) {
	clock := time.Date(2026, time.August, 17, 9, 0, 0, 0, time.Local)
	okJSON := func(body string) *httptest.Server {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		t.Cleanup(server.Close)
		return server
	}

	weatherServer := okJSON(`{"current_weather":{"temperature":21.4,"weathercode":2}}`)
	weather := NewWeatherService(func() (float64, float64) { return 51.5, -0.1 })
	weather.baseURL = weatherServer.URL
	weather.Current(context.Background())
	if !hostRegistered(weatherServer.URL) {
		t.Error("Expected weather request to pass through the shared limiter")
	}

	wordServer := okJSON(`{"word":"petrichor","definitions":[]}`)
	wordDay := NewWordDayService(func() string { return "wordnik-key" })
	wordDay.baseURL = wordServer.URL
	wordDay.now = func() time.Time { return clock }
	wordDay.WordOfDay(context.Background())
	if !hostRegistered(wordServer.URL) {
		t.Error("Expected word-of-day request to pass through the shared limiter")
	}

	factServer := okJSON(`{"text":"A fact."}`)
	dateFact := NewDateFactService()
	dateFact.baseURL = factServer.URL
	dateFact.now = func() time.Time { return clock }
	dateFact.Fact(context.Background())
	if !hostRegistered(factServer.URL) {
		t.Error("Expected date-fact request to pass through the shared limiter")
	}

	geoServer := okJSON(`{"display_name":"Somewhere","address":{}}`)
	geocode := NewGeocodeService(func() string { return "echo-journal-test" })
	geocode.baseURL = geoServer.URL
	if _, err := geocode.Reverse(context.Background(), 51.5, -0.1); err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}
	if !hostRegistered(geoServer.URL) {
		t.Error("Expected geocode request to pass through the shared limiter")
	}

	photoServer := okJSON(`{"assets":{"items":[]}}`)
	media := NewMediaService(&config.Config{ImmichURL: photoServer.URL}, nil)
	media.PhotosForDate(context.Background(), "2026-08-17")
	if !hostRegistered(photoServer.URL) {
		t.Error("Expected media request to pass through the shared limiter")
	}

	svc, _ := newTestGeneration(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody(t, `{"prompt":"What stood out today?","anchor":"soft","tags":[]}`)))
	})
	if _, err := svc.Generate(context.Background(), models.AnchorSoft); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !hostRegistered(svc.baseURL()) {
		t.Error("Expected generation request to pass through the shared limiter")
	}
}
