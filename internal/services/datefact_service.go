package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	cache "github.com/patrickmn/go-cache"
)

const numbersAPIURL = "https://numbersapi.com"

// DateFactService fetches a trivia fact about today's date from
// numbersapi.com.
type DateFactService struct {
	baseURL string
	cache   *cache.Cache
	client  *http.Client
	now     func() time.Time
}

// NewDateFactService creates a new date fact service
func NewDateFactService() *DateFactService {
	return &DateFactService{
		baseURL: numbersAPIURL,
		cache:   cache.New(24*time.Hour, 1*time.Hour), // One fact per day
		client:  &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
}

// Fact returns a fact about today's date, or false when the fetch failed.
func (s *DateFactService) Fact(ctx context.Context) (string, bool) {
	today := s.now()
	cacheKey := "date-fact:" + today.Format("2006-01-02")
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(string), true
	}

	factURL := fmt.Sprintf("%s/%d/%d/date?json", s.baseURL, int(today.Month()), today.Day())
	req, err := http.NewRequestWithContext(ctx, "GET", factURL, nil)
	if err != nil {
		return "", false
	}
	if err := WaitOutbound(ctx, req.URL.Host); err != nil {
		return "", false
	}

	start := time.Now()
	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorRequest("numbersapi")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.recordError()
		log.Printf("⚠️  [DATEFACT] Fetch failed: %v", err)
		return "", false
	}
	defer resp.Body.Close()

	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorLatency("numbersapi", time.Since(start).Seconds())
	}

	if resp.StatusCode != http.StatusOK {
		s.recordError()
		log.Printf("⚠️  [DATEFACT] Unexpected status %d", resp.StatusCode)
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		s.recordError()
		return "", false
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		s.recordError()
		log.Printf("⚠️  [DATEFACT] Malformed response: %v", err)
		return "", false
	}
	if payload.Text == "" {
		return "", false
	}

	s.cache.Set(cacheKey, payload.Text, cache.DefaultExpiration)
	return payload.Text, true
}

func (s *DateFactService) recordError() {
	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorError("numbersapi")
	}
}
