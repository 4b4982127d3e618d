package services

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/EoghannIrving/echo-journal/internal/models"
)

const wordnikURL = "https://api.wordnik.com/v4/words.json/wordOfTheDay"

// KeyProvider resolves an API credential at call time.
type KeyProvider func() string

// WordDayService fetches Wordnik's word of the day.
type WordDayService struct {
	baseURL string
	cache   *cache.Cache
	client  *http.Client
	apiKey  KeyProvider
	now     func() time.Time
}

// NewWordDayService creates a new word-of-the-day service
func NewWordDayService(apiKey KeyProvider) *WordDayService {
	return &WordDayService{
		baseURL: wordnikURL,
		cache:   cache.New(24*time.Hour, 1*time.Hour), // One word per day
		client:  &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		now:     time.Now,
	}
}

// WordOfDay returns today's word, or false when the API key is unset or
// the fetch failed.
func (s *WordDayService) WordOfDay(ctx context.Context) (*models.WordOfDay, bool) {
	key := s.apiKey()
	if key == "" {
		return nil, false
	}

	cacheKey := "word-of-day:" + s.now().Format("2006-01-02")
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(*models.WordOfDay), true
	}

	params := url.Values{}
	params.Set("api_key", key)

	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, false
	}
	if err := WaitOutbound(ctx, req.URL.Host); err != nil {
		return nil, false
	}

	start := time.Now()
	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorRequest("wordnik")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.recordError()
		log.Printf("⚠️  [WORDDAY] Fetch failed: %v", err)
		return nil, false
	}
	defer resp.Body.Close()

	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorLatency("wordnik", time.Since(start).Seconds())
	}

	if resp.StatusCode != http.StatusOK {
		s.recordError()
		log.Printf("⚠️  [WORDDAY] Unexpected status %d", resp.StatusCode)
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1*1024*1024))
	if err != nil {
		s.recordError()
		return nil, false
	}

	var payload struct {
		Word        string `json:"word"`
		Note        string `json:"note"`
		Definitions []struct {
			Text string `json:"text"`
		} `json:"definitions"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		s.recordError()
		log.Printf("⚠️  [WORDDAY] Malformed response: %v", err)
		return nil, false
	}
	if payload.Word == "" {
		return nil, false
	}

	word := &models.WordOfDay{
		Word: payload.Word,
		Note: payload.Note,
	}
	if len(payload.Definitions) > 0 {
		word.Definition = payload.Definitions[0].Text
	}

	s.cache.Set(cacheKey, word, cache.DefaultExpiration)
	return word, true
}

func (s *WordDayService) recordError() {
	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorError("wordnik")
	}
}
