package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/EoghannIrving/echo-journal/internal/models"
)

const nominatimURL = "https://nominatim.openstreetmap.org/reverse"

// GeocodeService resolves coordinates to place names via Nominatim.
// Nominatim's usage policy requires an identifying User-Agent and at
// most one request per second; responses are cached for a day per
// rounded coordinate pair to stay well under that.
type GeocodeService struct {
	baseURL   string
	cache     *cache.Cache
	client    *http.Client
	userAgent func() string
}

// NewGeocodeService creates a new reverse geocoding service
func NewGeocodeService(userAgent func() string) *GeocodeService {
	return &GeocodeService{
		baseURL:   nominatimURL,
		cache:     cache.New(24*time.Hour, 1*time.Hour),
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: userAgent,
	}
}

// Reverse returns the location for the given coordinates. Unlike the
// day-brief collaborators this surfaces the failure; the caller maps it
// to an upstream error response.
func (s *GeocodeService) Reverse(ctx context.Context, lat, lon float64) (*models.Location, error) {
	key := fmt.Sprintf("%.4f,%.4f", lat, lon)
	if cached, found := s.cache.Get(key); found {
		return cached.(*models.Location), nil
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lon))
	params.Set("format", "json")
	params.Set("zoom", "18")

	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent())
	if err := WaitOutbound(ctx, req.URL.Host); err != nil {
		return nil, fmt.Errorf("rate limit wait aborted: %w", err)
	}

	start := time.Now()
	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorRequest("nominatim")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.recordError()
		return nil, fmt.Errorf("reverse geocoding failed: %w", err)
	}
	defer resp.Body.Close()

	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorLatency("nominatim", time.Since(start).Seconds())
	}

	if resp.StatusCode != http.StatusOK {
		s.recordError()
		return nil, fmt.Errorf("reverse geocoding failed: status=%d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1*1024*1024))
	if err != nil {
		s.recordError()
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var payload struct {
		DisplayName string `json:"display_name"`
		Address     struct {
			City    string `json:"city"`
			Town    string `json:"town"`
			Village string `json:"village"`
			State   string `json:"state"`
			Country string `json:"country"`
		} `json:"address"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		s.recordError()
		return nil, fmt.Errorf("malformed response: %w", err)
	}

	city := payload.Address.City
	if city == "" {
		city = payload.Address.Town
	}
	if city == "" {
		city = payload.Address.Village
	}

	location := &models.Location{
		DisplayName: payload.DisplayName,
		City:        city,
		Region:      payload.Address.State,
		Country:     payload.Address.Country,
	}

	s.cache.Set(key, location, cache.DefaultExpiration)
	return location, nil
}

func (s *GeocodeService) recordError() {
	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorError("nominatim")
	}
}
