package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/EoghannIrving/echo-journal/internal/models"
)

const openMeteoURL = "https://api.open-meteo.com/v1/forecast"

// wmoDescriptions maps the WMO weather interpretation codes Open-Meteo
// returns to short display strings.
var wmoDescriptions = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "depositing rime fog",
	51: "light drizzle",
	53: "drizzle",
	55: "dense drizzle",
	56: "light freezing drizzle",
	57: "freezing drizzle",
	61: "light rain",
	63: "rain",
	65: "heavy rain",
	66: "light freezing rain",
	67: "freezing rain",
	71: "light snow",
	73: "snow",
	75: "heavy snow",
	77: "snow grains",
	80: "light showers",
	81: "showers",
	82: "violent showers",
	85: "light snow showers",
	86: "snow showers",
	95: "thunderstorm",
	96: "thunderstorm with hail",
	99: "thunderstorm with heavy hail",
}

// CoordsProvider resolves the effective latitude/longitude at call time.
type CoordsProvider func() (float64, float64)

// WeatherService fetches current conditions from Open-Meteo.
type WeatherService struct {
	baseURL string
	cache   *cache.Cache
	client  *http.Client
	coords  CoordsProvider
}

// NewWeatherService creates a new weather service
func NewWeatherService(coords CoordsProvider) *WeatherService {
	return &WeatherService{
		baseURL: openMeteoURL,
		cache:   cache.New(30*time.Minute, 10*time.Minute), // Conditions rarely change faster
		client:  &http.Client{Timeout: 10 * time.Second},
		coords:  coords,
	}
}

// Current returns the current weather for the configured coordinates.
func (s *WeatherService) Current(ctx context.Context) (*models.Weather, bool) {
	lat, lon := s.coords()
	return s.CurrentAt(ctx, lat, lon)
}

// CurrentAt returns the current weather, or false when coordinates are
// unset or the fetch failed. Results are cached per coordinate pair.
func (s *WeatherService) CurrentAt(ctx context.Context, lat, lon float64) (*models.Weather, bool) {
	if lat == 0 && lon == 0 {
		return nil, false
	}

	key := fmt.Sprintf("%.4f,%.4f", lat, lon)
	if cached, found := s.cache.Get(key); found {
		return cached.(*models.Weather), true
	}

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", lat))
	params.Set("longitude", fmt.Sprintf("%.4f", lon))
	params.Set("current_weather", "true")

	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, false
	}
	if err := WaitOutbound(ctx, req.URL.Host); err != nil {
		return nil, false
	}

	start := time.Now()
	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorRequest("open-meteo")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.recordError("open-meteo")
		log.Printf("⚠️  [WEATHER] Fetch failed: %v", err)
		return nil, false
	}
	defer resp.Body.Close()

	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorLatency("open-meteo", time.Since(start).Seconds())
	}

	if resp.StatusCode != http.StatusOK {
		s.recordError("open-meteo")
		log.Printf("⚠️  [WEATHER] Unexpected status %d", resp.StatusCode)
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1*1024*1024))
	if err != nil {
		s.recordError("open-meteo")
		return nil, false
	}

	var payload struct {
		CurrentWeather struct {
			Temperature *float64 `json:"temperature"`
			WeatherCode *int     `json:"weathercode"`
		} `json:"current_weather"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		s.recordError("open-meteo")
		log.Printf("⚠️  [WEATHER] Malformed response: %v", err)
		return nil, false
	}

	cw := payload.CurrentWeather
	if cw.Temperature == nil || cw.WeatherCode == nil {
		return nil, false
	}

	weather := &models.Weather{
		Temperature: *cw.Temperature,
		Code:        *cw.WeatherCode,
		Description: wmoDescriptions[*cw.WeatherCode],
	}
	if weather.Description != "" {
		weather.Summary = fmt.Sprintf("%.1f°C, %s", weather.Temperature, weather.Description)
	} else {
		weather.Summary = fmt.Sprintf("%.1f°C code %d", weather.Temperature, weather.Code)
	}

	s.cache.Set(key, weather, cache.DefaultExpiration)
	return weather, true
}

func (s *WeatherService) recordError(service string) {
	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorError(service)
	}
}
