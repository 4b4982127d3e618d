package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Port string

	// Journal data and engine inputs
	DataDir      string
	MoodLogPath  string // external mood/energy log; empty disables mood tracking
	PromptsFile  string
	SettingsFile string
	DatabasePath string // SQLite history store

	MoodTrackingEnabled bool

	// Day-brief collaborators
	FallbackLat        float64
	FallbackLon        float64
	NominatimUserAgent string
	WordnikAPIKey      string

	// Media collaborators
	ImmichURL             string
	ImmichAPIKey          string
	ImmichTimeBuffer      int
	JellyfinURL           string
	JellyfinAPIKey        string
	JellyfinUserID        string
	JellyfinPageSize      int
	JellyfinPlayThreshold int // percent played before an item counts as listened
	AudiobookshelfURL     string
	AudiobookshelfToken   string

	// Prompt generation collaborator
	GenerationAPIURL string
	GenerationAPIKey string
	GenerationModel  string

	// Optional HTTP basic auth; active only when both are set
	BasicAuthUsername string
	BasicAuthPassword string

	// Background jobs
	SweepCron            string
	CleanupCron          string
	HistoryRetentionDays int
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8000"),

		DataDir:      getEnv("DATA_DIR", "./journals"),
		MoodLogPath:  getEnv("MOOD_LOG_PATH", ""),
		PromptsFile:  getEnv("PROMPTS_FILE", "./prompts.yaml"),
		SettingsFile: getEnv("SETTINGS_FILE", "./settings.yaml"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/echo_journal.db"),

		MoodTrackingEnabled: getBoolEnv("MOOD_TRACKING_ENABLED", true),

		FallbackLat:        getFloatEnv("FALLBACK_LAT", 0),
		FallbackLon:        getFloatEnv("FALLBACK_LON", 0),
		NominatimUserAgent: getEnv("NOMINATIM_USER_AGENT", "EchoJournal/1.0 (contact@example.com)"),
		WordnikAPIKey:      getEnv("WORDNIK_API_KEY", ""),

		ImmichURL:             getEnv("IMMICH_URL", ""),
		ImmichAPIKey:          getEnv("IMMICH_API_KEY", ""),
		ImmichTimeBuffer:      getIntEnv("IMMICH_TIME_BUFFER", 15),
		JellyfinURL:           getEnv("JELLYFIN_URL", ""),
		JellyfinAPIKey:        getEnv("JELLYFIN_API_KEY", ""),
		JellyfinUserID:        getEnv("JELLYFIN_USER_ID", ""),
		JellyfinPageSize:      getIntEnv("JELLYFIN_PAGE_SIZE", 200),
		JellyfinPlayThreshold: getIntEnv("JELLYFIN_PLAY_THRESHOLD", 90),
		AudiobookshelfURL:     getEnv("AUDIOBOOKSHELF_URL", ""),
		AudiobookshelfToken:   getEnv("AUDIOBOOKSHELF_API_TOKEN", ""),

		GenerationAPIURL: getEnv("GENERATION_API_URL", "https://api.openai.com/v1/completions"),
		GenerationAPIKey: getEnv("GENERATION_API_KEY", ""),
		GenerationModel:  getEnv("GENERATION_MODEL", "gpt-3.5-turbo-instruct"),

		BasicAuthUsername: getEnv("BASIC_AUTH_USERNAME", ""),
		BasicAuthPassword: getEnv("BASIC_AUTH_PASSWORD", ""),

		SweepCron:            getEnv("SWEEP_CRON", "*/30 * * * *"),
		CleanupCron:          getEnv("CLEANUP_CRON", "0 2 * * *"),
		HistoryRetentionDays: getIntEnv("HISTORY_RETENTION_DAYS", 90),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
