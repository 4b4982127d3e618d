package models

// Settings is the runtime overlay persisted to settings.yaml. Non-empty
// values override the corresponding environment variable; an empty string
// means unset.
type Settings map[string]string

// Setting keys accepted by the settings endpoint.
const (
	SettingKeyDataDir           = "DATA_DIR"
	SettingKeyMoodLogPath       = "MOOD_LOG_PATH"
	SettingKeyPromptsFile       = "PROMPTS_FILE"
	SettingKeyLogLevel          = "LOG_LEVEL"
	SettingKeyMoodTracking      = "MOOD_TRACKING_ENABLED"
	SettingKeyFallbackLat       = "FALLBACK_LAT"
	SettingKeyFallbackLon       = "FALLBACK_LON"
	SettingKeyBasicAuthUsername = "BASIC_AUTH_USERNAME"
	SettingKeyBasicAuthPassword = "BASIC_AUTH_PASSWORD"
	SettingKeyWordnikAPIKey     = "WORDNIK_API_KEY"
	SettingKeyImmichURL         = "IMMICH_URL"
	SettingKeyImmichAPIKey      = "IMMICH_API_KEY"
	SettingKeyJellyfinURL       = "JELLYFIN_URL"
	SettingKeyJellyfinAPIKey    = "JELLYFIN_API_KEY"
	SettingKeyAudiobookshelfURL = "AUDIOBOOKSHELF_URL"
	SettingKeyAudiobookshelfKey = "AUDIOBOOKSHELF_API_TOKEN"
	SettingKeyGenerationURL     = "GENERATION_API_URL"
	SettingKeyGenerationAPIKey  = "GENERATION_API_KEY"
	SettingKeyGenerationModel   = "GENERATION_MODEL"
)

// KnownSettingKeys lists every key the settings endpoint will accept,
// in the order the UI presents them.
var KnownSettingKeys = []string{
	SettingKeyDataDir,
	SettingKeyMoodLogPath,
	SettingKeyPromptsFile,
	SettingKeyLogLevel,
	SettingKeyMoodTracking,
	SettingKeyFallbackLat,
	SettingKeyFallbackLon,
	SettingKeyBasicAuthUsername,
	SettingKeyBasicAuthPassword,
	SettingKeyWordnikAPIKey,
	SettingKeyImmichURL,
	SettingKeyImmichAPIKey,
	SettingKeyJellyfinURL,
	SettingKeyJellyfinAPIKey,
	SettingKeyAudiobookshelfURL,
	SettingKeyAudiobookshelfKey,
	SettingKeyGenerationURL,
	SettingKeyGenerationAPIKey,
	SettingKeyGenerationModel,
}

// IsKnownSettingKey reports whether the settings endpoint accepts the key.
func IsKnownSettingKey(key string) bool {
	for _, k := range KnownSettingKeys {
		if k == key {
			return true
		}
	}
	return false
}
