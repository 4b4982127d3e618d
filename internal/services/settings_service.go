package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/EoghannIrving/echo-journal/internal/models"
)

// SettingsService handles the runtime settings overlay persisted to a
// YAML file. Values set here override environment defaults without a
// restart; services read through it via path/key providers.
type SettingsService struct {
	path string

	mu     sync.Mutex
	values models.Settings
	loaded bool
}

// NewSettingsService creates a settings service backed by the given file.
// The file is loaded lazily on first read; a missing file is an empty
// overlay.
func NewSettingsService(path string) *SettingsService {
	return &SettingsService{path: path}
}

// ensureLoaded reads the overlay file once. Callers must hold mu.
func (s *SettingsService) ensureLoaded() {
	if s.loaded {
		return
	}
	s.loaded = true
	s.values = make(models.Settings)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️  [SETTINGS] Failed to read %s: %v", s.path, err)
		}
		return
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		log.Printf("⚠️  [SETTINGS] Malformed settings file %s: %v", s.path, err)
		s.values = make(models.Settings)
	}
}

// Get retrieves a setting override by key. Not found is an empty string,
// never an error.
func (s *SettingsService) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()
	return s.values[key]
}

// Effective returns the overlay value when set, otherwise the fallback
// (typically the environment-derived default).
func (s *SettingsService) Effective(key, fallback string) string {
	if v := s.Get(key); v != "" {
		return v
	}
	return fallback
}

// All returns a copy of the stored overlay.
func (s *SettingsService) All() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	out := make(models.Settings, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Set updates or creates a setting and persists the overlay. Unknown
// keys are rejected so typos don't silently shadow real configuration.
func (s *SettingsService) Set(key, value string) error {
	if !models.IsKnownSettingKey(key) {
		return fmt.Errorf("unknown setting key %q", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	if value == "" {
		delete(s.values, key)
	} else {
		s.values[key] = value
	}
	return s.persist()
}

// Replace swaps the whole overlay, validating every key first.
func (s *SettingsService) Replace(values models.Settings) error {
	for key := range values {
		if !models.IsKnownSettingKey(key) {
			return fmt.Errorf("unknown setting key %q", key)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.values = make(models.Settings, len(values))
	for k, v := range values {
		if v != "" {
			s.values[k] = v
		}
	}
	return s.persist()
}

// Reload drops the cached overlay so the next read hits the file again.
// Called when the settings file changes on disk.
func (s *SettingsService) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
}

// persist writes the overlay to disk. Callers must hold mu.
func (s *SettingsService) persist() error {
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	log.Printf("✅ [SETTINGS] Saved %d overrides to %s", len(s.values), s.path)
	return nil
}
