package preflight

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/EoghannIrving/echo-journal/internal/config"
	"github.com/EoghannIrving/echo-journal/internal/database"
	"github.com/EoghannIrving/echo-journal/internal/models"
)

// CheckResult represents the result of a preflight check
type CheckResult struct {
	Name    string
	Status  string // "pass", "fail", "warning"
	Message string
	Error   error
}

// Checker performs pre-flight checks before server starts
type Checker struct {
	db  *database.DB
	cfg *config.Config
}

// NewChecker creates a new preflight checker
func NewChecker(db *database.DB, cfg *config.Config) *Checker {
	return &Checker{db: db, cfg: cfg}
}

// RunAll runs all preflight checks and returns results
func (c *Checker) RunAll() []CheckResult {
	log.Println("🔍 Running pre-flight checks...")

	results := []CheckResult{
		c.checkDatabaseConnection(),
		c.checkDatabaseSchema(),
		c.checkDataDir(),
		c.checkMoodLog(),
		c.checkPromptCorpus(),
		c.checkCollaborators(),
	}

	// Print summary
	passed := 0
	failed := 0
	warnings := 0

	for _, result := range results {
		switch result.Status {
		case "pass":
			log.Printf("   ✅ %s: %s", result.Name, result.Message)
			passed++
		case "fail":
			log.Printf("   ❌ %s: %s", result.Name, result.Message)
			if result.Error != nil {
				log.Printf("      Error: %v", result.Error)
			}
			failed++
		case "warning":
			log.Printf("   ⚠️  %s: %s", result.Name, result.Message)
			warnings++
		}
	}

	log.Printf("\n📊 Pre-flight summary: %d passed, %d failed, %d warnings\n", passed, failed, warnings)

	return results
}

// HasFailures returns true if any check failed
func HasFailures(results []CheckResult) bool {
	for _, result := range results {
		if result.Status == "fail" {
			return true
		}
	}
	return false
}

// checkDatabaseConnection verifies history database connectivity
func (c *Checker) checkDatabaseConnection() CheckResult {
	if err := c.db.Ping(); err != nil {
		return CheckResult{
			Name:    "Database Connection",
			Status:  "fail",
			Message: "Cannot connect to history database",
			Error:   err,
		}
	}

	return CheckResult{
		Name:    "Database Connection",
		Status:  "pass",
		Message: "History database connection successful",
	}
}

// checkDatabaseSchema verifies all required tables exist
func (c *Checker) checkDatabaseSchema() CheckResult {
	requiredTables := []string{
		"selections",
		"reconciliations",
	}

	for _, table := range requiredTables {
		var count int
		query := "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = ?"
		err := c.db.QueryRow(query, table).Scan(&count)
		if err != nil || count == 0 {
			return CheckResult{
				Name:    "Database Schema",
				Status:  "fail",
				Message: fmt.Sprintf("Required table '%s' not found", table),
				Error:   err,
			}
		}
	}

	return CheckResult{
		Name:    "Database Schema",
		Status:  "pass",
		Message: fmt.Sprintf("All %d required tables exist", len(requiredTables)),
	}
}

// checkDataDir verifies the journal data directory is writable
func (c *Checker) checkDataDir() CheckResult {
	if err := os.MkdirAll(c.cfg.DataDir, 0o755); err != nil {
		return CheckResult{
			Name:    "Data Directory",
			Status:  "fail",
			Message: fmt.Sprintf("Cannot create data directory %s", c.cfg.DataDir),
			Error:   err,
		}
	}

	probe := filepath.Join(c.cfg.DataDir, ".preflight")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return CheckResult{
			Name:    "Data Directory",
			Status:  "fail",
			Message: fmt.Sprintf("Data directory %s is not writable", c.cfg.DataDir),
			Error:   err,
		}
	}
	os.Remove(probe)

	return CheckResult{
		Name:    "Data Directory",
		Status:  "pass",
		Message: fmt.Sprintf("Data directory %s is writable", c.cfg.DataDir),
	}
}

// checkMoodLog verifies the external mood log parses when configured.
// An absent path is informational; the subsystem just runs disabled.
func (c *Checker) checkMoodLog() CheckResult {
	path := c.cfg.MoodLogPath
	if path == "" {
		return CheckResult{
			Name:    "Mood Log",
			Status:  "warning",
			Message: "MOOD_LOG_PATH not set (mood tracking disabled)",
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{
				Name:    "Mood Log",
				Status:  "warning",
				Message: fmt.Sprintf("Mood log %s does not exist yet (created on first reconciliation)", path),
			}
		}
		return CheckResult{
			Name:    "Mood Log",
			Status:  "fail",
			Message: fmt.Sprintf("Cannot read mood log %s", path),
			Error:   err,
		}
	}

	var observations []models.Observation
	if err := yaml.Unmarshal(data, &observations); err != nil {
		return CheckResult{
			Name:    "Mood Log",
			Status:  "fail",
			Message: fmt.Sprintf("Mood log %s is not a valid observation list", path),
			Error:   err,
		}
	}

	return CheckResult{
		Name:    "Mood Log",
		Status:  "pass",
		Message: fmt.Sprintf("Mood log parsed (%d observations)", len(observations)),
	}
}

// checkPromptCorpus verifies the prompt corpus parses
func (c *Checker) checkPromptCorpus() CheckResult {
	path := c.cfg.PromptsFile
	data, err := os.ReadFile(path)
	if err != nil {
		return CheckResult{
			Name:    "Prompt Corpus",
			Status:  "warning",
			Message: fmt.Sprintf("Prompt corpus %s is not readable (selections will report no prompts)", path),
		}
	}

	var prompts []models.PromptTemplate
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return CheckResult{
			Name:    "Prompt Corpus",
			Status:  "fail",
			Message: fmt.Sprintf("Prompt corpus %s is not a valid template list", path),
			Error:   err,
		}
	}

	return CheckResult{
		Name:    "Prompt Corpus",
		Status:  "pass",
		Message: fmt.Sprintf("Prompt corpus parsed (%d templates)", len(prompts)),
	}
}

// checkCollaborators reports which optional collaborators are configured
func (c *Checker) checkCollaborators() CheckResult {
	configured := []string{}
	if c.cfg.GenerationAPIKey != "" {
		configured = append(configured, "generation")
	}
	if c.cfg.WordnikAPIKey != "" {
		configured = append(configured, "wordnik")
	}
	if c.cfg.ImmichURL != "" {
		configured = append(configured, "immich")
	}
	if c.cfg.JellyfinURL != "" {
		configured = append(configured, "jellyfin")
	}
	if c.cfg.AudiobookshelfURL != "" {
		configured = append(configured, "audiobookshelf")
	}

	if len(configured) == 0 {
		return CheckResult{
			Name:    "Collaborators",
			Status:  "warning",
			Message: "No optional collaborators configured (day brief will carry weather and date fact only)",
		}
	}

	return CheckResult{
		Name:    "Collaborators",
		Status:  "pass",
		Message: fmt.Sprintf("Configured: %v", configured),
	}
}
