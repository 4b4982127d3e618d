package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/EoghannIrving/echo-journal/internal/services"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	moodLog    *services.MoodLogService
	generation *services.GenerationService
	version    string
	startedAt  time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(moodLog *services.MoodLogService, generation *services.GenerationService, version string) *HealthHandler {
	return &HealthHandler{
		moodLog:    moodLog,
		generation: generation,
		version:    version,
		startedAt:  time.Now(),
	}
}

// Handle responds with server health status and subsystem flags
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":         "healthy",
		"version":        h.version,
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
		"mood_tracking":  h.moodLog.Enabled(),
		"generation":     h.generation.Enabled(),
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}
