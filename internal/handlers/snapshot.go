package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/EoghannIrving/echo-journal/internal/services"
)

// SnapshotHandler serves the derived mood/energy snapshot used to
// pre-fill a new entry's defaults.
type SnapshotHandler struct {
	moodLog *services.MoodLogService
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(moodLog *services.MoodLogService) *SnapshotHandler {
	return &SnapshotHandler{moodLog: moodLog}
}

// Get returns today's snapshot. Disabled or unreadable logs come back
// as data (enabled/available flags), never as an error status.
func (h *SnapshotHandler) Get(c *fiber.Ctx) error {
	return c.JSON(h.moodLog.GetSnapshot())
}
