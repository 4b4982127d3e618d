package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/EoghannIrving/echo-journal/internal/services"
)

// HistoryHandler serves the stored selection and reconciliation history.
type HistoryHandler struct {
	history *services.HistoryService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(history *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// Recent returns the newest selections, default 20, capped at 200.
func (h *HistoryHandler) Recent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)

	records, err := h.history.RecentSelections(limit)
	if err != nil {
		log.Printf("⚠️  [HISTORY] Failed to load selections: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}

	return c.JSON(fiber.Map{
		"selections": records,
		"count":      len(records),
	})
}

// Stats returns aggregate counts over the stored history.
func (h *HistoryHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.history.Stats()
	if err != nil {
		log.Printf("⚠️  [HISTORY] Failed to compute stats: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute stats",
		})
	}

	return c.JSON(stats)
}
