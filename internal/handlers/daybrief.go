package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/EoghannIrving/echo-journal/internal/services"
)

// DayBriefHandler serves the daily context card.
type DayBriefHandler struct {
	dayBrief *services.DayBriefService
}

// NewDayBriefHandler creates a new day brief handler
func NewDayBriefHandler(dayBrief *services.DayBriefService) *DayBriefHandler {
	return &DayBriefHandler{dayBrief: dayBrief}
}

// Get assembles today's brief. Optional lat/lon query parameters
// override the configured fallback coordinates for the weather section.
func (h *DayBriefHandler) Get(c *fiber.Ctx) error {
	lat := c.QueryFloat("lat", 0)
	lon := c.QueryFloat("lon", 0)

	return c.JSON(h.dayBrief.Brief(c.Context(), lat, lon))
}
