package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/EoghannIrving/echo-journal/internal/models"
	"github.com/EoghannIrving/echo-journal/internal/services"
)

// SettingsHandler exposes the runtime settings overlay.
type SettingsHandler struct {
	settings *services.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get returns the stored overlay plus the list of accepted keys.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"settings": h.settings.All(),
		"keys":     models.KnownSettingKeys,
	})
}

// Post replaces the overlay. Unknown keys are rejected wholesale so a
// typo can't silently shadow real configuration.
func (h *SettingsHandler) Post(c *fiber.Ctx) error {
	var values models.Settings
	if err := c.BodyParser(&values); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.settings.Replace(values); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"settings": h.settings.All()})
}
