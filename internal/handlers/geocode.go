package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/EoghannIrving/echo-journal/internal/services"
)

// GeocodeHandler resolves coordinates to a place name for entry headers.
type GeocodeHandler struct {
	geocode *services.GeocodeService
}

// NewGeocodeHandler creates a new geocode handler
func NewGeocodeHandler(geocode *services.GeocodeService) *GeocodeHandler {
	return &GeocodeHandler{geocode: geocode}
}

// Reverse looks up the location for lat/lon query parameters.
func (h *GeocodeHandler) Reverse(c *fiber.Ctx) error {
	lat := c.QueryFloat("lat", 0)
	lon := c.QueryFloat("lon", 0)
	if lat == 0 && lon == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "lat and lon are required",
		})
	}

	location, err := h.geocode.Reverse(c.Context(), lat, lon)
	if err != nil {
		log.Printf("⚠️  [GEOCODE] Reverse lookup failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Reverse geocoding failed",
		})
	}

	return c.JSON(location)
}
