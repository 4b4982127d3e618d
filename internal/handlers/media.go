package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/EoghannIrving/echo-journal/internal/services"
)

// MediaHandler proxies Immich photo assets so the browser never needs
// the media server credentials. Day-brief photo URLs point here.
type MediaHandler struct {
	media *services.MediaService
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(media *services.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// Thumbnail serves a photo thumbnail by asset id.
func (h *MediaHandler) Thumbnail(c *fiber.Ctx) error {
	body, contentType, ok := h.media.Asset(c.Context(), c.Params("id"), "thumbnail", c.Query("size", "thumbnail"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Asset unavailable",
		})
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=86400")
	return c.Send(body)
}

// Asset serves the original photo by asset id.
func (h *MediaHandler) Asset(c *fiber.Ctx) error {
	body, contentType, ok := h.media.Asset(c.Context(), c.Params("id"), "original", "")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Asset unavailable",
		})
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=86400")
	return c.Send(body)
}
