package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/EoghannIrving/echo-journal/internal/services"
)

// ExportHandler serves the mood log as an xlsx workbook.
type ExportHandler struct {
	export *services.ExportService
	now    func() time.Time
}

// NewExportHandler creates a new export handler
func NewExportHandler(export *services.ExportService) *ExportHandler {
	return &ExportHandler{export: export, now: time.Now}
}

// Moods streams the observation workbook as a download.
func (h *ExportHandler) Moods(c *fiber.Ctx) error {
	data, err := h.export.MoodWorkbook()
	if err != nil {
		log.Printf("⚠️  [EXPORT] Failed to build workbook: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Mood export is unavailable",
		})
	}

	filename := fmt.Sprintf("moods-%s.xlsx", h.now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}
