package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/EoghannIrving/echo-journal/internal/logging"
	"github.com/EoghannIrving/echo-journal/internal/models"
	"github.com/EoghannIrving/echo-journal/internal/services"
	"github.com/EoghannIrving/echo-journal/internal/utils"
)

// PromptHandler serves prompt selections and the generated-prompt
// endpoint that grows the corpus.
type PromptHandler struct {
	prompts    *services.PromptService
	generation *services.GenerationService
	history    *services.HistoryService
	now        func() time.Time
}

// NewPromptHandler creates a new prompt handler
func NewPromptHandler(prompts *services.PromptService, generation *services.GenerationService, history *services.HistoryService) *PromptHandler {
	return &PromptHandler{
		prompts:    prompts,
		generation: generation,
		history:    history,
		now:        time.Now,
	}
}

// New runs the filter cascade for the supplied mood/energy and returns
// one prompt. Mood and energy are optional; without both no anchor is
// derived and the cascade skips its anchor stage.
func (h *PromptHandler) New(c *fiber.Ctx) error {
	mood := c.Query("mood")
	energy := 0
	if value, ok := models.NormalizeEnergy(c.Query("energy")); ok {
		energy = value
	}
	style := c.Query("style")
	debug := c.QueryBool("debug")
	timeLabel := utils.TimeOfDayLabel(h.now())

	selection := h.prompts.GenerateSelection(mood, energy, style, timeLabel, debug)
	logging.WithSelection(string(selection.Anchor), selection.Style, timeLabel).
		Debug("prompt selected", "id", selection.ID)

	if err := h.history.RecordSelection(selection, mood, c.Query("energy"), timeLabel, false); err != nil {
		log.Printf("⚠️  [HISTORY] Failed to record selection: %v", err)
	}

	return c.JSON(selection)
}

// aiPromptRequest is the generated-prompt request body. All fields are
// optional; mood and energy only steer the anchor choice.
type aiPromptRequest struct {
	Mood   string `json:"mood"`
	Energy string `json:"energy"`
}

// Generate asks the generation collaborator for one new prompt, appends
// it to the corpus, and returns it rendered like a regular selection.
func (h *PromptHandler) Generate(c *fiber.Ctx) error {
	if !h.generation.Enabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Prompt generation is not configured",
		})
	}

	var req aiPromptRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	// The anchor defaults to soft here, at the use site; the selector
	// itself never guesses one.
	anchor := models.AnchorSoft
	if energy, ok := models.NormalizeEnergy(req.Energy); ok {
		if chosen, chosenOK := h.prompts.ChooseAnchor(req.Mood, energy); chosenOK {
			anchor = chosen
		}
	}

	template, err := h.generation.Generate(c.Context(), anchor)
	if err != nil {
		log.Printf("⚠️  [GENERATION] Failed to generate prompt: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Prompt generation failed",
		})
	}

	now := h.now()
	selection := models.Selection{
		Text:   template.Text,
		ID:     template.ID,
		Style:  "Ai",
		Anchor: template.Anchor,
		Tags:   template.Tags,
	}
	timeLabel := utils.TimeOfDayLabel(now)
	if err := h.history.RecordSelection(selection, req.Mood, req.Energy, timeLabel, true); err != nil {
		log.Printf("⚠️  [HISTORY] Failed to record generated selection: %v", err)
	}

	return c.JSON(selection)
}
