package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/EoghannIrving/echo-journal/internal/services"
)

// ReconcileHandler writes the user's chosen mood/energy back to the
// external log after an entry is saved. Reconciliation is best-effort:
// a failed write is recorded as pending for the background sweep and
// the response still succeeds.
type ReconcileHandler struct {
	moodLog *services.MoodLogService
	history *services.HistoryService
	now     func() time.Time
}

// NewReconcileHandler creates a new reconcile handler
func NewReconcileHandler(moodLog *services.MoodLogService, history *services.HistoryService) *ReconcileHandler {
	return &ReconcileHandler{moodLog: moodLog, history: history, now: time.Now}
}

type reconcileRequest struct {
	Mood   string `json:"mood"`
	Energy string `json:"energy"`
}

// Post records today's mood/energy in the external log at most once.
func (h *ReconcileHandler) Post(c *fiber.Ctx) error {
	var req reconcileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Mood == "" || req.Energy == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "mood and energy are required",
		})
	}
	if !h.moodLog.Enabled() {
		return c.JSON(fiber.Map{"recorded": false, "enabled": false})
	}

	recorded := h.moodLog.RecordIfMissing(req.Mood, req.Energy)

	day := h.now().Format("2006-01-02")
	lastError := ""
	settled := recorded
	if !recorded {
		// RecordIfMissing also returns false when today is already in
		// the log; only a genuinely unwritten day stays pending.
		if snapshot := h.moodLog.GetSnapshot(); snapshot.HasTodayEntry {
			settled = true
		} else {
			lastError = "mood log rejected the write"
		}
	}
	if err := h.history.RecordReconciliationOutcome(day, req.Mood, req.Energy, settled, lastError); err != nil {
		log.Printf("⚠️  [HISTORY] Failed to record reconciliation outcome: %v", err)
	}

	return c.JSON(fiber.Map{"recorded": recorded})
}
