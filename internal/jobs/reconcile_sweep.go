package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/EoghannIrving/echo-journal/internal/services"
)

// ReconcileSweepJob retries pending mood reconciliations. A day goes
// pending when a selection carried mood and energy but the log write
// failed; the sweep keeps retrying until the log takes the entry or the
// day rolls over.
type ReconcileSweepJob struct {
	history  *services.HistoryService
	moodLog  *services.MoodLogService
	cronExpr string
	now      func() time.Time
}

// NewReconcileSweepJob creates a new reconcile sweep job
func NewReconcileSweepJob(history *services.HistoryService, moodLog *services.MoodLogService, cronExpr string) *ReconcileSweepJob {
	return &ReconcileSweepJob{
		history:  history,
		moodLog:  moodLog,
		cronExpr: cronExpr,
		now:      time.Now,
	}
}

// Run retries today's pending reconciliation, if any.
func (j *ReconcileSweepJob) Run(ctx context.Context) error {
	if !j.moodLog.Enabled() {
		j.recordRun("disabled")
		return nil
	}

	pending, err := j.history.PendingToday()
	if err != nil {
		j.recordRun("failed")
		return fmt.Errorf("failed to load pending reconciliation: %w", err)
	}
	if pending == nil {
		j.recordRun("idle")
		return nil
	}

	log.Printf("[SWEEP] Retrying reconciliation for %s (attempt %d)", pending.Day, pending.Attempts+1)

	if j.moodLog.RecordIfMissing(pending.Mood, pending.Energy) {
		j.recordRun("recorded")
		return j.history.RecordReconciliationOutcome(pending.Day, pending.Mood, pending.Energy, true, "")
	}

	// RecordIfMissing also returns false when the day is already in the
	// log, which settles the reconciliation just the same.
	if snapshot := j.moodLog.GetSnapshot(); snapshot.HasTodayEntry {
		j.recordRun("recorded")
		return j.history.RecordReconciliationOutcome(pending.Day, pending.Mood, pending.Energy, true, "")
	}

	j.recordRun("retry_failed")
	return j.history.RecordReconciliationOutcome(pending.Day, pending.Mood, pending.Energy, false, "mood log rejected the retry")
}

func (j *ReconcileSweepJob) recordRun(result string) {
	if m := services.GetMetrics(); m != nil {
		m.RecordSweepRun(result)
	}
}

// CronExpression returns the sweep schedule.
func (j *ReconcileSweepJob) CronExpression() string { return j.cronExpr }

// GetNextRunTime returns when the job should run next
func (j *ReconcileSweepJob) GetNextRunTime() time.Time {
	return NextRunFromCron(j.cronExpr, j.now())
}
