package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/EoghannIrving/echo-journal/internal/services"
)

// HistoryCleanupJob deletes selection and reconciliation rows older than
// the retention window.
type HistoryCleanupJob struct {
	history       *services.HistoryService
	retentionDays func() int
	cronExpr      string
	now           func() time.Time
}

// NewHistoryCleanupJob creates a new history cleanup job
func NewHistoryCleanupJob(history *services.HistoryService, retentionDays func() int, cronExpr string) *HistoryCleanupJob {
	return &HistoryCleanupJob{
		history:       history,
		retentionDays: retentionDays,
		cronExpr:      cronExpr,
		now:           time.Now,
	}
}

// Run prunes history beyond the retention window.
func (j *HistoryCleanupJob) Run(ctx context.Context) error {
	days := j.retentionDays()
	if days <= 0 {
		log.Println("[CLEANUP] History retention disabled")
		return nil
	}

	startTime := time.Now()
	deleted, err := j.history.PruneOlderThan(days)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	log.Printf("[CLEANUP] Cleanup complete: deleted %d rows in %v", deleted, time.Since(startTime))
	return nil
}

// CronExpression returns the cleanup schedule.
func (j *HistoryCleanupJob) CronExpression() string { return j.cronExpr }

// GetNextRunTime returns when the job should run next
func (j *HistoryCleanupJob) GetNextRunTime() time.Time {
	return NextRunFromCron(j.cronExpr, j.now())
}
