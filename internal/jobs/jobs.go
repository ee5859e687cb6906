// Package jobs runs scheduled maintenance alongside the HTTP server.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/famquest/internal/constants"
	"github.com/julianstephens/famquest/internal/logger"
	"github.com/julianstephens/famquest/internal/streaks"
)

// StreakRepairer is satisfied by *streaks.Recalculator.
type StreakRepairer interface {
	RecalculateStreaks(ctx context.Context, familyID string) ([]streaks.MemberResult, error)
}

type Runner struct {
	cron     *cron.Cron
	repairer StreakRepairer
	timeout  time.Duration
}

// NewRunner schedules the streak repair on spec, a standard five-field cron
// expression or a descriptor such as "@daily". Overlapping runs are skipped.
func NewRunner(spec string, repairer StreakRepairer) (*Runner, error) {
	if spec == "" {
		spec = constants.DefaultRecalcSchedule
	}
	r := &Runner{
		repairer: repairer,
		timeout:  30 * time.Minute,
	}
	r.cron = cron.New(cron.WithChain(
		cron.Recover(cron.DiscardLogger),
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	if _, err := r.cron.AddFunc(spec, r.RepairStreaks); err != nil {
		return nil, fmt.Errorf("invalid recalculation schedule %q: %w", spec, err)
	}
	return r, nil
}

// RepairStreaks recalculates every family once and logs per-member failures.
func (r *Runner) RepairStreaks() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	results, err := r.repairer.RecalculateStreaks(ctx, "")
	if err != nil {
		logger.Error("Scheduled streak recalculation failed", "error", err)
		return
	}
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			logger.Warn("Streak recalculation failed for member", "family", res.FamilyID, "member", res.MemberID, "error", res.Err)
		}
	}
	logger.Info("Scheduled streak recalculation complete", "members", len(results), "failed", failed,
		"duration", time.Since(start).Round(time.Millisecond))
}

// Start begins running scheduled jobs in the background.
func (r *Runner) Start() {
	r.cron.Start()
}

// Stop halts scheduling and waits for a running job, up to ctx's deadline.
func (r *Runner) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		logger.Warn("Timed out waiting for scheduled job to finish")
	}
}

// Entries returns the number of scheduled jobs.
func (r *Runner) Entries() int {
	return len(r.cron.Entries())
}
