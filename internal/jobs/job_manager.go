package jobs

import (
	"fmt"
	"log/slog"

	"capacity/internal/core/application/usecases/commands"
)

// Schedules holds the cron specs (with seconds) of every job. Empty fields
// fall back to the job defaults.
type Schedules struct {
	PlanRetry   string
	DayRollover string
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	planRetryJob   *PlanRetryJob
	dayRolloverJob *DayRolloverJob
}

// Coordinator is what the jobs need from the recompute coordinator.
type Coordinator interface {
	FailedPlanRetrier
	PlanForgetter
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	coordinator Coordinator,
	completePastPlansHandler commands.CompletePastRoutePlansCommandHandler,
	schedules Schedules,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		planRetryJob:   NewPlanRetryJob(coordinator, schedules.PlanRetry, logger),
		dayRolloverJob: NewDayRolloverJob(completePastPlansHandler, coordinator, schedules.DayRollover, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.planRetryJob.Start(); err != nil {
		return fmt.Errorf("failed to start plan retry job: %w", err)
	}

	if err := jm.dayRolloverJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.planRetryJob.Stop()
		return fmt.Errorf("failed to start day rollover job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.dayRolloverJob.Stop()
	jm.planRetryJob.Stop()
}
