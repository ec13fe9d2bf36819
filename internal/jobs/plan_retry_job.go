package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// DefaultPlanRetrySpec retries failed recomputations every thirty seconds.
const DefaultPlanRetrySpec = "*/30 * * * * *"

// FailedPlanRetrier reschedules keys whose last recomputation could not
// reach the distance oracle.
type FailedPlanRetrier interface {
	RetryFailed() int
}

// PlanRetryJob gives route plans that were kept because the oracle was down
// another chance once it may be back.
type PlanRetryJob struct {
	retrier FailedPlanRetrier
	spec    string
	cron    *cron.Cron
	logger  *slog.Logger
}

func NewPlanRetryJob(retrier FailedPlanRetrier, spec string, logger *slog.Logger) *PlanRetryJob {
	if spec == "" {
		spec = DefaultPlanRetrySpec
	}
	return &PlanRetryJob{
		retrier: retrier,
		spec:    spec,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "plan_retry_job"),
	}
}

// Start registers the job under its cron spec and starts the scheduler.
func (j *PlanRetryJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, j.run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Plan retry job started", "spec", j.spec)
	return nil
}

func (j *PlanRetryJob) run() {
	if n := j.retrier.RetryFailed(); n > 0 {
		j.logger.InfoContext(context.Background(), "Rescheduled failed route recomputations", "count", n)
	}
}

// Stop stops the scheduler and waits for a running retry pass.
func (j *PlanRetryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Plan retry job stopped")
}
