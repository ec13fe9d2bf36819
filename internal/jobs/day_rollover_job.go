package jobs

import (
	"context"
	"log/slog"
	"time"

	"capacity/internal/core/application/usecases/commands"
	"capacity/internal/core/domain/model/kernel"

	"github.com/robfig/cron/v3"
)

// DefaultDayRolloverSpec runs shortly after midnight.
const DefaultDayRolloverSpec = "0 5 0 * * *"

// PlanForgetter drops per-key recompute bookkeeping for past days.
type PlanForgetter interface {
	Forget(before kernel.Date)
}

// DayRolloverJob completes the active plans of past days and lets the
// recompute coordinator forget them.
type DayRolloverJob struct {
	handler   commands.CompletePastRoutePlansCommandHandler
	forgetter PlanForgetter
	spec      string
	now       func() time.Time
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewDayRolloverJob(
	handler commands.CompletePastRoutePlansCommandHandler,
	forgetter PlanForgetter,
	spec string,
	logger *slog.Logger,
) *DayRolloverJob {
	if spec == "" {
		spec = DefaultDayRolloverSpec
	}
	return &DayRolloverJob{
		handler:   handler,
		forgetter: forgetter,
		spec:      spec,
		now:       time.Now,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "day_rollover_job"),
	}
}

// Start registers the job under its cron spec and starts the scheduler.
func (j *DayRolloverJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, func() { j.run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Day rollover job started", "spec", j.spec)
	return nil
}

func (j *DayRolloverJob) run(ctx context.Context) {
	today := kernel.DateOf(j.now())
	cmd, err := commands.NewCompletePastRoutePlansCommand(today)
	if err != nil {
		j.logger.ErrorContext(ctx, "Day rollover job failed", "error", err)
		return
	}

	completed, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Day rollover job failed", "today", today.String(), "error", err)
		return
	}
	j.forgetter.Forget(today)

	j.logger.InfoContext(ctx, "Completed past route plans", "today", today.String(), "count", completed)
}

// Stop stops the scheduler and waits for a running rollover.
func (j *DayRolloverJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Day rollover job stopped")
}
