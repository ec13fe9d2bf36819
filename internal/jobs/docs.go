// Package jobs provides scheduled background tasks for capacity coordination.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
// Specs include a seconds field.
//
// # Available Jobs
//
// 1. PlanRetryJob - Every thirty seconds, reschedules route recomputations
// that kept the previous plan because the distance oracle was unavailable
// 2. DayRolloverJob - Shortly after midnight, completes the active route plans
// of past days and drops their recompute bookkeeping
//
// # Usage
//
//	jobManager := jobs.NewJobManager(coordinator, completePastPlansHandler, jobs.Schedules{}, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - Retry passes never fail; the coordinator reports how many keys it rescheduled
// - Rollover errors are logged and the pass is tried again at the next tick
// - Failed job starts will stop any already running jobs
package jobs
