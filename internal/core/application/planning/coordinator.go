// Package planning keeps route plans in step with bookings.
//
// Every (driver, date) key has its own serialization: at most one
// recomputation runs at a time, mutations that arrive meanwhile mark the key
// dirty, and a dirty key runs again once the current run ends. A generation
// counter detects runs that were overtaken by a newer mutation; their result
// is discarded instead of committed.
package planning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"capacity/internal/core/domain/model/broadcast"
	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/route"
	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/core/domain/services"
	"capacity/internal/core/ports"
)

// ErrStalePlanVersion marks a recomputation superseded by a newer mutation.
// It never leaves this package.
var ErrStalePlanVersion = errors.New("stale plan version")

// Optimizer is the part of services.RouteOptimizer the coordinator needs.
type Optimizer interface {
	Optimize(
		ctx context.Context,
		driverID kernel.UUID,
		date kernel.Date,
		stops []services.Stop,
		params services.OptimizeParams,
		trigger route.Trigger,
	) (*route.RoutePlan, error)
}

// planKey uses the formatted day so equal dates always hash alike.
type planKey struct {
	driverID kernel.UUID
	day      string
}

func (k planKey) String() string {
	return k.driverID.String() + "/" + k.day
}

type keyState struct {
	// run serializes recomputations of the key, async and on demand alike.
	run sync.Mutex

	driverID kernel.UUID
	date     kernel.Date

	generation uint64
	running    bool
	// onDemand counts RunNow callers holding or waiting for run.
	onDemand int
	dirty    bool
	trigger  route.Trigger
	failed   bool
}

func (st *keyState) busy() bool {
	return st.running || st.onDemand > 0
}

// Coordinator implements ports.RecomputeScheduler.
type Coordinator struct {
	uowFactory ports.UnitOfWorkFactory
	optimizer  Optimizer
	publisher  ports.EventPublisher
	logger     *slog.Logger
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	keys map[planKey]*keyState
}

func NewCoordinator(
	uowFactory ports.UnitOfWorkFactory,
	optimizer Optimizer,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		uowFactory: uowFactory,
		optimizer:  optimizer,
		publisher:  publisher,
		logger:     logger.With("component", "recompute-coordinator"),
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
		keys:       make(map[planKey]*keyState),
	}
}

// WithClock overrides the event timestamp source.
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// Schedule records a committed mutation and makes sure a recomputation
// follows it. It never blocks on the recomputation itself.
func (c *Coordinator) Schedule(driverID kernel.UUID, date kernel.Date, trigger route.Trigger) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Err() != nil {
		return
	}

	key, st := c.state(driverID, date)
	st.generation++
	st.trigger = trigger
	if st.running {
		st.dirty = true
		return
	}
	st.running = true
	c.wg.Add(1)
	go c.loop(key, st)
}

func (c *Coordinator) loop(key planKey, st *keyState) {
	defer c.wg.Done()

	for {
		c.mu.Lock()
		st.dirty = false
		gen, trigger := st.generation, st.trigger
		c.mu.Unlock()

		_, err := c.recompute(c.ctx, key, st, gen, true, trigger, services.OptimizeParams{})
		switch {
		case err == nil:
		case errors.Is(err, ErrStalePlanVersion):
			c.logger.Debug("discarded superseded recomputation", "key", key.String(), "generation", gen)
		default:
			c.logger.Warn("route recomputation failed", "key", key.String(), "error", err)
		}

		c.mu.Lock()
		if !st.dirty || c.ctx.Err() != nil {
			st.running = false
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
	}
}

// RunNow recomputes synchronously with the caller's parameters, queued
// behind any recomputation already running for the key. A booking that
// lands during the run still gets its own recomputation afterwards, so the
// result is committed even if it is already superseded.
func (c *Coordinator) RunNow(
	ctx context.Context,
	driverID kernel.UUID,
	date kernel.Date,
	params services.OptimizeParams,
) (*route.RoutePlan, error) {
	c.mu.Lock()
	key, st := c.state(driverID, date)
	gen := st.generation
	st.onDemand++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		st.onDemand--
		c.mu.Unlock()
	}()

	return c.recompute(ctx, key, st, gen, false, route.TriggerOptimization, params)
}

// RetryFailed reschedules every key whose last recomputation failed. It
// returns how many keys were rescheduled.
func (c *Coordinator) RetryFailed() int {
	type retry struct {
		driverID kernel.UUID
		date     kernel.Date
		trigger  route.Trigger
	}

	c.mu.Lock()
	failed := make([]retry, 0)
	for _, st := range c.keys {
		if st.failed {
			failed = append(failed, retry{driverID: st.driverID, date: st.date, trigger: st.trigger})
		}
	}
	c.mu.Unlock()

	slices.SortFunc(failed, func(a, b retry) int {
		if d := a.date.Time().Compare(b.date.Time()); d != 0 {
			return d
		}
		return a.driverID.Compare(b.driverID)
	})
	for _, r := range failed {
		c.Schedule(r.driverID, r.date, r.trigger)
	}
	return len(failed)
}

// Forget drops bookkeeping for keys dated before the given day.
func (c *Coordinator) Forget(before kernel.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, st := range c.keys {
		if st.date.Before(before) && !st.busy() {
			delete(c.keys, key)
		}
	}
}

// Wait blocks until no recomputation is running.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close stops accepting work, cancels running recomputations and waits for them.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.cancel()
	c.mu.Unlock()
	c.wg.Wait()
}

// state must be called with c.mu held.
func (c *Coordinator) state(driverID kernel.UUID, date kernel.Date) (planKey, *keyState) {
	key := planKey{driverID: driverID, day: date.String()}
	st, ok := c.keys[key]
	if !ok {
		st = &keyState{driverID: driverID, date: date, trigger: route.TriggerBooking}
		c.keys[key] = st
	}
	return key, st
}

func (c *Coordinator) isCurrent(st *keyState, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return st.generation == gen
}

func (c *Coordinator) setFailed(st *keyState, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st.failed = failed
}

func (c *Coordinator) recompute(
	ctx context.Context,
	key planKey,
	st *keyState,
	gen uint64,
	checkGeneration bool,
	trigger route.Trigger,
	params services.OptimizeParams,
) (*route.RoutePlan, error) {
	st.run.Lock()
	defer st.run.Unlock()

	plan, err := c.recomputeLocked(ctx, key, st, gen, checkGeneration, trigger, params)
	if err != nil && !errors.Is(err, ErrStalePlanVersion) {
		c.setFailed(st, true)
	}
	return plan, err
}

// recomputeLocked must be called with st.run held.
func (c *Coordinator) recomputeLocked(
	ctx context.Context,
	key planKey,
	st *keyState,
	gen uint64,
	checkGeneration bool,
	trigger route.Trigger,
	params services.OptimizeParams,
) (*route.RoutePlan, error) {
	if checkGeneration && !c.isCurrent(st, gen) {
		return nil, ErrStalePlanVersion
	}

	stops, err := c.uowFactory.Create().ScheduleRepository().ListRoutable(ctx, st.driverID, st.date)
	if err != nil {
		return nil, err
	}

	plan, err := c.optimizer.Optimize(ctx, st.driverID, st.date, services.StopsFromSchedules(stops), params, trigger)
	if err != nil {
		if errors.Is(err, ports.ErrOracleUnavailable) {
			c.warn(ctx, key, st, err)
		}
		return nil, err
	}

	if checkGeneration && !c.isCurrent(st, gen) {
		return nil, ErrStalePlanVersion
	}

	if err = c.commit(ctx, st, plan, stops); err != nil {
		return nil, err
	}
	c.setFailed(st, false)

	event, err := broadcast.NewRoutePlanEvent(plan, stops, c.now)
	if err != nil {
		c.logger.ErrorContext(ctx, "cannot build route plan event", "key", key.String(), "error", err)
		return plan, nil
	}
	c.publisher.Publish(ctx, event)
	return plan, nil
}

// commit stores the new plan, retires the previous active one and writes
// the route positions back onto the schedules, all in one transaction.
func (c *Coordinator) commit(
	ctx context.Context,
	st *keyState,
	plan *route.RoutePlan,
	stops []*schedule.DeliverySchedule,
) error {
	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	plans := uow.RoutePlanRepository()
	previous, err := plans.GetActive(ctx, st.driverID, st.date)
	switch {
	case err == nil:
		if err = previous.ReplaceWith(plan); err != nil {
			return err
		}
		if err = plans.Update(ctx, previous); err != nil {
			return err
		}
	case errors.Is(err, route.ErrRoutePlanNotFound):
		if err = plan.Activate(); err != nil {
			return err
		}
	default:
		return err
	}

	if err = plans.Add(ctx, plan); err != nil {
		return err
	}

	byID := make(map[kernel.UUID]*schedule.DeliverySchedule, len(stops))
	for _, s := range stops {
		byID[s.ID()] = s
	}
	waypoints := plan.Waypoints()
	schedules := uow.ScheduleRepository()
	for i, wp := range waypoints {
		s, ok := byID[wp.ScheduleID]
		if !ok {
			return fmt.Errorf("plan %s references unknown schedule %s", plan.ID(), wp.ScheduleID)
		}
		estimate := schedule.Estimate{Duration: wp.LegDuration, Distance: wp.LegDistance}
		if err = s.AssignRoute(uint(i+1), uint(len(waypoints)), estimate); err != nil {
			return err
		}
		if err = schedules.UpdateRouteAssignment(ctx, s); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}

func (c *Coordinator) warn(ctx context.Context, key planKey, st *keyState, cause error) {
	c.logger.WarnContext(ctx, "keeping previous route plan", "key", key.String(), "error", cause)
	event, err := broadcast.NewOptimizationWarningEvent(st.driverID, st.date, cause.Error(), c.now)
	if err != nil {
		return
	}
	c.publisher.Publish(ctx, event)
}
