package memory

import (
	"context"
	"fmt"
	"slices"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/route"
	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/core/domain/model/slot"
	"capacity/internal/pkg/errs"
)

type slotRepository struct {
	uow *unitOfWork
}

func (r *slotRepository) Add(_ context.Context, aggregate *slot.TimeSlot) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if _, err := r.lookup(aggregate.ID()); err == nil {
		return errs.NewValueIsInvalidErrorWithCause("slot", fmt.Errorf("slot %s already exists", aggregate.ID()))
	}
	r.uow.slots[aggregate.ID()] = *aggregate
	return r.uow.flush()
}

func (r *slotRepository) Update(_ context.Context, aggregate *slot.TimeSlot) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if _, err := r.lookup(aggregate.ID()); err != nil {
		return err
	}
	r.uow.slots[aggregate.ID()] = *aggregate
	return r.uow.flush()
}

func (r *slotRepository) Get(_ context.Context, id kernel.UUID) (*slot.TimeSlot, error) {
	s, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	if _, tracked := r.uow.slotVersions[id]; !tracked {
		r.uow.slotVersions[id] = s.Version()
	}
	return &s, nil
}

// GetForUpdate relies on the caller's per-slot lock; the version check on
// Commit catches anything that slips past it.
func (r *slotRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*slot.TimeSlot, error) {
	return r.Get(ctx, id)
}

func (r *slotRepository) lookup(id kernel.UUID) (slot.TimeSlot, error) {
	if s, ok := r.uow.slots[id]; ok {
		return s, nil
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()
	if s, ok := r.uow.store.slots[id]; ok {
		return s, nil
	}
	return slot.TimeSlot{}, errs.NewObjectNotFoundErrorWithCause("slotId", id, slot.ErrSlotNotFound)
}

type scheduleRepository struct {
	uow *unitOfWork
}

func (r *scheduleRepository) Add(_ context.Context, aggregate *schedule.DeliverySchedule) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if _, err := r.lookup(aggregate.ID()); err == nil {
		return errs.NewValueIsInvalidErrorWithCause("schedule", fmt.Errorf("schedule %s already exists", aggregate.ID()))
	}
	r.uow.schedules[aggregate.ID()] = *aggregate
	return r.uow.flush()
}

func (r *scheduleRepository) Update(_ context.Context, aggregate *schedule.DeliverySchedule) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if _, err := r.lookup(aggregate.ID()); err != nil {
		return err
	}
	r.uow.schedules[aggregate.ID()] = *aggregate
	return r.uow.flush()
}

func (r *scheduleRepository) UpdateRouteAssignment(_ context.Context, aggregate *schedule.DeliverySchedule) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if _, err := r.lookup(aggregate.ID()); err != nil {
		return err
	}
	r.uow.routes[aggregate.ID()] = *aggregate
	return r.uow.flush()
}

func (r *scheduleRepository) Get(_ context.Context, id kernel.UUID) (*schedule.DeliverySchedule, error) {
	s, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	if _, tracked := r.uow.readStatuses[id]; !tracked {
		r.uow.readStatuses[id] = s.Status()
	}
	return &s, nil
}

// GetForUpdate relies on the caller's per-slot lock; the status check on
// Commit catches anything that slips past it.
func (r *scheduleRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*schedule.DeliverySchedule, error) {
	return r.Get(ctx, id)
}

func (r *scheduleRepository) ListRoutable(
	_ context.Context,
	driverID kernel.UUID,
	date kernel.Date,
) ([]*schedule.DeliverySchedule, error) {
	merged := overlay(r.uow.store, r.uow.store.schedules, r.uow.schedules)

	out := make([]*schedule.DeliverySchedule, 0)
	for _, s := range merged {
		if s.DriverID().IsEqual(driverID) && s.Date().IsEqual(date) && s.IsRoutable() {
			out = append(out, &s)
		}
	}
	slices.SortFunc(out, func(a, b *schedule.DeliverySchedule) int {
		if c := a.BookedAt().Compare(b.BookedAt()); c != 0 {
			return c
		}
		return a.ID().Compare(b.ID())
	})
	return out, nil
}

func (r *scheduleRepository) lookup(id kernel.UUID) (schedule.DeliverySchedule, error) {
	if s, ok := r.uow.schedules[id]; ok {
		return s, nil
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()
	if s, ok := r.uow.store.schedules[id]; ok {
		return s, nil
	}
	return schedule.DeliverySchedule{}, errs.NewObjectNotFoundErrorWithCause("scheduleId", id, schedule.ErrScheduleNotFound)
}

type routePlanRepository struct {
	uow *unitOfWork
}

func (r *routePlanRepository) Add(_ context.Context, aggregate *route.RoutePlan) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if _, err := r.lookup(aggregate.ID()); err == nil {
		return errs.NewValueIsInvalidErrorWithCause("route plan", fmt.Errorf("plan %s already exists", aggregate.ID()))
	}
	r.uow.plans[aggregate.ID()] = *aggregate
	return r.uow.flush()
}

func (r *routePlanRepository) Update(_ context.Context, aggregate *route.RoutePlan) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if _, err := r.lookup(aggregate.ID()); err != nil {
		return err
	}
	r.uow.plans[aggregate.ID()] = *aggregate
	return r.uow.flush()
}

func (r *routePlanRepository) Get(_ context.Context, id kernel.UUID) (*route.RoutePlan, error) {
	p, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *routePlanRepository) GetActive(_ context.Context, driverID kernel.UUID, date kernel.Date) (*route.RoutePlan, error) {
	for _, p := range overlay(r.uow.store, r.uow.store.plans, r.uow.plans) {
		if p.Status() == route.Active && p.DriverID().IsEqual(driverID) && p.Date().IsEqual(date) {
			return &p, nil
		}
	}
	return nil, errs.NewObjectNotFoundErrorWithCause("driverId/date", driverID.String()+"/"+date.String(),
		route.ErrRoutePlanNotFound)
}

func (r *routePlanRepository) ListActiveBefore(_ context.Context, date kernel.Date) ([]*route.RoutePlan, error) {
	out := make([]*route.RoutePlan, 0)
	for _, p := range overlay(r.uow.store, r.uow.store.plans, r.uow.plans) {
		if p.Status() == route.Active && p.Date().Before(date) {
			out = append(out, &p)
		}
	}
	slices.SortFunc(out, func(a, b *route.RoutePlan) int { return a.ID().Compare(b.ID()) })
	return out, nil
}

func (r *routePlanRepository) lookup(id kernel.UUID) (route.RoutePlan, error) {
	if p, ok := r.uow.plans[id]; ok {
		return p, nil
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()
	if p, ok := r.uow.store.plans[id]; ok {
		return p, nil
	}
	return route.RoutePlan{}, errs.NewObjectNotFoundErrorWithCause("routePlanId", id, route.ErrRoutePlanNotFound)
}

// overlay merges committed values with the ones staged in a unit of work.
func overlay[V any](store *Store, committed, staged map[kernel.UUID]V) map[kernel.UUID]V {
	store.mu.RLock()
	merged := make(map[kernel.UUID]V, len(committed)+len(staged))
	for id, v := range committed {
		merged[id] = v
	}
	store.mu.RUnlock()
	for id, v := range staged {
		merged[id] = v
	}
	return merged
}
