package memory

import (
	"context"
	"errors"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/route"
	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/core/domain/model/slot"
	"capacity/internal/core/ports"
	"capacity/internal/pkg/errs"
)

// ErrNoTransaction mirrors gorm.ErrInvalidTransaction for Commit and
// Rollback without Begin.
var ErrNoTransaction = errors.New("no active transaction")

type unitOfWork struct {
	store  *Store
	active bool

	slots        map[kernel.UUID]slot.TimeSlot
	slotVersions map[kernel.UUID]int64
	schedules    map[kernel.UUID]schedule.DeliverySchedule
	readStatuses map[kernel.UUID]schedule.Status
	routes       map[kernel.UUID]schedule.DeliverySchedule
	plans        map[kernel.UUID]route.RoutePlan
}

func newUnitOfWork(store *Store) *unitOfWork {
	u := &unitOfWork{store: store}
	u.reset()
	return u
}

func (u *unitOfWork) reset() {
	u.slots = make(map[kernel.UUID]slot.TimeSlot)
	u.slotVersions = make(map[kernel.UUID]int64)
	u.schedules = make(map[kernel.UUID]schedule.DeliverySchedule)
	u.readStatuses = make(map[kernel.UUID]schedule.Status)
	u.routes = make(map[kernel.UUID]schedule.DeliverySchedule)
	u.plans = make(map[kernel.UUID]route.RoutePlan)
}

func (u *unitOfWork) Begin(_ context.Context) error {
	if u.active {
		return nil
	}
	u.reset()
	u.active = true
	return nil
}

func (u *unitOfWork) Commit(_ context.Context) error {
	if !u.active {
		return ErrNoTransaction
	}
	err := u.apply()
	u.active = false
	u.reset()
	return err
}

func (u *unitOfWork) Rollback(_ context.Context) error {
	if !u.active {
		return ErrNoTransaction
	}
	u.active = false
	u.reset()
	return nil
}

// apply publishes staged writes if no slot changed since it was read and no
// staged schedule changed status since it was read.
func (u *unitOfWork) apply() error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	for id, readVersion := range u.slotVersions {
		current, ok := u.store.slots[id]
		if ok && current.Version() != readVersion {
			return errs.NewVersionIsInvalidError("slot "+id.String(),
				errors.New("slot changed by a concurrent transaction"))
		}
	}

	for id := range u.schedules {
		read, tracked := u.readStatuses[id]
		current, ok := u.store.schedules[id]
		if tracked && ok && current.Status() != read {
			return errs.NewVersionIsInvalidError("schedule "+id.String(),
				errors.New("schedule status changed by a concurrent transaction"))
		}
	}

	for id, s := range u.slots {
		u.store.slots[id] = s
	}
	for id, s := range u.schedules {
		u.store.schedules[id] = s
	}
	for id, assigned := range u.routes {
		current, ok := u.store.schedules[id]
		if !ok || !current.IsRoutable() {
			continue
		}
		seq := assigned.Sequence()
		if err := current.AssignRoute(seq.Current, seq.Total, assigned.Estimate()); err != nil {
			return err
		}
		u.store.schedules[id] = current
	}
	for id, p := range u.plans {
		u.store.plans[id] = p
	}
	return nil
}

// flush commits immediately when a repository is used outside Begin/Commit.
func (u *unitOfWork) flush() error {
	if u.active {
		return nil
	}
	err := u.apply()
	u.reset()
	return err
}

func (u *unitOfWork) SlotRepository() ports.SlotRepository {
	return &slotRepository{uow: u}
}

func (u *unitOfWork) ScheduleRepository() ports.ScheduleRepository {
	return &scheduleRepository{uow: u}
}

func (u *unitOfWork) RoutePlanRepository() ports.RoutePlanRepository {
	return &routePlanRepository{uow: u}
}
