// Package memory is an in-process implementation of the persistence ports.
// It backs STORAGE=memory and the concurrency tests.
//
// A unit of work stages every write and applies it atomically on Commit
// under the store mutex. Slot updates are checked against the version read
// inside the same unit of work, so lost updates surface as
// errs.ErrVersionIsInvalid.
package memory

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"sync"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/route"
	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/core/domain/model/slot"
	"capacity/internal/core/ports"
)

// Store holds committed aggregates. It is also the UnitOfWorkFactory.
type Store struct {
	mu        sync.RWMutex
	slots     map[kernel.UUID]slot.TimeSlot
	schedules map[kernel.UUID]schedule.DeliverySchedule
	plans     map[kernel.UUID]route.RoutePlan
}

func NewStore() *Store {
	return &Store{
		slots:     make(map[kernel.UUID]slot.TimeSlot),
		schedules: make(map[kernel.UUID]schedule.DeliverySchedule),
		plans:     make(map[kernel.UUID]route.RoutePlan),
	}
}

func (s *Store) Create() ports.UnitOfWork {
	return newUnitOfWork(s)
}

// StreamAvailability snapshots matching slots under a read lock and yields
// them after releasing it, so slow consumers never hold up writers.
func (s *Store) StreamAvailability(ctx context.Context, filter ports.AvailabilityFilter) iter.Seq2[slot.Snapshot, error] {
	return func(yield func(slot.Snapshot, error) bool) {
		s.mu.RLock()
		matches := make([]slot.Snapshot, 0)
		for _, stored := range s.slots {
			snap := stored.Snapshot()
			if !snap.DriverID.IsEqual(filter.DriverID) || !filter.Dates.Contains(snap.Date) {
				continue
			}
			if len(filter.Availabilities) > 0 && !slices.Contains(filter.Availabilities, snap.Availability) {
				continue
			}
			matches = append(matches, snap)
		}
		s.mu.RUnlock()

		slices.SortFunc(matches, func(a, b slot.Snapshot) int {
			return cmp.Or(
				a.Date.Time().Compare(b.Date.Time()),
				cmp.Compare(a.Window.Start(), b.Window.Start()),
				a.ID.Compare(b.ID),
			)
		})

		for _, snap := range matches {
			if err := ctx.Err(); err != nil {
				yield(slot.Snapshot{}, err)
				return
			}
			if !yield(snap, nil) {
				return
			}
		}
	}
}
