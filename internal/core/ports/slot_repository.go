package ports

import (
	"context"
	"iter"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/slot"
)

// SlotRepository persists TimeSlot aggregates.
type SlotRepository interface {
	Add(ctx context.Context, aggregate *slot.TimeSlot) error

	// Update writes booked, blocked state and the bumped version. It fails with
	// errs.ErrVersionIsInvalid when the stored version moved underneath.
	Update(ctx context.Context, aggregate *slot.TimeSlot) error

	// Get returns an errs.ObjectNotFoundError wrapping slot.ErrSlotNotFound when absent.
	Get(ctx context.Context, id kernel.UUID) (*slot.TimeSlot, error)

	// GetForUpdate is Get plus a row lock held until the unit of work ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*slot.TimeSlot, error)
}

// AvailabilityFilter narrows a slot stream. An empty Availabilities matches all.
type AvailabilityFilter struct {
	DriverID       kernel.UUID
	Dates          kernel.DateRange
	Availabilities []slot.Availability
}

// SlotReader streams read-only snapshots ordered by date and window start.
// The sequence stops at the first error, which is yielded with a zero snapshot.
type SlotReader interface {
	StreamAvailability(ctx context.Context, filter AvailabilityFilter) iter.Seq2[slot.Snapshot, error]
}
