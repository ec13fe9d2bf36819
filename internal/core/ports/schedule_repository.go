package ports

import (
	"context"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/schedule"
)

// ScheduleRepository persists DeliverySchedule aggregates.
type ScheduleRepository interface {
	Add(ctx context.Context, aggregate *schedule.DeliverySchedule) error
	// Update fails with errs.VersionIsInvalidError when the stored status
	// changed after this unit of work read the schedule.
	Update(ctx context.Context, aggregate *schedule.DeliverySchedule) error
	// UpdateRouteAssignment writes only route order, sequence and estimate,
	// and only while the stored schedule is still routable. Recomputation uses
	// it so a concurrent cancellation is never overwritten.
	UpdateRouteAssignment(ctx context.Context, aggregate *schedule.DeliverySchedule) error

	// Get returns an errs.ObjectNotFoundError wrapping schedule.ErrScheduleNotFound when absent.
	Get(ctx context.Context, id kernel.UUID) (*schedule.DeliverySchedule, error)
	// GetForUpdate is Get plus a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*schedule.DeliverySchedule, error)

	// ListRoutable returns the scheduled and in-progress stops of a driver on a date.
	ListRoutable(ctx context.Context, driverID kernel.UUID, date kernel.Date) ([]*schedule.DeliverySchedule, error)
}
