package ports

import (
	"context"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/route"
)

// RoutePlanRepository persists current and historical plans.
type RoutePlanRepository interface {
	Add(ctx context.Context, aggregate *route.RoutePlan) error

	// Update persists a status change. Order and metrics are immutable once stored.
	Update(ctx context.Context, aggregate *route.RoutePlan) error

	// Get returns an errs.ObjectNotFoundError wrapping route.ErrRoutePlanNotFound when absent.
	Get(ctx context.Context, id kernel.UUID) (*route.RoutePlan, error)

	// GetActive returns the single active plan of a driver on a date.
	GetActive(ctx context.Context, driverID kernel.UUID, date kernel.Date) (*route.RoutePlan, error)

	// ListActiveBefore returns active plans whose date is strictly before date.
	ListActiveBefore(ctx context.Context, date kernel.Date) ([]*route.RoutePlan, error)
}
