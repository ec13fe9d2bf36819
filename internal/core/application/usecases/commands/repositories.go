// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management,
// persistence, and only after commit the side effects (broadcast and route
// recomputation).
package commands

import (
	"context"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/route"
	"capacity/internal/core/domain/services"
	"capacity/internal/core/ports"
)

// Unit of Work aliases keep handler signatures short. Every handler opens
// its own unit of work per call.
type (
	// UoW spans slots, schedules and route plans in one transaction.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   slotRepo := uow.SlotRepository()
	//   scheduleRepo := uow.ScheduleRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW = ports.UnitOfWork

	// UoWFactory creates new unit of work instances.
	UoWFactory = ports.UnitOfWorkFactory
)

// SlotLocker serializes work on a single slot inside this process.
type SlotLocker interface {
	Acquire(key string) (unlock func())
}

// RouteRecomputer runs a synchronous, explicitly requested optimization.
type RouteRecomputer interface {
	RunNow(ctx context.Context, driverID kernel.UUID, date kernel.Date, params services.OptimizeParams) (*route.RoutePlan, error)
}
