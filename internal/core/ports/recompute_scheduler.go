package ports

import (
	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/route"
)

// RecomputeScheduler queues an asynchronous route recomputation for a
// driver and date after a committed mutation.
type RecomputeScheduler interface {
	Schedule(driverID kernel.UUID, date kernel.Date, trigger route.Trigger)
}
