package commands

import (
	"errors"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/services"
	"capacity/internal/pkg/errs"
	"capacity/internal/pkg/guard"
)

var ErrOptimizeRouteCommandIsNotConstructed = errors.New(
	"OptimizeRouteCommand must be created via NewOptimizeRouteCommand constructor",
)

// OptimizeRouteCommand asks for an explicit, synchronous plan recomputation.
type OptimizeRouteCommand struct { //nolint:recvcheck //using for validation
	driverID kernel.UUID
	date     kernel.Date
	params   services.OptimizeParams

	guard guard.ConstructorGuard
}

func NewOptimizeRouteCommand(
	driverID kernel.UUID,
	date kernel.Date,
	params services.OptimizeParams,
) (OptimizeRouteCommand, error) {
	var driverErr, dateErr error
	if err := driverID.Validate(); err != nil {
		driverErr = errs.NewValueIsRequiredErrorWithCause("driverId", err)
	}
	if err := date.Validate(); err != nil {
		dateErr = errs.NewValueIsRequiredErrorWithCause("date", err)
	}
	if err := errors.Join(driverErr, dateErr); err != nil {
		return OptimizeRouteCommand{}, err
	}
	return OptimizeRouteCommand{
		driverID: driverID,
		date:     date,
		params:   params,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c OptimizeRouteCommand) Validate() error {
	return c.guard.Validate(ErrOptimizeRouteCommandIsNotConstructed)
}

func (c OptimizeRouteCommand) DriverID() kernel.UUID           { return c.driverID }
func (c OptimizeRouteCommand) Date() kernel.Date               { return c.date }
func (c OptimizeRouteCommand) Params() services.OptimizeParams { return c.params }
