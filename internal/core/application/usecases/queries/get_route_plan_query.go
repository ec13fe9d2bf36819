package queries

import (
	"errors"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/services"
	"capacity/internal/pkg/errs"
	"capacity/internal/pkg/guard"
)

var (
	ErrGetRoutePlanQueryIsNotConstructed = errors.New(
		"GetRoutePlanQuery must be created via NewGetRoutePlanQuery constructor",
	)
	ErrSuggestRoutesQueryIsNotConstructed = errors.New(
		"SuggestRoutesQuery must be created via NewSuggestRoutesQuery constructor",
	)
)

// GetRoutePlanQuery reads the active plan of a driver on a date.
type GetRoutePlanQuery struct { //nolint:recvcheck //using for validation
	driverID kernel.UUID
	date     kernel.Date

	guard guard.ConstructorGuard
}

func NewGetRoutePlanQuery(driverID kernel.UUID, date kernel.Date) (GetRoutePlanQuery, error) {
	if err := validateDriverDate(driverID, date); err != nil {
		return GetRoutePlanQuery{}, err
	}
	return GetRoutePlanQuery{driverID: driverID, date: date, guard: guard.NewConstructorGuard()}, nil
}

func (q GetRoutePlanQuery) Validate() error {
	return q.guard.Validate(ErrGetRoutePlanQueryIsNotConstructed)
}

func (q GetRoutePlanQuery) DriverID() kernel.UUID { return q.driverID }
func (q GetRoutePlanQuery) Date() kernel.Date     { return q.date }

// SuggestRoutesQuery asks for ranked alternative orderings without storing anything.
type SuggestRoutesQuery struct { //nolint:recvcheck //using for validation
	driverID kernel.UUID
	date     kernel.Date
	params   services.OptimizeParams

	guard guard.ConstructorGuard
}

func NewSuggestRoutesQuery(driverID kernel.UUID, date kernel.Date, params services.OptimizeParams) (SuggestRoutesQuery, error) {
	if err := validateDriverDate(driverID, date); err != nil {
		return SuggestRoutesQuery{}, err
	}
	return SuggestRoutesQuery{driverID: driverID, date: date, params: params, guard: guard.NewConstructorGuard()}, nil
}

func (q SuggestRoutesQuery) Validate() error {
	return q.guard.Validate(ErrSuggestRoutesQueryIsNotConstructed)
}

func (q SuggestRoutesQuery) DriverID() kernel.UUID           { return q.driverID }
func (q SuggestRoutesQuery) Date() kernel.Date               { return q.date }
func (q SuggestRoutesQuery) Params() services.OptimizeParams { return q.params }

func validateDriverDate(driverID kernel.UUID, date kernel.Date) error {
	var driverErr, dateErr error
	if err := driverID.Validate(); err != nil {
		driverErr = errs.NewValueIsRequiredErrorWithCause("driverId", err)
	}
	if err := date.Validate(); err != nil {
		dateErr = errs.NewValueIsRequiredErrorWithCause("date", err)
	}
	return errors.Join(driverErr, dateErr)
}
