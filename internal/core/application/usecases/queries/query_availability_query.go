// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries never open a transaction and never publish events.
package queries

import (
	"errors"
	"slices"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/slot"
	"capacity/internal/pkg/errs"
	"capacity/internal/pkg/guard"
)

// MaxAvailabilityDays bounds one availability scan.
const MaxAvailabilityDays = 92

var ErrQueryAvailabilityQueryIsNotConstructed = errors.New(
	"QueryAvailabilityQuery must be created via NewQueryAvailabilityQuery constructor",
)

// QueryAvailabilityQuery selects a driver's slots over a date range,
// optionally narrowed to some availability states.
//
// Example:
//
//	dates, _ := kernel.NewDateRange(from, to)
//	query, err := NewQueryAvailabilityQuery(driverID, dates, slot.Available, slot.Limited)
//	if err != nil {
//	    return err
//	}
//	seq, err := handler.Handle(ctx, query)
//	for snapshot, err := range seq {
//	    ...
//	}
type QueryAvailabilityQuery struct { //nolint:recvcheck //using for validation
	driverID       kernel.UUID
	dates          kernel.DateRange
	availabilities []slot.Availability

	guard guard.ConstructorGuard
}

func NewQueryAvailabilityQuery(
	driverID kernel.UUID,
	dates kernel.DateRange,
	availabilities ...slot.Availability,
) (QueryAvailabilityQuery, error) {
	q := QueryAvailabilityQuery{guard: guard.NewConstructorGuard()}
	if err := errors.Join(
		q.setDriverID(driverID),
		q.setDates(dates),
		q.setAvailabilities(availabilities),
	); err != nil {
		return QueryAvailabilityQuery{}, err
	}
	return q, nil
}

func (q QueryAvailabilityQuery) Validate() error {
	return q.guard.Validate(ErrQueryAvailabilityQueryIsNotConstructed)
}

func (q QueryAvailabilityQuery) DriverID() kernel.UUID   { return q.driverID }
func (q QueryAvailabilityQuery) Dates() kernel.DateRange { return q.dates }
func (q QueryAvailabilityQuery) Availabilities() []slot.Availability {
	return slices.Clone(q.availabilities)
}

func (q *QueryAvailabilityQuery) setDriverID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("driverId", err)
	}
	q.driverID = id
	return nil
}

func (q *QueryAvailabilityQuery) setDates(dates kernel.DateRange) error {
	if err := errors.Join(dates.From().Validate(), dates.To().Validate()); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("dateRange", err)
	}
	days := int(dates.To().Time().Sub(dates.From().Time()).Hours()/24) + 1
	if days > MaxAvailabilityDays {
		return errs.NewValueIsOutOfRangeError("dateRange days", days, 1, MaxAvailabilityDays)
	}
	q.dates = dates
	return nil
}

func (q *QueryAvailabilityQuery) setAvailabilities(values []slot.Availability) error {
	out := make([]slot.Availability, 0, len(values))
	for _, a := range values {
		if err := a.Validate(); err != nil {
			return err
		}
		if !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	q.availabilities = out
	return nil
}
