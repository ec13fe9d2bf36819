package commands

import (
	"errors"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/pkg/errs"
	"capacity/internal/pkg/guard"
)

var ErrUpdateScheduleStatusCommandIsNotConstructed = errors.New(
	"UpdateScheduleStatusCommand must be created via NewUpdateScheduleStatusCommand constructor",
)

// UpdateScheduleStatusCommand reports delivery progress for one stop.
type UpdateScheduleStatusCommand struct { //nolint:recvcheck //using for validation
	scheduleID kernel.UUID
	status     schedule.Status

	guard guard.ConstructorGuard
}

func NewUpdateScheduleStatusCommand(scheduleID kernel.UUID, status schedule.Status) (UpdateScheduleStatusCommand, error) {
	var idErr error
	if err := scheduleID.Validate(); err != nil {
		idErr = errs.NewValueIsRequiredErrorWithCause("scheduleId", err)
	}
	if err := errors.Join(idErr, status.Validate()); err != nil {
		return UpdateScheduleStatusCommand{}, err
	}
	return UpdateScheduleStatusCommand{
		scheduleID: scheduleID,
		status:     status,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateScheduleStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateScheduleStatusCommandIsNotConstructed)
}

func (c UpdateScheduleStatusCommand) ScheduleID() kernel.UUID { return c.scheduleID }
func (c UpdateScheduleStatusCommand) Status() schedule.Status { return c.status }
