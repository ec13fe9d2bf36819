package commands

import (
	"errors"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/pkg/errs"
	"capacity/internal/pkg/guard"
)

var ErrReleaseScheduleCommandIsNotConstructed = errors.New(
	"ReleaseScheduleCommand must be created via NewReleaseScheduleCommand constructor",
)

// ReleaseScheduleCommand cancels a delivery schedule and returns its unit to the slot.
type ReleaseScheduleCommand struct { //nolint:recvcheck //using for validation
	scheduleID kernel.UUID

	guard guard.ConstructorGuard
}

func NewReleaseScheduleCommand(scheduleID kernel.UUID) (ReleaseScheduleCommand, error) {
	if err := scheduleID.Validate(); err != nil {
		return ReleaseScheduleCommand{}, errs.NewValueIsRequiredErrorWithCause("scheduleId", err)
	}
	return ReleaseScheduleCommand{
		scheduleID: scheduleID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c ReleaseScheduleCommand) Validate() error {
	return c.guard.Validate(ErrReleaseScheduleCommandIsNotConstructed)
}

func (c ReleaseScheduleCommand) ScheduleID() kernel.UUID {
	return c.scheduleID
}
