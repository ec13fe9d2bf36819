package commands

import (
	"errors"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/pkg/errs"
	"capacity/internal/pkg/guard"
)

var ErrCompletePastRoutePlansCommandIsNotConstructed = errors.New(
	"CompletePastRoutePlansCommand must be created via NewCompletePastRoutePlansCommand constructor",
)

// CompletePastRoutePlansCommand closes every active plan dated before Today.
type CompletePastRoutePlansCommand struct { //nolint:recvcheck //using for validation
	today kernel.Date

	guard guard.ConstructorGuard
}

func NewCompletePastRoutePlansCommand(today kernel.Date) (CompletePastRoutePlansCommand, error) {
	if err := today.Validate(); err != nil {
		return CompletePastRoutePlansCommand{}, errs.NewValueIsRequiredErrorWithCause("today", err)
	}
	return CompletePastRoutePlansCommand{
		today: today,
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (c CompletePastRoutePlansCommand) Validate() error {
	return c.guard.Validate(ErrCompletePastRoutePlansCommandIsNotConstructed)
}

func (c CompletePastRoutePlansCommand) Today() kernel.Date {
	return c.today
}
