package commands

import (
	"errors"
	"strings"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/pkg/errs"
	"capacity/internal/pkg/guard"
)

var (
	ErrBlockSlotCommandIsNotConstructed = errors.New(
		"BlockSlotCommand must be created via NewBlockSlotCommand constructor",
	)
	ErrUnblockSlotCommandIsNotConstructed = errors.New(
		"UnblockSlotCommand must be created via NewUnblockSlotCommand constructor",
	)
)

// BlockSlotCommand takes a slot off sale. Existing bookings stay valid.
type BlockSlotCommand struct { //nolint:recvcheck //using for validation
	slotID kernel.UUID
	reason string

	guard guard.ConstructorGuard
}

func NewBlockSlotCommand(slotID kernel.UUID, reason string) (BlockSlotCommand, error) {
	reason = strings.TrimSpace(reason)
	if err := errors.Join(
		validateSlotID(slotID),
		requireReason(reason),
	); err != nil {
		return BlockSlotCommand{}, err
	}
	return BlockSlotCommand{slotID: slotID, reason: reason, guard: guard.NewConstructorGuard()}, nil
}

func (c BlockSlotCommand) Validate() error {
	return c.guard.Validate(ErrBlockSlotCommandIsNotConstructed)
}

func (c BlockSlotCommand) SlotID() kernel.UUID { return c.slotID }
func (c BlockSlotCommand) Reason() string      { return c.reason }

// UnblockSlotCommand puts a blocked slot back on sale.
type UnblockSlotCommand struct { //nolint:recvcheck //using for validation
	slotID kernel.UUID

	guard guard.ConstructorGuard
}

func NewUnblockSlotCommand(slotID kernel.UUID) (UnblockSlotCommand, error) {
	if err := validateSlotID(slotID); err != nil {
		return UnblockSlotCommand{}, err
	}
	return UnblockSlotCommand{slotID: slotID, guard: guard.NewConstructorGuard()}, nil
}

func (c UnblockSlotCommand) Validate() error {
	return c.guard.Validate(ErrUnblockSlotCommandIsNotConstructed)
}

func (c UnblockSlotCommand) SlotID() kernel.UUID { return c.slotID }

func validateSlotID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("slotId", err)
	}
	return nil
}

func requireReason(reason string) error {
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}
	return nil
}
