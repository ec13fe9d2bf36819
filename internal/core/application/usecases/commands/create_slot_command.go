package commands

import (
	"errors"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/slot"
	"capacity/internal/pkg/errs"
	"capacity/internal/pkg/guard"
)

var ErrCreateSlotCommandIsNotConstructed = errors.New(
	"CreateSlotCommand must be created via NewCreateSlotCommand constructor",
)

// CreateSlotCommand registers bookable inventory for a driver on a date.
// Slot generation itself lives outside this service; this is the
// administrative entry point it calls.
type CreateSlotCommand struct { //nolint:recvcheck //using for validation
	slotID     kernel.UUID
	driverID   kernel.UUID
	date       kernel.Date
	window     kernel.TimeWindow
	label      string
	capacity   uint
	recurrence *slot.Recurrence

	guard guard.ConstructorGuard
}

func NewCreateSlotCommand(
	slotID kernel.UUID,
	driverID kernel.UUID,
	date kernel.Date,
	window kernel.TimeWindow,
	label string,
	capacity uint,
	recurrence *slot.Recurrence,
) (CreateSlotCommand, error) {
	cmd := CreateSlotCommand{
		label:      label,
		recurrence: recurrence,
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setSlotID(slotID),
		cmd.setDriverID(driverID),
		cmd.setDate(date),
		cmd.setWindow(window),
		cmd.setCapacity(capacity),
	); err != nil {
		return CreateSlotCommand{}, err
	}

	return cmd, nil
}

func (c CreateSlotCommand) Validate() error {
	return c.guard.Validate(ErrCreateSlotCommandIsNotConstructed)
}

func (c CreateSlotCommand) SlotID() kernel.UUID          { return c.slotID }
func (c CreateSlotCommand) DriverID() kernel.UUID        { return c.driverID }
func (c CreateSlotCommand) Date() kernel.Date            { return c.date }
func (c CreateSlotCommand) Window() kernel.TimeWindow    { return c.window }
func (c CreateSlotCommand) Label() string                { return c.label }
func (c CreateSlotCommand) Capacity() uint               { return c.capacity }
func (c CreateSlotCommand) Recurrence() *slot.Recurrence { return c.recurrence }

func (c *CreateSlotCommand) setSlotID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("slotId", err)
	}
	c.slotID = id
	return nil
}

func (c *CreateSlotCommand) setDriverID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("driverId", err)
	}
	c.driverID = id
	return nil
}

func (c *CreateSlotCommand) setDate(date kernel.Date) error {
	if err := date.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("date", err)
	}
	c.date = date
	return nil
}

func (c *CreateSlotCommand) setWindow(window kernel.TimeWindow) error {
	if err := window.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("window", err)
	}
	c.window = window
	return nil
}

func (c *CreateSlotCommand) setCapacity(capacity uint) error {
	if capacity > slot.MaxCapacity {
		return errs.NewValueIsOutOfRangeError("capacity", capacity, 0, slot.MaxCapacity)
	}
	c.capacity = capacity
	return nil
}
