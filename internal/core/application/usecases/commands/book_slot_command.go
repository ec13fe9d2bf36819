package commands

import (
	"errors"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/pkg/errs"
	"capacity/internal/pkg/guard"
)

var ErrBookSlotCommandIsNotConstructed = errors.New(
	"BookSlotCommand must be created via NewBookSlotCommand constructor",
)

// BookSlotCommand reserves one unit of a time slot for a shipment.
// The schedule id is chosen by the caller so retries can be correlated.
//
// Example:
//
//	cmd, err := NewBookSlotCommand(kernel.NewUUID(), slotID, shipmentID, nil, destination)
//	if err != nil {
//	    return fmt.Errorf("invalid booking: %w", err)
//	}
//	result, err := handler.Handle(ctx, cmd)
type BookSlotCommand struct { //nolint:recvcheck //using for validation
	scheduleID  kernel.UUID
	slotID      kernel.UUID
	shipmentID  kernel.UUID
	userID      *kernel.UUID
	destination kernel.Location

	guard guard.ConstructorGuard
}

func NewBookSlotCommand(
	scheduleID kernel.UUID,
	slotID kernel.UUID,
	shipmentID kernel.UUID,
	userID *kernel.UUID,
	destination kernel.Location,
) (BookSlotCommand, error) {
	cmd := BookSlotCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setScheduleID(scheduleID),
		cmd.setSlotID(slotID),
		cmd.setShipmentID(shipmentID),
		cmd.setUserID(userID),
		cmd.setDestination(destination),
	); err != nil {
		return BookSlotCommand{}, err
	}

	return cmd, nil
}

func (c BookSlotCommand) Validate() error {
	return c.guard.Validate(ErrBookSlotCommandIsNotConstructed)
}

func (c BookSlotCommand) ScheduleID() kernel.UUID      { return c.scheduleID }
func (c BookSlotCommand) SlotID() kernel.UUID          { return c.slotID }
func (c BookSlotCommand) ShipmentID() kernel.UUID      { return c.shipmentID }
func (c BookSlotCommand) UserID() *kernel.UUID         { return c.userID }
func (c BookSlotCommand) Destination() kernel.Location { return c.destination }

func (c *BookSlotCommand) setScheduleID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("scheduleId", err)
	}
	c.scheduleID = id
	return nil
}

func (c *BookSlotCommand) setSlotID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("slotId", err)
	}
	c.slotID = id
	return nil
}

func (c *BookSlotCommand) setShipmentID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("shipmentId", err)
	}
	c.shipmentID = id
	return nil
}

func (c *BookSlotCommand) setUserID(id *kernel.UUID) error {
	if id == nil {
		return nil
	}
	if err := id.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("userId", err)
	}
	v := *id
	c.userID = &v
	return nil
}

func (c *BookSlotCommand) setDestination(loc kernel.Location) error {
	if err := loc.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("destination", err)
	}
	c.destination = loc
	return nil
}
