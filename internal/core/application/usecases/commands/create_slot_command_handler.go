package commands

import (
	"context"
	"time"

	"capacity/internal/core/domain/model/slot"
	"capacity/internal/core/ports"
)

// CreateSlotCommandHandler persists a new slot and announces it on the
// driver and public channels.
type CreateSlotCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.EventPublisher
	now        func() time.Time
}

func NewCreateSlotCommandHandler(uowFactory UoWFactory, publisher ports.EventPublisher) CreateSlotCommandHandler {
	return CreateSlotCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		now:        time.Now,
	}
}

func (h *CreateSlotCommandHandler) Handle(ctx context.Context, cmd CreateSlotCommand) (slot.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return slot.Snapshot{}, err
	}

	timeSlot, err := slot.NewTimeSlot(
		cmd.SlotID(),
		cmd.DriverID(),
		cmd.Date(),
		cmd.Window(),
		cmd.Label(),
		cmd.Capacity(),
		cmd.Recurrence(),
	)
	if err != nil {
		return slot.Snapshot{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return slot.Snapshot{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.SlotRepository().Add(ctx, timeSlot); err != nil {
		return slot.Snapshot{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return slot.Snapshot{}, err
	}

	snapshot := timeSlot.Snapshot()
	publishSlotStatus(ctx, h.publisher, snapshot, h.now)
	return snapshot, nil
}
