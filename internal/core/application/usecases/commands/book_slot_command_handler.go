package commands

import (
	"context"
	"time"

	"capacity/internal/core/domain/model/broadcast"
	"capacity/internal/core/domain/model/route"
	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/core/domain/model/slot"
	"capacity/internal/core/ports"
)

// BookSlotResult is what a successful booking hands back to the caller.
type BookSlotResult struct {
	Schedule *schedule.DeliverySchedule
	Slot     slot.Snapshot
}

// BookSlotCommandHandler performs the capacity check and the increment in
// one critical section: the in-process slot lock plus the store's row lock.
// Broadcast and route recomputation happen only after a successful commit.
//
// Example:
//
//	handler := NewBookSlotCommandHandler(uowFactory, locks, publisher, coordinator)
//	result, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, slot.ErrSlotFull):
//	    // 409
//	case errors.Is(err, slot.ErrSlotNotFound):
//	    // 404
//	}
type BookSlotCommandHandler struct {
	uowFactory UoWFactory
	locks      SlotLocker
	publisher  ports.EventPublisher
	recompute  ports.RecomputeScheduler
	now        func() time.Time
}

func NewBookSlotCommandHandler(
	uowFactory UoWFactory,
	locks SlotLocker,
	publisher ports.EventPublisher,
	recompute ports.RecomputeScheduler,
) BookSlotCommandHandler {
	return BookSlotCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		publisher:  publisher,
		recompute:  recompute,
		now:        time.Now,
	}
}

func (h *BookSlotCommandHandler) Handle(ctx context.Context, cmd BookSlotCommand) (BookSlotResult, error) {
	if err := cmd.Validate(); err != nil {
		return BookSlotResult{}, err
	}

	unlock := h.locks.Acquire(cmd.SlotID().String())
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return BookSlotResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	slotRepo := uow.SlotRepository()
	timeSlot, err := slotRepo.GetForUpdate(ctx, cmd.SlotID())
	if err != nil {
		return BookSlotResult{}, err
	}

	if err = timeSlot.Book(); err != nil {
		return BookSlotResult{}, err
	}

	deliverySchedule, err := schedule.NewDeliverySchedule(
		cmd.ScheduleID(),
		cmd.ShipmentID(),
		cmd.UserID(),
		timeSlot.DriverID(),
		timeSlot.Date(),
		timeSlot.ID(),
		timeSlot.Window(),
		cmd.Destination(),
		h.now().UTC(),
	)
	if err != nil {
		return BookSlotResult{}, err
	}

	if err = uow.ScheduleRepository().Add(ctx, deliverySchedule); err != nil {
		return BookSlotResult{}, err
	}

	if err = slotRepo.Update(ctx, timeSlot); err != nil {
		return BookSlotResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return BookSlotResult{}, err
	}

	snapshot := timeSlot.Snapshot()
	publishSlotStatus(ctx, h.publisher, snapshot, h.now)
	h.recompute.Schedule(timeSlot.DriverID(), timeSlot.Date(), route.TriggerBooking)

	return BookSlotResult{Schedule: deliverySchedule, Slot: snapshot}, nil
}

// publishSlotStatus is shared by every handler that moves a slot. A payload
// that cannot be built is dropped; the committed state stays authoritative.
func publishSlotStatus(ctx context.Context, publisher ports.EventPublisher, s slot.Snapshot, now func() time.Time) {
	event, err := broadcast.NewSlotStatusEvent(s, now)
	if err != nil {
		return
	}
	publisher.Publish(ctx, event)
}
