package commands

import (
	"context"
	"time"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/slot"
	"capacity/internal/core/ports"
)

// SlotAvailabilityCommandHandler handles the administrative block and
// unblock transitions. Both run in the same per-slot critical section as
// bookings so a block can never interleave with a capacity check.
type SlotAvailabilityCommandHandler struct {
	uowFactory UoWFactory
	locks      SlotLocker
	publisher  ports.EventPublisher
	now        func() time.Time
}

func NewSlotAvailabilityCommandHandler(
	uowFactory UoWFactory,
	locks SlotLocker,
	publisher ports.EventPublisher,
) SlotAvailabilityCommandHandler {
	return SlotAvailabilityCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		publisher:  publisher,
		now:        time.Now,
	}
}

func (h *SlotAvailabilityCommandHandler) HandleBlock(ctx context.Context, cmd BlockSlotCommand) (slot.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return slot.Snapshot{}, err
	}
	return h.mutate(ctx, cmd.SlotID(), func(s *slot.TimeSlot) error {
		return s.Block(cmd.Reason())
	})
}

func (h *SlotAvailabilityCommandHandler) HandleUnblock(ctx context.Context, cmd UnblockSlotCommand) (slot.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return slot.Snapshot{}, err
	}
	return h.mutate(ctx, cmd.SlotID(), (*slot.TimeSlot).Unblock)
}

func (h *SlotAvailabilityCommandHandler) mutate(
	ctx context.Context,
	slotID kernel.UUID,
	change func(*slot.TimeSlot) error,
) (slot.Snapshot, error) {
	unlock := h.locks.Acquire(slotID.String())
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return slot.Snapshot{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	slotRepo := uow.SlotRepository()
	timeSlot, err := slotRepo.GetForUpdate(ctx, slotID)
	if err != nil {
		return slot.Snapshot{}, err
	}

	if err = change(timeSlot); err != nil {
		return slot.Snapshot{}, err
	}

	if err = slotRepo.Update(ctx, timeSlot); err != nil {
		return slot.Snapshot{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return slot.Snapshot{}, err
	}

	snapshot := timeSlot.Snapshot()
	publishSlotStatus(ctx, h.publisher, snapshot, h.now)
	return snapshot, nil
}
