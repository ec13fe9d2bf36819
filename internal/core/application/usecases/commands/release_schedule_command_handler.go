package commands

import (
	"context"
	"time"

	"capacity/internal/core/domain/model/broadcast"
	"capacity/internal/core/domain/model/route"
	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/core/ports"
)

// ReleaseScheduleCommandHandler cancels a schedule and decrements its slot.
//
// The schedule is read once outside the transaction only to learn which slot
// to lock. It is read again under the lock, with a row lock as well, so two
// concurrent releases of the same schedule cannot both decrement the slot
// even when they run in different processes.
type ReleaseScheduleCommandHandler struct {
	uowFactory UoWFactory
	locks      SlotLocker
	publisher  ports.EventPublisher
	recompute  ports.RecomputeScheduler
	now        func() time.Time
}

func NewReleaseScheduleCommandHandler(
	uowFactory UoWFactory,
	locks SlotLocker,
	publisher ports.EventPublisher,
	recompute ports.RecomputeScheduler,
) ReleaseScheduleCommandHandler {
	return ReleaseScheduleCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		publisher:  publisher,
		recompute:  recompute,
		now:        time.Now,
	}
}

func (h *ReleaseScheduleCommandHandler) Handle(ctx context.Context, cmd ReleaseScheduleCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	peek, err := h.uowFactory.Create().ScheduleRepository().Get(ctx, cmd.ScheduleID())
	if err != nil {
		return err
	}

	unlock := h.locks.Acquire(peek.SlotID().String())
	defer unlock()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	scheduleRepo := uow.ScheduleRepository()
	deliverySchedule, err := scheduleRepo.GetForUpdate(ctx, cmd.ScheduleID())
	if err != nil {
		return err
	}

	if err = deliverySchedule.Cancel(); err != nil {
		return err
	}

	slotRepo := uow.SlotRepository()
	timeSlot, err := slotRepo.GetForUpdate(ctx, deliverySchedule.SlotID())
	if err != nil {
		return err
	}

	if err = timeSlot.Release(); err != nil {
		return err
	}

	if err = scheduleRepo.Update(ctx, deliverySchedule); err != nil {
		return err
	}

	if err = slotRepo.Update(ctx, timeSlot); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	publishSlotStatus(ctx, h.publisher, timeSlot.Snapshot(), h.now)
	publishScheduleStatus(ctx, h.publisher, deliverySchedule, h.now)
	h.recompute.Schedule(deliverySchedule.DriverID(), deliverySchedule.Date(), route.TriggerBooking)

	return nil
}

func publishScheduleStatus(
	ctx context.Context,
	publisher ports.EventPublisher,
	s *schedule.DeliverySchedule,
	now func() time.Time,
) {
	event, err := broadcast.NewScheduleStatusEvent(s, now)
	if err != nil {
		return
	}
	publisher.Publish(ctx, event)
}
