package commands

import (
	"context"
	"time"

	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/core/ports"
)

// UpdateScheduleStatusCommandHandler applies delivery progress. A transition
// to cancelled gives the slot unit back, so it goes through the release path.
// Other transitions hold the same slot lock as release, so a release that
// lands first is seen and the stale transition is rejected.
type UpdateScheduleStatusCommandHandler struct {
	uowFactory UoWFactory
	locks      SlotLocker
	release    ReleaseScheduleCommandHandler
	publisher  ports.EventPublisher
	now        func() time.Time
}

func NewUpdateScheduleStatusCommandHandler(
	uowFactory UoWFactory,
	locks SlotLocker,
	release ReleaseScheduleCommandHandler,
	publisher ports.EventPublisher,
) UpdateScheduleStatusCommandHandler {
	return UpdateScheduleStatusCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		release:    release,
		publisher:  publisher,
		now:        time.Now,
	}
}

func (h *UpdateScheduleStatusCommandHandler) Handle(
	ctx context.Context,
	cmd UpdateScheduleStatusCommand,
) (*schedule.DeliverySchedule, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if cmd.Status() == schedule.Cancelled {
		return h.cancel(ctx, cmd)
	}

	peek, err := h.uowFactory.Create().ScheduleRepository().Get(ctx, cmd.ScheduleID())
	if err != nil {
		return nil, err
	}

	unlock := h.locks.Acquire(peek.SlotID().String())
	defer unlock()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	scheduleRepo := uow.ScheduleRepository()
	deliverySchedule, err := scheduleRepo.GetForUpdate(ctx, cmd.ScheduleID())
	if err != nil {
		return nil, err
	}

	if err = deliverySchedule.ChangeStatus(cmd.Status()); err != nil {
		return nil, err
	}

	if err = scheduleRepo.Update(ctx, deliverySchedule); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	publishScheduleStatus(ctx, h.publisher, deliverySchedule, h.now)
	return deliverySchedule, nil
}

func (h *UpdateScheduleStatusCommandHandler) cancel(
	ctx context.Context,
	cmd UpdateScheduleStatusCommand,
) (*schedule.DeliverySchedule, error) {
	releaseCmd, err := NewReleaseScheduleCommand(cmd.ScheduleID())
	if err != nil {
		return nil, err
	}
	if err = h.release.Handle(ctx, releaseCmd); err != nil {
		return nil, err
	}
	return h.uowFactory.Create().ScheduleRepository().Get(ctx, cmd.ScheduleID())
}
