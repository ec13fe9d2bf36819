package commands_test

import (
	"errors"
	"testing"

	"capacity/internal/core/application/usecases/commands"
	"capacity/internal/core/domain/model/broadcast"
	"capacity/internal/core/domain/model/route"
	"capacity/internal/core/domain/model/slot"
	"capacity/internal/pkg/stripedlock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBookSlotCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	timeSlot := newSlot(t, 2)
	cmd := newBookCommand(t, timeSlot.ID())

	slotRepo := new(MockSlotRepository)
	scheduleRepo := new(MockScheduleRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("SlotRepository").Return(slotRepo).Once(),
		slotRepo.On("GetForUpdate", ctx, timeSlot.ID()).Return(timeSlot, nil).Once(),
		uow.On("ScheduleRepository").Return(scheduleRepo).Once(),
		scheduleRepo.On("Add", ctx, mock.AnythingOfType("*schedule.DeliverySchedule")).Return(nil).Once(),
		slotRepo.On("Update", ctx, timeSlot).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	scheduler := new(MockRecomputeScheduler)
	scheduler.On("Schedule", testDriver, testDate, route.TriggerBooking).Once()

	publisher := &recordingPublisher{}
	h := commands.NewBookSlotCommandHandler(factory, stripedlock.New(16), publisher, scheduler)
	result, err := h.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, cmd.ScheduleID(), result.Schedule.ID())
	assert.Equal(t, timeSlot.ID(), result.Schedule.SlotID())
	assert.Equal(t, uint(0), result.Schedule.RouteOrder())
	assert.Equal(t, uint(1), result.Slot.Booked)
	assert.Equal(t, slot.Limited, result.Slot.Availability)

	events := publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, broadcast.SlotStatusChanged, events[0].Name)

	slotRepo.AssertExpectations(t)
	scheduleRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
	scheduler.AssertExpectations(t)
}

func TestBookSlotCommandHandler_Handle_SlotFull(t *testing.T) {
	ctx := t.Context()
	timeSlot := newSlot(t, 1)
	require.NoError(t, timeSlot.Book())
	cmd := newBookCommand(t, timeSlot.ID())

	slotRepo := new(MockSlotRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("SlotRepository").Return(slotRepo).Once(),
		slotRepo.On("GetForUpdate", ctx, timeSlot.ID()).Return(timeSlot, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	scheduler := new(MockRecomputeScheduler)
	publisher := &recordingPublisher{}
	h := commands.NewBookSlotCommandHandler(factory, stripedlock.New(16), publisher, scheduler)
	_, err := h.Handle(ctx, cmd)
	require.ErrorIs(t, err, slot.ErrSlotFull)

	assert.Empty(t, publisher.Events())
	scheduler.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
}

func TestBookSlotCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.BookSlotCommand{} // not constructed properly
	factory := new(MockUoWFactory)
	h := commands.NewBookSlotCommandHandler(factory, stripedlock.New(16), &recordingPublisher{}, new(MockRecomputeScheduler))
	_, err := h.Handle(ctx, cmd)
	require.ErrorIs(t, err, commands.ErrBookSlotCommandIsNotConstructed)
}

func TestBookSlotCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := t.Context()
	cmd := newBookCommand(t, newSlot(t, 1).ID())

	uow := new(MockUoW)
	factory := new(MockUoWFactory)
	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(errors.New("begin error")).Once(),
	)

	h := commands.NewBookSlotCommandHandler(factory, stripedlock.New(16), &recordingPublisher{}, new(MockRecomputeScheduler))
	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
	uow.AssertExpectations(t)
}

func TestBookSlotCommandHandler_Handle_CommitErrorPublishesNothing(t *testing.T) {
	ctx := t.Context()
	timeSlot := newSlot(t, 3)
	cmd := newBookCommand(t, timeSlot.ID())

	slotRepo := new(MockSlotRepository)
	scheduleRepo := new(MockScheduleRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("SlotRepository").Return(slotRepo).Once(),
		slotRepo.On("GetForUpdate", ctx, timeSlot.ID()).Return(timeSlot, nil).Once(),
		uow.On("ScheduleRepository").Return(scheduleRepo).Once(),
		scheduleRepo.On("Add", ctx, mock.Anything).Return(nil).Once(),
		slotRepo.On("Update", ctx, timeSlot).Return(nil).Once(),
		uow.On("Commit", ctx).Return(errors.New("commit error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := &recordingPublisher{}
	scheduler := new(MockRecomputeScheduler)
	h := commands.NewBookSlotCommandHandler(factory, stripedlock.New(16), publisher, scheduler)
	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)

	assert.Empty(t, publisher.Events())
	scheduler.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
}
