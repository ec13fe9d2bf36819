package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"capacity/internal/adapters/out/memory"
	"capacity/internal/core/application/usecases/commands"
	"capacity/internal/core/domain/model/broadcast"
	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/route"
	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/core/domain/model/slot"
	"capacity/internal/core/domain/services"
	"capacity/internal/core/ports"
	"capacity/internal/pkg/errs"
	"capacity/internal/pkg/stripedlock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// pausingStore holds the first schedule read until resume is closed.
type pausingStore struct {
	*memory.Store
	paused chan struct{}
	resume chan struct{}
	once   sync.Once
}

func (p *pausingStore) Create() ports.UnitOfWork {
	return &pausingUnitOfWork{UnitOfWork: p.Store.Create(), store: p}
}

type pausingUnitOfWork struct {
	ports.UnitOfWork
	store *pausingStore
}

func (u *pausingUnitOfWork) ScheduleRepository() ports.ScheduleRepository {
	return &pausingScheduleRepository{ScheduleRepository: u.UnitOfWork.ScheduleRepository(), store: u.store}
}

type pausingScheduleRepository struct {
	ports.ScheduleRepository
	store *pausingStore
}

func (r *pausingScheduleRepository) Get(ctx context.Context, id kernel.UUID) (*schedule.DeliverySchedule, error) {
	found, err := r.ScheduleRepository.Get(ctx, id)
	r.store.once.Do(func() {
		close(r.store.paused)
		<-r.store.resume
	})
	return found, err
}

type CapacitySuite struct {
	suite.Suite

	store     *memory.Store
	locks     *stripedlock.Lock
	publisher *recordingPublisher
	scheduler *recordingScheduler

	book    commands.BookSlotCommandHandler
	release commands.ReleaseScheduleCommandHandler
	admin   commands.SlotAvailabilityCommandHandler
	status  commands.UpdateScheduleStatusCommandHandler
}

func TestCapacitySuite(t *testing.T) {
	suite.Run(t, new(CapacitySuite))
}

func (s *CapacitySuite) SetupTest() {
	s.store = memory.NewStore()
	s.publisher = &recordingPublisher{}
	s.scheduler = &recordingScheduler{}
	s.locks = stripedlock.New(64)

	s.book = commands.NewBookSlotCommandHandler(s.store, s.locks, s.publisher, s.scheduler)
	s.release = commands.NewReleaseScheduleCommandHandler(s.store, s.locks, s.publisher, s.scheduler)
	s.admin = commands.NewSlotAvailabilityCommandHandler(s.store, s.locks, s.publisher)
	s.status = commands.NewUpdateScheduleStatusCommandHandler(s.store, s.locks, s.release, s.publisher)
}

func (s *CapacitySuite) seedSlot(capacity uint) *slot.TimeSlot {
	ts := newSlot(s.T(), capacity)
	s.Require().NoError(s.store.Create().SlotRepository().Add(s.T().Context(), ts))
	return ts
}

func (s *CapacitySuite) storedSlot(id kernel.UUID) *slot.TimeSlot {
	ts, err := s.store.Create().SlotRepository().Get(s.T().Context(), id)
	s.Require().NoError(err)
	return ts
}

func (s *CapacitySuite) TestBookingUntilFull() {
	ctx := s.T().Context()
	ts := s.seedSlot(2)

	first, err := s.book.Handle(ctx, newBookCommand(s.T(), ts.ID()))
	s.Require().NoError(err)
	s.Equal(slot.Limited, first.Slot.Availability)

	second, err := s.book.Handle(ctx, newBookCommand(s.T(), ts.ID()))
	s.Require().NoError(err)
	s.Equal(slot.Full, second.Slot.Availability)

	_, err = s.book.Handle(ctx, newBookCommand(s.T(), ts.ID()))
	s.Require().ErrorIs(err, slot.ErrSlotFull)

	stored := s.storedSlot(ts.ID())
	s.Equal(uint(2), stored.Booked())
	s.Equal(slot.Full, stored.Availability())
	s.Equal(2, s.scheduler.Count())
}

func (s *CapacitySuite) TestConcurrentBookingsNeverOversell() {
	ctx := s.T().Context()
	ts := s.seedSlot(4)

	const attempts = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		booked  []uint
		full    int
		unknown []error
	)
	for range attempts {
		cmd := newBookCommand(s.T(), ts.ID())
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.book.Handle(ctx, cmd)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked = append(booked, result.Slot.Booked)
			case errors.Is(err, slot.ErrSlotFull):
				full++
			default:
				unknown = append(unknown, err)
			}
		}()
	}
	wg.Wait()

	s.Empty(unknown)
	s.Len(booked, 4)
	s.Equal(6, full)
	s.ElementsMatch([]uint{1, 2, 3, 4}, booked)
	s.Equal(uint(4), s.storedSlot(ts.ID()).Booked())
}

func (s *CapacitySuite) TestReleaseMakesSlotAvailableAgain() {
	ctx := s.T().Context()
	ts := s.seedSlot(1)

	result, err := s.book.Handle(ctx, newBookCommand(s.T(), ts.ID()))
	s.Require().NoError(err)
	s.Equal(slot.Full, result.Slot.Availability)

	releaseCmd, err := commands.NewReleaseScheduleCommand(result.Schedule.ID())
	s.Require().NoError(err)
	s.Require().NoError(s.release.Handle(ctx, releaseCmd))

	stored := s.storedSlot(ts.ID())
	s.Equal(uint(0), stored.Booked())
	s.Equal(slot.Available, stored.Availability())

	sched, err := s.store.Create().ScheduleRepository().Get(ctx, result.Schedule.ID())
	s.Require().NoError(err)
	s.Equal(schedule.Cancelled, sched.Status())

	s.Equal(2, s.scheduler.Count())
	names := make([]broadcast.EventName, 0)
	for _, e := range s.publisher.Events() {
		names = append(names, e.Name)
	}
	s.Equal([]broadcast.EventName{
		broadcast.SlotStatusChanged,
		broadcast.SlotStatusChanged,
		broadcast.DeliveryScheduleStatusChanged,
	}, names)

	err = s.release.Handle(ctx, releaseCmd)
	s.Require().ErrorIs(err, schedule.ErrScheduleNotFound)
	s.Equal(uint(0), s.storedSlot(ts.ID()).Booked())
}

func (s *CapacitySuite) TestReleaseUnknownSchedule() {
	cmd, err := commands.NewReleaseScheduleCommand(kernel.NewUUID())
	s.Require().NoError(err)
	s.Require().ErrorIs(s.release.Handle(s.T().Context(), cmd), schedule.ErrScheduleNotFound)
}

func (s *CapacitySuite) TestBookUnknownSlot() {
	_, err := s.book.Handle(s.T().Context(), newBookCommand(s.T(), kernel.NewUUID()))
	s.Require().ErrorIs(err, slot.ErrSlotNotFound)
}

func (s *CapacitySuite) TestBlockedSlotRejectsBookingsUntilUnblocked() {
	ctx := s.T().Context()
	ts := s.seedSlot(3)

	blockCmd, err := commands.NewBlockSlotCommand(ts.ID(), "vehicle maintenance")
	s.Require().NoError(err)
	snap, err := s.admin.HandleBlock(ctx, blockCmd)
	s.Require().NoError(err)
	s.Equal(slot.Blocked, snap.Availability)
	s.Equal("vehicle maintenance", snap.BlockReason)

	_, err = s.book.Handle(ctx, newBookCommand(s.T(), ts.ID()))
	s.Require().ErrorIs(err, slot.ErrSlotBlocked)

	unblockCmd, err := commands.NewUnblockSlotCommand(ts.ID())
	s.Require().NoError(err)
	snap, err = s.admin.HandleUnblock(ctx, unblockCmd)
	s.Require().NoError(err)
	s.Equal(slot.Available, snap.Availability)

	_, err = s.book.Handle(ctx, newBookCommand(s.T(), ts.ID()))
	s.Require().NoError(err)
}

func (s *CapacitySuite) TestScheduleProgressAndCancellation() {
	ctx := s.T().Context()
	ts := s.seedSlot(2)
	result, err := s.book.Handle(ctx, newBookCommand(s.T(), ts.ID()))
	s.Require().NoError(err)

	inProgress, err := commands.NewUpdateScheduleStatusCommand(result.Schedule.ID(), schedule.InProgress)
	s.Require().NoError(err)
	updated, err := s.status.Handle(ctx, inProgress)
	s.Require().NoError(err)
	s.Equal(schedule.InProgress, updated.Status())
	s.Equal(uint(1), s.storedSlot(ts.ID()).Booked())

	cancel, err := commands.NewUpdateScheduleStatusCommand(result.Schedule.ID(), schedule.Cancelled)
	s.Require().NoError(err)
	updated, err = s.status.Handle(ctx, cancel)
	s.Require().NoError(err)
	s.Equal(schedule.Cancelled, updated.Status())
	s.Equal(uint(0), s.storedSlot(ts.ID()).Booked())

	scheduled, err := commands.NewUpdateScheduleStatusCommand(result.Schedule.ID(), schedule.Scheduled)
	s.Require().NoError(err)
	_, err = s.status.Handle(ctx, scheduled)
	s.Require().Error(err)
}

func (s *CapacitySuite) TestStatusUpdateCannotReviveReleasedSchedule() {
	ctx := s.T().Context()
	ts := s.seedSlot(1)
	result, err := s.book.Handle(ctx, newBookCommand(s.T(), ts.ID()))
	s.Require().NoError(err)

	pausing := &pausingStore{Store: s.store, paused: make(chan struct{}), resume: make(chan struct{})}
	status := commands.NewUpdateScheduleStatusCommandHandler(pausing, s.locks, s.release, s.publisher)

	inProgress, err := commands.NewUpdateScheduleStatusCommand(result.Schedule.ID(), schedule.InProgress)
	s.Require().NoError(err)
	done := make(chan error, 1)
	go func() {
		_, err := status.Handle(ctx, inProgress)
		done <- err
	}()
	<-pausing.paused

	releaseCmd, err := commands.NewReleaseScheduleCommand(result.Schedule.ID())
	s.Require().NoError(err)
	s.Require().NoError(s.release.Handle(ctx, releaseCmd))
	close(pausing.resume)
	s.Require().Error(<-done)

	stored, err := s.store.Create().ScheduleRepository().Get(ctx, result.Schedule.ID())
	s.Require().NoError(err)
	s.Equal(schedule.Cancelled, stored.Status())
	s.Equal(uint(0), s.storedSlot(ts.ID()).Booked())

	_, err = s.book.Handle(ctx, newBookCommand(s.T(), ts.ID()))
	s.Require().NoError(err)
	_, err = s.book.Handle(ctx, newBookCommand(s.T(), ts.ID()))
	s.Require().ErrorIs(err, slot.ErrSlotFull)
}

func (s *CapacitySuite) TestStaleStatusWriteIsRejectedOnCommit() {
	ctx := s.T().Context()
	ts := s.seedSlot(1)
	result, err := s.book.Handle(ctx, newBookCommand(s.T(), ts.ID()))
	s.Require().NoError(err)

	stale := s.store.Create()
	s.Require().NoError(stale.Begin(ctx))
	defer func() {
		_ = stale.Rollback(ctx)
	}()
	read, err := stale.ScheduleRepository().GetForUpdate(ctx, result.Schedule.ID())
	s.Require().NoError(err)

	releaseCmd, err := commands.NewReleaseScheduleCommand(result.Schedule.ID())
	s.Require().NoError(err)
	s.Require().NoError(s.release.Handle(ctx, releaseCmd))

	s.Require().NoError(read.ChangeStatus(schedule.InProgress))
	s.Require().NoError(stale.ScheduleRepository().Update(ctx, read))
	s.Require().ErrorIs(stale.Commit(ctx), errs.ErrVersionIsInvalid)

	stored, err := s.store.Create().ScheduleRepository().Get(ctx, result.Schedule.ID())
	s.Require().NoError(err)
	s.Equal(schedule.Cancelled, stored.Status())
	s.Equal(uint(0), s.storedSlot(ts.ID()).Booked())
}

func (s *CapacitySuite) TestCreateSlot() {
	ctx := s.T().Context()
	h := commands.NewCreateSlotCommandHandler(s.store, s.publisher)

	recurrence, err := slot.NewRecurrence(slot.Weekly, nil)
	s.Require().NoError(err)
	cmd, err := commands.NewCreateSlotCommand(kernel.NewUUID(), testDriver, testDate, morningWindow(s.T()),
		"morning", 5, &recurrence)
	s.Require().NoError(err)

	snap, err := h.Handle(ctx, cmd)
	s.Require().NoError(err)
	s.Equal(slot.Available, snap.Availability)
	s.Equal(uint(5), snap.Capacity)

	events := s.publisher.Events()
	s.Require().Len(events, 1)
	s.Contains(events[0].Scopes, broadcast.PublicChannel())

	_, err = h.Handle(ctx, cmd)
	s.Require().Error(err)
}

func TestOptimizeRouteCommandHandler_DelegatesToRecomputer(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewOptimizeRouteCommand(testDriver, testDate, services.OptimizeParams{MinimizeTime: true})
	require.NoError(t, err)

	plan, err := route.NewRoutePlan(kernel.NewUUID(), testDriver, testDate, nil, route.Metrics{Score: 1}, nil, nil,
		route.TriggerOptimization, testDate.Time())
	require.NoError(t, err)

	recomputer := new(MockRouteRecomputer)
	recomputer.On("RunNow", ctx, testDriver, testDate, cmd.Params()).Return(plan, nil).Once()

	h := commands.NewOptimizeRouteCommandHandler(recomputer)
	got, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Same(t, plan, got)
	recomputer.AssertExpectations(t)
}
