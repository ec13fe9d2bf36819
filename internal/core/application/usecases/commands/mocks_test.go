package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"capacity/internal/core/application/usecases/commands"
	"capacity/internal/core/domain/model/broadcast"
	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/route"
	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/core/domain/model/slot"
	"capacity/internal/core/domain/services"
	"capacity/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSlotRepository struct{ mock.Mock }

func (m *MockSlotRepository) Add(ctx context.Context, s *slot.TimeSlot) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockSlotRepository) Update(ctx context.Context, s *slot.TimeSlot) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockSlotRepository) Get(ctx context.Context, id kernel.UUID) (*slot.TimeSlot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*slot.TimeSlot), args.Error(1)
}
func (m *MockSlotRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*slot.TimeSlot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*slot.TimeSlot), args.Error(1)
}

type MockScheduleRepository struct{ mock.Mock }

func (m *MockScheduleRepository) Add(ctx context.Context, s *schedule.DeliverySchedule) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockScheduleRepository) Update(ctx context.Context, s *schedule.DeliverySchedule) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockScheduleRepository) UpdateRouteAssignment(ctx context.Context, s *schedule.DeliverySchedule) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockScheduleRepository) Get(ctx context.Context, id kernel.UUID) (*schedule.DeliverySchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.DeliverySchedule), args.Error(1)
}
func (m *MockScheduleRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*schedule.DeliverySchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.DeliverySchedule), args.Error(1)
}
func (m *MockScheduleRepository) ListRoutable(
	_ context.Context,
	_ kernel.UUID,
	_ kernel.Date,
) ([]*schedule.DeliverySchedule, error) {
	return nil, errors.New("not implemented in mock")
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUoW) SlotRepository() ports.SlotRepository {
	args := m.Called()
	return args.Get(0).(ports.SlotRepository)
}
func (m *MockUoW) ScheduleRepository() ports.ScheduleRepository {
	args := m.Called()
	return args.Get(0).(ports.ScheduleRepository)
}
func (m *MockUoW) RoutePlanRepository() ports.RoutePlanRepository {
	args := m.Called()
	return args.Get(0).(ports.RoutePlanRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockRecomputeScheduler struct{ mock.Mock }

func (m *MockRecomputeScheduler) Schedule(driverID kernel.UUID, date kernel.Date, trigger route.Trigger) {
	m.Called(driverID, date, trigger)
}

type MockRouteRecomputer struct{ mock.Mock }

func (m *MockRouteRecomputer) RunNow(
	ctx context.Context,
	driverID kernel.UUID,
	date kernel.Date,
	params services.OptimizeParams,
) (*route.RoutePlan, error) {
	args := m.Called(ctx, driverID, date, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.RoutePlan), args.Error(1)
}

// recordingPublisher keeps every event in publish order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []broadcast.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event broadcast.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []broadcast.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]broadcast.Event(nil), p.events...)
}

// recordingScheduler is the concurrency-safe counterpart of MockRecomputeScheduler.
type recordingScheduler struct {
	mu       sync.Mutex
	triggers []route.Trigger
}

func (s *recordingScheduler) Schedule(_ kernel.UUID, _ kernel.Date, trigger route.Trigger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggers = append(s.triggers, trigger)
}

func (s *recordingScheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.triggers)
}

var (
	testDate   = kernel.NewDate(2026, time.October, 20)
	testDriver = kernel.MustUUIDFromString("8f0c6c5e-1f2a-4b7e-9a44-2d3c1b0e9f11")
)

func morningWindow(t *testing.T) kernel.TimeWindow {
	t.Helper()
	start, err := kernel.ParseTimeOfDay("09:00")
	require.NoError(t, err)
	end, err := kernel.ParseTimeOfDay("11:00")
	require.NoError(t, err)
	w, err := kernel.NewTimeWindow(start, end)
	require.NoError(t, err)
	return w
}

func newSlot(t *testing.T, capacity uint) *slot.TimeSlot {
	t.Helper()
	s, err := slot.NewTimeSlot(kernel.NewUUID(), testDriver, testDate, morningWindow(t), "morning", capacity, nil)
	require.NoError(t, err)
	return s
}

func newBookCommand(t *testing.T, slotID kernel.UUID) commands.BookSlotCommand {
	t.Helper()
	cmd, err := commands.NewBookSlotCommand(kernel.NewUUID(), slotID, kernel.NewUUID(), nil,
		kernel.MustNewLocation(52.52, 13.405))
	require.NoError(t, err)
	return cmd
}
