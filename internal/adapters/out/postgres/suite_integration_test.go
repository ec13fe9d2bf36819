package postgres_test

import (
	"context"
	"time"

	postgres_adapter "capacity/internal/adapters/out/postgres"
	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/core/domain/model/slot"
	"capacity/internal/core/ports"
	"capacity/migrations"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	testDate   = kernel.NewDate(2026, time.October, 20)
	testDriver = kernel.MustUUIDFromString("3b8e7d52-6c1f-4f0e-9f6a-0d7c2e5a9b14")
)

// postgresSuite starts one PostgreSQL container per suite and applies the
// embedded goose migrations to it.
type postgresSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

func (s *postgresSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30*time.Second)),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	s.Require().NoError(err)
	s.db = db

	sqlDB, err := db.DB()
	s.Require().NoError(err)
	s.Require().NoError(migrations.Up(ctx, sqlDB))

	s.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

// SetupTest truncates every table so tests never see each other's rows.
func (s *postgresSuite) SetupTest() {
	err := s.db.Exec("TRUNCATE TABLE route_plans, delivery_schedules, time_slots").Error
	s.Require().NoError(err)
}

func (s *postgresSuite) TearDownSuite() {
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(context.Background()))
	}
}

func (s *postgresSuite) window(start, end string) kernel.TimeWindow {
	from, err := kernel.ParseTimeOfDay(start)
	s.Require().NoError(err)
	to, err := kernel.ParseTimeOfDay(end)
	s.Require().NoError(err)
	w, err := kernel.NewTimeWindow(from, to)
	s.Require().NoError(err)
	return w
}

func (s *postgresSuite) newSlot(date kernel.Date, start string, capacity uint) *slot.TimeSlot {
	ts, err := slot.NewTimeSlot(kernel.NewUUID(), testDriver, date, s.window(start, "12:00"), "morning",
		capacity, nil)
	s.Require().NoError(err)
	return ts
}

func (s *postgresSuite) addSlot(ctx context.Context, ts *slot.TimeSlot) {
	s.Require().NoError(s.factory.Create().SlotRepository().Add(ctx, ts))
}

func (s *postgresSuite) newSchedule(ts *slot.TimeSlot, bookedAt time.Time) *schedule.DeliverySchedule {
	d, err := schedule.NewDeliverySchedule(kernel.NewUUID(), kernel.NewUUID(), nil, ts.DriverID(), ts.Date(),
		ts.ID(), ts.Window(), kernel.MustNewLocation(52.52, 13.405), bookedAt)
	s.Require().NoError(err)
	return d
}
