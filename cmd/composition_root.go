package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	httpadapter "capacity/internal/adapters/in/http"
	"capacity/internal/adapters/out/broadcast"
	"capacity/internal/adapters/out/memory"
	"capacity/internal/adapters/out/oracle"
	"capacity/internal/adapters/out/postgres"
	"capacity/internal/adapters/out/postgres/slotrepo"
	"capacity/internal/adapters/out/redisrelay"
	"capacity/internal/core/application/planning"
	"capacity/internal/core/application/usecases/commands"
	"capacity/internal/core/application/usecases/queries"
	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/services"
	"capacity/internal/core/ports"
	"capacity/internal/jobs"
	"capacity/internal/pkg/stripedlock"
	"capacity/migrations"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// CompositionRoot owns every long-lived component and hands out handlers
// wired to them.
type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger

	gormDB     *gorm.DB
	uowFactory ports.UnitOfWorkFactory
	slotReader ports.SlotReader

	locks       *stripedlock.Lock
	hub         *broadcast.Hub
	dispatcher  *broadcast.Dispatcher
	redis       *redis.Client
	relay       *redisrelay.Relay
	optimizer   *services.RouteOptimizer
	coordinator *planning.Coordinator
	server      *httpadapter.Server
}

func NewCompositionRoot(ctx context.Context, cfg Config, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:    cfg,
		logger: logger,
		locks:  stripedlock.New(0),
	}

	if err := c.openStorage(); err != nil {
		return nil, err
	}

	c.hub = broadcast.NewHub(cfg.SubscriberBuffer, logger)
	sinks := []broadcast.Sink{c.hub}
	if cfg.RedisAddr != "" {
		client, err := redisrelay.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, errors.Join(err, c.closeStorage())
		}
		relay, err := redisrelay.New(client, cfg.InstanceID, c.hub, logger)
		if err != nil {
			return nil, errors.Join(err, client.Close(), c.closeStorage())
		}
		c.redis = client
		c.relay = relay
		sinks = append(sinks, relay)
	}
	c.dispatcher = broadcast.NewDispatcher(cfg.BroadcastQueueSize, logger, sinks...)

	distances, err := oracle.NewHaversine(oracle.Config{
		SpeedKmh:     cfg.OracleSpeedKmh,
		DetourFactor: cfg.OracleDetourFactor,
	})
	if err != nil {
		return nil, errors.Join(err, c.closeStorage())
	}

	optimizerCfg := services.RouteOptimizerConfig{
		Weights: services.Weights{
			Distance: cfg.RouteWeightDistance,
			Duration: cfg.RouteWeightDuration,
			Lateness: cfg.RouteWeightLateness,
			Window:   cfg.RouteScoreWindowWeight,
		},
		IterationBudget: cfg.RouteIterationBudget,
		ServiceTime:     cfg.RouteServiceTime,
		Suggestions:     cfg.RouteSuggestions,
	}
	if cfg.DepotLatitude != nil && cfg.DepotLongitude != nil {
		depot, err := kernel.NewLocation(*cfg.DepotLatitude, *cfg.DepotLongitude)
		if err != nil {
			return nil, errors.Join(err, c.closeStorage())
		}
		optimizerCfg.Depot = &depot
	}
	if c.optimizer, err = services.NewRouteOptimizer(distances, optimizerCfg); err != nil {
		return nil, errors.Join(err, c.closeStorage())
	}

	c.coordinator = planning.NewCoordinator(c.uowFactory, c.optimizer, c.dispatcher, logger)
	return c, nil
}

func (c *CompositionRoot) openStorage() error {
	if c.cfg.Storage == StorageMemory {
		store := memory.NewStore()
		c.uowFactory = store
		c.slotReader = store
		c.logger.Info("using in-memory storage")
		return nil
	}

	db, err := c.OpenDatabase()
	if err != nil {
		return err
	}
	c.gormDB = db
	c.uowFactory = postgres.NewGormUnitOfWorkFactory(db)
	c.slotReader = slotrepo.NewGormSlotReader(db)
	return nil
}

// OpenDatabase connects to the configured postgres instance.
func (c *CompositionRoot) OpenDatabase() (*gorm.DB, error) {
	db, err := gorm.Open(gorm_postgres.Open(c.cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return db, nil
}

func (c *CompositionRoot) closeStorage() error {
	if c.gormDB == nil {
		return nil
	}
	sqlDB, err := c.gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate applies pending migrations to the configured database.
func (c *CompositionRoot) Migrate(ctx context.Context) error {
	if c.gormDB == nil {
		return errors.New("migrations need postgres storage")
	}
	sqlDB, err := c.gormDB.DB()
	if err != nil {
		return err
	}
	return migrations.Up(ctx, sqlDB)
}

// CloseStreams ends open event streams so the HTTP server can shut down.
func (c *CompositionRoot) CloseStreams() {
	if c.server != nil {
		c.server.Close()
	}
}

// Start launches the broadcast dispatcher and, when configured, the relay
// subscriber. The relay stops with ctx.
func (c *CompositionRoot) Start(ctx context.Context) {
	go c.dispatcher.Run()
	if c.relay != nil {
		go func() {
			if err := c.relay.Run(ctx); err != nil {
				c.logger.ErrorContext(ctx, "redis relay stopped", "error", err)
			}
		}()
	}
}

// Close ends open event streams, stops recomputation and drains the
// broadcast queue before releasing connections.
func (c *CompositionRoot) Close() error {
	c.CloseStreams()
	c.coordinator.Close()
	c.dispatcher.Close()

	var err error
	if c.redis != nil {
		err = c.redis.Close()
	}
	return errors.Join(err, c.closeStorage())
}

func (c *CompositionRoot) CreateCreateSlotCommandHandler() commands.CreateSlotCommandHandler {
	return commands.NewCreateSlotCommandHandler(c.uowFactory, c.dispatcher)
}

func (c *CompositionRoot) CreateBookSlotCommandHandler() commands.BookSlotCommandHandler {
	return commands.NewBookSlotCommandHandler(c.uowFactory, c.locks, c.dispatcher, c.coordinator)
}

func (c *CompositionRoot) CreateSlotAvailabilityCommandHandler() commands.SlotAvailabilityCommandHandler {
	return commands.NewSlotAvailabilityCommandHandler(c.uowFactory, c.locks, c.dispatcher)
}

func (c *CompositionRoot) CreateReleaseScheduleCommandHandler() commands.ReleaseScheduleCommandHandler {
	return commands.NewReleaseScheduleCommandHandler(c.uowFactory, c.locks, c.dispatcher, c.coordinator)
}

func (c *CompositionRoot) CreateUpdateScheduleStatusCommandHandler() commands.UpdateScheduleStatusCommandHandler {
	return commands.NewUpdateScheduleStatusCommandHandler(c.uowFactory, c.locks, c.CreateReleaseScheduleCommandHandler(),
		c.dispatcher)
}

func (c *CompositionRoot) CreateOptimizeRouteCommandHandler() commands.OptimizeRouteCommandHandler {
	return commands.NewOptimizeRouteCommandHandler(c.coordinator)
}

func (c *CompositionRoot) CreateCompletePastRoutePlansCommandHandler() commands.CompletePastRoutePlansCommandHandler {
	return commands.NewCompletePastRoutePlansCommandHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateQueryAvailabilityQueryHandler() queries.QueryAvailabilityQueryHandler {
	return queries.NewQueryAvailabilityQueryHandler(c.slotReader)
}

func (c *CompositionRoot) CreateGetRoutePlanQueryHandler() queries.GetRoutePlanQueryHandler {
	return queries.NewGetRoutePlanQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateSuggestRoutesQueryHandler() queries.SuggestRoutesQueryHandler {
	return queries.NewSuggestRoutesQueryHandler(c.uowFactory, c.optimizer)
}

func (c *CompositionRoot) CreateCompareRoutePlansQueryHandler() queries.CompareRoutePlansQueryHandler {
	return queries.NewCompareRoutePlansQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateChannelAuthorizer() httpadapter.ChannelAuthorizer {
	return httpadapter.NewChannelAuthorizer(c.cfg.ChannelTokenSecret)
}

// CreateRouter builds the HTTP server over every handler.
func (c *CompositionRoot) CreateRouter(ctx context.Context) (*echo.Echo, error) {
	c.server = httpadapter.NewServer(httpadapter.Handlers{
		CreateSlot:           c.CreateCreateSlotCommandHandler(),
		BookSlot:             c.CreateBookSlotCommandHandler(),
		SlotAvailability:     c.CreateSlotAvailabilityCommandHandler(),
		ReleaseSchedule:      c.CreateReleaseScheduleCommandHandler(),
		UpdateScheduleStatus: c.CreateUpdateScheduleStatusCommandHandler(),
		OptimizeRoute:        c.CreateOptimizeRouteCommandHandler(),
		QueryAvailability:    c.CreateQueryAvailabilityQueryHandler(),
		GetRoutePlan:         c.CreateGetRoutePlanQueryHandler(),
		SuggestRoutes:        c.CreateSuggestRoutesQueryHandler(),
		CompareRoutePlans:    c.CreateCompareRoutePlansQueryHandler(),
	}, c.hub, c.CreateChannelAuthorizer(), c.cfg.SSEHeartbeat, c.logger)

	return httpadapter.NewRouter(ctx, c.server, httpadapter.RouterConfig{
		BookingRateLimit: httpadapter.RateLimit{
			PerSecond: c.cfg.BookingRateLimit,
			Burst:     c.cfg.BookingRateBurst,
		},
		ValidateRequests: true,
		ServeDocs:        true,
	}, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.coordinator, c.CreateCompletePastRoutePlansCommandHandler(), jobs.Schedules{
		PlanRetry:   c.cfg.PlanRetrySpec,
		DayRollover: c.cfg.DayRolloverSpec,
	}, c.logger)
}
