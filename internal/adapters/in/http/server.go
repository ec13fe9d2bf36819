package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"capacity/internal/core/application/usecases/commands"
	"capacity/internal/core/application/usecases/queries"
	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/core/domain/model/slot"
	"capacity/internal/core/domain/services"
	"capacity/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Handlers groups the application use cases the HTTP surface delegates to.
type Handlers struct {
	CreateSlot           commands.CreateSlotCommandHandler
	BookSlot             commands.BookSlotCommandHandler
	SlotAvailability     commands.SlotAvailabilityCommandHandler
	ReleaseSchedule      commands.ReleaseScheduleCommandHandler
	UpdateScheduleStatus commands.UpdateScheduleStatusCommandHandler
	OptimizeRoute        commands.OptimizeRouteCommandHandler

	QueryAvailability queries.QueryAvailabilityQueryHandler
	GetRoutePlan      queries.GetRoutePlanQueryHandler
	SuggestRoutes     queries.SuggestRoutesQueryHandler
	CompareRoutePlans queries.CompareRoutePlansQueryHandler
}

// Server implements ServerInterface for handling HTTP requests.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	handlers Handlers
	streams  *eventStreams
	logger   *slog.Logger
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	handlers Handlers,
	hub Subscriber,
	auth ChannelAuthorizer,
	heartbeat time.Duration,
	logger *slog.Logger,
) *Server {
	logger = logger.With("component", "http-server")
	return &Server{
		handlers: handlers,
		streams:  newEventStreams(hub, auth, heartbeat, logger),
		logger:   logger,
	}
}

// Close ends every open event stream so a graceful shutdown is not held up.
func (s *Server) Close() {
	s.streams.close()
}

// CreateSlot handles POST /api/v1/slots.
func (s *Server) CreateSlot(ctx echo.Context) error {
	var body NewSlot
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{Code: "validation_error", Message: "Invalid request body"})
	}

	cmd, err := newCreateSlotCommand(body)
	if err != nil {
		return respondError(ctx, s.logger, err)
	}

	snap, err := s.handlers.CreateSlot.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusCreated, toSlot(snap))
}

func newCreateSlotCommand(body NewSlot) (commands.CreateSlotCommand, error) {
	start, err := kernel.ParseTimeOfDay(body.StartTime)
	if err != nil {
		return commands.CreateSlotCommand{}, err
	}
	end, err := kernel.ParseTimeOfDay(body.EndTime)
	if err != nil {
		return commands.CreateSlotCommand{}, err
	}
	window, err := kernel.NewTimeWindow(start, end)
	if err != nil {
		return commands.CreateSlotCommand{}, err
	}
	if body.Capacity < 0 {
		return commands.CreateSlotCommand{}, errs.NewValueIsOutOfRangeError("capacity", body.Capacity, 0, slot.MaxCapacity)
	}

	var recurrence *slot.Recurrence
	if body.Recurrence != nil {
		var until *kernel.Date
		if body.Recurrence.Until != nil {
			d := kernel.DateOf(body.Recurrence.Until.Time)
			until = &d
		}
		r, recErr := slot.NewRecurrence(slot.Frequency(body.Recurrence.Frequency), until)
		if recErr != nil {
			return commands.CreateSlotCommand{}, recErr
		}
		recurrence = &r
	}

	return commands.NewCreateSlotCommand(kernel.NewUUID(), kernel.UUIDFromGoogle(body.DriverID),
		kernel.DateOf(body.Date.Time), window, body.Label, uint(body.Capacity), recurrence)
}

// BookSlot handles POST /api/v1/slots/{slotId}/bookings.
func (s *Server) BookSlot(ctx echo.Context, slotID openapi_types.UUID) error {
	var body NewBooking
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{Code: "validation_error", Message: "Invalid request body"})
	}

	destination, err := kernel.NewLocation(body.Destination.Latitude, body.Destination.Longitude)
	if err != nil {
		return respondError(ctx, s.logger, err)
	}
	var userID *kernel.UUID
	if body.UserID != nil {
		id := kernel.UUIDFromGoogle(*body.UserID)
		userID = &id
	}

	cmd, err := commands.NewBookSlotCommand(kernel.NewUUID(), kernel.UUIDFromGoogle(slotID),
		kernel.UUIDFromGoogle(body.ShipmentID), userID, destination)
	if err != nil {
		return respondError(ctx, s.logger, err)
	}

	result, err := s.handlers.BookSlot.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusCreated, Booking{
		Schedule: toSchedule(result.Schedule),
		Slot:     toSlot(result.Slot),
	})
}

// BlockSlot handles POST /api/v1/slots/{slotId}/block.
func (s *Server) BlockSlot(ctx echo.Context, slotID openapi_types.UUID) error {
	var body BlockRequest
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{Code: "validation_error", Message: "Invalid request body"})
	}

	cmd, err := commands.NewBlockSlotCommand(kernel.UUIDFromGoogle(slotID), body.Reason)
	if err != nil {
		return respondError(ctx, s.logger, err)
	}

	snap, err := s.handlers.SlotAvailability.HandleBlock(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, toSlot(snap))
}

// UnblockSlot handles POST /api/v1/slots/{slotId}/unblock.
func (s *Server) UnblockSlot(ctx echo.Context, slotID openapi_types.UUID) error {
	cmd, err := commands.NewUnblockSlotCommand(kernel.UUIDFromGoogle(slotID))
	if err != nil {
		return respondError(ctx, s.logger, err)
	}

	snap, err := s.handlers.SlotAvailability.HandleUnblock(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, toSlot(snap))
}

// ReleaseSchedule handles POST /api/v1/schedules/{scheduleId}/release.
func (s *Server) ReleaseSchedule(ctx echo.Context, scheduleID openapi_types.UUID) error {
	cmd, err := commands.NewReleaseScheduleCommand(kernel.UUIDFromGoogle(scheduleID))
	if err != nil {
		return respondError(ctx, s.logger, err)
	}

	if err = s.handlers.ReleaseSchedule.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, s.logger, err)
	}
	return ctx.NoContent(http.StatusOK)
}

// UpdateScheduleStatus handles POST /api/v1/schedules/{scheduleId}/status.
func (s *Server) UpdateScheduleStatus(ctx echo.Context, scheduleID openapi_types.UUID) error {
	var body StatusRequest
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{Code: "validation_error", Message: "Invalid request body"})
	}

	status, err := schedule.ParseStatus(body.Status)
	if err != nil {
		return respondError(ctx, s.logger, err)
	}
	cmd, err := commands.NewUpdateScheduleStatusCommand(kernel.UUIDFromGoogle(scheduleID), status)
	if err != nil {
		return respondError(ctx, s.logger, err)
	}

	updated, err := s.handlers.UpdateScheduleStatus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, toSchedule(updated))
}

// QueryAvailability handles GET /api/v1/drivers/{driverId}/slots. The body
// is a JSON array written element by element as the store yields slots.
func (s *Server) QueryAvailability(ctx echo.Context, driverID openapi_types.UUID, params QueryAvailabilityParams) error {
	dates, err := kernel.NewDateRange(kernel.DateOf(params.From.Time), kernel.DateOf(params.To.Time))
	if err != nil {
		return respondError(ctx, s.logger, err)
	}

	var filter []slot.Availability
	if params.Availability != nil {
		for _, name := range *params.Availability {
			a, parseErr := slot.ParseAvailability(name)
			if parseErr != nil {
				return respondError(ctx, s.logger, parseErr)
			}
			filter = append(filter, a)
		}
	}

	query, err := queries.NewQueryAvailabilityQuery(kernel.UUIDFromGoogle(driverID), dates, filter...)
	if err != nil {
		return respondError(ctx, s.logger, err)
	}

	reqCtx := ctx.Request().Context()
	snapshots, err := s.handlers.QueryAvailability.Handle(reqCtx, query)
	if err != nil {
		return respondError(ctx, s.logger, err)
	}

	res := ctx.Response()
	written := 0
	for snap, iterErr := range snapshots {
		if iterErr != nil {
			if written == 0 {
				return respondError(ctx, s.logger, iterErr)
			}
			s.logger.WarnContext(reqCtx, "availability stream aborted", "written", written, "error", iterErr)
			return nil
		}

		if written == 0 {
			res.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			res.WriteHeader(http.StatusOK)
			if _, err = res.Write([]byte("[")); err != nil {
				return nil
			}
		} else if _, err = res.Write([]byte(",")); err != nil {
			return nil
		}
		if err = json.NewEncoder(res).Encode(toSlot(snap)); err != nil {
			return nil
		}
		written++
	}

	if written == 0 {
		return ctx.JSON(http.StatusOK, []Slot{})
	}
	_, _ = res.Write([]byte("]"))
	return nil
}

// GetRoutePlan handles GET /api/v1/drivers/{driverId}/routes/{date}.
func (s *Server) GetRoutePlan(ctx echo.Context, driverID openapi_types.UUID, date openapi_types.Date) error {
	query, err := queries.NewGetRoutePlanQuery(kernel.UUIDFromGoogle(driverID), kernel.DateOf(date.Time))
	if err != nil {
		return respondError(ctx, s.logger, err)
	}

	plan, err := s.handlers.GetRoutePlan.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, toRoutePlan(plan))
}

// OptimizeRoute handles POST /api/v1/drivers/{driverId}/routes/{date}/optimize.
// The body is optional; an empty body optimizes with default weights.
func (s *Server) OptimizeRoute(ctx echo.Context, driverID openapi_types.UUID, date openapi_types.Date) error {
	var body OptimizeRequest
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{Code: "validation_error", Message: "Invalid request body"})
	}

	cmd, err := commands.NewOptimizeRouteCommand(kernel.UUIDFromGoogle(driverID), kernel.DateOf(date.Time),
		services.OptimizeParams{
			AvoidTraffic:     body.AvoidTraffic,
			MinimizeTime:     body.MinimizeTime,
			MinimizeDistance: body.MinimizeDistance,
			PreferHighways:   body.PreferHighways,
		})
	if err != nil {
		return respondError(ctx, s.logger, err)
	}

	plan, err := s.handlers.OptimizeRoute.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, toRoutePlan(plan))
}

// SuggestRoutes handles GET /api/v1/drivers/{driverId}/routes/{date}/suggestions.
func (s *Server) SuggestRoutes(
	ctx echo.Context,
	driverID openapi_types.UUID,
	date openapi_types.Date,
	params SuggestRoutesParams,
) error {
	optimize := services.OptimizeParams{
		MinimizeTime:     params.MinimizeTime != nil && *params.MinimizeTime,
		MinimizeDistance: params.MinimizeDistance != nil && *params.MinimizeDistance,
	}
	query, err := queries.NewSuggestRoutesQuery(kernel.UUIDFromGoogle(driverID), kernel.DateOf(date.Time), optimize)
	if err != nil {
		return respondError(ctx, s.logger, err)
	}

	suggestions, err := s.handlers.SuggestRoutes.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, toSuggestions(suggestions))
}

// CompareRoutePlans handles GET /api/v1/routes/compare.
func (s *Server) CompareRoutePlans(ctx echo.Context, params CompareRoutePlansParams) error {
	query, err := queries.NewCompareRoutePlansQuery(kernel.UUIDFromGoogle(params.Base),
		kernel.UUIDFromGoogle(params.Candidate))
	if err != nil {
		return respondError(ctx, s.logger, err)
	}

	comparison, err := s.handlers.CompareRoutePlans.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, toComparison(comparison))
}

// SubscribeChannel handles GET /api/v1/channels/{channel}/events.
func (s *Server) SubscribeChannel(ctx echo.Context, channel string, params SubscribeChannelParams) error {
	return s.streams.serve(ctx, channel, params)
}
