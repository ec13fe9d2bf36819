package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const bookSlotPath = "/api/v1/slots/:slotId/bookings"

// QueryAvailabilityParams are the query parameters of GET /api/v1/drivers/{driverId}/slots.
type QueryAvailabilityParams struct {
	From         openapi_types.Date `form:"from" json:"from"`
	To           openapi_types.Date `form:"to" json:"to"`
	Availability *[]string          `form:"availability,omitempty" json:"availability,omitempty"`
}

// SuggestRoutesParams are the query parameters of GET .../routes/{date}/suggestions.
type SuggestRoutesParams struct {
	MinimizeTime     *bool `form:"minimizeTime,omitempty" json:"minimizeTime,omitempty"`
	MinimizeDistance *bool `form:"minimizeDistance,omitempty" json:"minimizeDistance,omitempty"`
}

// CompareRoutePlansParams are the query parameters of GET /api/v1/routes/compare.
type CompareRoutePlansParams struct {
	Base      openapi_types.UUID `form:"base" json:"base"`
	Candidate openapi_types.UUID `form:"candidate" json:"candidate"`
}

// SubscribeChannelParams are the query parameters of GET /api/v1/channels/{channel}/events.
type SubscribeChannelParams struct {
	Token *string `form:"token,omitempty" json:"token,omitempty"`
}

// ServerInterface is the operation set described by api/openapi.yaml.
type ServerInterface interface {
	// (POST /api/v1/slots)
	CreateSlot(ctx echo.Context) error
	// (POST /api/v1/slots/{slotId}/bookings)
	BookSlot(ctx echo.Context, slotID openapi_types.UUID) error
	// (POST /api/v1/slots/{slotId}/block)
	BlockSlot(ctx echo.Context, slotID openapi_types.UUID) error
	// (POST /api/v1/slots/{slotId}/unblock)
	UnblockSlot(ctx echo.Context, slotID openapi_types.UUID) error
	// (POST /api/v1/schedules/{scheduleId}/release)
	ReleaseSchedule(ctx echo.Context, scheduleID openapi_types.UUID) error
	// (POST /api/v1/schedules/{scheduleId}/status)
	UpdateScheduleStatus(ctx echo.Context, scheduleID openapi_types.UUID) error
	// (GET /api/v1/drivers/{driverId}/slots)
	QueryAvailability(ctx echo.Context, driverID openapi_types.UUID, params QueryAvailabilityParams) error
	// (GET /api/v1/drivers/{driverId}/routes/{date})
	GetRoutePlan(ctx echo.Context, driverID openapi_types.UUID, date openapi_types.Date) error
	// (POST /api/v1/drivers/{driverId}/routes/{date}/optimize)
	OptimizeRoute(ctx echo.Context, driverID openapi_types.UUID, date openapi_types.Date) error
	// (GET /api/v1/drivers/{driverId}/routes/{date}/suggestions)
	SuggestRoutes(ctx echo.Context, driverID openapi_types.UUID, date openapi_types.Date, params SuggestRoutesParams) error
	// (GET /api/v1/routes/compare)
	CompareRoutePlans(ctx echo.Context, params CompareRoutePlansParams) error
	// (GET /api/v1/channels/{channel}/events)
	SubscribeChannel(ctx echo.Context, channel string, params SubscribeChannelParams) error
}

// ServerInterfaceWrapper converts echo contexts to typed parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) CreateSlot(ctx echo.Context) error {
	return w.Handler.CreateSlot(ctx)
}

func (w *ServerInterfaceWrapper) BookSlot(ctx echo.Context) error {
	slotID, err := bindUUIDPath(ctx, "slotId")
	if err != nil {
		return err
	}
	return w.Handler.BookSlot(ctx, slotID)
}

func (w *ServerInterfaceWrapper) BlockSlot(ctx echo.Context) error {
	slotID, err := bindUUIDPath(ctx, "slotId")
	if err != nil {
		return err
	}
	return w.Handler.BlockSlot(ctx, slotID)
}

func (w *ServerInterfaceWrapper) UnblockSlot(ctx echo.Context) error {
	slotID, err := bindUUIDPath(ctx, "slotId")
	if err != nil {
		return err
	}
	return w.Handler.UnblockSlot(ctx, slotID)
}

func (w *ServerInterfaceWrapper) ReleaseSchedule(ctx echo.Context) error {
	scheduleID, err := bindUUIDPath(ctx, "scheduleId")
	if err != nil {
		return err
	}
	return w.Handler.ReleaseSchedule(ctx, scheduleID)
}

func (w *ServerInterfaceWrapper) UpdateScheduleStatus(ctx echo.Context) error {
	scheduleID, err := bindUUIDPath(ctx, "scheduleId")
	if err != nil {
		return err
	}
	return w.Handler.UpdateScheduleStatus(ctx, scheduleID)
}

func (w *ServerInterfaceWrapper) QueryAvailability(ctx echo.Context) error {
	driverID, err := bindUUIDPath(ctx, "driverId")
	if err != nil {
		return err
	}

	var params QueryAvailabilityParams
	if err = runtime.BindQueryParameter("form", true, true, "from", ctx.QueryParams(), &params.From); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter from: %s", err))
	}
	if err = runtime.BindQueryParameter("form", true, true, "to", ctx.QueryParams(), &params.To); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter to: %s", err))
	}
	err = runtime.BindQueryParameter("form", false, false, "availability", ctx.QueryParams(), &params.Availability)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Invalid format for parameter availability: %s", err))
	}

	return w.Handler.QueryAvailability(ctx, driverID, params)
}

func (w *ServerInterfaceWrapper) GetRoutePlan(ctx echo.Context) error {
	driverID, date, err := bindDriverDate(ctx)
	if err != nil {
		return err
	}
	return w.Handler.GetRoutePlan(ctx, driverID, date)
}

func (w *ServerInterfaceWrapper) OptimizeRoute(ctx echo.Context) error {
	driverID, date, err := bindDriverDate(ctx)
	if err != nil {
		return err
	}
	return w.Handler.OptimizeRoute(ctx, driverID, date)
}

func (w *ServerInterfaceWrapper) SuggestRoutes(ctx echo.Context) error {
	driverID, date, err := bindDriverDate(ctx)
	if err != nil {
		return err
	}

	var params SuggestRoutesParams
	err = runtime.BindQueryParameter("form", true, false, "minimizeTime", ctx.QueryParams(), &params.MinimizeTime)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Invalid format for parameter minimizeTime: %s", err))
	}
	err = runtime.BindQueryParameter("form", true, false, "minimizeDistance", ctx.QueryParams(),
		&params.MinimizeDistance)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Invalid format for parameter minimizeDistance: %s", err))
	}

	return w.Handler.SuggestRoutes(ctx, driverID, date, params)
}

func (w *ServerInterfaceWrapper) CompareRoutePlans(ctx echo.Context) error {
	var params CompareRoutePlansParams
	if err := runtime.BindQueryParameter("form", true, true, "base", ctx.QueryParams(), &params.Base); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter base: %s", err))
	}
	err := runtime.BindQueryParameter("form", true, true, "candidate", ctx.QueryParams(), &params.Candidate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Invalid format for parameter candidate: %s", err))
	}

	return w.Handler.CompareRoutePlans(ctx, params)
}

func (w *ServerInterfaceWrapper) SubscribeChannel(ctx echo.Context) error {
	var channel string
	err := runtime.BindStyledParameterWithOptions("simple", "channel", ctx.Param("channel"), &channel,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter channel: %s", err))
	}

	var params SubscribeChannelParams
	if err = runtime.BindQueryParameter("form", true, false, "token", ctx.QueryParams(), &params.Token); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter token: %s", err))
	}

	return w.Handler.SubscribeChannel(ctx, channel, params)
}

func bindUUIDPath(ctx echo.Context, name string) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return id, nil
}

func bindDriverDate(ctx echo.Context) (openapi_types.UUID, openapi_types.Date, error) {
	driverID, err := bindUUIDPath(ctx, "driverId")
	if err != nil {
		return driverID, openapi_types.Date{}, err
	}

	var date openapi_types.Date
	err = runtime.BindStyledParameterWithOptions("simple", "date", ctx.Param("date"), &date,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return driverID, date, echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Invalid format for parameter date: %s", err))
	}
	return driverID, date, nil
}

// EchoRouter is the subset of echo.Echo and echo.Group RegisterHandlers needs.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers binds every operation of si to router.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	w := &ServerInterfaceWrapper{Handler: si}

	router.POST("/api/v1/slots", w.CreateSlot)
	router.POST(bookSlotPath, w.BookSlot)
	router.POST("/api/v1/slots/:slotId/block", w.BlockSlot)
	router.POST("/api/v1/slots/:slotId/unblock", w.UnblockSlot)
	router.POST("/api/v1/schedules/:scheduleId/release", w.ReleaseSchedule)
	router.POST("/api/v1/schedules/:scheduleId/status", w.UpdateScheduleStatus)
	router.GET("/api/v1/drivers/:driverId/slots", w.QueryAvailability)
	router.GET("/api/v1/drivers/:driverId/routes/:date", w.GetRoutePlan)
	router.POST("/api/v1/drivers/:driverId/routes/:date/optimize", w.OptimizeRoute)
	router.GET("/api/v1/drivers/:driverId/routes/:date/suggestions", w.SuggestRoutes)
	router.GET("/api/v1/routes/compare", w.CompareRoutePlans)
	router.GET("/api/v1/channels/:channel/events", w.SubscribeChannel)
}
