package http

import (
	"errors"
	"log/slog"
	"net/http"

	"capacity/internal/core/domain/model/route"
	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/core/domain/model/slot"
	"capacity/internal/core/ports"
	"capacity/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// statusOf maps the domain error taxonomy onto HTTP status codes and stable
// machine-readable codes.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, slot.ErrSlotFull):
		return http.StatusConflict, "slot_full"
	case errors.Is(err, slot.ErrSlotBlocked):
		return http.StatusConflict, "slot_blocked"
	case errors.Is(err, errs.ErrVersionIsInvalid):
		return http.StatusConflict, "concurrent_update"
	case errors.Is(err, slot.ErrSlotNotFound),
		errors.Is(err, schedule.ErrScheduleNotFound),
		errors.Is(err, route.ErrRoutePlanNotFound),
		errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, route.ErrIncomparablePlans):
		return http.StatusUnprocessableEntity, "incomparable_plans"
	case errors.Is(err, ports.ErrOracleUnavailable):
		return http.StatusServiceUnavailable, "oracle_unavailable"
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, errs.ErrValueIsRequired):
		return http.StatusBadRequest, "validation_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// respondError writes err as an Error body. Unexpected errors are logged and
// their text is not exposed.
func respondError(ctx echo.Context, logger *slog.Logger, err error) error {
	status, code := statusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.ErrorContext(ctx.Request().Context(), "request failed",
			"method", ctx.Request().Method,
			"path", ctx.Path(),
			"error", err)
		message = http.StatusText(status)
	}
	return ctx.JSON(status, Error{Code: code, Message: message})
}

// errorHandler renders echo's own errors (binding, routing, rate limiting)
// in the same Error shape.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			_ = respondError(ctx, logger, err)
			return
		}

		code := "request_error"
		switch he.Code {
		case http.StatusNotFound:
			code = "not_found"
		case http.StatusTooManyRequests:
			code = "rate_limited"
		case http.StatusBadRequest:
			code = "validation_error"
		case http.StatusUnauthorized, http.StatusForbidden:
			code = "unauthorized"
		}
		message, ok := he.Message.(string)
		if !ok {
			message = http.StatusText(he.Code)
		}
		_ = ctx.JSON(he.Code, Error{Code: code, Message: message})
	}
}
