package http

import (
	"context"
	"log/slog"
	"net/http"

	"capacity/api"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RouterConfig tunes the middleware chain.
type RouterConfig struct {
	BookingRateLimit RateLimit
	// ValidateRequests checks requests against api/openapi.yaml before they
	// reach a handler.
	ValidateRequests bool
	// ServeDocs mounts the swagger UI under /swagger/.
	ServeDocs bool
}

// NewRouter builds the echo instance serving every API route plus /health.
func NewRouter(ctx context.Context, server *Server, cfg RouterConfig, logger *slog.Logger) (*echo.Echo, error) {
	logger = logger.With("component", "http-router")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	if cfg.BookingRateLimit.PerSecond > 0 {
		e.Use(bookingRateLimiter(cfg.BookingRateLimit))
	}

	if cfg.ValidateRequests || cfg.ServeDocs {
		doc, err := api.Load(ctx)
		if err != nil {
			return nil, err
		}
		if cfg.ValidateRequests {
			validator, err := requestValidator(doc)
			if err != nil {
				return nil, err
			}
			e.Use(validator)
		}
		if cfg.ServeDocs {
			if err = api.RegisterDocs(doc); err != nil {
				return nil, err
			}
			e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.InstanceName(api.DocsInstance)))
		}
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	RegisterHandlers(e, server)

	return e, nil
}
