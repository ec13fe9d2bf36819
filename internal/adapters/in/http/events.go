package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	outbroadcast "capacity/internal/adapters/out/broadcast"
	"capacity/internal/core/domain/model/broadcast"

	"github.com/labstack/echo/v4"
)

const defaultHeartbeat = 15 * time.Second

// Subscriber hands out per-channel event subscriptions.
type Subscriber interface {
	Subscribe(channel broadcast.ChannelID) (*outbroadcast.Subscription, error)
}

// eventStreams serves channel subscriptions as server-sent events.
type eventStreams struct {
	hub       Subscriber
	auth      ChannelAuthorizer
	heartbeat time.Duration
	logger    *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

func newEventStreams(hub Subscriber, auth ChannelAuthorizer, heartbeat time.Duration, logger *slog.Logger) *eventStreams {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &eventStreams{
		hub:       hub,
		auth:      auth,
		heartbeat: heartbeat,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

func (e *eventStreams) close() {
	e.closeOnce.Do(func() { close(e.done) })
}

func (e *eventStreams) serve(ctx echo.Context, name string, params SubscribeChannelParams) error {
	channel, err := broadcast.ParseChannelID(name)
	if err != nil {
		return respondError(ctx, e.logger, err)
	}

	if err = e.auth.Authorize(bearerToken(ctx.Request(), params), channel); err != nil {
		if errors.Is(err, ErrChannelNotGranted) {
			return ctx.JSON(http.StatusForbidden, Error{Code: "forbidden", Message: err.Error()})
		}
		return ctx.JSON(http.StatusUnauthorized, Error{Code: "unauthorized", Message: err.Error()})
	}

	sub, err := e.hub.Subscribe(channel)
	if err != nil {
		return respondError(ctx, e.logger, err)
	}
	defer sub.Close()

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	reqCtx := ctx.Request().Context()
	logger := e.logger.With("channel", channel.String())
	logger.DebugContext(reqCtx, "event stream opened")
	defer logger.DebugContext(reqCtx, "event stream closed")

	ticker := time.NewTicker(e.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-reqCtx.Done():
			return nil
		case <-e.done:
			return nil
		case <-ticker.C:
			if _, err = fmt.Fprint(res, ": keep-alive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case env, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err = writeEnvelope(res, env); err != nil {
				logger.WarnContext(reqCtx, "failed to write event", "error", err)
				return nil
			}
			res.Flush()
		}
	}
}

func writeEnvelope(res *echo.Response, env broadcast.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(res, "id: %s\nevent: %s\ndata: %s\n\n",
		strconv.FormatUint(env.SequenceNo, 10), env.EventName, data)
	return err
}

// bearerToken prefers the query token since EventSource cannot set headers.
func bearerToken(r *http.Request, params SubscribeChannelParams) string {
	if params.Token != nil && *params.Token != "" {
		return *params.Token
	}
	if token, ok := strings.CutPrefix(r.Header.Get(echo.HeaderAuthorization), "Bearer "); ok {
		return token
	}
	return ""
}
