// Package redisrelay mirrors broadcast events between service instances
// over Redis pub/sub. Each instance publishes what its own dispatcher
// delivers and re-injects what peers published into its local hub.
package redisrelay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"capacity/internal/core/domain/model/broadcast"

	"github.com/go-redis/redis/v8"
)

const DefaultTopic = "capacity:broadcast"

// Sink is where relayed events end up, normally the local hub.
type Sink interface {
	Deliver(ctx context.Context, event broadcast.Event)
}

type message struct {
	Origin    string                `json:"origin"`
	EventName broadcast.EventName   `json:"eventName"`
	Timestamp time.Time             `json:"timestamp"`
	Scopes    []broadcast.ChannelID `json:"scopes"`
	Data      json.RawMessage       `json:"data"`
}

type Relay struct {
	client     *redis.Client
	topic      string
	instanceID string
	local      Sink
	logger     *slog.Logger
}

// Connect opens a client and checks it with a short ping.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func New(client *redis.Client, instanceID string, local Sink, logger *slog.Logger) (*Relay, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if instanceID == "" {
		return nil, errors.New("instance id is required")
	}
	return &Relay{
		client:     client,
		topic:      DefaultTopic,
		instanceID: instanceID,
		local:      local,
		logger:     logger.With("component", "redis-relay", "instance", instanceID),
	}, nil
}

// WithTopic changes the pub/sub channel. Used to isolate tests.
func (r *Relay) WithTopic(topic string) *Relay {
	r.topic = topic
	return r
}

// Deliver publishes a locally dispatched event for peers. Failures are
// logged; local delivery has already happened through the hub.
func (r *Relay) Deliver(ctx context.Context, event broadcast.Event) {
	data, err := json.Marshal(event.Payload)
	if err != nil {
		r.logger.ErrorContext(ctx, "cannot encode event payload", "event", event.Name, "error", err)
		return
	}
	body, err := json.Marshal(message{
		Origin:    r.instanceID,
		EventName: event.Name,
		Timestamp: event.Timestamp,
		Scopes:    event.Scopes,
		Data:      data,
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "cannot encode relay message", "event", event.Name, "error", err)
		return
	}
	if err = r.client.Publish(ctx, r.topic, body).Err(); err != nil {
		r.logger.WarnContext(ctx, "relay publish failed", "event", event.Name, "error", err)
	}
}

// Run subscribes and forwards peer events to the local sink until ctx is
// done. Its own messages are ignored.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.topic)
	defer func() {
		_ = sub.Close()
	}()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", r.topic, err)
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.forward(ctx, msg.Payload)
		}
	}
}

func (r *Relay) forward(ctx context.Context, payload string) {
	var m message
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		r.logger.WarnContext(ctx, "malformed relay message", "error", err)
		return
	}
	if m.Origin == r.instanceID {
		return
	}
	event, err := broadcast.NewEvent(m.EventName, m.Data, m.Timestamp, m.Scopes...)
	if err != nil {
		r.logger.WarnContext(ctx, "invalid relayed event", "origin", m.Origin, "error", err)
		return
	}
	r.local.Deliver(ctx, event)
}
