// Package broadcast delivers domain events to channel subscribers.
//
// The Dispatcher is the producer side: handlers enqueue events and a single
// goroutine drains the queue in order. The Hub is the consumer side: it
// numbers events per channel and hands them to subscriber buffers without
// ever blocking. A full buffer loses that event for that subscriber only,
// which shows up as a gap in its sequence numbers.
package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"capacity/internal/core/domain/model/broadcast"
)

const DefaultSubscriberBuffer = 64

// Subscription receives envelopes for one channel until Close.
type Subscription struct {
	id      uint64
	channel broadcast.ChannelID
	events  chan broadcast.Envelope
	hub     *Hub
	once    sync.Once
}

func (s *Subscription) Channel() broadcast.ChannelID { return s.channel }

// Events is closed once the subscription is closed.
func (s *Subscription) Events() <-chan broadcast.Envelope { return s.events }

func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.unsubscribe(s) })
}

// Hub fans events out to the subscribers of every scope.
type Hub struct {
	logger *slog.Logger
	buffer int

	mu          sync.Mutex
	nextID      uint64
	sequences   map[broadcast.ChannelID]uint64
	subscribers map[broadcast.ChannelID]map[uint64]*Subscription

	dropped atomic.Uint64
}

func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Hub{
		logger:      logger.With("component", "broadcast-hub"),
		buffer:      buffer,
		sequences:   make(map[broadcast.ChannelID]uint64),
		subscribers: make(map[broadcast.ChannelID]map[uint64]*Subscription),
	}
}

func (h *Hub) Subscribe(channel broadcast.ChannelID) (*Subscription, error) {
	if err := channel.Validate(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:      h.nextID,
		channel: channel,
		events:  make(chan broadcast.Envelope, h.buffer),
		hub:     h,
	}
	if h.subscribers[channel] == nil {
		h.subscribers[channel] = make(map[uint64]*Subscription)
	}
	h.subscribers[channel][sub.id] = sub
	return sub, nil
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subscribers[sub.channel]
	if _, ok := subs[sub.id]; !ok {
		return
	}
	delete(subs, sub.id)
	if len(subs) == 0 {
		delete(h.subscribers, sub.channel)
	}
	close(sub.events)
}

// Deliver numbers the event on every subscribed scope and offers it to each
// subscriber. Channels without subscribers are skipped and keep their
// current sequence number.
func (h *Hub) Deliver(ctx context.Context, event broadcast.Event) {
	data, err := json.Marshal(event.Payload)
	if err != nil {
		h.logger.ErrorContext(ctx, "cannot encode event payload", "event", event.Name, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, channel := range event.Scopes {
		subs := h.subscribers[channel]
		if len(subs) == 0 {
			continue
		}
		h.sequences[channel]++
		envelope := broadcast.Envelope{
			EventName:  event.Name,
			Timestamp:  event.Timestamp,
			SequenceNo: h.sequences[channel],
			Channel:    channel,
			Data:       data,
		}
		for _, sub := range subs {
			select {
			case sub.events <- envelope:
			default:
				h.dropped.Add(1)
				h.logger.WarnContext(ctx, "subscriber buffer full, event dropped",
					"channel", channel.String(), "event", event.Name, "sequenceNo", envelope.SequenceNo)
			}
		}
	}
}

// Dropped counts envelopes lost to full subscriber buffers.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Subscribers reports how many subscriptions a channel currently has.
func (h *Hub) Subscribers(channel broadcast.ChannelID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[channel])
}
