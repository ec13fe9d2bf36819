package broadcast

import (
	"context"
	"log/slog"
	"sync"

	"capacity/internal/core/domain/model/broadcast"
)

const DefaultQueueSize = 1024

// Sink receives dispatched events in publish order. The hub is one sink;
// a cross-instance relay can be another.
type Sink interface {
	Deliver(ctx context.Context, event broadcast.Event)
}

type queued struct {
	ctx   context.Context
	event broadcast.Event
}

// Dispatcher implements ports.EventPublisher with a bounded FIFO queue and
// a single consumer goroutine.
type Dispatcher struct {
	logger *slog.Logger
	sinks  []Sink
	queue  chan queued

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(size int, logger *slog.Logger, sinks ...Sink) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Dispatcher{
		logger: logger.With("component", "broadcast-dispatcher"),
		sinks:  sinks,
		queue:  make(chan queued, size),
		done:   make(chan struct{}),
	}
}

// Publish never blocks. A full or closed queue drops the event with a log line.
func (d *Dispatcher) Publish(ctx context.Context, event broadcast.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.WarnContext(ctx, "dispatcher closed, event dropped", "event", event.Name)
		return
	}
	select {
	case d.queue <- queued{ctx: context.WithoutCancel(ctx), event: event}:
	default:
		d.logger.WarnContext(ctx, "broadcast queue full, event dropped", "event", event.Name)
	}
}

// Run drains the queue until Close. It must be started exactly once.
func (d *Dispatcher) Run() {
	defer close(d.done)
	for item := range d.queue {
		for _, sink := range d.sinks {
			sink.Deliver(item.ctx, item.event)
		}
	}
}

// Close stops accepting events, delivers what is already queued and waits
// for Run to return. Run must have been started.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}
