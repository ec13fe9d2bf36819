package ports

import (
	"context"

	"capacity/internal/core/domain/model/broadcast"
)

// EventPublisher hands events to the broadcast pipeline. Publish never blocks
// and never fails the caller; delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, event broadcast.Event)
}

// EventPublisherFunc adapts a function to EventPublisher.
type EventPublisherFunc func(ctx context.Context, event broadcast.Event)

func (f EventPublisherFunc) Publish(ctx context.Context, event broadcast.Event) {
	f(ctx, event)
}
