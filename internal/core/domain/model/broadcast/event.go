package broadcast

import (
	"encoding/json"
	"errors"
	"time"

	"capacity/internal/pkg/errs"
)

// EventName identifies the shape of Event.Payload.
type EventName string

const (
	SlotStatusChanged             EventName = "slot.status_changed"
	RoutePlanUpdated              EventName = "route.plan_updated"
	DeliveryScheduleStatusChanged EventName = "delivery.schedule_status_changed"
	RouteOptimizationWarning      EventName = "route.optimization_warning"
)

// Event is what producers hand to the dispatcher. It carries no sequence
// number; numbering is per channel and happens on delivery.
type Event struct {
	Name      EventName
	Scopes    []ChannelID
	Payload   any
	Timestamp time.Time
}

// NewEvent validates every scope before the event can be queued.
func NewEvent(name EventName, payload any, at time.Time, scopes ...ChannelID) (Event, error) {
	if name == "" {
		return Event{}, errs.NewValueIsRequiredError("eventName")
	}
	if len(scopes) == 0 {
		return Event{}, errs.NewValueIsRequiredError("channelScopes")
	}
	var verr error
	for _, s := range scopes {
		verr = errors.Join(verr, s.Validate())
	}
	if verr != nil {
		return Event{}, verr
	}
	return Event{Name: name, Scopes: dedupe(scopes), Payload: payload, Timestamp: at.UTC()}, nil
}

func dedupe(scopes []ChannelID) []ChannelID {
	out := make([]ChannelID, 0, len(scopes))
	seen := make(map[ChannelID]struct{}, len(scopes))
	for _, s := range scopes {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Envelope is the per-channel wire form delivered to one subscriber.
type Envelope struct {
	EventName  EventName       `json:"eventName"`
	Timestamp  time.Time       `json:"timestamp"`
	SequenceNo uint64          `json:"sequenceNo"`
	Channel    ChannelID       `json:"channel"`
	Data       json.RawMessage `json:"data"`
}
