package broadcast

import (
	"time"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/route"
	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/core/domain/model/slot"
)

type SlotStatusPayload struct {
	SlotID       string `json:"slotId"`
	DriverID     string `json:"driverId"`
	Date         string `json:"date"`
	Capacity     uint   `json:"capacity"`
	Booked       uint   `json:"booked"`
	Availability string `json:"availability"`
	BlockReason  string `json:"blockReason,omitempty"`
}

// NewSlotStatusEvent goes to the owning driver and to the public availability feed.
func NewSlotStatusEvent(s slot.Snapshot, now func() time.Time) (Event, error) {
	return NewEvent(SlotStatusChanged, SlotStatusPayload{
		SlotID:       s.ID.String(),
		DriverID:     s.DriverID.String(),
		Date:         s.Date.String(),
		Capacity:     s.Capacity,
		Booked:       s.Booked,
		Availability: s.Availability.String(),
		BlockReason:  s.BlockReason,
	}, now(), DriverChannel(s.DriverID), PublicChannel())
}

type RoutePlanPayload struct {
	RoutePlanID        string   `json:"routePlanId"`
	DriverID           string   `json:"driverId"`
	Date               string   `json:"date"`
	OrderedScheduleIDs []string `json:"orderedScheduleIds"`
	TotalDistanceKm    float64  `json:"totalDistance"`
	EstimatedMinutes   float64  `json:"estimatedDuration"`
	OptimizationScore  float64  `json:"optimizationScore"`
	Trigger            string   `json:"trigger"`
	OriginalRouteID    string   `json:"originalRouteId,omitempty"`
}

// NewRoutePlanEvent goes to the driver and to every shipment and user on the route.
func NewRoutePlanEvent(p *route.RoutePlan, stops []*schedule.DeliverySchedule, now func() time.Time) (Event, error) {
	ids := p.OrderedScheduleIDs()
	payload := RoutePlanPayload{
		RoutePlanID:        p.ID().String(),
		DriverID:           p.DriverID().String(),
		Date:               p.Date().String(),
		OrderedScheduleIDs: make([]string, 0, len(ids)),
		TotalDistanceKm:    p.Metrics().TotalDistance,
		EstimatedMinutes:   p.Metrics().EstimatedDuration.Minutes(),
		OptimizationScore:  p.Metrics().Score,
		Trigger:            string(p.Trigger()),
	}
	for _, id := range ids {
		payload.OrderedScheduleIDs = append(payload.OrderedScheduleIDs, id.String())
	}
	if orig := p.OriginalRouteID(); orig != nil {
		payload.OriginalRouteID = orig.String()
	}

	scopes := []ChannelID{DriverChannel(p.DriverID())}
	for _, s := range stops {
		scopes = append(scopes, scheduleScopes(s)[1:]...)
	}
	return NewEvent(RoutePlanUpdated, payload, now(), scopes...)
}

type ScheduleStatusPayload struct {
	ScheduleID string `json:"scheduleId"`
	ShipmentID string `json:"shipmentId"`
	DriverID   string `json:"driverId"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	RouteOrder uint   `json:"routeOrder"`
}

func NewScheduleStatusEvent(s *schedule.DeliverySchedule, now func() time.Time) (Event, error) {
	return NewEvent(DeliveryScheduleStatusChanged, ScheduleStatusPayload{
		ScheduleID: s.ID().String(),
		ShipmentID: s.ShipmentID().String(),
		DriverID:   s.DriverID().String(),
		Date:       s.Date().String(),
		Status:     s.Status().String(),
		RouteOrder: s.RouteOrder(),
	}, now(), scheduleScopes(s)...)
}

type OptimizationWarningPayload struct {
	DriverID string `json:"driverId"`
	Date     string `json:"date"`
	Reason   string `json:"reason"`
}

// NewOptimizationWarningEvent tells the driver the last good plan was kept.
func NewOptimizationWarningEvent(driverID kernel.UUID, date kernel.Date, reason string, now func() time.Time) (Event, error) {
	return NewEvent(RouteOptimizationWarning, OptimizationWarningPayload{
		DriverID: driverID.String(),
		Date:     date.String(),
		Reason:   reason,
	}, now(), DriverChannel(driverID))
}

// scheduleScopes always starts with the driver channel.
func scheduleScopes(s *schedule.DeliverySchedule) []ChannelID {
	scopes := []ChannelID{DriverChannel(s.DriverID()), ShipmentChannel(s.ShipmentID())}
	if u := s.UserID(); u != nil {
		scopes = append(scopes, UserChannel(*u))
	}
	return scopes
}
