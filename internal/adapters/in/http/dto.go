package http

import (
	"time"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/route"
	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/core/domain/model/slot"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Error is the body of every non-2xx JSON response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Recurrence struct {
	Frequency string              `json:"frequency"`
	Until     *openapi_types.Date `json:"until,omitempty"`
}

type NewSlot struct {
	DriverID   openapi_types.UUID `json:"driverId"`
	Date       openapi_types.Date `json:"date"`
	StartTime  string             `json:"startTime"`
	EndTime    string             `json:"endTime"`
	Label      string             `json:"label"`
	Capacity   int                `json:"capacity"`
	Recurrence *Recurrence        `json:"recurrence,omitempty"`
}

type Slot struct {
	ID           openapi_types.UUID `json:"id"`
	DriverID     openapi_types.UUID `json:"driverId"`
	Date         string             `json:"date"`
	StartTime    string             `json:"startTime"`
	EndTime      string             `json:"endTime"`
	Label        string             `json:"label,omitempty"`
	Capacity     uint               `json:"capacity"`
	Booked       uint               `json:"booked"`
	Availability string             `json:"availability"`
	BlockReason  string             `json:"blockReason,omitempty"`
	Recurrence   *Recurrence        `json:"recurrence,omitempty"`
}

type NewBooking struct {
	ShipmentID  openapi_types.UUID  `json:"shipmentId"`
	UserID      *openapi_types.UUID `json:"userId,omitempty"`
	Destination Location            `json:"destination"`
}

type BlockRequest struct {
	Reason string `json:"reason"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type Sequence struct {
	Current uint `json:"current"`
	Total   uint `json:"total"`
}

type Schedule struct {
	ID                openapi_types.UUID  `json:"id"`
	ShipmentID        openapi_types.UUID  `json:"shipmentId"`
	UserID            *openapi_types.UUID `json:"userId,omitempty"`
	DriverID          openapi_types.UUID  `json:"driverId"`
	Date              string              `json:"date"`
	SlotID            openapi_types.UUID  `json:"slotId"`
	StartTime         string              `json:"startTime"`
	EndTime           string              `json:"endTime"`
	Destination       Location            `json:"destination"`
	RouteOrder        uint                `json:"routeOrder"`
	Sequence          Sequence            `json:"sequence"`
	Status            string              `json:"status"`
	EstimatedDuration float64             `json:"estimatedDuration"`
	EstimatedDistance float64             `json:"estimatedDistance"`
	BookedAt          time.Time           `json:"bookedAt"`
}

type Booking struct {
	Schedule Schedule `json:"schedule"`
	Slot     Slot     `json:"slot"`
}

type OptimizeRequest struct {
	AvoidTraffic     bool `json:"avoidTraffic"`
	MinimizeTime     bool `json:"minimizeTime"`
	MinimizeDistance bool `json:"minimizeDistance"`
	PreferHighways   bool `json:"preferHighways"`
}

type Waypoint struct {
	ScheduleID  openapi_types.UUID `json:"scheduleId"`
	ShipmentID  openapi_types.UUID `json:"shipmentId"`
	Location    Location           `json:"location"`
	ArriveAt    time.Time          `json:"arriveAt"`
	WindowStart time.Time          `json:"windowStart"`
	WindowEnd   time.Time          `json:"windowEnd"`
	OnTime      bool               `json:"onTime"`
	LegDistance float64            `json:"legDistance"`
	LegDuration float64            `json:"legDuration"`
}

type Suggestion struct {
	Strategy          string               `json:"strategy"`
	CandidateOrder    []openapi_types.UUID `json:"candidateOrder"`
	ProjectedDistance float64              `json:"projectedDistance"`
	ProjectedDuration float64              `json:"projectedDuration"`
	EfficiencyScore   float64              `json:"efficiencyScore"`
}

type RoutePlan struct {
	ID                 openapi_types.UUID   `json:"id"`
	DriverID           openapi_types.UUID   `json:"driverId"`
	Date               string               `json:"date"`
	OrderedScheduleIDs []openapi_types.UUID `json:"orderedScheduleIds"`
	Status             string               `json:"status"`
	TotalDistance      float64              `json:"totalDistance"`
	EstimatedDuration  float64              `json:"estimatedDuration"`
	OptimizationScore  float64              `json:"optimizationScore"`
	Waypoints          []Waypoint           `json:"waypoints"`
	Alternatives       []Suggestion         `json:"alternatives"`
	OriginalRouteID    *openapi_types.UUID  `json:"originalRouteId,omitempty"`
	Trigger            string               `json:"trigger"`
	CreatedAt          time.Time            `json:"createdAt"`
}

// Comparison reports durations in minutes and distances in kilometres.
type Comparison struct {
	TimeSaved      float64 `json:"timeSaved"`
	DistanceSaved  float64 `json:"distanceSaved"`
	EfficiencyGain float64 `json:"efficiencyGain"`
}

func toSlot(s slot.Snapshot) Slot {
	out := Slot{
		ID:           s.ID.Google(),
		DriverID:     s.DriverID.Google(),
		Date:         s.Date.String(),
		StartTime:    s.Window.Start().String(),
		EndTime:      s.Window.End().String(),
		Label:        s.Label,
		Capacity:     s.Capacity,
		Booked:       s.Booked,
		Availability: s.Availability.String(),
		BlockReason:  s.BlockReason,
	}
	if r := s.Recurrence; r != nil {
		out.Recurrence = &Recurrence{Frequency: string(r.Frequency())}
		if until := r.Until(); until != nil {
			out.Recurrence.Until = &openapi_types.Date{Time: until.Time()}
		}
	}
	return out
}

func toSchedule(d *schedule.DeliverySchedule) Schedule {
	out := Schedule{
		ID:         d.ID().Google(),
		ShipmentID: d.ShipmentID().Google(),
		DriverID:   d.DriverID().Google(),
		Date:       d.Date().String(),
		SlotID:     d.SlotID().Google(),
		StartTime:  d.Window().Start().String(),
		EndTime:    d.Window().End().String(),
		Destination: Location{
			Latitude:  d.Destination().Latitude(),
			Longitude: d.Destination().Longitude(),
		},
		RouteOrder:        d.RouteOrder(),
		Sequence:          Sequence{Current: d.Sequence().Current, Total: d.Sequence().Total},
		Status:            d.Status().String(),
		EstimatedDuration: d.Estimate().Duration.Minutes(),
		EstimatedDistance: d.Estimate().Distance,
		BookedAt:          d.BookedAt(),
	}
	if u := d.UserID(); u != nil {
		id := u.Google()
		out.UserID = &id
	}
	return out
}

func toRoutePlan(p *route.RoutePlan) RoutePlan {
	out := RoutePlan{
		ID:                 p.ID().Google(),
		DriverID:           p.DriverID().Google(),
		Date:               p.Date().String(),
		OrderedScheduleIDs: toUUIDs(p.OrderedScheduleIDs()),
		Status:             p.Status().String(),
		TotalDistance:      p.Metrics().TotalDistance,
		EstimatedDuration:  p.Metrics().EstimatedDuration.Minutes(),
		OptimizationScore:  p.Metrics().Score,
		Waypoints:          make([]Waypoint, 0, len(p.Waypoints())),
		Alternatives:       toSuggestions(p.Alternatives()),
		Trigger:            string(p.Trigger()),
		CreatedAt:          p.CreatedAt(),
	}
	for _, wp := range p.Waypoints() {
		out.Waypoints = append(out.Waypoints, Waypoint{
			ScheduleID:  wp.ScheduleID.Google(),
			ShipmentID:  wp.ShipmentID.Google(),
			Location:    Location{Latitude: wp.Location.Latitude(), Longitude: wp.Location.Longitude()},
			ArriveAt:    wp.ArriveAt,
			WindowStart: wp.WindowStart,
			WindowEnd:   wp.WindowEnd,
			OnTime:      wp.OnTime,
			LegDistance: wp.LegDistance,
			LegDuration: wp.LegDuration.Minutes(),
		})
	}
	if orig := p.OriginalRouteID(); orig != nil {
		id := orig.Google()
		out.OriginalRouteID = &id
	}
	return out
}

func toSuggestions(in []route.Suggestion) []Suggestion {
	out := make([]Suggestion, 0, len(in))
	for _, s := range in {
		out = append(out, Suggestion{
			Strategy:          string(s.Strategy),
			CandidateOrder:    toUUIDs(s.CandidateOrder),
			ProjectedDistance: s.ProjectedDistance,
			ProjectedDuration: s.ProjectedDuration.Minutes(),
			EfficiencyScore:   s.EfficiencyScore,
		})
	}
	return out
}

func toComparison(c route.Comparison) Comparison {
	return Comparison{
		TimeSaved:      c.TimeSaved.Minutes(),
		DistanceSaved:  c.DistanceSaved,
		EfficiencyGain: c.EfficiencyGain,
	}
}

func toUUIDs(ids []kernel.UUID) []openapi_types.UUID {
	out := make([]openapi_types.UUID, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Google())
	}
	return out
}
