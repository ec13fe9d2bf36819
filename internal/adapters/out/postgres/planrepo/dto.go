// Package planrepo persists RoutePlan aggregates. Ordered schedule ids are
// stored as a text array, waypoints and alternatives as JSON documents.
package planrepo

import (
	"time"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/route"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// RoutePlanDTO is one row of route_plans.
type RoutePlanDTO struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey"`
	DriverID            uuid.UUID      `gorm:"type:uuid;index"`
	Date                time.Time      `gorm:"type:date"`
	OrderedScheduleIDs  pq.StringArray `gorm:"type:text[]"`
	Status              int
	TotalDistanceKm     float64
	EstimatedDurationMs int64
	OptimizationScore   float64
	Waypoints           []WaypointDTO   `gorm:"type:jsonb;serializer:json"`
	Alternatives        []SuggestionDTO `gorm:"type:jsonb;serializer:json"`
	OriginalRouteID     *uuid.UUID      `gorm:"type:uuid"`
	Trigger             string
	CreatedAt           time.Time
}

func (RoutePlanDTO) TableName() string {
	return "route_plans"
}

type WaypointDTO struct {
	ScheduleID    string    `json:"scheduleId"`
	ShipmentID    string    `json:"shipmentId"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	ArriveAt      time.Time `json:"arriveAt"`
	WindowStart   time.Time `json:"windowStart"`
	WindowEnd     time.Time `json:"windowEnd"`
	OnTime        bool      `json:"onTime"`
	LegDistanceKm float64   `json:"legDistanceKm"`
	LegDurationMs int64     `json:"legDurationMs"`
}

type SuggestionDTO struct {
	Strategy            string   `json:"strategy"`
	CandidateOrder      []string `json:"candidateOrder"`
	ProjectedDistanceKm float64  `json:"projectedDistanceKm"`
	ProjectedDurationMs int64    `json:"projectedDurationMs"`
	EfficiencyScore     float64  `json:"efficiencyScore"`
}

func fromDomain(p *route.RoutePlan) RoutePlanDTO {
	var originalID *uuid.UUID
	if id := p.OriginalRouteID(); id != nil {
		raw := id.Google()
		originalID = &raw
	}

	waypoints := make([]WaypointDTO, 0, len(p.Waypoints()))
	for _, wp := range p.Waypoints() {
		waypoints = append(waypoints, WaypointDTO{
			ScheduleID:    wp.ScheduleID.String(),
			ShipmentID:    wp.ShipmentID.String(),
			Latitude:      wp.Location.Latitude(),
			Longitude:     wp.Location.Longitude(),
			ArriveAt:      wp.ArriveAt,
			WindowStart:   wp.WindowStart,
			WindowEnd:     wp.WindowEnd,
			OnTime:        wp.OnTime,
			LegDistanceKm: wp.LegDistance,
			LegDurationMs: wp.LegDuration.Milliseconds(),
		})
	}

	alternatives := make([]SuggestionDTO, 0, len(p.Alternatives()))
	for _, s := range p.Alternatives() {
		alternatives = append(alternatives, SuggestionDTO{
			Strategy:            string(s.Strategy),
			CandidateOrder:      idStrings(s.CandidateOrder),
			ProjectedDistanceKm: s.ProjectedDistance,
			ProjectedDurationMs: s.ProjectedDuration.Milliseconds(),
			EfficiencyScore:     s.EfficiencyScore,
		})
	}

	return RoutePlanDTO{
		ID:                  p.ID().Google(),
		DriverID:            p.DriverID().Google(),
		Date:                p.Date().Time(),
		OrderedScheduleIDs:  idStrings(p.OrderedScheduleIDs()),
		Status:              int(p.Status()),
		TotalDistanceKm:     p.Metrics().TotalDistance,
		EstimatedDurationMs: p.Metrics().EstimatedDuration.Milliseconds(),
		OptimizationScore:   p.Metrics().Score,
		Waypoints:           waypoints,
		Alternatives:        alternatives,
		OriginalRouteID:     originalID,
		Trigger:             string(p.Trigger()),
		CreatedAt:           p.CreatedAt(),
	}
}

func toDomain(dto RoutePlanDTO) (*route.RoutePlan, error) {
	order, err := parseIDs(dto.OrderedScheduleIDs)
	if err != nil {
		return nil, err
	}

	waypoints := make([]route.Waypoint, 0, len(dto.Waypoints))
	for _, wp := range dto.Waypoints {
		scheduleID, idErr := kernel.UUIDFromString(wp.ScheduleID)
		if idErr != nil {
			return nil, idErr
		}
		shipmentID, idErr := kernel.UUIDFromString(wp.ShipmentID)
		if idErr != nil {
			return nil, idErr
		}
		loc, locErr := kernel.NewLocation(wp.Latitude, wp.Longitude)
		if locErr != nil {
			return nil, locErr
		}
		waypoints = append(waypoints, route.Waypoint{
			ScheduleID:  scheduleID,
			ShipmentID:  shipmentID,
			Location:    loc,
			ArriveAt:    wp.ArriveAt.UTC(),
			WindowStart: wp.WindowStart.UTC(),
			WindowEnd:   wp.WindowEnd.UTC(),
			OnTime:      wp.OnTime,
			LegDistance: wp.LegDistanceKm,
			LegDuration: time.Duration(wp.LegDurationMs) * time.Millisecond,
		})
	}

	alternatives := make([]route.Suggestion, 0, len(dto.Alternatives))
	for _, s := range dto.Alternatives {
		candidate, idErr := parseIDs(s.CandidateOrder)
		if idErr != nil {
			return nil, idErr
		}
		alternatives = append(alternatives, route.Suggestion{
			Strategy:          route.Strategy(s.Strategy),
			CandidateOrder:    candidate,
			ProjectedDistance: s.ProjectedDistanceKm,
			ProjectedDuration: time.Duration(s.ProjectedDurationMs) * time.Millisecond,
			EfficiencyScore:   s.EfficiencyScore,
		})
	}

	var originalID *kernel.UUID
	if dto.OriginalRouteID != nil {
		id := kernel.UUIDFromGoogle(*dto.OriginalRouteID)
		originalID = &id
	}

	return route.RestoreRoutePlan(
		kernel.UUIDFromGoogle(dto.ID),
		kernel.UUIDFromGoogle(dto.DriverID),
		kernel.DateOf(dto.Date),
		order,
		route.Status(dto.Status),
		route.Metrics{
			TotalDistance:     dto.TotalDistanceKm,
			EstimatedDuration: time.Duration(dto.EstimatedDurationMs) * time.Millisecond,
			Score:             dto.OptimizationScore,
		},
		waypoints,
		alternatives,
		originalID,
		route.Trigger(dto.Trigger),
		dto.CreatedAt,
	)
}

func idStrings(ids []kernel.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func parseIDs(raw []string) ([]kernel.UUID, error) {
	ids := make([]kernel.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := kernel.UUIDFromString(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
