package route

import (
	"time"

	"capacity/internal/core/domain/model/kernel"
)

// Waypoint is one stop of a plan as the driver will reach it.
type Waypoint struct {
	ScheduleID  kernel.UUID
	ShipmentID  kernel.UUID
	Location    kernel.Location
	ArriveAt    time.Time
	WindowStart time.Time
	WindowEnd   time.Time
	OnTime      bool
	LegDistance float64 // kilometres from the previous stop or the depot
	LegDuration time.Duration
}

// Strategy names the heuristic that produced a candidate ordering.
type Strategy string

const (
	StrategyOptimized     Strategy = "optimized"
	StrategyBookingOrder  Strategy = "booking_order"
	StrategyEarliestFirst Strategy = "earliest_window_first"
	StrategyDistanceOnly  Strategy = "distance_only"
	StrategyDurationOnly  Strategy = "duration_only"
	StrategyReversed      Strategy = "reversed"
)

// Suggestion is an alternative ordering with projected metrics.
type Suggestion struct {
	Strategy          Strategy
	CandidateOrder    []kernel.UUID
	ProjectedDistance float64
	ProjectedDuration time.Duration
	EfficiencyScore   float64
}

// Metrics summarise a full ordering.
type Metrics struct {
	TotalDistance     float64 // kilometres
	EstimatedDuration time.Duration
	Score             float64
}

// Comparison is candidate relative to base; positive values mean the
// candidate is better.
type Comparison struct {
	TimeSaved      time.Duration
	DistanceSaved  float64
	EfficiencyGain float64
}
