package ports

import (
	"context"
	"errors"
	"time"

	"capacity/internal/core/domain/model/kernel"
)

// ErrOracleUnavailable is wrapped by every oracle failure.
var ErrOracleUnavailable = errors.New("distance oracle unavailable")

// TravelOptions are forwarded untouched from optimize requests.
type TravelOptions struct {
	AvoidTraffic   bool
	PreferHighways bool
}

// Leg is the travel cost between two points.
type Leg struct {
	DistanceKm float64
	Duration   time.Duration
}

// DistanceOracle estimates travel between two points. It is an opaque
// collaborator: results may come from a mapping provider or an approximation.
type DistanceOracle interface {
	DistanceDuration(ctx context.Context, from, to kernel.Location, options TravelOptions) (Leg, error)
}
