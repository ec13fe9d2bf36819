// Package oracle provides in-process DistanceOracle implementations.
package oracle

import (
	"context"
	"fmt"
	"time"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/ports"
	"capacity/internal/pkg/errs"
)

const (
	DefaultSpeedKmh     = 30.0
	DefaultDetourFactor = 1.3

	highwayDetour = 1.1
	highwaySpeed  = 1.3
	trafficDetour = 1.05
	trafficSpeed  = 1.1
)

// Config tunes the great-circle approximation.
type Config struct {
	SpeedKmh     float64
	DetourFactor float64
}

// Haversine estimates road travel as great-circle distance stretched by a
// detour factor and driven at a constant average speed.
type Haversine struct {
	cfg Config
}

func NewHaversine(cfg Config) (*Haversine, error) {
	if cfg.SpeedKmh == 0 {
		cfg.SpeedKmh = DefaultSpeedKmh
	}
	if cfg.DetourFactor == 0 {
		cfg.DetourFactor = DefaultDetourFactor
	}
	if cfg.SpeedKmh < 0 {
		return nil, errs.NewValueIsOutOfRangeError("speed", cfg.SpeedKmh, 0, "+Inf")
	}
	if cfg.DetourFactor < 1 {
		return nil, errs.NewValueIsOutOfRangeError("detour factor", cfg.DetourFactor, 1, "+Inf")
	}
	return &Haversine{cfg: cfg}, nil
}

func (h *Haversine) DistanceDuration(
	_ context.Context,
	from, to kernel.Location,
	options ports.TravelOptions,
) (ports.Leg, error) {
	km, err := from.GreatCircleKm(to)
	if err != nil {
		return ports.Leg{}, fmt.Errorf("%w: %w", ports.ErrOracleUnavailable, err)
	}

	km *= h.cfg.DetourFactor
	speed := h.cfg.SpeedKmh
	if options.PreferHighways {
		km *= highwayDetour
		speed *= highwaySpeed
	}
	if options.AvoidTraffic {
		km *= trafficDetour
		speed *= trafficSpeed
	}

	return ports.Leg{
		DistanceKm: km,
		Duration:   time.Duration(km / speed * float64(time.Hour)),
	}, nil
}
