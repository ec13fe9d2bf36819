package services

import (
	"capacity/internal/pkg/errs"
)

// Weights tune the cost function and the efficiency score.
//
//	cost  = Distance·km + Duration·minutes + Lateness·lateMinutes
//	score = Window·onTimeRatio + (1-Window)·clamp01(1 - km/naiveKm)
type Weights struct {
	Distance float64
	Duration float64
	Lateness float64
	Window   float64
}

// DefaultWeights values lateness well above raw travel so windows dominate.
func DefaultWeights() Weights {
	return Weights{Distance: 1, Duration: 0.5, Lateness: 5, Window: 0.5}
}

func (w Weights) Validate() error {
	switch {
	case w.Distance < 0:
		return errs.NewValueIsOutOfRangeError("distance weight", w.Distance, 0, "+Inf")
	case w.Duration < 0:
		return errs.NewValueIsOutOfRangeError("duration weight", w.Duration, 0, "+Inf")
	case w.Lateness < 0:
		return errs.NewValueIsOutOfRangeError("lateness weight", w.Lateness, 0, "+Inf")
	case w.Window < 0 || w.Window > 1:
		return errs.NewValueIsOutOfRangeError("window weight", w.Window, 0, 1)
	}
	return nil
}

// OptimizeParams are the caller's preferences for one optimize request.
type OptimizeParams struct {
	AvoidTraffic     bool
	MinimizeTime     bool
	MinimizeDistance bool
	PreferHighways   bool
}

// shiftFactor scales the preferred term up and the other down.
const shiftFactor = 2.0

// apply shifts the base weights towards the requested objective. Asking for
// both or neither keeps the base weights.
func (p OptimizeParams) apply(w Weights) Weights {
	switch {
	case p.MinimizeTime && !p.MinimizeDistance:
		w.Duration *= shiftFactor
		w.Distance /= shiftFactor
	case p.MinimizeDistance && !p.MinimizeTime:
		w.Distance *= shiftFactor
		w.Duration /= shiftFactor
	}
	return w
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
