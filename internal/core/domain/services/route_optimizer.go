package services

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/route"
	"capacity/internal/core/ports"
	"capacity/internal/pkg/errs"
)

const (
	DefaultIterationBudget = 2000
	DefaultSuggestions     = 3
)

// RouteOptimizerConfig is fixed for the lifetime of the optimizer.
type RouteOptimizerConfig struct {
	// Depot is where every route starts. Nil seeds at the earliest window.
	Depot           *kernel.Location
	Weights         Weights
	IterationBudget int
	ServiceTime     time.Duration
	Suggestions     int
}

// RouteOptimizer builds route plans and alternative orderings.
//
//	optimizer, _ := services.NewRouteOptimizer(oracle, services.RouteOptimizerConfig{
//	    Weights: services.DefaultWeights(),
//	})
//	plan, err := optimizer.Optimize(ctx, driverID, date, stops, params, route.TriggerOptimization)
//	if errors.Is(err, ports.ErrOracleUnavailable) {
//	    // keep the previous plan
//	}
type RouteOptimizer struct {
	oracle ports.DistanceOracle
	cfg    RouteOptimizerConfig
	now    func() time.Time
}

func NewRouteOptimizer(oracle ports.DistanceOracle, cfg RouteOptimizerConfig) (*RouteOptimizer, error) {
	if oracle == nil {
		return nil, errs.NewValueIsRequiredError("oracle")
	}
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	if cfg.Depot != nil {
		if err := cfg.Depot.Validate(); err != nil {
			return nil, err
		}
	}
	if cfg.IterationBudget <= 0 {
		cfg.IterationBudget = DefaultIterationBudget
	}
	if cfg.Suggestions <= 0 {
		cfg.Suggestions = DefaultSuggestions
	}
	if cfg.ServiceTime < 0 {
		return nil, errs.NewValueIsOutOfRangeError("service time", cfg.ServiceTime, 0, "+Inf")
	}
	return &RouteOptimizer{oracle: oracle, cfg: cfg, now: time.Now}, nil
}

// WithClock replaces the plan creation clock. Used by tests.
func (o *RouteOptimizer) WithClock(now func() time.Time) *RouteOptimizer {
	o.now = now
	return o
}

// solution is the chosen ordering plus the ranked alternatives.
type solution struct {
	search      *search
	best        evaluation
	suggestions []candidate
	weights     Weights
}

type candidate struct {
	strategy route.Strategy
	eval     evaluation
	score    float64
}

// Optimize computes a Planned route plan for the stops. Every oracle failure
// is reported as ports.ErrOracleUnavailable.
func (o *RouteOptimizer) Optimize(
	ctx context.Context,
	driverID kernel.UUID,
	date kernel.Date,
	stops []Stop,
	params OptimizeParams,
	trigger route.Trigger,
) (*route.RoutePlan, error) {
	if err := errors.Join(driverID.Validate(), date.Validate(), trigger.Validate()); err != nil {
		return nil, err
	}

	sol, err := o.solve(ctx, stops, params)
	if err != nil {
		return nil, err
	}

	stopsByRank := sol.search.stops
	order := make([]kernel.UUID, 0, len(sol.best.order))
	waypoints := make([]route.Waypoint, 0, len(sol.best.order))
	for k, i := range sol.best.order {
		st := stopsByRank[i]
		order = append(order, st.ScheduleID)
		waypoints = append(waypoints, route.Waypoint{
			ScheduleID:  st.ScheduleID,
			ShipmentID:  st.ShipmentID,
			Location:    st.Location,
			ArriveAt:    date.At(sol.best.arrivals[k]),
			WindowStart: date.At(st.Window.Start().Minutes()),
			WindowEnd:   date.At(st.Window.End().Minutes()),
			OnTime:      sol.best.arrivals[k] <= st.Window.End().Minutes(),
			LegDistance: sol.best.legKm[k],
			LegDuration: minutes(sol.best.legMinutes[k]),
		})
	}

	alternatives := make([]route.Suggestion, 0, len(sol.suggestions))
	for _, c := range sol.suggestions {
		if slices.Equal(c.eval.order, sol.best.order) {
			continue
		}
		alternatives = append(alternatives, o.toSuggestion(sol.search, c))
	}

	metrics := route.Metrics{
		TotalDistance:     sol.best.km,
		EstimatedDuration: minutes(sol.best.elapsed),
		Score:             sol.search.score(sol.best, sol.weights),
	}
	return route.NewRoutePlan(kernel.NewUUID(), driverID, date, order, metrics, waypoints, alternatives,
		trigger, o.now())
}

// Suggest returns up to the configured number of distinct orderings ranked
// by efficiency score, then distance, then rank sequence.
func (o *RouteOptimizer) Suggest(ctx context.Context, stops []Stop, params OptimizeParams) ([]route.Suggestion, error) {
	sol, err := o.solve(ctx, stops, params)
	if err != nil {
		return nil, err
	}
	out := make([]route.Suggestion, 0, len(sol.suggestions))
	for _, c := range sol.suggestions {
		out = append(out, o.toSuggestion(sol.search, c))
	}
	return out, nil
}

// Compare reports candidate relative to base. Positive values favour the
// candidate. Both plans must order the same schedules.
func (o *RouteOptimizer) Compare(base, candidate *route.RoutePlan) (route.Comparison, error) {
	return ComparePlans(base, candidate)
}

// ComparePlans is Compare without an optimizer instance.
func ComparePlans(base, candidate *route.RoutePlan) (route.Comparison, error) {
	if err := errors.Join(base.Validate(), candidate.Validate()); err != nil {
		return route.Comparison{}, err
	}
	if !base.CoversSameSchedules(candidate) {
		return route.Comparison{}, route.ErrIncomparablePlans
	}
	b, c := base.Metrics(), candidate.Metrics()
	return route.Comparison{
		TimeSaved:      b.EstimatedDuration - c.EstimatedDuration,
		DistanceSaved:  b.TotalDistance - c.TotalDistance,
		EfficiencyGain: c.Score - b.Score,
	}, nil
}

func (o *RouteOptimizer) solve(ctx context.Context, stops []Stop, params OptimizeParams) (*solution, error) {
	if err := validateStops(stops); err != nil {
		return nil, err
	}

	rankedStops := ranked(stops)
	matrix, err := buildMatrix(ctx, o.oracle, rankedStops, o.cfg.Depot, ports.TravelOptions{
		AvoidTraffic:   params.AvoidTraffic,
		PreferHighways: params.PreferHighways,
	})
	if err != nil {
		return nil, err
	}

	weights := params.apply(o.cfg.Weights)
	s := newSearch(rankedStops, matrix, o.cfg.ServiceTime.Minutes(), o.cfg.IterationBudget)
	if len(rankedStops) == 0 {
		return &solution{search: s, best: s.evaluate(nil, weights), weights: weights}, nil
	}

	optimized := s.improve(ctx, s.nearestNeighbour(weights), weights)
	naive := s.evaluate(s.bookingOrder(), weights)
	best := optimized
	if better(naive, optimized) {
		best = naive
	}

	distanceOnly := Weights{Distance: 1}
	durationOnly := Weights{Duration: 1}
	strategies := []struct {
		name  route.Strategy
		order []int
	}{
		{route.StrategyOptimized, best.order},
		{route.StrategyBookingOrder, naive.order},
		{route.StrategyEarliestFirst, s.earliestWindowOrder()},
		{route.StrategyDistanceOnly, s.improve(ctx, s.nearestNeighbour(distanceOnly), distanceOnly).order},
		{route.StrategyDurationOnly, s.improve(ctx, s.nearestNeighbour(durationOnly), durationOnly).order},
		{route.StrategyReversed, reversed(best.order, 0, len(best.order)-1)},
	}

	candidates := make([]candidate, 0, len(strategies))
	for _, st := range strategies {
		if slices.ContainsFunc(candidates, func(c candidate) bool { return slices.Equal(c.eval.order, st.order) }) {
			continue
		}
		e := s.evaluate(st.order, weights)
		candidates = append(candidates, candidate{strategy: st.name, eval: e, score: s.score(e, weights)})
	}
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Or(
			cmp.Compare(b.score, a.score),
			cmp.Compare(a.eval.km, b.eval.km),
			slices.Compare(a.eval.order, b.eval.order),
		)
	})
	if len(candidates) > o.cfg.Suggestions {
		candidates = candidates[:o.cfg.Suggestions]
	}

	return &solution{search: s, best: best, suggestions: candidates, weights: weights}, nil
}

func (o *RouteOptimizer) toSuggestion(s *search, c candidate) route.Suggestion {
	order := make([]kernel.UUID, 0, len(c.eval.order))
	for _, i := range c.eval.order {
		order = append(order, s.stops[i].ScheduleID)
	}
	return route.Suggestion{
		Strategy:          c.strategy,
		CandidateOrder:    order,
		ProjectedDistance: c.eval.km,
		ProjectedDuration: minutes(c.eval.elapsed),
		EfficiencyScore:   c.score,
	}
}

func validateStops(stops []Stop) error {
	seen := make(map[kernel.UUID]struct{}, len(stops))
	for _, s := range stops {
		if err := errors.Join(s.ScheduleID.Validate(), s.Location.Validate(), s.Window.Validate()); err != nil {
			return err
		}
		if _, dup := seen[s.ScheduleID]; dup {
			return errs.NewValueIsInvalidErrorWithCause("stops", errors.New("duplicate schedule "+s.ScheduleID.String()))
		}
		seen[s.ScheduleID] = struct{}{}
	}
	return nil
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}
