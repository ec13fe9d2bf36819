package services_test

import (
	"context"
	"testing"
	"time"

	"capacity/internal/adapters/out/oracle"
	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/route"
	"capacity/internal/core/domain/services"
	"capacity/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	driverID = kernel.NewUUID()
	day      = kernel.NewDate(2026, 10, 15)
	clock    = func() time.Time { return time.Date(2026, 10, 15, 6, 0, 0, 0, time.UTC) }

	depot = kernel.MustNewLocation(52.50, 13.40)
	stopA = kernel.MustNewLocation(52.51, 13.40)
	stopB = kernel.MustNewLocation(52.52, 13.40)
)

func window(t *testing.T, from, to string) kernel.TimeWindow {
	t.Helper()
	start, err := kernel.ParseTimeOfDay(from)
	require.NoError(t, err)
	end, err := kernel.ParseTimeOfDay(to)
	require.NoError(t, err)
	w, err := kernel.NewTimeWindow(start, end)
	require.NoError(t, err)
	return w
}

func stop(t *testing.T, loc kernel.Location, w kernel.TimeWindow, bookedMinute int) services.Stop {
	t.Helper()
	return services.Stop{
		ScheduleID: kernel.NewUUID(),
		ShipmentID: kernel.NewUUID(),
		Location:   loc,
		Window:     w,
		BookedAt:   time.Date(2026, 10, 14, 9, bookedMinute, 0, 0, time.UTC),
	}
}

// twoStopTable costs 10 km for depot→A→B and 12 km for depot→B→A.
func twoStopTable() *oracle.Table {
	return oracle.NewTable([]oracle.Pair{
		{From: depot, To: stopA, Km: 5, Minutes: 10},
		{From: depot, To: stopB, Km: 6, Minutes: 12},
		{From: stopA, To: stopB, Km: 5, Minutes: 10},
		{From: stopB, To: stopA, Km: 6, Minutes: 12},
	})
}

func newOptimizer(t *testing.T, o ports.DistanceOracle, cfg services.RouteOptimizerConfig) *services.RouteOptimizer {
	t.Helper()
	opt, err := services.NewRouteOptimizer(o, cfg)
	require.NoError(t, err)
	return opt.WithClock(clock)
}

func TestRouteOptimizer_ChoosesCheaperOrdering(t *testing.T) {
	opt := newOptimizer(t, twoStopTable(), services.RouteOptimizerConfig{
		Depot:   &depot,
		Weights: services.Weights{Distance: 1, Window: 0.5},
	})
	wide := window(t, "08:00", "18:00")
	b := stop(t, stopB, wide, 0)
	a := stop(t, stopA, wide, 1)

	plan, err := opt.Optimize(t.Context(), driverID, day, []services.Stop{b, a}, services.OptimizeParams{}, route.TriggerOptimization)
	require.NoError(t, err)

	assert.Equal(t, []kernel.UUID{a.ScheduleID, b.ScheduleID}, plan.OrderedScheduleIDs())
	assert.InDelta(t, 10, plan.Metrics().TotalDistance, 1e-9)
	// all on time, star distance 2·5 + 2·6 = 22
	assert.InDelta(t, 0.5+0.5*(1-10.0/22.0), plan.Metrics().Score, 1e-9)
	assert.Equal(t, route.Planned, plan.Status())
	assert.Equal(t, clock(), plan.CreatedAt())

	waypoints := plan.Waypoints()
	require.Len(t, waypoints, 2)
	assert.Equal(t, time.Date(2026, 10, 15, 8, 10, 0, 0, time.UTC), waypoints[0].ArriveAt)
	assert.Equal(t, time.Date(2026, 10, 15, 8, 20, 0, 0, time.UTC), waypoints[1].ArriveAt)
	assert.InDelta(t, 5, waypoints[1].LegDistance, 1e-9)
	assert.True(t, waypoints[1].OnTime)
}

func TestRouteOptimizer_WindowAdherenceOutweighsDistance(t *testing.T) {
	opt := newOptimizer(t, twoStopTable(), services.RouteOptimizerConfig{
		Depot:   &depot,
		Weights: services.Weights{Distance: 1, Lateness: 5, Window: 0.5},
	})
	a := stop(t, stopA, window(t, "08:00", "18:00"), 0)
	b := stop(t, stopB, window(t, "08:00", "08:15"), 1)

	plan, err := opt.Optimize(t.Context(), driverID, day, []services.Stop{a, b}, services.OptimizeParams{}, route.TriggerOptimization)
	require.NoError(t, err)

	// A then B reaches B at 08:20, five minutes late; B then A is on time.
	assert.Equal(t, []kernel.UUID{b.ScheduleID, a.ScheduleID}, plan.OrderedScheduleIDs())
	assert.InDelta(t, 12, plan.Metrics().TotalDistance, 1e-9)
	assert.InDelta(t, 0.5+0.5*(1-12.0/22.0), plan.Metrics().Score, 1e-9)

	distanceFirst := newOptimizer(t, twoStopTable(), services.RouteOptimizerConfig{
		Depot:   &depot,
		Weights: services.Weights{Distance: 1, Window: 0.5},
	})
	late, err := distanceFirst.Optimize(t.Context(), driverID, day, []services.Stop{a, b}, services.OptimizeParams{}, route.TriggerOptimization)
	require.NoError(t, err)
	assert.Equal(t, []kernel.UUID{a.ScheduleID, b.ScheduleID}, late.OrderedScheduleIDs())
	assert.InDelta(t, 0.5*0.5+0.5*(1-10.0/22.0), late.Metrics().Score, 1e-9)
}

func TestRouteOptimizer_Deterministic(t *testing.T) {
	h, err := oracle.NewHaversine(oracle.Config{})
	require.NoError(t, err)
	opt := newOptimizer(t, h, services.RouteOptimizerConfig{Depot: &depot, Weights: services.DefaultWeights(), ServiceTime: 5 * time.Minute})

	stops := make([]services.Stop, 0, 8)
	for i := range 8 {
		loc := kernel.MustNewLocation(52.48+float64(i%3)*0.02, 13.35+float64(i)*0.013)
		stops = append(stops, stop(t, loc, window(t, "08:00", "12:00"), i))
	}

	first, err := opt.Optimize(t.Context(), driverID, day, stops, services.OptimizeParams{}, route.TriggerBooking)
	require.NoError(t, err)
	second, err := opt.Optimize(t.Context(), driverID, day, stops, services.OptimizeParams{}, route.TriggerBooking)
	require.NoError(t, err)

	assert.Equal(t, first.OrderedScheduleIDs(), second.OrderedScheduleIDs())
	assert.InDelta(t, first.Metrics().Score, second.Metrics().Score, 0)
	assert.Equal(t, first.Metrics(), second.Metrics())
	assert.Len(t, first.OrderedScheduleIDs(), len(stops))
}

func TestRouteOptimizer_TiesResolveToBookingOrder(t *testing.T) {
	same := kernel.MustNewLocation(52.5, 13.4)
	h, _ := oracle.NewHaversine(oracle.Config{})
	opt := newOptimizer(t, h, services.RouteOptimizerConfig{Weights: services.DefaultWeights()})
	w := window(t, "09:00", "17:00")

	early := stop(t, same, w, 5)
	middle := stop(t, same, w, 20)
	late := stop(t, same, w, 30)

	plan, err := opt.Optimize(t.Context(), driverID, day, []services.Stop{late, early, middle}, services.OptimizeParams{}, route.TriggerBooking)
	require.NoError(t, err)

	assert.Equal(t, []kernel.UUID{early.ScheduleID, middle.ScheduleID, late.ScheduleID}, plan.OrderedScheduleIDs())
}

func TestRouteOptimizer_InputOrderDoesNotMatter(t *testing.T) {
	h, err := oracle.NewHaversine(oracle.Config{})
	require.NoError(t, err)
	opt := newOptimizer(t, h, services.RouteOptimizerConfig{Weights: services.DefaultWeights(), ServiceTime: 5 * time.Minute})

	w := window(t, "09:00", "12:00")
	stops := []services.Stop{
		stop(t, kernel.MustNewLocation(52.51, 13.38), w, 0),
		stop(t, kernel.MustNewLocation(52.49, 13.42), w, 0),
		stop(t, kernel.MustNewLocation(52.53, 13.41), w, 0),
		stop(t, kernel.MustNewLocation(52.50, 13.36), w, 0),
	}

	first, err := opt.Optimize(t.Context(), driverID, day, stops, services.OptimizeParams{}, route.TriggerBooking)
	require.NoError(t, err)

	shuffled := []services.Stop{stops[2], stops[0], stops[3], stops[1]}
	second, err := opt.Optimize(t.Context(), driverID, day, shuffled, services.OptimizeParams{}, route.TriggerBooking)
	require.NoError(t, err)

	assert.Equal(t, first.OrderedScheduleIDs(), second.OrderedScheduleIDs())
	assert.Equal(t, first.Metrics(), second.Metrics())
}

func TestRouteOptimizer_SeedsAtEarliestWindowWithoutDepot(t *testing.T) {
	h, _ := oracle.NewHaversine(oracle.Config{})
	opt := newOptimizer(t, h, services.RouteOptimizerConfig{Weights: services.Weights{Distance: 1, Lateness: 10, Window: 0.5}})

	first := stop(t, stopB, window(t, "07:00", "07:30"), 9)
	other := stop(t, stopA, window(t, "10:00", "12:00"), 1)

	plan, err := opt.Optimize(t.Context(), driverID, day, []services.Stop{other, first}, services.OptimizeParams{}, route.TriggerBooking)
	require.NoError(t, err)

	assert.Equal(t, first.ScheduleID, plan.OrderedScheduleIDs()[0])
	wp := plan.Waypoints()
	assert.Zero(t, wp[0].LegDistance)
	assert.Equal(t, time.Date(2026, 10, 15, 7, 0, 0, 0, time.UTC), wp[0].ArriveAt)
}

func TestRouteOptimizer_NoStops(t *testing.T) {
	opt := newOptimizer(t, oracle.NewTable(nil), services.RouteOptimizerConfig{Depot: &depot, Weights: services.DefaultWeights()})

	plan, err := opt.Optimize(t.Context(), driverID, day, nil, services.OptimizeParams{}, route.TriggerBooking)
	require.NoError(t, err)

	assert.Empty(t, plan.OrderedScheduleIDs())
	assert.InDelta(t, 1, plan.Metrics().Score, 0)
	assert.Zero(t, plan.Metrics().TotalDistance)
}

func TestRouteOptimizer_OracleUnavailable(t *testing.T) {
	opt := newOptimizer(t, oracle.NewTable(nil), services.RouteOptimizerConfig{Depot: &depot, Weights: services.DefaultWeights()})
	w := window(t, "08:00", "18:00")

	_, err := opt.Optimize(t.Context(), driverID, day, []services.Stop{stop(t, stopA, w, 0)}, services.OptimizeParams{}, route.TriggerBooking)
	require.ErrorIs(t, err, ports.ErrOracleUnavailable)

	_, err = opt.Suggest(t.Context(), []services.Stop{stop(t, stopA, w, 0)}, services.OptimizeParams{})
	require.ErrorIs(t, err, ports.ErrOracleUnavailable)
}

func TestRouteOptimizer_CancelledContextReturnsBestSoFar(t *testing.T) {
	h, _ := oracle.NewHaversine(oracle.Config{})
	opt := newOptimizer(t, h, services.RouteOptimizerConfig{Depot: &depot, Weights: services.DefaultWeights()})
	w := window(t, "08:00", "18:00")
	stops := []services.Stop{stop(t, stopA, w, 0), stop(t, stopB, w, 1), stop(t, depot, w, 2)}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	plan, err := opt.Optimize(ctx, driverID, day, stops, services.OptimizeParams{}, route.TriggerBooking)
	require.NoError(t, err)
	assert.Len(t, plan.OrderedScheduleIDs(), 3)
}

func TestRouteOptimizer_RejectsDuplicateStops(t *testing.T) {
	opt := newOptimizer(t, twoStopTable(), services.RouteOptimizerConfig{Depot: &depot, Weights: services.DefaultWeights()})
	s := stop(t, stopA, window(t, "08:00", "18:00"), 0)

	_, err := opt.Optimize(t.Context(), driverID, day, []services.Stop{s, s}, services.OptimizeParams{}, route.TriggerBooking)
	assert.Error(t, err)
}

func TestRouteOptimizer_Suggest(t *testing.T) {
	h, _ := oracle.NewHaversine(oracle.Config{})
	opt := newOptimizer(t, h, services.RouteOptimizerConfig{Depot: &depot, Weights: services.DefaultWeights(), Suggestions: 4})

	stops := []services.Stop{
		stop(t, kernel.MustNewLocation(52.53, 13.41), window(t, "09:00", "10:00"), 0),
		stop(t, kernel.MustNewLocation(52.49, 13.38), window(t, "08:00", "09:00"), 1),
		stop(t, kernel.MustNewLocation(52.51, 13.45), window(t, "11:00", "12:00"), 2),
		stop(t, kernel.MustNewLocation(52.47, 13.43), window(t, "08:30", "16:00"), 3),
	}

	suggestions, err := opt.Suggest(t.Context(), stops, services.OptimizeParams{})
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)
	assert.LessOrEqual(t, len(suggestions), 4)

	ids := make([]kernel.UUID, 0, len(stops))
	for _, s := range stops {
		ids = append(ids, s.ScheduleID)
	}
	seen := map[string]bool{}
	for i, s := range suggestions {
		assert.True(t, route.SameScheduleSet(ids, s.CandidateOrder))
		assert.GreaterOrEqual(t, s.EfficiencyScore, 0.0)
		assert.LessOrEqual(t, s.EfficiencyScore, 1.0)
		assert.NotEmpty(t, s.Strategy)

		key := ""
		for _, id := range s.CandidateOrder {
			key += id.String()
		}
		assert.False(t, seen[key], "suggestions must be distinct")
		seen[key] = true

		if i > 0 {
			assert.GreaterOrEqual(t, suggestions[i-1].EfficiencyScore, s.EfficiencyScore)
		}
	}
}

func TestRouteOptimizer_MinimizeParamsShiftWeights(t *testing.T) {
	// Short but slow versus long but fast: A is 2 km / 30 min, B is 6 km / 6 min from the depot.
	table := oracle.NewTable([]oracle.Pair{
		{From: depot, To: stopA, Km: 2, Minutes: 30},
		{From: depot, To: stopB, Km: 6, Minutes: 6},
		{From: stopA, To: stopB, Km: 6, Minutes: 6},
		{From: stopB, To: stopA, Km: 2, Minutes: 30},
	})
	opt := newOptimizer(t, table, services.RouteOptimizerConfig{
		Depot:   &depot,
		Weights: services.Weights{Distance: 1, Duration: 1, Window: 0.5},
	})
	w := window(t, "08:00", "18:00")
	a := stop(t, stopA, w, 0)
	b := stop(t, stopB, w, 1)

	for _, params := range []services.OptimizeParams{{MinimizeTime: true}, {MinimizeDistance: true}} {
		plan, err := opt.Optimize(t.Context(), driverID, day, []services.Stop{a, b}, params, route.TriggerOptimization)
		require.NoError(t, err)
		assert.Len(t, plan.OrderedScheduleIDs(), 2)
	}
}

func TestComparePlans(t *testing.T) {
	a, b, c := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()
	newPlan := func(order []kernel.UUID, m route.Metrics) *route.RoutePlan {
		p, err := route.NewRoutePlan(kernel.NewUUID(), driverID, day, order, m, nil, nil, route.TriggerOptimization, clock())
		require.NoError(t, err)
		return p
	}

	base := newPlan([]kernel.UUID{a, b}, route.Metrics{TotalDistance: 12, EstimatedDuration: 40 * time.Minute, Score: 0.6})
	better := newPlan([]kernel.UUID{b, a}, route.Metrics{TotalDistance: 10, EstimatedDuration: 30 * time.Minute, Score: 0.8})

	cmp, err := services.ComparePlans(base, better)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cmp.TimeSaved)
	assert.InDelta(t, 2, cmp.DistanceSaved, 1e-9)
	assert.InDelta(t, 0.2, cmp.EfficiencyGain, 1e-9)

	reverse, err := services.ComparePlans(better, base)
	require.NoError(t, err)
	assert.Equal(t, -10*time.Minute, reverse.TimeSaved)

	other := newPlan([]kernel.UUID{a, c}, route.Metrics{})
	_, err = services.ComparePlans(base, other)
	require.ErrorIs(t, err, route.ErrIncomparablePlans)
}
