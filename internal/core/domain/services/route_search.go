package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/ports"
)

const costEpsilon = 1e-9

// travelMatrix holds oracle results between every pair of stops. When a
// depot is configured it occupies index n and only outbound legs are known.
type travelMatrix struct {
	km       [][]float64
	minutes  [][]float64
	hasDepot bool
}

func buildMatrix(
	ctx context.Context,
	oracle ports.DistanceOracle,
	stops []Stop,
	depot *kernel.Location,
	options ports.TravelOptions,
) (*travelMatrix, error) {
	n := len(stops)
	points := make([]kernel.Location, 0, n+1)
	for _, s := range stops {
		points = append(points, s.Location)
	}
	if depot != nil {
		points = append(points, *depot)
	}

	m := &travelMatrix{
		km:       make([][]float64, len(points)),
		minutes:  make([][]float64, len(points)),
		hasDepot: depot != nil,
	}
	for i := range points {
		m.km[i] = make([]float64, n)
		m.minutes[i] = make([]float64, n)
		for j := range n {
			if i == j {
				continue
			}
			leg, err := oracle.DistanceDuration(ctx, points[i], points[j], options)
			if err != nil {
				return nil, oracleError(err, points[i], points[j])
			}
			m.km[i][j] = leg.DistanceKm
			m.minutes[i][j] = leg.Duration.Minutes()
		}
	}
	return m, nil
}

func oracleError(err error, from, to kernel.Location) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if !errors.Is(err, ports.ErrOracleUnavailable) {
		err = fmt.Errorf("%w: %w", ports.ErrOracleUnavailable, err)
	}
	return fmt.Errorf("leg %s -> %s: %w", from, to, err)
}

// evaluation is the simulated outcome of driving one ordering.
type evaluation struct {
	order       []int
	km          float64
	elapsed     float64 // minutes from departure to the end of the last service
	lateMinutes float64
	onTime      int
	arrivals    []float64 // minutes after midnight
	legKm       []float64
	legMinutes  []float64
	cost        float64
}

// search carries everything needed to evaluate orderings of one stop set.
// Stops are in rank order, so an index is also the tie-break rank.
type search struct {
	stops          []Stop
	matrix         *travelMatrix
	departure      float64
	serviceMinutes float64
	budget         int
	seed           int
	naiveKm        float64
}

func newSearch(stops []Stop, matrix *travelMatrix, serviceMinutes float64, budget int) *search {
	s := &search{
		stops:          stops,
		matrix:         matrix,
		serviceMinutes: serviceMinutes,
		budget:         budget,
	}

	s.departure = math.Inf(1)
	for i, st := range stops {
		if start := st.Window.Start().Minutes(); start < s.departure {
			s.departure = start
			s.seed = i
		}
	}

	origin := s.seed
	if matrix.hasDepot {
		origin = len(stops)
	}
	for j := range stops {
		s.naiveKm += 2 * matrix.km[origin][j]
	}
	return s
}

func (s *search) evaluate(order []int, w Weights) evaluation {
	e := evaluation{
		order:      order,
		arrivals:   make([]float64, len(order)),
		legKm:      make([]float64, len(order)),
		legMinutes: make([]float64, len(order)),
	}

	t := s.departure
	prev := -1
	if s.matrix.hasDepot {
		prev = len(s.stops)
	}
	for k, i := range order {
		if prev >= 0 {
			e.legKm[k] = s.matrix.km[prev][i]
			e.legMinutes[k] = s.matrix.minutes[prev][i]
		}
		arrive := t + e.legMinutes[k]
		e.arrivals[k] = arrive
		e.km += e.legKm[k]

		window := s.stops[i].Window
		if end := window.End().Minutes(); arrive > end {
			e.lateMinutes += arrive - end
		} else {
			e.onTime++
		}
		t = math.Max(arrive, window.Start().Minutes()) + s.serviceMinutes
		prev = i
	}
	if len(order) > 0 {
		e.elapsed = t - s.departure
	}
	e.cost = w.Distance*e.km + w.Duration*e.elapsed + w.Lateness*e.lateMinutes
	return e
}

func (s *search) score(e evaluation, w Weights) float64 {
	if len(e.order) == 0 {
		return 1
	}
	windowPart := float64(e.onTime) / float64(len(e.order))
	distancePart := 1.0
	if s.naiveKm > 0 {
		distancePart = clamp01(1 - e.km/s.naiveKm)
	}
	return clamp01(w.Window*windowPart + (1-w.Window)*distancePart)
}

// nearestNeighbour builds a greedy tour by weighted leg cost. Equal costs go
// to the lower rank because candidates are scanned in rank order.
func (s *search) nearestNeighbour(w Weights) []int {
	n := len(s.stops)
	order := make([]int, 0, n)
	visited := make([]bool, n)

	current := len(s.stops)
	if !s.matrix.hasDepot {
		current = s.seed
		order = append(order, s.seed)
		visited[s.seed] = true
	}

	for len(order) < n {
		next, best := -1, math.Inf(1)
		for j := range n {
			if visited[j] {
				continue
			}
			c := w.Distance*s.matrix.km[current][j] + w.Duration*s.matrix.minutes[current][j]
			if c < best-costEpsilon {
				next, best = j, c
			}
		}
		order = append(order, next)
		visited[next] = true
		current = next
	}
	return order
}

// improve runs first-improvement local search, alternating a swap pass and a
// 2-opt pass until neither improves, the budget is spent or ctx is done.
func (s *search) improve(ctx context.Context, order []int, w Weights) evaluation {
	best := s.evaluate(order, w)
	budget := s.budget
	n := len(order)

	try := func(candidate []int) bool {
		budget--
		e := s.evaluate(candidate, w)
		if e.cost < best.cost-costEpsilon {
			best = e
			return true
		}
		return false
	}
	exhausted := func() bool {
		return budget <= 0 || ctx.Err() != nil
	}

	for !exhausted() {
		improved := false

	swaps:
		for i := 0; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				if exhausted() {
					return best
				}
				if try(swapped(best.order, i, j)) {
					improved = true
					break swaps
				}
			}
		}

	reversals:
		for i := 0; i < n-2; i++ {
			for j := i + 2; j < n; j++ {
				if exhausted() {
					return best
				}
				if try(reversed(best.order, i, j)) {
					improved = true
					break reversals
				}
			}
		}

		if !improved {
			break
		}
	}
	return best
}

// better orders evaluations by cost and then by rank sequence.
func better(a, b evaluation) bool {
	if a.cost < b.cost-costEpsilon {
		return true
	}
	if b.cost < a.cost-costEpsilon {
		return false
	}
	return slices.Compare(a.order, b.order) < 0
}

func (s *search) bookingOrder() []int {
	return identity(len(s.stops))
}

func (s *search) earliestWindowOrder() []int {
	order := identity(len(s.stops))
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(s.stops[a].Window.Start(), s.stops[b].Window.Start())
	})
	return order
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func swapped(order []int, i, j int) []int {
	out := slices.Clone(order)
	out[i], out[j] = out[j], out[i]
	return out
}

func reversed(order []int, i, j int) []int {
	out := slices.Clone(order)
	slices.Reverse(out[i : j+1])
	return out
}
