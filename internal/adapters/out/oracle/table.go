package oracle

import (
	"context"
	"fmt"
	"time"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/ports"
)

// Pair is one directed entry of a Table.
type Pair struct {
	From, To kernel.Location
	Km       float64
	Minutes  float64
}

// Table answers from a fixed set of directed pairs. Missing pairs fail with
// ports.ErrOracleUnavailable, which makes it useful for exercising outages.
type Table struct {
	legs map[string]ports.Leg
}

func NewTable(pairs []Pair) *Table {
	legs := make(map[string]ports.Leg, len(pairs))
	for _, p := range pairs {
		legs[key(p.From, p.To)] = ports.Leg{
			DistanceKm: p.Km,
			Duration:   time.Duration(p.Minutes * float64(time.Minute)),
		}
	}
	return &Table{legs: legs}
}

func (t *Table) DistanceDuration(
	_ context.Context,
	from, to kernel.Location,
	_ ports.TravelOptions,
) (ports.Leg, error) {
	leg, ok := t.legs[key(from, to)]
	if !ok {
		return ports.Leg{}, fmt.Errorf("%w: missing pair %s -> %s", ports.ErrOracleUnavailable, from, to)
	}
	return leg, nil
}

func key(from, to kernel.Location) string {
	return from.String() + "|" + to.String()
}
