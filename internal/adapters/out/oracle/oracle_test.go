package oracle_test

import (
	"testing"
	"time"

	"capacity/internal/adapters/out/oracle"
	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversine_DistanceDuration(t *testing.T) {
	h, err := oracle.NewHaversine(oracle.Config{SpeedKmh: 60, DetourFactor: 1})
	require.NoError(t, err)

	from := kernel.MustNewLocation(0, 0)
	to := kernel.MustNewLocation(1, 0)

	leg, err := h.DistanceDuration(t.Context(), from, to, ports.TravelOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 111.19, leg.DistanceKm, 0.05)
	assert.InDelta(t, leg.DistanceKm, leg.Duration.Minutes(), 0.01, "60 km/h covers one km per minute")

	highway, err := h.DistanceDuration(t.Context(), from, to, ports.TravelOptions{PreferHighways: true})
	require.NoError(t, err)
	assert.Greater(t, highway.DistanceKm, leg.DistanceKm)
	assert.Less(t, highway.Duration, leg.Duration)

	calm, err := h.DistanceDuration(t.Context(), from, to, ports.TravelOptions{AvoidTraffic: true})
	require.NoError(t, err)
	assert.Greater(t, calm.DistanceKm, leg.DistanceKm)
}

func TestHaversine_Defaults(t *testing.T) {
	h, err := oracle.NewHaversine(oracle.Config{})
	require.NoError(t, err)

	leg, err := h.DistanceDuration(t.Context(), kernel.MustNewLocation(0, 0), kernel.MustNewLocation(0, 0), ports.TravelOptions{})
	require.NoError(t, err)
	assert.Zero(t, leg.DistanceKm)

	_, err = oracle.NewHaversine(oracle.Config{SpeedKmh: 30, DetourFactor: 0.5})
	assert.Error(t, err)
}

func TestHaversine_InvalidLocation(t *testing.T) {
	h, _ := oracle.NewHaversine(oracle.Config{})

	_, err := h.DistanceDuration(t.Context(), kernel.Location{}, kernel.MustNewLocation(0, 0), ports.TravelOptions{})
	assert.ErrorIs(t, err, ports.ErrOracleUnavailable)
}

func TestTable(t *testing.T) {
	a := kernel.MustNewLocation(1, 1)
	b := kernel.MustNewLocation(2, 2)
	table := oracle.NewTable([]oracle.Pair{{From: a, To: b, Km: 4, Minutes: 9}})

	leg, err := table.DistanceDuration(t.Context(), a, b, ports.TravelOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 4, leg.DistanceKm, 0)
	assert.Equal(t, 9*time.Minute, leg.Duration)

	_, err = table.DistanceDuration(t.Context(), b, a, ports.TravelOptions{})
	assert.ErrorIs(t, err, ports.ErrOracleUnavailable)
}
