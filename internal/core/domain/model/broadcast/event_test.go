package broadcast_test

import (
	"testing"
	"time"

	"capacity/internal/core/domain/model/broadcast"
	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/route"
	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/core/domain/model/slot"
	"capacity/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time { return time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC) }

func TestNewEvent(t *testing.T) {
	driver := broadcast.DriverChannel(kernel.NewUUID())

	t.Run("deduplicates scopes keeping order", func(t *testing.T) {
		ev, err := broadcast.NewEvent(broadcast.SlotStatusChanged, nil, fixedNow(),
			driver, broadcast.PublicChannel(), driver)
		require.NoError(t, err)
		assert.Equal(t, []broadcast.ChannelID{driver, broadcast.PublicChannel()}, ev.Scopes)
	})

	t.Run("requires scopes", func(t *testing.T) {
		_, err := broadcast.NewEvent(broadcast.SlotStatusChanged, nil, fixedNow())
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("validates every scope", func(t *testing.T) {
		_, err := broadcast.NewEvent(broadcast.SlotStatusChanged, nil, fixedNow(), broadcast.ChannelID{})
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestNewSlotStatusEvent(t *testing.T) {
	window, _ := kernel.NewTimeWindow(540, 660)
	s, err := slot.NewTimeSlot(kernel.NewUUID(), kernel.NewUUID(), kernel.NewDate(2026, 10, 15), window, "AM", 2, nil)
	require.NoError(t, err)
	require.NoError(t, s.Book())

	ev, err := broadcast.NewSlotStatusEvent(s.Snapshot(), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, broadcast.SlotStatusChanged, ev.Name)
	assert.Equal(t, []broadcast.ChannelID{broadcast.DriverChannel(s.DriverID()), broadcast.PublicChannel()}, ev.Scopes)
	payload, ok := ev.Payload.(broadcast.SlotStatusPayload)
	require.True(t, ok)
	assert.Equal(t, "limited", payload.Availability)
	assert.Equal(t, uint(1), payload.Booked)
}

func TestNewRoutePlanEvent_ScopesCoverStops(t *testing.T) {
	driverID := kernel.NewUUID()
	date := kernel.NewDate(2026, 10, 15)
	window, _ := kernel.NewTimeWindow(540, 660)
	user := kernel.NewUUID()

	withUser, err := schedule.NewDeliverySchedule(kernel.NewUUID(), kernel.NewUUID(), &user, driverID, date,
		kernel.NewUUID(), window, kernel.MustNewLocation(1, 1), fixedNow())
	require.NoError(t, err)
	withoutUser, err := schedule.NewDeliverySchedule(kernel.NewUUID(), kernel.NewUUID(), nil, driverID, date,
		kernel.NewUUID(), window, kernel.MustNewLocation(2, 2), fixedNow())
	require.NoError(t, err)

	plan, err := route.NewRoutePlan(kernel.NewUUID(), driverID, date,
		[]kernel.UUID{withUser.ID(), withoutUser.ID()}, route.Metrics{Score: 0.5}, nil, nil,
		route.TriggerBooking, fixedNow())
	require.NoError(t, err)

	ev, err := broadcast.NewRoutePlanEvent(plan, []*schedule.DeliverySchedule{withUser, withoutUser}, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, []broadcast.ChannelID{
		broadcast.DriverChannel(driverID),
		broadcast.ShipmentChannel(withUser.ShipmentID()),
		broadcast.UserChannel(user),
		broadcast.ShipmentChannel(withoutUser.ShipmentID()),
	}, ev.Scopes)
}

func TestNewOptimizationWarningEvent(t *testing.T) {
	driverID := kernel.NewUUID()
	ev, err := broadcast.NewOptimizationWarningEvent(driverID, kernel.NewDate(2026, 10, 15), "oracle down", fixedNow)
	require.NoError(t, err)

	assert.Equal(t, []broadcast.ChannelID{broadcast.DriverChannel(driverID)}, ev.Scopes)
	assert.Equal(t, fixedNow(), ev.Timestamp)
}
