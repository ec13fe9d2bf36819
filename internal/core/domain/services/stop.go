package services

import (
	"cmp"
	"slices"
	"time"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/schedule"
)

// Stop is the optimizer's view of one routable schedule.
type Stop struct {
	ScheduleID kernel.UUID
	ShipmentID kernel.UUID
	Location   kernel.Location
	Window     kernel.TimeWindow
	BookedAt   time.Time
}

// StopsFromSchedules keeps routable schedules only.
func StopsFromSchedules(schedules []*schedule.DeliverySchedule) []Stop {
	stops := make([]Stop, 0, len(schedules))
	for _, s := range schedules {
		if !s.IsRoutable() {
			continue
		}
		stops = append(stops, Stop{
			ScheduleID: s.ID(),
			ShipmentID: s.ShipmentID(),
			Location:   s.Destination(),
			Window:     s.Window(),
			BookedAt:   s.BookedAt(),
		})
	}
	return stops
}

// compareRank orders stops as they were booked. Stored route positions are
// optimizer output and never feed back into the ranking.
func compareRank(a, b Stop) int {
	return cmp.Or(a.BookedAt.Compare(b.BookedAt), a.ScheduleID.Compare(b.ScheduleID))
}

// ranked returns a copy sorted by rank. Index positions in the copy are the
// rank used for tie-breaking, so index order is also booking order.
func ranked(stops []Stop) []Stop {
	out := slices.Clone(stops)
	slices.SortStableFunc(out, compareRank)
	return out
}
