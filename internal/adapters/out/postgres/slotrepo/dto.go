// Package slotrepo persists TimeSlot aggregates and streams availability
// snapshots out of the time_slots table.
package slotrepo

import (
	"time"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/slot"

	"github.com/google/uuid"
)

// TimeSlotDTO is one row of time_slots. Availability is never stored; it is
// derived from booked, capacity and blocked.
type TimeSlotDTO struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	DriverID            uuid.UUID `gorm:"type:uuid;index"`
	Date                time.Time `gorm:"type:date"`
	WindowStart         int
	WindowEnd           int
	Label               string
	Capacity            int
	Booked              int
	Blocked             bool
	BlockReason         string
	RecurrenceFrequency *string
	RecurrenceUntil     *time.Time `gorm:"type:date"`
	Version             int64
}

func (TimeSlotDTO) TableName() string {
	return "time_slots"
}

func fromDomain(s *slot.TimeSlot) TimeSlotDTO {
	dto := TimeSlotDTO{
		ID:          s.ID().Google(),
		DriverID:    s.DriverID().Google(),
		Date:        s.Date().Time(),
		WindowStart: int(s.Window().Start()),
		WindowEnd:   int(s.Window().End()),
		Label:       s.Label(),
		Capacity:    int(s.Capacity()),
		Booked:      int(s.Booked()),
		Blocked:     s.IsBlocked(),
		BlockReason: s.BlockReason(),
		Version:     s.Version(),
	}
	if r := s.Recurrence(); r != nil {
		freq := string(r.Frequency())
		dto.RecurrenceFrequency = &freq
		if until := r.Until(); until != nil {
			t := until.Time()
			dto.RecurrenceUntil = &t
		}
	}
	return dto
}

func toDomain(dto TimeSlotDTO) (*slot.TimeSlot, error) {
	window, err := kernel.NewTimeWindow(kernel.TimeOfDay(dto.WindowStart), kernel.TimeOfDay(dto.WindowEnd))
	if err != nil {
		return nil, err
	}

	var recurrence *slot.Recurrence
	if dto.RecurrenceFrequency != nil {
		var until *kernel.Date
		if dto.RecurrenceUntil != nil {
			d := kernel.DateOf(*dto.RecurrenceUntil)
			until = &d
		}
		r, recErr := slot.NewRecurrence(slot.Frequency(*dto.RecurrenceFrequency), until)
		if recErr != nil {
			return nil, recErr
		}
		recurrence = &r
	}

	return slot.RestoreTimeSlot(
		kernel.UUIDFromGoogle(dto.ID),
		kernel.UUIDFromGoogle(dto.DriverID),
		kernel.DateOf(dto.Date),
		window,
		dto.Label,
		uint(max(dto.Capacity, 0)),
		uint(max(dto.Booked, 0)),
		dto.Blocked,
		dto.BlockReason,
		recurrence,
		dto.Version,
	)
}
