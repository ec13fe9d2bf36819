// Package schedulerepo persists DeliverySchedule aggregates.
package schedulerepo

import (
	"time"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/schedule"

	"github.com/google/uuid"
)

// DeliveryScheduleDTO is one row of delivery_schedules.
type DeliveryScheduleDTO struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ShipmentID          uuid.UUID  `gorm:"type:uuid"`
	UserID              *uuid.UUID `gorm:"type:uuid"`
	DriverID            uuid.UUID  `gorm:"type:uuid;index"`
	Date                time.Time  `gorm:"type:date"`
	SlotID              uuid.UUID  `gorm:"type:uuid;index"`
	WindowStart         int
	WindowEnd           int
	Latitude            float64
	Longitude           float64
	RouteOrder          int
	SequenceCurrent     int
	SequenceTotal       int
	Status              int
	EstimatedDurationMs int64
	EstimatedDistanceKm float64
	BookedAt            time.Time
}

func (DeliveryScheduleDTO) TableName() string {
	return "delivery_schedules"
}

func fromDomain(d *schedule.DeliverySchedule) DeliveryScheduleDTO {
	var userID *uuid.UUID
	if id := d.UserID(); id != nil {
		raw := id.Google()
		userID = &raw
	}

	return DeliveryScheduleDTO{
		ID:                  d.ID().Google(),
		ShipmentID:          d.ShipmentID().Google(),
		UserID:              userID,
		DriverID:            d.DriverID().Google(),
		Date:                d.Date().Time(),
		SlotID:              d.SlotID().Google(),
		WindowStart:         int(d.Window().Start()),
		WindowEnd:           int(d.Window().End()),
		Latitude:            d.Destination().Latitude(),
		Longitude:           d.Destination().Longitude(),
		RouteOrder:          int(d.RouteOrder()),
		SequenceCurrent:     int(d.Sequence().Current),
		SequenceTotal:       int(d.Sequence().Total),
		Status:              int(d.Status()),
		EstimatedDurationMs: d.Estimate().Duration.Milliseconds(),
		EstimatedDistanceKm: d.Estimate().Distance,
		BookedAt:            d.BookedAt(),
	}
}

func toDomain(dto DeliveryScheduleDTO) (*schedule.DeliverySchedule, error) {
	var userID *kernel.UUID
	if dto.UserID != nil {
		id := kernel.UUIDFromGoogle(*dto.UserID)
		userID = &id
	}

	window, err := kernel.NewTimeWindow(kernel.TimeOfDay(dto.WindowStart), kernel.TimeOfDay(dto.WindowEnd))
	if err != nil {
		return nil, err
	}

	destination, err := kernel.NewLocation(dto.Latitude, dto.Longitude)
	if err != nil {
		return nil, err
	}

	return schedule.RestoreDeliverySchedule(
		kernel.UUIDFromGoogle(dto.ID),
		kernel.UUIDFromGoogle(dto.ShipmentID),
		userID,
		kernel.UUIDFromGoogle(dto.DriverID),
		kernel.DateOf(dto.Date),
		kernel.UUIDFromGoogle(dto.SlotID),
		window,
		destination,
		uint(max(dto.RouteOrder, 0)),
		schedule.Sequence{Current: uint(max(dto.SequenceCurrent, 0)), Total: uint(max(dto.SequenceTotal, 0))},
		schedule.Status(dto.Status),
		schedule.Estimate{
			Duration: time.Duration(dto.EstimatedDurationMs) * time.Millisecond,
			Distance: dto.EstimatedDistanceKm,
		},
		dto.BookedAt,
	)
}
