package slotrepo

import (
	"context"
	"iter"

	"capacity/internal/core/domain/model/slot"
	"capacity/internal/core/ports"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// availabilityExpr mirrors slot.AvailabilityOf so the filter runs in the database.
const availabilityExpr = `CASE
	WHEN blocked THEN 'blocked'
	WHEN booked >= capacity THEN 'full'
	WHEN booked = 0 THEN 'available'
	ELSE 'limited'
END`

// GormSlotReader implements ports.SlotReader outside any unit of work.
type GormSlotReader struct {
	db *gorm.DB
}

func NewGormSlotReader(db *gorm.DB) *GormSlotReader {
	return &GormSlotReader{db: db}
}

// StreamAvailability decodes rows one at a time as the driver hands them over.
func (r *GormSlotReader) StreamAvailability(
	ctx context.Context,
	filter ports.AvailabilityFilter,
) iter.Seq2[slot.Snapshot, error] {
	return func(yield func(slot.Snapshot, error) bool) {
		query := r.db.WithContext(ctx).Model(&TimeSlotDTO{}).
			Where("driver_id = ?", filter.DriverID.Google()).
			Where("date BETWEEN ? AND ?", filter.Dates.From().String(), filter.Dates.To().String())
		if len(filter.Availabilities) > 0 {
			names := make([]string, 0, len(filter.Availabilities))
			for _, a := range filter.Availabilities {
				names = append(names, a.String())
			}
			query = query.Where("("+availabilityExpr+") = ANY(?)", pq.Array(names))
		}

		rows, err := query.Order("date, window_start, id").Rows()
		if err != nil {
			yield(slot.Snapshot{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var dto TimeSlotDTO
			if err = r.db.ScanRows(rows, &dto); err != nil {
				yield(slot.Snapshot{}, err)
				return
			}
			s, restoreErr := toDomain(dto)
			if restoreErr != nil {
				yield(slot.Snapshot{}, restoreErr)
				return
			}
			if !yield(s.Snapshot(), nil) {
				return
			}
		}
		if err = rows.Err(); err != nil {
			yield(slot.Snapshot{}, err)
		}
	}
}
