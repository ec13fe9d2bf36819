package schedulerepo

import (
	"context"
	"errors"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormScheduleRepository implements ports.ScheduleRepository using GORM.
type GormScheduleRepository struct {
	db      *gorm.DB
	tracker statusTracker
}

// statusTracker is implemented by the unit of work that owns the transaction.
type statusTracker interface {
	TrackStatus(id kernel.UUID, status schedule.Status)
	TrackedStatus(id kernel.UUID) (schedule.Status, bool)
}

func NewGormScheduleRepository(db *gorm.DB, tracker statusTracker) *GormScheduleRepository {
	return &GormScheduleRepository{db: db, tracker: tracker}
}

// Add saves a new schedule to the database.
func (r *GormScheduleRepository) Add(ctx context.Context, aggregate *schedule.DeliverySchedule) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update saves every mutable column of an existing schedule, provided the
// stored status is still the one this unit of work read.
func (r *GormScheduleRepository) Update(ctx context.Context, aggregate *schedule.DeliverySchedule) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	query := r.db.WithContext(ctx).Model(&DeliveryScheduleDTO{}).Where("id = ?", dto.ID)
	if read, ok := r.tracker.TrackedStatus(aggregate.ID()); ok {
		query = query.Where("status = ?", int(read))
	}

	result := query.
		Select("route_order", "sequence_current", "sequence_total", "status",
			"estimated_duration_ms", "estimated_distance_km").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&DeliveryScheduleDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundErrorWithCause("scheduleId", aggregate.ID(), schedule.ErrScheduleNotFound)
		}
		return errs.NewVersionIsInvalidError("schedule "+aggregate.ID().String(),
			errors.New("schedule status changed by a concurrent transaction"))
	}

	r.tracker.TrackStatus(aggregate.ID(), aggregate.Status())
	return nil
}

// UpdateRouteAssignment writes the route columns only while the stored row is
// still scheduled or in progress. A row that has left that state in the
// meantime is skipped silently.
func (r *GormScheduleRepository) UpdateRouteAssignment(ctx context.Context, aggregate *schedule.DeliverySchedule) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Model(&DeliveryScheduleDTO{}).
		Where("id = ? AND status IN ?", dto.ID, routableStatuses()).
		Select("route_order", "sequence_current", "sequence_total",
			"estimated_duration_ms", "estimated_distance_km").
		Updates(&dto).Error
}

// Get retrieves a schedule by ID.
func (r *GormScheduleRepository) Get(ctx context.Context, id kernel.UUID) (*schedule.DeliverySchedule, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate retrieves a schedule and holds its row lock until the transaction ends.
func (r *GormScheduleRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*schedule.DeliverySchedule, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormScheduleRepository) get(db *gorm.DB, id kernel.UUID) (*schedule.DeliverySchedule, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DeliveryScheduleDTO
	if err := db.First(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundErrorWithCause("scheduleId", id, schedule.ErrScheduleNotFound)
		}
		return nil, err
	}

	s, err := toDomain(dto)
	if err != nil {
		return nil, err
	}
	r.tracker.TrackStatus(id, s.Status())
	return s, nil
}

// ListRoutable returns the scheduled and in-progress stops of a driver on a
// date in booking order.
func (r *GormScheduleRepository) ListRoutable(
	ctx context.Context,
	driverID kernel.UUID,
	date kernel.Date,
) ([]*schedule.DeliverySchedule, error) {
	var dtos []DeliveryScheduleDTO
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND date = ? AND status IN ?", driverID.Google(), date.String(), routableStatuses()).
		Order("booked_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	schedules := make([]*schedule.DeliverySchedule, 0, len(dtos))
	for _, dto := range dtos {
		s, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}

	return schedules, nil
}

func routableStatuses() []int {
	return []int{int(schedule.Scheduled), int(schedule.InProgress)}
}
