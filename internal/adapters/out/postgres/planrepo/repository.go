package planrepo

import (
	"context"
	"errors"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/route"
	"capacity/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormRoutePlanRepository implements ports.RoutePlanRepository using GORM.
type GormRoutePlanRepository struct {
	db *gorm.DB
}

func NewGormRoutePlanRepository(db *gorm.DB) *GormRoutePlanRepository {
	return &GormRoutePlanRepository{db: db}
}

// Add saves a new plan. A second active plan for the same driver and date is
// rejected by the route_plans_one_active_idx index.
func (r *GormRoutePlanRepository) Add(ctx context.Context, aggregate *route.RoutePlan) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update persists status and lineage only.
func (r *GormRoutePlanRepository) Update(ctx context.Context, aggregate *route.RoutePlan) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&RoutePlanDTO{}).
		Where("id = ?", dto.ID).
		Select("status", "original_route_id").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundErrorWithCause("routeId", aggregate.ID(), route.ErrRoutePlanNotFound)
	}
	return nil
}

// Get retrieves a plan by ID.
func (r *GormRoutePlanRepository) Get(ctx context.Context, id kernel.UUID) (*route.RoutePlan, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RoutePlanDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundErrorWithCause("routeId", id, route.ErrRoutePlanNotFound)
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetActive retrieves the active plan of a driver on a date.
func (r *GormRoutePlanRepository) GetActive(
	ctx context.Context,
	driverID kernel.UUID,
	date kernel.Date,
) (*route.RoutePlan, error) {
	var dto RoutePlanDTO
	err := r.db.WithContext(ctx).
		First(&dto, "driver_id = ? AND date = ? AND status = ?", driverID.Google(), date.String(), int(route.Active)).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundErrorWithCause("driverId/date", driverID.String()+"/"+date.String(),
				route.ErrRoutePlanNotFound)
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListActiveBefore retrieves active plans dated strictly before date.
func (r *GormRoutePlanRepository) ListActiveBefore(ctx context.Context, date kernel.Date) ([]*route.RoutePlan, error) {
	var dtos []RoutePlanDTO
	err := r.db.WithContext(ctx).
		Where("date < ? AND status = ?", date.String(), int(route.Active)).
		Order("date, driver_id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	plans := make([]*route.RoutePlan, 0, len(dtos))
	for _, dto := range dtos {
		p, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}

	return plans, nil
}
