package slotrepo

import (
	"context"
	"errors"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/slot"
	"capacity/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSlotRepository implements ports.SlotRepository using GORM.
type GormSlotRepository struct {
	db      *gorm.DB
	tracker versionTracker
}

// versionTracker remembers the version of each slot as this unit of work last
// read or wrote it, so Update can detect a concurrent writer.
type versionTracker interface {
	TrackVersion(id kernel.UUID, version int64)
	TrackedVersion(id kernel.UUID) (int64, bool)
}

func NewGormSlotRepository(db *gorm.DB, tracker versionTracker) *GormSlotRepository {
	return &GormSlotRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new slot to the database.
func (r *GormSlotRepository) Add(ctx context.Context, aggregate *slot.TimeSlot) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackVersion(aggregate.ID(), aggregate.Version())
	return nil
}

// Update writes the mutable columns under an optimistic version check.
func (r *GormSlotRepository) Update(ctx context.Context, aggregate *slot.TimeSlot) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	query := r.db.WithContext(ctx).Model(&TimeSlotDTO{}).Where("id = ?", dto.ID)
	if read, ok := r.tracker.TrackedVersion(aggregate.ID()); ok {
		query = query.Where("version = ?", read)
	} else {
		query = query.Where("version < ?", dto.Version)
	}

	result := query.Select("booked", "blocked", "block_reason", "version").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&TimeSlotDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundErrorWithCause("slotId", aggregate.ID(), slot.ErrSlotNotFound)
		}
		return errs.NewVersionIsInvalidError("slot "+aggregate.ID().String(),
			errors.New("slot changed by a concurrent transaction"))
	}

	r.tracker.TrackVersion(aggregate.ID(), aggregate.Version())
	return nil
}

// Get retrieves a slot by ID.
func (r *GormSlotRepository) Get(ctx context.Context, id kernel.UUID) (*slot.TimeSlot, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate retrieves a slot and holds its row lock until the transaction ends.
func (r *GormSlotRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*slot.TimeSlot, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormSlotRepository) get(db *gorm.DB, id kernel.UUID) (*slot.TimeSlot, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto TimeSlotDTO
	if err := db.First(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundErrorWithCause("slotId", id, slot.ErrSlotNotFound)
		}
		return nil, err
	}

	s, err := toDomain(dto)
	if err != nil {
		return nil, err
	}
	r.tracker.TrackVersion(id, s.Version())
	return s, nil
}
