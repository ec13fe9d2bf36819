// Package postgres provides the GORM-based Unit of Work over the capacity
// store: time slots, delivery schedules and route plans.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	ts, err := uow.SlotRepository().GetForUpdate(ctx, slotID)
//	if err != nil {
//	    return err
//	}
//	if err := ts.Book(); err != nil {
//	    return err
//	}
//	if err := uow.SlotRepository().Update(ctx, ts); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Concurrency Considerations:
//   - Each UnitOfWork instance provides an isolated transaction
//   - Multiple goroutines should use separate UnitOfWork instances
//   - GetForUpdate holds a row lock until Commit or Rollback
//   - Slot updates carry an optimistic version check on top of the lock
//   - Schedule updates only apply while the stored status is the one read
package postgres

import (
	"context"
	"sync"

	"capacity/internal/adapters/out/postgres/planrepo"
	"capacity/internal/adapters/out/postgres/schedulerepo"
	"capacity/internal/adapters/out/postgres/slotrepo"
	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/core/ports"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database connections.
// Each business operation gets a fresh unit of work with its own transaction state.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:       f.db,
		versions: make(map[kernel.UUID]int64),
		statuses: make(map[kernel.UUID]schedule.Status),
	}
}

// GormUnitOfWork coordinates one database transaction across the slot,
// schedule and route plan repositories. It also remembers the slot versions
// and schedule statuses read inside the transaction for the optimistic
// checks on update.
type GormUnitOfWork struct {
	db *gorm.DB
	tx *gorm.DB

	mu       sync.Mutex
	versions map[kernel.UUID]int64
	statuses map[kernel.UUID]schedule.Status
}

// Begin initiates a new database transaction for the unit of work.
// Calling Begin on an already started unit of work is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit finalizes all changes made within the current transaction.
// Returns gorm.ErrInvalidTransaction if no transaction is active.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.reset()
	return err
}

// Rollback discards all changes made within the current transaction.
// After Commit it returns gorm.ErrInvalidTransaction, which deferred
// rollbacks ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.reset()
	return err
}

// SlotRepository runs inside the current transaction if one is active,
// otherwise against the main connection.
func (uow *GormUnitOfWork) SlotRepository() ports.SlotRepository {
	return slotrepo.NewGormSlotRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) ScheduleRepository() ports.ScheduleRepository {
	return schedulerepo.NewGormScheduleRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) RoutePlanRepository() ports.RoutePlanRepository {
	return planrepo.NewGormRoutePlanRepository(uow.conn())
}

// TrackVersion records the slot version last seen by this unit of work.
func (uow *GormUnitOfWork) TrackVersion(id kernel.UUID, version int64) {
	uow.mu.Lock()
	defer uow.mu.Unlock()
	uow.versions[id] = version
}

// TrackedVersion reports the version recorded by TrackVersion, if any.
func (uow *GormUnitOfWork) TrackedVersion(id kernel.UUID) (int64, bool) {
	uow.mu.Lock()
	defer uow.mu.Unlock()
	v, ok := uow.versions[id]
	return v, ok
}

// TrackStatus records the schedule status last seen by this unit of work.
func (uow *GormUnitOfWork) TrackStatus(id kernel.UUID, status schedule.Status) {
	uow.mu.Lock()
	defer uow.mu.Unlock()
	uow.statuses[id] = status
}

// TrackedStatus reports the status recorded by TrackStatus, if any.
func (uow *GormUnitOfWork) TrackedStatus(id kernel.UUID) (schedule.Status, bool) {
	uow.mu.Lock()
	defer uow.mu.Unlock()
	s, ok := uow.statuses[id]
	return s, ok
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

func (uow *GormUnitOfWork) reset() {
	uow.tx = nil
	uow.mu.Lock()
	clear(uow.versions)
	clear(uow.statuses)
	uow.mu.Unlock()
}
