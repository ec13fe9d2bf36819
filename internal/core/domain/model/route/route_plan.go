package route

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/pkg/errs"
	"capacity/internal/pkg/guard"
)

var (
	ErrRoutePlanNotFound         = errors.New("route plan not found")
	ErrIncomparablePlans         = errors.New("plans cover different schedules")
	ErrRoutePlanIsNotConstructed = errors.New("RoutePlan must be created via NewRoutePlan or RestoreRoutePlan")
)

// RoutePlan is an ordered set of stops for one driver on one date.
type RoutePlan struct {
	id              kernel.UUID
	driverID        kernel.UUID
	date            kernel.Date
	order           []kernel.UUID
	status          Status
	metrics         Metrics
	waypoints       []Waypoint
	alternatives    []Suggestion
	originalRouteID *kernel.UUID
	trigger         Trigger
	createdAt       time.Time
	guard           guard.ConstructorGuard
}

// NewRoutePlan creates a Planned plan. It becomes Active through Activate or ReplaceWith.
func NewRoutePlan(
	id, driverID kernel.UUID,
	date kernel.Date,
	order []kernel.UUID,
	metrics Metrics,
	waypoints []Waypoint,
	alternatives []Suggestion,
	trigger Trigger,
	createdAt time.Time,
) (*RoutePlan, error) {
	return RestoreRoutePlan(id, driverID, date, order, Planned, metrics, waypoints, alternatives,
		nil, trigger, createdAt)
}

// RestoreRoutePlan rebuilds a plan from storage.
func RestoreRoutePlan(
	id, driverID kernel.UUID,
	date kernel.Date,
	order []kernel.UUID,
	status Status,
	metrics Metrics,
	waypoints []Waypoint,
	alternatives []Suggestion,
	originalRouteID *kernel.UUID,
	trigger Trigger,
	createdAt time.Time,
) (*RoutePlan, error) {
	p := &RoutePlan{
		waypoints:       slices.Clone(waypoints),
		alternatives:    slices.Clone(alternatives),
		originalRouteID: originalRouteID,
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setID(id),
		p.setDriverID(driverID),
		p.setDate(date),
		p.setOrder(order),
		p.setStatus(status),
		p.setMetrics(metrics),
		trigger.Validate(),
	); err != nil {
		return nil, err
	}
	if createdAt.IsZero() {
		return nil, errs.NewValueIsRequiredError("createdAt")
	}
	p.trigger = trigger
	p.createdAt = createdAt.UTC()
	return p, nil
}

func (p *RoutePlan) Validate() error {
	if p == nil {
		return ErrRoutePlanIsNotConstructed
	}
	return p.guard.Validate(ErrRoutePlanIsNotConstructed)
}

func (p *RoutePlan) IsEqual(other *RoutePlan) bool {
	return other != nil && p.id.IsEqual(other.id)
}

func (p *RoutePlan) ID() kernel.UUID       { return p.id }
func (p *RoutePlan) DriverID() kernel.UUID { return p.driverID }
func (p *RoutePlan) Date() kernel.Date     { return p.date }
func (p *RoutePlan) Status() Status        { return p.status }
func (p *RoutePlan) Metrics() Metrics      { return p.metrics }
func (p *RoutePlan) Trigger() Trigger      { return p.trigger }
func (p *RoutePlan) CreatedAt() time.Time  { return p.createdAt }

// OriginalRouteID links to the plan this one superseded by optimization.
func (p *RoutePlan) OriginalRouteID() *kernel.UUID { return p.originalRouteID }

// OrderedScheduleIDs returns a copy of the stop order.
func (p *RoutePlan) OrderedScheduleIDs() []kernel.UUID { return slices.Clone(p.order) }

func (p *RoutePlan) Waypoints() []Waypoint      { return slices.Clone(p.waypoints) }
func (p *RoutePlan) Alternatives() []Suggestion { return slices.Clone(p.alternatives) }

// Activate makes a fresh plan the active one when there is nothing to replace.
func (p *RoutePlan) Activate() error {
	if err := p.Validate(); err != nil {
		return err
	}
	next, err := p.status.activate()
	if err != nil {
		return err
	}
	p.status = next
	return nil
}

// ReplaceWith retires p in favour of next and activates next. The way p is
// retired depends on next's trigger.
func (p *RoutePlan) ReplaceWith(next *RoutePlan) error {
	if err := errors.Join(p.Validate(), next.Validate()); err != nil {
		return err
	}
	if !p.driverID.IsEqual(next.driverID) || !p.date.IsEqual(next.date) {
		return errs.NewValueIsInvalidErrorWithCause("route plan",
			fmt.Errorf("plan %s belongs to another driver or date", next.id))
	}

	target := Cancelled
	if next.trigger == TriggerOptimization {
		target = Completed
	}
	retired, err := p.status.retire(target)
	if err != nil {
		return err
	}
	activated, err := next.status.activate()
	if err != nil {
		return err
	}

	p.status = retired
	next.status = activated
	if target == Completed {
		id := p.id
		next.originalRouteID = &id
	}
	return nil
}

// Complete closes an active plan whose date has passed.
func (p *RoutePlan) Complete() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.status != Active {
		return errs.NewValueIsInvalidErrorWithCause("route status",
			fmt.Errorf("%s plan cannot be completed", p.status))
	}
	p.status = Completed
	return nil
}

// CoversSameSchedules reports whether both plans order the same stops.
func (p *RoutePlan) CoversSameSchedules(other *RoutePlan) bool {
	return SameScheduleSet(p.order, other.order)
}

// SameScheduleSet compares two orderings as sets.
func SameScheduleSet(a, b []kernel.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[kernel.UUID]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		if seen[id] == 0 {
			return false
		}
		seen[id]--
	}
	return true
}

func (p *RoutePlan) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	p.id = id
	return nil
}

func (p *RoutePlan) setDriverID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("driverId", err)
	}
	p.driverID = id
	return nil
}

func (p *RoutePlan) setDate(d kernel.Date) error {
	if err := d.Validate(); err != nil {
		return err
	}
	p.date = d
	return nil
}

func (p *RoutePlan) setOrder(order []kernel.UUID) error {
	seen := make(map[kernel.UUID]struct{}, len(order))
	for _, id := range order {
		if err := id.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("orderedScheduleIds", err)
		}
		if _, dup := seen[id]; dup {
			return errs.NewValueIsInvalidErrorWithCause("orderedScheduleIds",
				fmt.Errorf("schedule %s appears twice", id))
		}
		seen[id] = struct{}{}
	}
	p.order = slices.Clone(order)
	return nil
}

func (p *RoutePlan) setStatus(s Status) error {
	if err := s.Validate(); err != nil {
		return err
	}
	p.status = s
	return nil
}

func (p *RoutePlan) setMetrics(m Metrics) error {
	if m.Score < 0 || m.Score > 1 {
		return errs.NewValueIsOutOfRangeError("optimizationScore", m.Score, 0, 1)
	}
	if m.TotalDistance < 0 {
		return errs.NewValueIsOutOfRangeError("totalDistance", m.TotalDistance, 0, "+Inf")
	}
	p.metrics = m
	return nil
}
