package schedule

import (
	"errors"
	"fmt"
	"time"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/pkg/errs"
	"capacity/internal/pkg/guard"
)

var (
	ErrScheduleNotFound                 = errors.New("schedule not found")
	ErrDeliveryScheduleIsNotConstructed = errors.New("DeliverySchedule must be created via NewDeliverySchedule or RestoreDeliverySchedule")
)

// Sequence is the 1-based position of a stop within its route plan.
// The zero value means the stop has not been optimized yet.
type Sequence struct {
	Current uint
	Total   uint
}

// Estimate is the leg that ends at this stop in the active route plan.
type Estimate struct {
	Duration time.Duration
	Distance float64 // kilometres
}

// DeliverySchedule is one booked delivery of one shipment.
type DeliverySchedule struct {
	id          kernel.UUID
	shipmentID  kernel.UUID
	userID      *kernel.UUID
	driverID    kernel.UUID
	date        kernel.Date
	slotID      kernel.UUID
	window      kernel.TimeWindow
	destination kernel.Location
	routeOrder  uint
	sequence    Sequence
	status      Status
	estimate    Estimate
	bookedAt    time.Time
	guard       guard.ConstructorGuard
}

// NewDeliverySchedule creates a Scheduled entry with no route position.
// window is the delivery window of the booked slot at booking time.
func NewDeliverySchedule(
	id, shipmentID kernel.UUID,
	userID *kernel.UUID,
	driverID kernel.UUID,
	date kernel.Date,
	slotID kernel.UUID,
	window kernel.TimeWindow,
	destination kernel.Location,
	bookedAt time.Time,
) (*DeliverySchedule, error) {
	return RestoreDeliverySchedule(id, shipmentID, userID, driverID, date, slotID, window, destination,
		0, Sequence{}, Scheduled, Estimate{}, bookedAt)
}

// RestoreDeliverySchedule rebuilds a schedule from storage.
func RestoreDeliverySchedule(
	id, shipmentID kernel.UUID,
	userID *kernel.UUID,
	driverID kernel.UUID,
	date kernel.Date,
	slotID kernel.UUID,
	window kernel.TimeWindow,
	destination kernel.Location,
	routeOrder uint,
	sequence Sequence,
	status Status,
	estimate Estimate,
	bookedAt time.Time,
) (*DeliverySchedule, error) {
	d := &DeliverySchedule{
		estimate: estimate,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setShipmentID(shipmentID),
		d.setUserID(userID),
		d.setDriverID(driverID),
		d.setDate(date),
		d.setSlotID(slotID),
		d.setWindow(window),
		d.setDestination(destination),
		d.setRoute(routeOrder, sequence),
		d.setStatus(status),
		d.setBookedAt(bookedAt),
	); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *DeliverySchedule) Validate() error {
	if d == nil {
		return ErrDeliveryScheduleIsNotConstructed
	}
	return d.guard.Validate(ErrDeliveryScheduleIsNotConstructed)
}

func (d *DeliverySchedule) IsEqual(other *DeliverySchedule) bool {
	return other != nil && d.id.IsEqual(other.id)
}

func (d *DeliverySchedule) ID() kernel.UUID              { return d.id }
func (d *DeliverySchedule) ShipmentID() kernel.UUID      { return d.shipmentID }
func (d *DeliverySchedule) UserID() *kernel.UUID         { return d.userID }
func (d *DeliverySchedule) DriverID() kernel.UUID        { return d.driverID }
func (d *DeliverySchedule) Date() kernel.Date            { return d.date }
func (d *DeliverySchedule) SlotID() kernel.UUID          { return d.slotID }
func (d *DeliverySchedule) Window() kernel.TimeWindow    { return d.window }
func (d *DeliverySchedule) Destination() kernel.Location { return d.destination }
func (d *DeliverySchedule) RouteOrder() uint             { return d.routeOrder }
func (d *DeliverySchedule) Sequence() Sequence           { return d.sequence }
func (d *DeliverySchedule) Status() Status               { return d.status }
func (d *DeliverySchedule) Estimate() Estimate           { return d.estimate }
func (d *DeliverySchedule) BookedAt() time.Time          { return d.bookedAt }

// IsRoutable reports whether the stop still belongs on a route.
func (d *DeliverySchedule) IsRoutable() bool {
	return d.status == Scheduled || d.status == InProgress
}

// AssignRoute records the stop's position in a freshly computed plan.
func (d *DeliverySchedule) AssignRoute(position, total uint, estimate Estimate) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if position == 0 {
		return errs.NewValueIsOutOfRangeError("routeOrder", position, 1, total)
	}
	if err := d.setRoute(position, Sequence{Current: position, Total: total}); err != nil {
		return err
	}
	d.estimate = estimate
	return nil
}

// Cancel frees the schedule. Cancelled and completed schedules cannot be
// released again, so they report ErrScheduleNotFound.
func (d *DeliverySchedule) Cancel() error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.status.IsFinal() {
		return ErrScheduleNotFound
	}
	d.status = Cancelled
	d.routeOrder = 0
	d.sequence = Sequence{}
	return nil
}

// ChangeStatus applies a delivery progress update.
func (d *DeliverySchedule) ChangeStatus(target Status) error {
	if err := d.Validate(); err != nil {
		return err
	}
	next, err := d.status.TransitionTo(target)
	if err != nil {
		return err
	}
	d.status = next
	return nil
}

func (d *DeliverySchedule) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *DeliverySchedule) setShipmentID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("shipmentId", err)
	}
	d.shipmentID = id
	return nil
}

func (d *DeliverySchedule) setUserID(id *kernel.UUID) error {
	if id == nil {
		return nil
	}
	if err := id.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("userId", err)
	}
	d.userID = id
	return nil
}

func (d *DeliverySchedule) setDriverID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("driverId", err)
	}
	d.driverID = id
	return nil
}

func (d *DeliverySchedule) setDate(date kernel.Date) error {
	if err := date.Validate(); err != nil {
		return err
	}
	d.date = date
	return nil
}

func (d *DeliverySchedule) setSlotID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("slotId", err)
	}
	d.slotID = id
	return nil
}

func (d *DeliverySchedule) setWindow(w kernel.TimeWindow) error {
	if err := w.Validate(); err != nil {
		return err
	}
	d.window = w
	return nil
}

func (d *DeliverySchedule) setDestination(loc kernel.Location) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	d.destination = loc
	return nil
}

func (d *DeliverySchedule) setRoute(routeOrder uint, seq Sequence) error {
	if seq.Current > seq.Total {
		return errs.NewValueIsOutOfRangeErrorWithCause("sequence.current", seq.Current, 0, seq.Total,
			fmt.Errorf("position exceeds route length"))
	}
	if routeOrder > 0 && routeOrder != seq.Current {
		return errs.NewValueIsInvalidErrorWithCause("routeOrder",
			fmt.Errorf("route order %d does not match sequence position %d", routeOrder, seq.Current))
	}
	d.routeOrder = routeOrder
	d.sequence = seq
	return nil
}

func (d *DeliverySchedule) setStatus(s Status) error {
	if err := s.Validate(); err != nil {
		return err
	}
	d.status = s
	return nil
}

func (d *DeliverySchedule) setBookedAt(t time.Time) error {
	if t.IsZero() {
		return errs.NewValueIsRequiredError("bookedAt")
	}
	d.bookedAt = t.UTC()
	return nil
}
