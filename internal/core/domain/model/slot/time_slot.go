package slot

import (
	"errors"
	"fmt"
	"strings"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/pkg/errs"
	"capacity/internal/pkg/guard"
)

// MaxCapacity bounds how many schedules one slot may hold.
const MaxCapacity = 1000

var (
	ErrSlotFull                 = errors.New("slot is full")
	ErrSlotBlocked              = errors.New("slot is blocked")
	ErrSlotNotFound             = errors.New("slot not found")
	ErrTimeSlotIsNotConstructed = errors.New("TimeSlot must be created via NewTimeSlot or RestoreTimeSlot")
)

// TimeSlot is the aggregate root guarding capacity of one delivery window.
type TimeSlot struct {
	id          kernel.UUID
	driverID    kernel.UUID
	date        kernel.Date
	window      kernel.TimeWindow
	label       string
	capacity    uint
	booked      uint
	blocked     bool
	blockReason string
	recurrence  *Recurrence
	version     int64
	guard       guard.ConstructorGuard
}

// NewTimeSlot creates an empty, unblocked slot.
func NewTimeSlot(
	id, driverID kernel.UUID,
	date kernel.Date,
	window kernel.TimeWindow,
	label string,
	capacity uint,
	recurrence *Recurrence,
) (*TimeSlot, error) {
	return RestoreTimeSlot(id, driverID, date, window, label, capacity, 0, false, "", recurrence, 0)
}

// RestoreTimeSlot rebuilds a slot from storage, re-checking every invariant.
func RestoreTimeSlot(
	id, driverID kernel.UUID,
	date kernel.Date,
	window kernel.TimeWindow,
	label string,
	capacity, booked uint,
	blocked bool,
	blockReason string,
	recurrence *Recurrence,
	version int64,
) (*TimeSlot, error) {
	s := &TimeSlot{
		blocked:     blocked,
		blockReason: blockReason,
		recurrence:  recurrence,
		version:     version,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		s.setID(id),
		s.setDriverID(driverID),
		s.setDate(date),
		s.setWindow(window),
		s.setLabel(label),
		s.setCapacity(capacity, booked),
	); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *TimeSlot) Validate() error {
	if s == nil {
		return ErrTimeSlotIsNotConstructed
	}
	return s.guard.Validate(ErrTimeSlotIsNotConstructed)
}

func (s *TimeSlot) IsEqual(other *TimeSlot) bool {
	return other != nil && s.id.IsEqual(other.id)
}

func (s *TimeSlot) ID() kernel.UUID           { return s.id }
func (s *TimeSlot) DriverID() kernel.UUID     { return s.driverID }
func (s *TimeSlot) Date() kernel.Date         { return s.date }
func (s *TimeSlot) Window() kernel.TimeWindow { return s.window }
func (s *TimeSlot) Label() string             { return s.label }
func (s *TimeSlot) Capacity() uint            { return s.capacity }
func (s *TimeSlot) Booked() uint              { return s.booked }
func (s *TimeSlot) IsBlocked() bool           { return s.blocked }
func (s *TimeSlot) BlockReason() string       { return s.blockReason }
func (s *TimeSlot) Recurrence() *Recurrence   { return s.recurrence }
func (s *TimeSlot) Version() int64            { return s.version }

// Availability is derived on every call.
func (s *TimeSlot) Availability() Availability {
	return AvailabilityOf(s.booked, s.capacity, s.blocked)
}

// Book takes one unit of capacity.
func (s *TimeSlot) Book() error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.blocked {
		return ErrSlotBlocked
	}
	if s.booked >= s.capacity {
		return ErrSlotFull
	}
	s.booked++
	s.version++
	return nil
}

// Release returns one unit of capacity. Releasing an empty slot is a no-op.
func (s *TimeSlot) Release() error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.booked == 0 {
		return nil
	}
	s.booked--
	s.version++
	return nil
}

// Block removes the slot from sale regardless of remaining capacity.
// Existing bookings are kept.
func (s *TimeSlot) Block(reason string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.NewValueIsRequiredError("block reason")
	}
	s.blocked = true
	s.blockReason = reason
	s.version++
	return nil
}

func (s *TimeSlot) Unblock() error {
	if err := s.Validate(); err != nil {
		return err
	}
	if !s.blocked {
		return errs.NewValueIsInvalidErrorWithCause("slot", errors.New("slot is not blocked"))
	}
	s.blocked = false
	s.blockReason = ""
	s.version++
	return nil
}

// Snapshot is a read-only copy handed to queries and events.
type Snapshot struct {
	ID           kernel.UUID
	DriverID     kernel.UUID
	Date         kernel.Date
	Window       kernel.TimeWindow
	Label        string
	Capacity     uint
	Booked       uint
	Availability Availability
	BlockReason  string
	Recurrence   *Recurrence
	Version      int64
}

func (s *TimeSlot) Snapshot() Snapshot {
	return Snapshot{
		ID:           s.id,
		DriverID:     s.driverID,
		Date:         s.date,
		Window:       s.window,
		Label:        s.label,
		Capacity:     s.capacity,
		Booked:       s.booked,
		Availability: s.Availability(),
		BlockReason:  s.blockReason,
		Recurrence:   s.recurrence,
		Version:      s.version,
	}
}

func (s *TimeSlot) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

func (s *TimeSlot) setDriverID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("driverId", err)
	}
	s.driverID = id
	return nil
}

func (s *TimeSlot) setDate(d kernel.Date) error {
	if err := d.Validate(); err != nil {
		return err
	}
	s.date = d
	return nil
}

func (s *TimeSlot) setWindow(w kernel.TimeWindow) error {
	if err := w.Validate(); err != nil {
		return err
	}
	s.window = w
	return nil
}

func (s *TimeSlot) setLabel(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return errs.NewValueIsRequiredError("label")
	}
	s.label = label
	return nil
}

func (s *TimeSlot) setCapacity(capacity, booked uint) error {
	if capacity > MaxCapacity {
		return errs.NewValueIsOutOfRangeError("capacity", capacity, 0, MaxCapacity)
	}
	if booked > capacity {
		return errs.NewValueIsOutOfRangeErrorWithCause("booked", booked, 0, capacity,
			fmt.Errorf("slot %s is oversold", s.id))
	}
	s.capacity = capacity
	s.booked = booked
	return nil
}
