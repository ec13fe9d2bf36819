package slot

import (
	"fmt"

	"capacity/internal/pkg/errs"
)

// Availability is the externally visible booking state of a slot.
//
//	available ⇄ limited ⇄ full    (book / release)
//	    any   ⇄ blocked           (block / unblock)
type Availability int

const (
	// AvailabilityUnknown is the zero value and is never valid.
	AvailabilityUnknown Availability = iota
	Available
	Limited
	Full
	Blocked
)

func getAvailabilityStrings() map[Availability]string {
	return map[Availability]string{
		AvailabilityUnknown: "unknown",
		Available:           "available",
		Limited:             "limited",
		Full:                "full",
		Blocked:             "blocked",
	}
}

// ParseAvailability maps the wire name back to its value.
func ParseAvailability(s string) (Availability, error) {
	for a, name := range getAvailabilityStrings() {
		if a != AvailabilityUnknown && name == s {
			return a, nil
		}
	}
	return AvailabilityUnknown, errs.NewValueIsInvalidErrorWithCause("availability",
		fmt.Errorf("%q is not a known availability", s))
}

func (a Availability) Validate() error {
	if a <= AvailabilityUnknown || a > Blocked {
		return errs.NewValueIsInvalidErrorWithCause("availability", fmt.Errorf("%d is not a valid availability", a))
	}
	return nil
}

func (a Availability) String() string {
	if s, ok := getAvailabilityStrings()[a]; ok {
		return s
	}
	return "unknown"
}

// AvailabilityOf is the single source of truth for a slot's availability.
// A non-blocked slot of capacity zero is full.
func AvailabilityOf(booked, capacity uint, blocked bool) Availability {
	switch {
	case blocked:
		return Blocked
	case booked >= capacity:
		return Full
	case booked == 0:
		return Available
	default:
		return Limited
	}
}
