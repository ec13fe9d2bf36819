package route

import (
	"fmt"

	"capacity/internal/pkg/errs"
)

// Status is the lifecycle state of a RoutePlan.
//
//	Planned ──> Active ──┬──> Completed
//	                     └──> Cancelled
type Status int

const (
	StatusUnknown Status = iota
	Planned
	Active
	Completed
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown: "unknown",
		Planned:       "planned",
		Active:        "active",
		Completed:     "completed",
		Cancelled:     "cancelled",
	}
}

func ParseStatus(s string) (Status, error) {
	for st, name := range getStatusStrings() {
		if st != StatusUnknown && name == s {
			return st, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("route status", fmt.Errorf("%q is not a valid status", s))
}

func (s Status) Validate() error {
	if s <= StatusUnknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("route status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

func (s Status) activate() (Status, error) {
	if s != Planned {
		return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("route status",
			fmt.Errorf("%s plan cannot be activated", s))
	}
	return Active, nil
}

func (s Status) retire(target Status) (Status, error) {
	if s != Active && s != Planned {
		return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("route status",
			fmt.Errorf("%s plan cannot become %s", s, target))
	}
	return target, nil
}
