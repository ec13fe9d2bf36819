package schedule

import (
	"fmt"

	"capacity/internal/pkg/errs"
)

// Status is the delivery progress of a schedule.
//
//	Scheduled ──> InProgress ──> Completed
//	    │             │
//	    └─────────────┴──> Cancelled
type Status int

const (
	// StatusUnknown catches uninitialised values.
	StatusUnknown Status = iota
	Scheduled
	InProgress
	Completed
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown: "unknown",
		Scheduled:     "scheduled",
		InProgress:    "in_progress",
		Completed:     "completed",
		Cancelled:     "cancelled",
	}
}

// ParseStatus maps the wire name back to a Status.
func ParseStatus(s string) (Status, error) {
	for st, name := range getStatusStrings() {
		if st != StatusUnknown && name == s {
			return st, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

func (s Status) Validate() error {
	if s <= StatusUnknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsFinal reports whether no further transition is possible.
func (s Status) IsFinal() bool {
	return s == Completed || s == Cancelled
}

// TransitionTo returns target if the move from s is allowed.
func (s Status) TransitionTo(target Status) (Status, error) {
	if err := target.Validate(); err != nil {
		return StatusUnknown, err
	}

	allowed := false
	switch target {
	case InProgress:
		allowed = s == Scheduled
	case Completed:
		allowed = s == InProgress
	case Cancelled:
		allowed = s == Scheduled || s == InProgress
	case StatusUnknown, Scheduled:
	}

	if !allowed {
		return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("cannot move from %s to %s", s, target))
	}
	return target, nil
}
