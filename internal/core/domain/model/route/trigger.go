package route

import (
	"fmt"

	"capacity/internal/pkg/errs"
)

// Trigger names what caused a plan to be recomputed. It decides how the
// previously active plan is retired.
type Trigger string

const (
	TriggerBooking      Trigger = "booking"
	TriggerOptimization Trigger = "optimization"
)

func (t Trigger) Validate() error {
	if t != TriggerBooking && t != TriggerOptimization {
		return errs.NewValueIsInvalidErrorWithCause("trigger", fmt.Errorf("%q is not a valid trigger", string(t)))
	}
	return nil
}
