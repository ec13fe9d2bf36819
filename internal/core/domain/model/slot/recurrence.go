package slot

import (
	"fmt"

	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/pkg/errs"
)

// Frequency of a recurring slot template.
type Frequency string

const (
	Daily  Frequency = "daily"
	Weekly Frequency = "weekly"
)

// Recurrence is carried for the external slot generator; this service does
// not expand it into further slots.
type Recurrence struct {
	frequency Frequency
	until     *kernel.Date
}

func NewRecurrence(frequency Frequency, until *kernel.Date) (Recurrence, error) {
	if frequency != Daily && frequency != Weekly {
		return Recurrence{}, errs.NewValueIsInvalidErrorWithCause("recurrence frequency",
			fmt.Errorf("%q is not daily or weekly", frequency))
	}
	if until != nil {
		if err := until.Validate(); err != nil {
			return Recurrence{}, err
		}
	}
	return Recurrence{frequency: frequency, until: until}, nil
}

func (r Recurrence) Frequency() Frequency { return r.frequency }

// Until is nil for open-ended recurrence.
func (r Recurrence) Until() *kernel.Date { return r.until }
