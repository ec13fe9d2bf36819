package kernel

import (
	"errors"
	"fmt"
	"time"

	"capacity/internal/pkg/errs"
	"capacity/internal/pkg/guard"
)

// MinutesPerDay bounds a TimeOfDay.
const MinutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time in minutes after midnight, 0..1440.
// 1440 is allowed so a window may end at midnight.
type TimeOfDay int

// ParseTimeOfDay accepts HH:MM, with 24:00 as the only value past 23:59.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if s == "24:00" {
		return MinutesPerDay, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause("time of day", err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) Validate() error {
	if t < 0 || t > MinutesPerDay {
		return errs.NewValueIsOutOfRangeError("time of day", int(t), 0, MinutesPerDay)
	}
	return nil
}

func (t TimeOfDay) Minutes() float64 {
	return float64(t)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// ErrTimeWindowIsNotConstructed is returned by Validate for a zero TimeWindow.
var ErrTimeWindowIsNotConstructed = errs.NewValueIsRequiredError("time window must be created via NewTimeWindow")

// TimeWindow is the [start, end) delivery window of a slot.
type TimeWindow struct {
	start TimeOfDay
	end   TimeOfDay
	guard guard.ConstructorGuard
}

func NewTimeWindow(start, end TimeOfDay) (TimeWindow, error) {
	if err := errors.Join(start.Validate(), end.Validate()); err != nil {
		return TimeWindow{}, err
	}
	if end <= start {
		return TimeWindow{}, errs.NewValueIsInvalidErrorWithCause("time window",
			fmt.Errorf("end %s is not after start %s", end, start))
	}
	return TimeWindow{start: start, end: end, guard: guard.NewConstructorGuard()}, nil
}

func (w TimeWindow) Validate() error {
	return w.guard.Validate(ErrTimeWindowIsNotConstructed)
}

func (w TimeWindow) Start() TimeOfDay { return w.start }
func (w TimeWindow) End() TimeOfDay   { return w.end }

func (w TimeWindow) String() string {
	return w.start.String() + "-" + w.end.String()
}
