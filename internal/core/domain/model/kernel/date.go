package kernel

import (
	"fmt"
	"time"

	"capacity/internal/pkg/errs"
)

// DateLayout is the wire and storage form of a Date.
const DateLayout = time.DateOnly

// ErrDateIsNotConstructed is returned by Validate for the zero Date.
var ErrDateIsNotConstructed = errs.NewValueIsRequiredError("date must be created via NewDate or ParseDate")

// Date is a calendar day without a time zone. Slots and route plans are keyed by it.
type Date struct {
	t time.Time
}

// NewDate normalises y/m/d, so February 30 becomes March 2 as in time.Date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf takes the calendar day of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate accepts YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, errs.NewValueIsInvalidErrorWithCause("date", err)
	}
	return Date{t: t}, nil
}

func (d Date) Validate() error {
	if d.t.IsZero() {
		return ErrDateIsNotConstructed
	}
	return nil
}

func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return d.t
}

// At returns the instant reached minutes after midnight UTC.
func (d Date) At(minutes float64) time.Time {
	return d.t.Add(time.Duration(minutes * float64(time.Minute)))
}

func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

func (d Date) IsEqual(other Date) bool {
	return d.t.Equal(other.t)
}

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	from Date
	to   Date
}

func NewDateRange(from, to Date) (DateRange, error) {
	if err := from.Validate(); err != nil {
		return DateRange{}, err
	}
	if err := to.Validate(); err != nil {
		return DateRange{}, err
	}
	if to.Before(from) {
		return DateRange{}, errs.NewValueIsInvalidErrorWithCause("date range",
			fmt.Errorf("%s is before %s", to, from))
	}
	return DateRange{from: from, to: to}, nil
}

func (r DateRange) From() Date { return r.from }
func (r DateRange) To() Date   { return r.to }

// Contains reports whether d falls within the range, bounds included.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.from) && !d.After(r.to)
}
