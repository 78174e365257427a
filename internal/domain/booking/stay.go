package booking

import (
	"errors"
	"time"
)

var (
	ErrCheckOutBeforeCheckIn = errors.New("booking: check-out must be after check-in")
	ErrStayTooShort          = errors.New("booking: stay must cover at least one night")
)

// Stay holds the date range of a booking. Dates are stored at UTC midnight.
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewStay normalizes both dates to UTC midnight and validates ordering.
func NewStay(checkIn, checkOut time.Time) (Stay, error) {
	in := truncateToDay(checkIn)
	out := truncateToDay(checkOut)
	if !out.After(in) {
		return Stay{}, ErrCheckOutBeforeCheckIn
	}
	s := Stay{CheckIn: in, CheckOut: out}
	if s.Nights() < 1 {
		return Stay{}, ErrStayTooShort
	}
	return s, nil
}

// Nights is the number of nights between check-in and check-out.
func (s Stay) Nights() int {
	return int(s.CheckOut.Sub(s.CheckIn).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
