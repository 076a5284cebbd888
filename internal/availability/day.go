// Package availability works out which calendar days of a venue are already
// taken by bookings and checks a proposed stay against them. Nothing in this
// package performs I/O: callers pass a snapshot of bookings and get a value
// back, so every function is safe to call from any goroutine.
package availability

import (
	"fmt"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// Day is a calendar date without time of day or location.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar day of t in t's own location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// In returns midnight of d in loc. A nil loc means UTC.
func (d Day) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the day n days after d (before d for negative n).
func (d Day) AddDays(n int) Day {
	return DayOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// Before reports whether d is strictly earlier than o.
func (d Day) Before(o Day) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// After reports whether d is strictly later than o.
func (d Day) After(o Day) bool { return o.Before(d) }

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool { return d == Day{} }

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText renders the day as YYYY-MM-DD so it can be used in JSON.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts the YYYY-MM-DD form written by MarshalText.
func (d *Day) UnmarshalText(b []byte) error {
	t, err := time.Parse(dayLayout, string(b))
	if err != nil {
		return fmt.Errorf("parse day %q: %w", b, err)
	}
	*d = DayOf(t)
	return nil
}

// ParseDate parses a bare date (2006-01-02) or an RFC 3339 timestamp as sent
// by browsers (2024-06-10T00:00:00.000Z). A bare date becomes midnight in
// loc; a timestamp is converted into loc. A nil loc means UTC.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissingDate
	}
	if len(s) == len(dayLayout) {
		t, err := time.ParseInLocation(dayLayout, s, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
		}
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t.In(loc), nil
}
