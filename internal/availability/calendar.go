package availability

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrMissingDate is returned when either end of a proposed range is unset.
	ErrMissingDate = errors.New("both dates are required")
	// ErrInvertedRange is returned when the end of a range is before its start.
	ErrInvertedRange = errors.New("end date is before start date")
	// ErrRangeOverlapsBooking is returned when a range touches a blocked day.
	// The concrete error is an *OverlapError listing the days in conflict.
	ErrRangeOverlapsBooking = errors.New("selected dates overlap an existing booking")
	// ErrPastDate is returned when a new stay would start before today.
	ErrPastDate = errors.New("start date is in the past")
	// ErrStayTooLong is returned when a stay has more nights than allowed.
	ErrStayTooLong = errors.New("stay is longer than allowed")
	// ErrBeyondHorizon is returned when a stay ends too far in the future.
	ErrBeyondHorizon = errors.New("dates are too far in the future")
)

// OverlapError lists the blocked days inside a rejected range.
type OverlapError struct {
	Days []Day
}

func (e *OverlapError) Error() string {
	parts := make([]string, len(e.Days))
	for i, d := range e.Days {
		parts[i] = d.String()
	}
	return fmt.Sprintf("%s: %s", ErrRangeOverlapsBooking, strings.Join(parts, ", "))
}

func (e *OverlapError) Unwrap() error { return ErrRangeOverlapsBooking }

// Interval is one confirmed booking on a venue. DateFrom <= DateTo.
type Interval struct {
	DateFrom time.Time
	DateTo   time.Time
}

// Policy decides whether the checkout day of a booking is itself blocked.
type Policy int

const (
	// InclusiveCheckout blocks every day from arrival to departure inclusive,
	// so a new stay cannot start on the day an existing one ends.
	InclusiveCheckout Policy = iota
	// CheckoutTurnover counts nights instead: the departure day is free for
	// the next arrival.
	CheckoutTurnover
)

// ParsePolicy maps "inclusive" and "turnover" to a Policy. Empty means inclusive.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inclusive":
		return InclusiveCheckout, nil
	case "turnover":
		return CheckoutTurnover, nil
	}
	return InclusiveCheckout, fmt.Errorf("unknown checkout policy %q", s)
}

func (p Policy) String() string {
	if p == CheckoutTurnover {
		return "turnover"
	}
	return "inclusive"
}

// Calculator holds the location used to find "local midnight" and the
// checkout policy. The zero value uses each time's own location and the
// inclusive policy, with no stay limits.
type Calculator struct {
	Location *time.Location
	Policy   Policy

	MaxNights   int              // longest stay accepted by CheckStay; 0 means no limit
	HorizonDays int              // a stay must end within this many days of today; 0 means no limit
	Now         func() time.Time // clock for "today"; nil means time.Now
}

// Today returns the current calendar day.
func (c Calculator) Today() Day {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return c.Day(now())
}

// Day returns the calendar day of t as seen by the calculator.
func (c Calculator) Day(t time.Time) Day {
	if c.Location != nil {
		t = t.In(c.Location)
	}
	return DayOf(t)
}

// span returns the first and last day a stay from..to occupies under the
// calculator's policy.
func (c Calculator) span(from, to Day) (Day, Day) {
	if c.Policy == CheckoutTurnover && from.Before(to) {
		to = to.AddDays(-1)
	}
	return from, to
}

// Expand flattens intervals into the set of days they cover. Overlapping
// intervals collapse into one another. An interval stored with its dates
// swapped still blocks the days between them.
func (c Calculator) Expand(intervals []Interval) BlockedSet {
	blocked := make(BlockedSet)
	for _, iv := range intervals {
		from, to := c.Day(iv.DateFrom), c.Day(iv.DateTo)
		if to.Before(from) {
			from, to = to, from
		}
		from, to = c.span(from, to)
		for d := from; !to.Before(d); d = d.AddDays(1) {
			blocked[d] = struct{}{}
		}
	}
	return blocked
}

// IsBlocked reports whether the calendar day containing t is blocked.
func (c Calculator) IsBlocked(t time.Time, blocked BlockedSet) bool {
	return blocked.Contains(c.Day(t))
}

// IsValidRange checks a proposed stay. It returns ErrMissingDate when either
// bound is nil, ErrInvertedRange when end is before start, and an
// *OverlapError when any day of the stay is blocked. A nil result is advisory
// only; the booking store re-checks under a lock before accepting.
func (c Calculator) IsValidRange(start, end *time.Time, blocked BlockedSet) error {
	if err := checkBounds(start, end); err != nil {
		return err
	}
	return c.conflicts(*start, *end, blocked)
}

func checkBounds(start, end *time.Time) error {
	if start == nil || end == nil {
		return ErrMissingDate
	}
	if end.Before(*start) {
		return ErrInvertedRange
	}
	return nil
}

// CheckStay applies the calculator's limits to a new or moved stay: no
// arrival before today, at most MaxNights nights, no departure later than
// HorizonDays from today. Bounds are checked as in IsValidRange.
func (c Calculator) CheckStay(start, end *time.Time) error {
	if err := checkBounds(start, end); err != nil {
		return err
	}
	from, to := c.Day(*start), c.Day(*end)
	today := c.Today()
	if from.Before(today) {
		return ErrPastDate
	}
	if c.HorizonDays > 0 && today.AddDays(c.HorizonDays).Before(to) {
		return ErrBeyondHorizon
	}
	if c.MaxNights > 0 && NightsBetween(*start, *end) > c.MaxNights {
		return ErrStayTooLong
	}
	return nil
}

// ValidateStay is CheckStay followed by IsValidRange. The limits run first
// so an oversized stay is rejected before its days are walked.
func (c Calculator) ValidateStay(start, end *time.Time, blocked BlockedSet) error {
	if err := c.CheckStay(start, end); err != nil {
		return err
	}
	return c.conflicts(*start, *end, blocked)
}

func (c Calculator) conflicts(start, end time.Time, blocked BlockedSet) error {
	from, to := c.span(c.Day(start), c.Day(end))
	var conflicts []Day
	for d := from; !to.Before(d); d = d.AddDays(1) {
		if blocked.Contains(d) {
			conflicts = append(conflicts, d)
		}
	}
	if len(conflicts) > 0 {
		return &OverlapError{Days: conflicts}
	}
	return nil
}

// Span returns the first and last day a stay from start to end occupies
// under the calculator's policy. Swapped bounds are put in order.
func (c Calculator) Span(start, end time.Time) (Day, Day) {
	from, to := c.Day(start), c.Day(end)
	if to.Before(from) {
		from, to = to, from
	}
	return c.span(from, to)
}

// Default is the calculator behind the package-level helpers.
var Default = Calculator{}

// Expand flattens intervals with the default calculator.
func Expand(intervals []Interval) BlockedSet { return Default.Expand(intervals) }

// IsBlocked reports whether t's calendar day is in blocked.
func IsBlocked(t time.Time, blocked BlockedSet) bool { return Default.IsBlocked(t, blocked) }

// IsValidRange validates a proposed stay with the default calculator.
func IsValidRange(start, end *time.Time, blocked BlockedSet) error {
	return Default.IsValidRange(start, end, blocked)
}

// NightsBetween returns the whole-day difference between start and end,
// rounded up, or 0 when end is not after start. Wall-clock time in start's
// location is used so a daylight-saving switch does not add a night.
func NightsBetween(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	diff := wall(end.In(start.Location())).Sub(wall(start))
	if diff <= 0 {
		return 0
	}
	const day = 24 * time.Hour
	n := int(diff / day)
	if diff%day != 0 {
		n++
	}
	return n
}

func wall(t time.Time) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), time.UTC)
}

// BlockedSet is the set of blocked calendar days of one venue.
type BlockedSet map[Day]struct{}

// Contains reports whether d is blocked.
func (b BlockedSet) Contains(d Day) bool {
	_, ok := b[d]
	return ok
}

// Days returns the blocked days in ascending order.
func (b BlockedSet) Days() []Day {
	out := make([]Day, 0, len(b))
	for d := range b {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Range is an inclusive run of consecutive days.
type Range struct {
	From Day `json:"from"`
	To   Day `json:"to"`
}

// Ranges collapses the set into runs of consecutive days.
func (b BlockedSet) Ranges() []Range {
	days := b.Days()
	if len(days) == 0 {
		return nil
	}
	out := []Range{{From: days[0], To: days[0]}}
	for _, d := range days[1:] {
		last := &out[len(out)-1]
		if last.To.AddDays(1) == d {
			last.To = d
			continue
		}
		out = append(out, Range{From: d, To: d})
	}
	return out
}
