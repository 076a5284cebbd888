package model

import (
	"time"

	"github.com/iliyamo/holidaze/internal/availability"
)

// Booking is a confirmed reservation of a venue. DateFrom and DateTo are
// midnight of the first and last booked day in the booking timezone.
type Booking struct {
	ID         string    `json:"id"`
	VenueID    string    `json:"venueId"`
	CustomerID uint64    `json:"-"`
	DateFrom   time.Time `json:"dateFrom"`
	DateTo     time.Time `json:"dateTo"`
	Guests     int       `json:"guests"`
	Created    time.Time `json:"created"`
	Updated    time.Time `json:"updated"`
	Venue      *Venue    `json:"venue,omitempty"`
	Customer   *Profile  `json:"customer,omitempty"`
}

// Interval returns the booked range for availability checks.
func (b Booking) Interval() availability.Interval {
	return availability.Interval{DateFrom: b.DateFrom, DateTo: b.DateTo}
}

// Intervals converts a booking list for availability checks.
func Intervals(bookings []Booking) []availability.Interval {
	out := make([]availability.Interval, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.Interval())
	}
	return out
}

// BookingInput is the body of POST /v1/bookings. Dates are ISO strings
// (2006-01-02 or RFC 3339); missing dates are reported by the availability
// check rather than the validator.
type BookingInput struct {
	VenueID  string `json:"venueId" validate:"required,uuid"`
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
	Guests   int    `json:"guests" validate:"min=1,max=100"`
}

// BookingUpdate is the body of PUT /v1/bookings/:id. Nil fields keep their value.
type BookingUpdate struct {
	DateFrom *string `json:"dateFrom"`
	DateTo   *string `json:"dateTo"`
	Guests   *int    `json:"guests" validate:"omitempty,min=1,max=100"`
}

// AvailabilityCheck is the body of POST /v1/venues/:id/availability/check.
type AvailabilityCheck struct {
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
	Guests   int    `json:"guests" validate:"min=0,max=100"`
}

// AvailabilityResult answers an AvailabilityCheck.
type AvailabilityResult struct {
	Valid      bool               `json:"valid"`
	Error      string             `json:"error,omitempty"`
	Conflicts  []availability.Day `json:"conflicts,omitempty"`
	Nights     int                `json:"nights"`
	TotalPrice float64            `json:"totalPrice"`
}

// VenueAvailability lists the blocked days of a venue.
type VenueAvailability struct {
	VenueID       string               `json:"venueId"`
	Policy        string               `json:"policy"`
	BlockedDays   []availability.Day   `json:"blockedDays"`
	BlockedRanges []availability.Range `json:"blockedRanges"`
}
