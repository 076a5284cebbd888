// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

import "fmt"

// Event types carried in BookingEvent.Type.
const (
	EventBookingCreated   = "booking.created"
	EventBookingUpdated   = "booking.updated"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is published whenever a booking is created, changed or
// cancelled. It carries enough for consumers to log or notify without
// querying the primary database. Dates are calendar days (2006-01-02) in the
// booking timezone; OccurredAt is RFC 3339 UTC.
type BookingEvent struct {
	Type       string  `json:"type"`
	BookingID  string  `json:"booking_id"`
	VenueID    string  `json:"venue_id"`
	VenueName  string  `json:"venue_name"`
	CustomerID uint64  `json:"customer_id"`
	Customer   string  `json:"customer"`
	DateFrom   string  `json:"date_from"`
	DateTo     string  `json:"date_to"`
	Nights     int     `json:"nights"`
	Guests     int     `json:"guests"`
	TotalPrice float64 `json:"total_price"`
	OccurredAt string  `json:"occurred_at"`
}

// LogLine renders the event as one line of logs/booking.log.
func (e BookingEvent) LogLine() string {
	return fmt.Sprintf("[%s] %s | booking_id=%s | venue_id=%s | venue=%q | customer_id=%d | customer=%q | from=%s | to=%s | nights=%d | guests=%d | total=%.2f\n",
		e.OccurredAt, e.Type, e.BookingID, e.VenueID, e.VenueName, e.CustomerID, e.Customer,
		e.DateFrom, e.DateTo, e.Nights, e.Guests, e.TotalPrice)
}
