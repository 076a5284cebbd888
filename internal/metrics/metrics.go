package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "booking_attempts_total",
			Help:      "Booking create attempts by outcome.",
		},
		[]string{"outcome"},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "booking_cancelled_total",
			Help:      "Count of bookings cancelled by customers or venue managers.",
		},
	)

	availabilityChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "availability_checks_total",
			Help:      "Availability checks by result.",
		},
		[]string{"result"},
	)

	venueOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "venue_operations_total",
			Help:      "Venue writes by operation.",
		},
		[]string{"op"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "holidaze",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingCancelled, availabilityChecks, venueOps, httpDuration)
	})
}

// Booking outcomes.
const (
	OutcomeCreated  = "created"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

func IncBookingAttempt(outcome string) {
	bookingCreated.WithLabelValues(outcome).Inc()
}

func IncBookingCancelled() {
	bookingCancelled.Inc()
}

func IncAvailabilityCheck(valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	availabilityChecks.WithLabelValues(result).Inc()
}

func IncVenueOp(op string) {
	venueOps.WithLabelValues(op).Inc()
}

// ObserveRequest records one served request. route is the echo route
// pattern, not the raw path, to keep label cardinality bounded.
func ObserveRequest(method, route string, status int, took time.Duration) {
	httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(took.Seconds())
}
