package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/holidaze/internal/availability"
	"github.com/iliyamo/holidaze/internal/metrics"
	"github.com/iliyamo/holidaze/internal/middleware"
	"github.com/iliyamo/holidaze/internal/model"
	"github.com/iliyamo/holidaze/internal/queue"
	"github.com/iliyamo/holidaze/internal/repository"
	"github.com/iliyamo/holidaze/internal/service"
)

// BookingHandler serves /v1/bookings and the manager booking overview.
type BookingHandler struct {
	Venues   VenueStore
	Bookings BookingStore
	Users    UserStore
	Calc     availability.Calculator
	Events   service.EventPublisher
}

func NewBookingHandler(v VenueStore, b BookingStore, u UserStore, calc availability.Calculator, events service.EventPublisher) *BookingHandler {
	if events == nil {
		events = service.NopPublisher{}
	}
	return &BookingHandler{Venues: v, Bookings: b, Users: u, Calc: calc, Events: events}
}

// publishTimeout bounds a best-effort event publish after commit.
const publishTimeout = 3 * time.Second

func (h *BookingHandler) publish(typ string, b model.Booking, v model.Venue, customer string) {
	nights := availability.NightsBetween(b.DateFrom, b.DateTo)
	ev := queue.BookingEvent{
		Type:       typ,
		BookingID:  b.ID,
		VenueID:    v.ID,
		VenueName:  v.Name,
		CustomerID: b.CustomerID,
		Customer:   customer,
		DateFrom:   h.Calc.Day(b.DateFrom).String(),
		DateTo:     h.Calc.Day(b.DateTo).String(),
		Nights:     nights,
		Guests:     b.Guests,
		TotalPrice: float64(nights) * v.Price,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := h.Events.Publish(ctx, ev); err != nil {
		slog.Warn("booking event not published", "type", typ, "booking_id", b.ID, "err", err)
	}
}

// parseStay reads both dates and validates them against blocked. With
// limits set the stay must also pass Calc.CheckStay. The returned error is
// written with rangeError.
func (h *BookingHandler) parseStay(from, to string, blocked availability.BlockedSet, limits bool) (start, end time.Time, err error) {
	s, err := parseOptionalDate(from, h.Calc.Location)
	if err != nil {
		return start, end, err
	}
	e, err := parseOptionalDate(to, h.Calc.Location)
	if err != nil {
		return start, end, err
	}
	check := h.Calc.IsValidRange
	if limits {
		check = h.Calc.ValidateStay
	}
	if err := check(s, e, blocked); err != nil {
		return start, end, err
	}
	return *s, *e, nil
}

// blockedExcept expands every booking of a venue except the one with id skip.
func (h *BookingHandler) blockedExcept(ctx context.Context, venueID, skip string) (availability.BlockedSet, error) {
	items, err := h.Bookings.ListByVenue(ctx, venueID)
	if err != nil {
		return nil, err
	}
	others := items[:0]
	for _, b := range items {
		if b.ID != skip {
			others = append(others, b)
		}
	}
	return h.Calc.Expand(model.Intervals(others)), nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, availability.ErrRangeOverlapsBooking):
		return metrics.OutcomeConflict
	case errors.Is(err, availability.ErrMissingDate), errors.Is(err, availability.ErrInvertedRange),
		errors.Is(err, availability.ErrPastDate), errors.Is(err, availability.ErrStayTooLong),
		errors.Is(err, availability.ErrBeyondHorizon),
		errors.Is(err, repository.ErrTooManyGuests), errors.Is(err, repository.ErrNotFound):
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeError
}

// storeError writes the response for a failed Create/Update in the store.
func storeError(c echo.Context, msg string, err error) error {
	if errors.Is(err, availability.ErrMissingDate) || errors.Is(err, availability.ErrInvertedRange) ||
		errors.Is(err, availability.ErrRangeOverlapsBooking) {
		return rangeError(c, err)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return errJSON(c, http.StatusNotFound, "venue not found")
	}
	return repoError(c, msg, err)
}

// Create is POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	p, ok, err := caller(c)
	if !ok {
		return err
	}
	var in model.BookingInput
	if ok, err := bindValid(c, &in); !ok {
		metrics.IncBookingAttempt(metrics.OutcomeInvalid)
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	v, err := h.Venues.Get(ctx, in.VenueID)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.IncBookingAttempt(metrics.OutcomeInvalid)
		return errJSON(c, http.StatusNotFound, "venue not found")
	}
	if err != nil {
		return internalError(c, "load venue failed", err)
	}
	if in.Guests > v.MaxGuests {
		metrics.IncBookingAttempt(metrics.OutcomeInvalid)
		return errJSON(c, http.StatusBadRequest, repository.ErrTooManyGuests.Error())
	}
	blocked, err := h.blockedExcept(ctx, v.ID, "")
	if err != nil {
		return internalError(c, "load bookings failed", err)
	}
	start, end, err := h.parseStay(in.DateFrom, in.DateTo, blocked, true)
	if err != nil {
		metrics.IncBookingAttempt(outcomeOf(err))
		return rangeError(c, err)
	}

	b := model.Booking{VenueID: v.ID, CustomerID: p.UserID, DateFrom: start, DateTo: end, Guests: in.Guests}
	if err := h.Bookings.Create(ctx, &b); err != nil {
		metrics.IncBookingAttempt(outcomeOf(err))
		return storeError(c, "create booking failed", err)
	}
	metrics.IncBookingAttempt(metrics.OutcomeCreated)
	slog.Info("booking created", "booking_id", b.ID, "venue_id", v.ID, "customer_id", p.UserID)

	h.publish(queue.EventBookingCreated, b, v, p.Name)
	b.Venue = &v
	return c.JSON(http.StatusCreated, echo.Map{"data": b})
}

// visible loads the booking in the path and its venue, and checks that p is
// the customer or the venue owner.
func (h *BookingHandler) visible(c echo.Context, p middleware.Principal) (model.Booking, model.Venue, bool, error) {
	ctx, cancel := dbCtx(c)
	defer cancel()

	b, err := h.Bookings.Get(ctx, c.Param("id"))
	if err != nil {
		return b, model.Venue{}, false, repoError(c, "load booking failed", err)
	}
	v, err := h.Venues.Get(ctx, b.VenueID)
	if err != nil {
		return b, v, false, repoError(c, "load venue failed", err)
	}
	if b.CustomerID != p.UserID && v.OwnerID != p.UserID {
		return b, v, false, errJSON(c, http.StatusForbidden, "forbidden")
	}
	return b, v, true, nil
}

// Get is GET /v1/bookings/:id?_venue&_customer.
func (h *BookingHandler) Get(c echo.Context) error {
	p, ok, err := caller(c)
	if !ok {
		return err
	}
	b, v, ok, err := h.visible(c, p)
	if !ok {
		return err
	}
	if boolParam(c, "_venue") {
		b.Venue = &v
	}
	if boolParam(c, "_customer") {
		ctx, cancel := dbCtx(c)
		defer cancel()
		one := []model.Booking{b}
		if err := attachCustomers(ctx, h.Users, one); err != nil {
			return internalError(c, "load customer failed", err)
		}
		b = one[0]
	}
	return c.JSON(http.StatusOK, echo.Map{"data": b})
}

// Update is PUT /v1/bookings/:id. Only the customer may change a booking;
// the new stay is checked against every other booking of the venue. Moving
// the dates applies the same limits as a new booking, so a stay already
// under way can still change its guest count.
func (h *BookingHandler) Update(c echo.Context) error {
	p, ok, err := caller(c)
	if !ok {
		return err
	}
	var upd model.BookingUpdate
	if ok, err := bindValid(c, &upd); !ok {
		return err
	}
	b, v, ok, err := h.visible(c, p)
	if !ok {
		return err
	}
	if b.CustomerID != p.UserID {
		return errJSON(c, http.StatusForbidden, "only the customer can change a booking")
	}

	from, to := h.Calc.Day(b.DateFrom).String(), h.Calc.Day(b.DateTo).String()
	if upd.DateFrom != nil {
		from = *upd.DateFrom
	}
	if upd.DateTo != nil {
		to = *upd.DateTo
	}
	if upd.Guests != nil {
		b.Guests = *upd.Guests
	}
	if b.Guests > v.MaxGuests {
		return errJSON(c, http.StatusBadRequest, repository.ErrTooManyGuests.Error())
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	blocked, err := h.blockedExcept(ctx, v.ID, b.ID)
	if err != nil {
		return internalError(c, "load bookings failed", err)
	}
	moved := upd.DateFrom != nil || upd.DateTo != nil
	if b.DateFrom, b.DateTo, err = h.parseStay(from, to, blocked, moved); err != nil {
		return rangeError(c, err)
	}
	if err := h.Bookings.Update(ctx, &b); err != nil {
		return storeError(c, "update booking failed", err)
	}

	h.publish(queue.EventBookingUpdated, b, v, p.Name)
	return c.JSON(http.StatusOK, echo.Map{"data": b})
}

// Delete is DELETE /v1/bookings/:id, allowed for the customer and the venue
// owner.
func (h *BookingHandler) Delete(c echo.Context) error {
	p, ok, err := caller(c)
	if !ok {
		return err
	}
	b, v, ok, err := h.visible(c, p)
	if !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Bookings.Delete(ctx, b.ID); err != nil {
		return repoError(c, "delete booking failed", err)
	}
	metrics.IncBookingCancelled()

	customer := p.Name
	if b.CustomerID != p.UserID {
		if profiles, err := h.Users.ProfilesByID(ctx, []uint64{b.CustomerID}); err == nil {
			customer = profiles[b.CustomerID].Name
		}
	}
	h.publish(queue.EventBookingCancelled, b, v, customer)
	return c.NoContent(http.StatusNoContent)
}

// ManagerList is GET /v1/manager/bookings: bookings on every venue the
// caller manages, with venue and customer embedded.
func (h *BookingHandler) ManagerList(c echo.Context) error {
	p, ok, err := caller(c)
	if !ok {
		return err
	}
	page, limit, err := parsePage(c)
	if err != nil {
		return errJSON(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	items, total, err := h.Bookings.ListForOwner(ctx, p.UserID, page, limit)
	if err != nil {
		return internalError(c, "list bookings failed", err)
	}
	if err := attachVenues(ctx, h.Venues, items); err != nil {
		return internalError(c, "load venues failed", err)
	}
	if err := attachCustomers(ctx, h.Users, items); err != nil {
		return internalError(c, "load customers failed", err)
	}
	return c.JSON(http.StatusOK, model.Page[model.Booking]{Data: items, Meta: model.NewPageMeta(page, limit, total)})
}
