package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/holidaze/internal/availability"
	"github.com/iliyamo/holidaze/internal/metrics"
	"github.com/iliyamo/holidaze/internal/model"
	"github.com/iliyamo/holidaze/internal/repository"
)

// AvailabilityHandler exposes the blocked days of a venue and a pre-submit
// check of a proposed stay. Both are advisory; BookingHandler.Create checks
// again under a lock.
type AvailabilityHandler struct {
	Venues   VenueStore
	Bookings BookingStore
	Calc     availability.Calculator
}

func NewAvailabilityHandler(v VenueStore, b BookingStore, calc availability.Calculator) *AvailabilityHandler {
	return &AvailabilityHandler{Venues: v, Bookings: b, Calc: calc}
}

// load returns the venue in the path and its blocked set.
func (h *AvailabilityHandler) load(c echo.Context) (model.Venue, availability.BlockedSet, error) {
	ctx, cancel := dbCtx(c)
	defer cancel()

	v, err := h.Venues.Get(ctx, c.Param("id"))
	if err != nil {
		return v, nil, err
	}
	items, err := h.Bookings.ListByVenue(ctx, v.ID)
	if err != nil {
		return v, nil, err
	}
	return v, h.Calc.Expand(model.Intervals(items)), nil
}

// Get is GET /v1/venues/:id/availability.
func (h *AvailabilityHandler) Get(c echo.Context) error {
	v, blocked, err := h.load(c)
	if err != nil {
		return repoError(c, "load availability failed", err)
	}
	ranges := blocked.Ranges()
	if ranges == nil {
		ranges = []availability.Range{}
	}
	return c.JSON(http.StatusOK, model.VenueAvailability{
		VenueID:       v.ID,
		Policy:        h.Calc.Policy.String(),
		BlockedDays:   blocked.Days(),
		BlockedRanges: ranges,
	})
}

// Check is POST /v1/venues/:id/availability/check. It always answers 200
// for a known venue; an unusable stay has valid=false and an error message.
func (h *AvailabilityHandler) Check(c echo.Context) error {
	var req model.AvailabilityCheck
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	v, blocked, err := h.load(c)
	if err != nil {
		return repoError(c, "load availability failed", err)
	}

	res := h.check(v, blocked, req)
	metrics.IncAvailabilityCheck(res.Valid)
	return c.JSON(http.StatusOK, res)
}

func (h *AvailabilityHandler) check(v model.Venue, blocked availability.BlockedSet, req model.AvailabilityCheck) model.AvailabilityResult {
	start, err := parseOptionalDate(req.DateFrom, h.Calc.Location)
	if err != nil {
		return model.AvailabilityResult{Error: err.Error()}
	}
	end, err := parseOptionalDate(req.DateTo, h.Calc.Location)
	if err != nil {
		return model.AvailabilityResult{Error: err.Error()}
	}

	var res model.AvailabilityResult
	if start != nil && end != nil {
		res.Nights = availability.NightsBetween(*start, *end)
		res.TotalPrice = float64(res.Nights) * v.Price
	}
	if err := h.Calc.ValidateStay(start, end, blocked); err != nil {
		var oe *availability.OverlapError
		if errors.As(err, &oe) {
			res.Conflicts = oe.Days
			res.Error = availability.ErrRangeOverlapsBooking.Error()
		} else {
			res.Error = err.Error()
		}
		return res
	}
	if req.Guests > v.MaxGuests {
		res.Error = repository.ErrTooManyGuests.Error()
		return res
	}
	res.Valid = true
	return res
}
