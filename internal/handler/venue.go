package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/holidaze/internal/availability"
	"github.com/iliyamo/holidaze/internal/metrics"
	"github.com/iliyamo/holidaze/internal/model"
	"github.com/iliyamo/holidaze/internal/repository"
)

// VenueHandler serves venue listing, search and management.
type VenueHandler struct {
	Venues   VenueStore
	Bookings BookingStore
	Users    UserStore
	Calc     availability.Calculator
}

func NewVenueHandler(v VenueStore, b BookingStore, u UserStore, calc availability.Calculator) *VenueHandler {
	return &VenueHandler{Venues: v, Bookings: b, Users: u, Calc: calc}
}

// embed applies ?_owner and ?_bookings.
func (h *VenueHandler) embed(ctx context.Context, c echo.Context, venues []model.Venue) error {
	if boolParam(c, "_owner") {
		if err := attachOwners(ctx, h.Users, venues); err != nil {
			return err
		}
	}
	if boolParam(c, "_bookings") {
		if err := attachBookings(ctx, h.Bookings, venues); err != nil {
			return err
		}
	}
	return nil
}

func (h *VenueHandler) list(c echo.Context, q repository.VenueQuery) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	items, total, err := h.Venues.List(ctx, q)
	if err != nil {
		return internalError(c, "list venues failed", err)
	}
	if err := h.embed(ctx, c, items); err != nil {
		return internalError(c, "load venue details failed", err)
	}
	return c.JSON(http.StatusOK, model.Page[model.Venue]{Data: items, Meta: model.NewPageMeta(q.Page, q.Limit, total)})
}

// List is GET /v1/venues.
func (h *VenueHandler) List(c echo.Context) error {
	page, limit, err := parsePage(c)
	if err != nil {
		return errJSON(c, http.StatusBadRequest, err.Error())
	}
	return h.list(c, repository.VenueQuery{
		Page:      page,
		Limit:     limit,
		Sort:      c.QueryParam("sort"),
		SortOrder: c.QueryParam("sortOrder"),
	})
}

// Search is GET /v1/venues/search. With dateFrom and dateTo, venues that
// have a booking on any day of that stay are left out.
func (h *VenueHandler) Search(c echo.Context) error {
	page, limit, err := parsePage(c)
	if err != nil {
		return errJSON(c, http.StatusBadRequest, err.Error())
	}
	q := repository.VenueQuery{
		Page:      page,
		Limit:     limit,
		Sort:      c.QueryParam("sort"),
		SortOrder: c.QueryParam("sortOrder"),
		Text:      strings.TrimSpace(c.QueryParam("q")),
		City:      c.QueryParam("city"),
		Country:   c.QueryParam("country"),
		Wifi:      boolParam(c, "wifi"),
		Parking:   boolParam(c, "parking"),
		Breakfast: boolParam(c, "breakfast"),
		Pets:      boolParam(c, "pets"),
		Policy:    h.Calc.Policy,
	}
	if s := c.QueryParam("guests"); s != "" {
		g, err := strconv.Atoi(s)
		if err != nil || g < 1 {
			return errJSON(c, http.StatusBadRequest, "guests must be a positive integer")
		}
		q.Guests = g
	}

	rawFrom, rawTo := c.QueryParam("dateFrom"), c.QueryParam("dateTo")
	if rawFrom != "" || rawTo != "" {
		start, err := parseOptionalDate(rawFrom, h.Calc.Location)
		if err != nil {
			return errJSON(c, http.StatusBadRequest, err.Error())
		}
		end, err := parseOptionalDate(rawTo, h.Calc.Location)
		if err != nil {
			return errJSON(c, http.StatusBadRequest, err.Error())
		}
		if err := h.Calc.CheckStay(start, end); err != nil {
			return errJSON(c, http.StatusBadRequest, err.Error())
		}
		q.HasDates = true
		q.From, q.To = h.Calc.Span(*start, *end)
	}
	return h.list(c, q)
}

// Get is GET /v1/venues/:id.
func (h *VenueHandler) Get(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	v, err := h.Venues.Get(ctx, c.Param("id"))
	if err != nil {
		return repoError(c, "load venue failed", err)
	}
	one := []model.Venue{v}
	if err := h.embed(ctx, c, one); err != nil {
		return internalError(c, "load venue details failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": one[0]})
}

// Create is POST /v1/venues (venue managers only).
func (h *VenueHandler) Create(c echo.Context) error {
	p, ok, err := caller(c)
	if !ok {
		return err
	}
	var in model.VenueInput
	if ok, err := bindValid(c, &in); !ok {
		return err
	}
	v := model.Venue{OwnerID: p.UserID}
	in.Apply(&v)

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Venues.Create(ctx, &v); err != nil {
		return internalError(c, "create venue failed", err)
	}
	metrics.IncVenueOp("create")
	slog.Info("venue created", "venue_id", v.ID, "owner_id", p.UserID)
	return c.JSON(http.StatusCreated, echo.Map{"data": v})
}

// Update is PUT /v1/venues/:id (owner only).
func (h *VenueHandler) Update(c echo.Context) error {
	p, ok, err := caller(c)
	if !ok {
		return err
	}
	var in model.VenueInput
	if ok, err := bindValid(c, &in); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	v, err := h.Venues.Update(ctx, c.Param("id"), p.UserID, in)
	if err != nil {
		return repoError(c, "update venue failed", err)
	}
	metrics.IncVenueOp("update")
	return c.JSON(http.StatusOK, echo.Map{"data": v})
}

// Delete is DELETE /v1/venues/:id (owner only). The venue's bookings go
// with it.
func (h *VenueHandler) Delete(c echo.Context) error {
	p, ok, err := caller(c)
	if !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	id := c.Param("id")
	removed, err := h.Venues.Delete(ctx, id, p.UserID)
	if err != nil {
		return repoError(c, "delete venue failed", err)
	}
	metrics.IncVenueOp("delete")
	slog.Info("venue deleted", "venue_id", id, "owner_id", p.UserID, "bookings_removed", removed)
	return c.NoContent(http.StatusNoContent)
}
