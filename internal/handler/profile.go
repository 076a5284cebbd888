package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/holidaze/internal/model"
	"github.com/iliyamo/holidaze/internal/repository"
)

// ProfileHandler serves /v1/profiles.
type ProfileHandler struct {
	Users UserStore

	venues   VenueStore
	bookings BookingStore
}

func NewProfileHandler(u UserStore, v VenueStore, b BookingStore) *ProfileHandler {
	return &ProfileHandler{Users: u, venues: v, bookings: b}
}

// lookup loads the user named in the path.
func (h *ProfileHandler) lookup(c echo.Context) (model.User, bool, error) {
	ctx, cancel := dbCtx(c)
	defer cancel()
	u, err := h.Users.GetByName(ctx, c.Param("name"))
	if errors.Is(err, repository.ErrNotFound) {
		return u, false, errJSON(c, http.StatusNotFound, "profile not found")
	}
	if err != nil {
		return u, false, internalError(c, "load profile failed", err)
	}
	return u, true, nil
}

// Get returns a profile with its venue and booking counts.
func (h *ProfileHandler) Get(c echo.Context) error {
	u, ok, err := h.lookup(c)
	if !ok {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	counts, err := h.Users.Counts(ctx, u.ID)
	if err != nil {
		return internalError(c, "count profile failed", err)
	}
	p := u.Profile()
	p.Count = &counts
	return c.JSON(http.StatusOK, echo.Map{"data": p})
}

// Update changes the caller's own profile. Setting venueManager switches the
// account between CUSTOMER and MANAGER; the new role reaches the access
// token on the next refresh.
func (h *ProfileHandler) Update(c echo.Context) error {
	p, ok, err := caller(c)
	if !ok {
		return err
	}
	if c.Param("name") != p.Name {
		return errJSON(c, http.StatusForbidden, "you can only update your own profile")
	}
	var upd model.ProfileUpdate
	if ok, err := bindValid(c, &upd); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	u, err := h.Users.UpdateProfile(ctx, p.UserID, upd)
	if err != nil {
		return repoError(c, "update profile failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": u.Profile()})
}

// Bookings lists the caller's own bookings; ?_venue=true embeds each venue.
func (h *ProfileHandler) Bookings(c echo.Context) error {
	p, ok, err := caller(c)
	if !ok {
		return err
	}
	if c.Param("name") != p.Name {
		return errJSON(c, http.StatusForbidden, "you can only view your own bookings")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.bookings.ListByCustomer(ctx, p.UserID)
	if err != nil {
		return internalError(c, "list bookings failed", err)
	}
	if boolParam(c, "_venue") {
		if err := attachVenues(ctx, h.venues, items); err != nil {
			return internalError(c, "load venues failed", err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// Venues lists the venues managed by the named profile.
func (h *ProfileHandler) Venues(c echo.Context) error {
	page, limit, err := parsePage(c)
	if err != nil {
		return errJSON(c, http.StatusBadRequest, err.Error())
	}
	u, ok, err := h.lookup(c)
	if !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	items, total, err := h.venues.List(ctx, repository.VenueQuery{OwnerID: u.ID, Page: page, Limit: limit})
	if err != nil {
		return internalError(c, "list venues failed", err)
	}
	return c.JSON(http.StatusOK, model.Page[model.Venue]{Data: items, Meta: model.NewPageMeta(page, limit, total)})
}
