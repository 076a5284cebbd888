package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/holidaze/internal/availability"
	"github.com/iliyamo/holidaze/internal/config"
	"github.com/iliyamo/holidaze/internal/middleware"
	"github.com/iliyamo/holidaze/internal/model"
	"github.com/iliyamo/holidaze/internal/queue"
	"github.com/iliyamo/holidaze/internal/utils"
)

const testSecret = "handler-secret"

type app struct {
	e        *echo.Echo
	users    *memUsers
	tokens   *memTokens
	venues   *memVenues
	bookings *memBookings
	events   *recPublisher
	now      time.Time
}

func newApp(t *testing.T) *app {
	t.Helper()
	a := &app{users: newMemUsers(), tokens: newMemTokens(), venues: newMemVenues(), events: &recPublisher{}}
	a.bookings = newMemBookings(a.venues)

	a.now = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	calc := availability.Calculator{
		Location:    time.UTC,
		MaxNights:   30,
		HorizonDays: 365,
		Now:         func() time.Time { return a.now },
	}
	cfg := config.Config{JWTSecret: testSecret, AccessTTLMin: 15, RefreshTTLDays: 30, BcryptCost: 4}

	e := echo.New()
	e.Validator = NewValidator()
	e.Use(middleware.OptionalAuth(testSecret))
	auth := middleware.JWTAuth(testSecret)
	manager := middleware.RequireRole(model.RoleManager)

	ah := NewAuthHandler(cfg, a.users, a.tokens)
	vh := NewVenueHandler(a.venues, a.bookings, a.users, calc)
	avh := NewAvailabilityHandler(a.venues, a.bookings, calc)
	bh := NewBookingHandler(a.venues, a.bookings, a.users, calc, a.events)
	ph := NewProfileHandler(a.users, a.venues, a.bookings)

	e.POST("/v1/auth/register", ah.Register)
	e.POST("/v1/auth/login", ah.Login)
	e.POST("/v1/auth/refresh", ah.Refresh)
	e.POST("/v1/auth/refresh-access", ah.RefreshAccess)
	e.POST("/v1/auth/logout", ah.Logout)
	e.GET("/v1/me", ah.Me, auth)

	e.GET("/v1/venues", vh.List)
	e.GET("/v1/venues/search", vh.Search)
	e.GET("/v1/venues/:id", vh.Get)
	e.POST("/v1/venues", vh.Create, auth, manager)
	e.PUT("/v1/venues/:id", vh.Update, auth)
	e.DELETE("/v1/venues/:id", vh.Delete, auth)
	e.GET("/v1/venues/:id/availability", avh.Get)
	e.POST("/v1/venues/:id/availability/check", avh.Check)

	e.POST("/v1/bookings", bh.Create, auth)
	e.GET("/v1/bookings/:id", bh.Get, auth)
	e.PUT("/v1/bookings/:id", bh.Update, auth)
	e.DELETE("/v1/bookings/:id", bh.Delete, auth)
	e.GET("/v1/manager/bookings", bh.ManagerList, auth, manager)

	e.GET("/v1/profiles/:name", ph.Get, auth)
	e.PUT("/v1/profiles/:name", ph.Update, auth)
	e.GET("/v1/profiles/:name/bookings", ph.Bookings, auth)
	e.GET("/v1/profiles/:name/venues", ph.Venues, auth)

	a.e = e
	return a
}

func (a *app) do(method, path, body, bearer string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// user stores an account and returns its id and an access token.
func (a *app) user(t *testing.T, name, role string) (uint64, string) {
	t.Helper()
	id, err := a.users.Create(context.Background(), model.User{Name: name, Email: name + "@example.com", Role: role}, "password123", 4)
	require.NoError(t, err)
	at, err := utils.NewAccessToken(testSecret, id, name, role, 5)
	require.NoError(t, err)
	return id, at.Token
}

// venue creates a venue through the API and returns its id.
func (a *app) venue(t *testing.T, bearer string, maxGuests int, price float64) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Fjord cabin","description":"By the water","price":%g,"maxGuests":%d,"meta":{"wifi":true}}`, price, maxGuests)
	rec := a.do(http.MethodPost, "/v1/venues", body, bearer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		Data model.Venue `json:"data"`
	}
	decode(t, rec, &out)
	return out.Data.ID
}

func (a *app) book(t *testing.T, bearer, venueID, from, to string, guests int) *httptest.ResponseRecorder {
	t.Helper()
	body := fmt.Sprintf(`{"venueId":%q,"dateFrom":%q,"dateTo":%q,"guests":%d}`, venueID, from, to, guests)
	return a.do(http.MethodPost, "/v1/bookings", body, bearer)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func bookingID(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Data model.Booking `json:"data"`
	}
	decode(t, rec, &out)
	require.NotEmpty(t, out.Data.ID)
	return out.Data.ID
}

func TestRegisterAndLogin(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodPost, "/v1/auth/register",
		`{"name":"ola_n","email":"Ola@Example.com","password":"supersecret","venueManager":true}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp authResp
	decode(t, rec, &resp)
	assert.Equal(t, "ola_n", resp.Profile.Name)
	assert.Equal(t, "ola@example.com", resp.Profile.Email)
	assert.True(t, resp.Profile.VenueManager)
	assert.NotEmpty(t, resp.Access.Token)
	assert.Len(t, resp.Refresh.Token, 96)

	claims, err := utils.ParseAccessToken(testSecret, resp.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, claims.Role)

	dup := a.do(http.MethodPost, "/v1/auth/register", `{"name":"ola_n","email":"other@example.com","password":"supersecret"}`, "")
	assert.Equal(t, http.StatusConflict, dup.Code)
	dup = a.do(http.MethodPost, "/v1/auth/register", `{"name":"kari","email":"ola@example.com","password":"supersecret"}`, "")
	assert.Equal(t, http.StatusConflict, dup.Code)

	bad := a.do(http.MethodPost, "/v1/auth/register", `{"name":"ola n","email":"not-an-email","password":"short"}`, "")
	require.Equal(t, http.StatusBadRequest, bad.Code)
	var verr struct {
		Fields map[string]string `json:"fields"`
	}
	decode(t, bad, &verr)
	assert.Equal(t, map[string]string{"name": "username", "email": "email", "password": "min"}, verr.Fields)

	ok := a.do(http.MethodPost, "/v1/auth/login", `{"email":"OLA@example.com","password":"supersecret"}`, "")
	assert.Equal(t, http.StatusOK, ok.Code, ok.Body.String())
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/v1/auth/login", `{"email":"ola@example.com","password":"wrongpass"}`, "").Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/v1/auth/login", `{"email":"nobody@example.com","password":"wrongpass"}`, "").Code)
}

func TestRefreshRotatesAndLogout(t *testing.T) {
	a := newApp(t)
	rec := a.do(http.MethodPost, "/v1/auth/register", `{"name":"kari","email":"kari@example.com","password":"supersecret"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var first authResp
	decode(t, rec, &first)

	body := fmt.Sprintf(`{"refresh_token":%q}`, first.Refresh.Token)
	rec = a.do(http.MethodPost, "/v1/auth/refresh", body, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var second authResp
	decode(t, rec, &second)
	assert.NotEqual(t, first.Refresh.Token, second.Refresh.Token)

	// The rotated token is spent.
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/v1/auth/refresh", body, "").Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/v1/auth/refresh", `{}`, "").Code)

	next := fmt.Sprintf(`{"refresh_token":%q}`, second.Refresh.Token)
	assert.Equal(t, http.StatusOK, a.do(http.MethodPost, "/v1/auth/refresh-access", next, "").Code)

	// Logout with only a bearer revokes every refresh token of the user.
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodPost, "/v1/auth/logout", "", second.Access.Token).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/v1/auth/refresh-access", next, "").Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/v1/auth/logout", "", "").Code)
}

func TestMe(t *testing.T) {
	a := newApp(t)
	id, tok := a.user(t, "kari", model.RoleCustomer)

	rec := a.do(http.MethodGet, "/v1/me", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"name":"kari","role":"CUSTOMER"}`, id), rec.Body.String())
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/v1/me", "", "").Code)
}

func TestVenueCRUD(t *testing.T) {
	a := newApp(t)
	_, owner := a.user(t, "owner", model.RoleManager)
	_, other := a.user(t, "other", model.RoleManager)
	_, customer := a.user(t, "kari", model.RoleCustomer)

	id := a.venue(t, owner, 4, 120)

	rec := a.do(http.MethodGet, "/v1/venues/"+id+"?_owner=true", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Data model.Venue `json:"data"`
	}
	decode(t, rec, &got)
	assert.Equal(t, "Fjord cabin", got.Data.Name)
	assert.True(t, got.Data.Meta.Wifi)
	assert.Equal(t, []model.Media{}, got.Data.Media)
	require.NotNil(t, got.Data.Owner)
	assert.Equal(t, "owner", got.Data.Owner.Name)

	body := `{"name":"Cabin","description":"Lake","price":90,"maxGuests":2}`
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/v1/venues", body, customer).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/v1/venues", body, "").Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/v1/venues", `{"name":"Cabin","price":0,"maxGuests":2}`, owner).Code)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPut, "/v1/venues/"+id, body, other).Code)
	rec = a.do(http.MethodPut, "/v1/venues/"+id, body, owner)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &got)
	assert.Equal(t, "Cabin", got.Data.Name)
	assert.Equal(t, 2, got.Data.MaxGuests)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/v1/venues/missing", "", "").Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodDelete, "/v1/venues/"+id, "", other).Code)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/v1/venues/"+id, "", owner).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/v1/venues/"+id, "", owner).Code)
}

func TestVenueListPaging(t *testing.T) {
	a := newApp(t)
	_, owner := a.user(t, "owner", model.RoleManager)
	for i := 0; i < 3; i++ {
		a.venue(t, owner, 2, 50)
	}

	rec := a.do(http.MethodGet, "/v1/venues?limit=2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page model.Page[model.Venue]
	decode(t, rec, &page)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 3, page.Meta.TotalCount)
	assert.Equal(t, 2, page.Meta.PageCount)
	assert.True(t, page.Meta.IsFirstPage)
	require.NotNil(t, page.Meta.NextPage)
	assert.Equal(t, 2, *page.Meta.NextPage)

	rec = a.do(http.MethodGet, "/v1/venues?limit=2&page=2", "", "")
	decode(t, rec, &page)
	assert.Len(t, page.Data, 1)
	assert.True(t, page.Meta.IsLastPage)
	assert.Nil(t, page.Meta.NextPage)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/v1/venues?limit=0", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/v1/venues?page=x", "", "").Code)
}

func TestSearchRejectsBadDates(t *testing.T) {
	a := newApp(t)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/v1/venues/search?dateFrom=2024-06-10", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/v1/venues/search?dateFrom=2024-06-12&dateTo=2024-06-10", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/v1/venues/search?dateFrom=june&dateTo=2024-06-10", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/v1/venues/search?guests=0", "", "").Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/v1/venues/search?dateFrom=2024-06-10&dateTo=2024-06-12&q=cabin", "", "").Code)
}

func TestBookingCreate(t *testing.T) {
	a := newApp(t)
	_, owner := a.user(t, "owner", model.RoleManager)
	customerID, customer := a.user(t, "kari", model.RoleCustomer)
	venueID := a.venue(t, owner, 4, 100)

	rec := a.book(t, customer, venueID, "2024-06-10", "2024-06-12", 2)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Data model.Booking `json:"data"`
	}
	decode(t, rec, &created)
	assert.Equal(t, venueID, created.Data.VenueID)
	require.NotNil(t, created.Data.Venue)
	assert.Equal(t, "Fjord cabin", created.Data.Venue.Name)

	ev := a.events.last()
	assert.Equal(t, queue.EventBookingCreated, ev.Type)
	assert.Equal(t, created.Data.ID, ev.BookingID)
	assert.Equal(t, customerID, ev.CustomerID)
	assert.Equal(t, "kari", ev.Customer)
	assert.Equal(t, "2024-06-10", ev.DateFrom)
	assert.Equal(t, "2024-06-12", ev.DateTo)
	assert.Equal(t, 2, ev.Nights)
	assert.InDelta(t, 200.0, ev.TotalPrice, 0.001)

	// The checkout day of the first stay is still blocked.
	rec = a.book(t, customer, venueID, "2024-06-12", "2024-06-14", 2)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"selected dates overlap an existing booking","conflicts":["2024-06-12"]}`, rec.Body.String())

	rec = a.book(t, customer, venueID, "2024-06-20", "", 2)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "both dates are required")

	assert.Equal(t, http.StatusBadRequest, a.book(t, customer, venueID, "2024-06-22", "2024-06-20", 2).Code)
	assert.Equal(t, http.StatusBadRequest, a.book(t, customer, venueID, "2024-06-20", "2024-06-22", 5).Code)
	assert.Equal(t, http.StatusBadRequest, a.book(t, customer, venueID, "2024-06-20", "2024-06-22", 0).Code)
	assert.Equal(t, http.StatusBadRequest, a.book(t, customer, "not-a-uuid", "2024-06-20", "2024-06-22", 1).Code)
	assert.Equal(t, http.StatusNotFound, a.book(t, customer, "9b2f5d4e-0c1a-4f0e-8a7b-3c2d1e0f9a8b", "2024-06-20", "2024-06-22", 1).Code)
	assert.Equal(t, http.StatusUnauthorized, a.book(t, "", venueID, "2024-06-20", "2024-06-22", 1).Code)

	// RFC 3339 timestamps from browsers land on the same calendar day.
	rec = a.book(t, customer, venueID, "2024-07-01T00:00:00.000Z", "2024-07-03T00:00:00.000Z", 1)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, a.events.events, 2)
}

func TestAvailability(t *testing.T) {
	a := newApp(t)
	_, owner := a.user(t, "owner", model.RoleManager)
	_, customer := a.user(t, "kari", model.RoleCustomer)
	venueID := a.venue(t, owner, 4, 80)

	rec := a.do(http.MethodGet, "/v1/venues/"+venueID+"/availability", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"venueId":%q,"policy":"inclusive","blockedDays":[],"blockedRanges":[]}`, venueID), rec.Body.String())

	require.Equal(t, http.StatusCreated, a.book(t, customer, venueID, "2024-06-10", "2024-06-12", 2).Code)
	require.Equal(t, http.StatusCreated, a.book(t, customer, venueID, "2024-06-20", "2024-06-20", 1).Code)

	rec = a.do(http.MethodGet, "/v1/venues/"+venueID+"/availability", "", "")
	var av model.VenueAvailability
	decode(t, rec, &av)
	assert.Len(t, av.BlockedDays, 4)
	require.Len(t, av.BlockedRanges, 2)
	assert.Equal(t, "2024-06-10", av.BlockedRanges[0].From.String())
	assert.Equal(t, "2024-06-12", av.BlockedRanges[0].To.String())
	assert.Equal(t, "2024-06-20", av.BlockedRanges[1].From.String())

	check := func(body string) model.AvailabilityResult {
		rec := a.do(http.MethodPost, "/v1/venues/"+venueID+"/availability/check", body, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res model.AvailabilityResult
		decode(t, rec, &res)
		return res
	}

	res := check(`{"dateFrom":"2024-06-13","dateTo":"2024-06-16","guests":2}`)
	assert.True(t, res.Valid)
	assert.Equal(t, 3, res.Nights)
	assert.InDelta(t, 240.0, res.TotalPrice, 0.001)

	res = check(`{"dateFrom":"2024-06-08","dateTo":"2024-06-10","guests":2}`)
	assert.False(t, res.Valid)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "2024-06-10", res.Conflicts[0].String())

	res = check(`{"dateFrom":"2024-06-13","guests":2}`)
	assert.False(t, res.Valid)
	assert.Equal(t, "both dates are required", res.Error)

	res = check(`{"dateFrom":"2024-06-13","dateTo":"2024-06-14","guests":9}`)
	assert.False(t, res.Valid)
	assert.Equal(t, 1, res.Nights)

	res = check(`{"dateFrom":"2024-05-20","dateTo":"2024-05-22","guests":2}`)
	assert.False(t, res.Valid)
	assert.Equal(t, "start date is in the past", res.Error)

	res = check(`{"dateFrom":"1000-01-01","dateTo":"9999-12-31","guests":2}`)
	assert.False(t, res.Valid)
	assert.Equal(t, "start date is in the past", res.Error)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/v1/venues/missing/availability", "", "").Code)
}

func TestBookingStayLimits(t *testing.T) {
	a := newApp(t)
	_, owner := a.user(t, "owner", model.RoleManager)
	_, customer := a.user(t, "kari", model.RoleCustomer)
	venueID := a.venue(t, owner, 4, 100)

	for _, tc := range []struct {
		from, to, msg string
	}{
		{"1000-01-01", "9999-12-31", "start date is in the past"},
		{"2001-01-01", "2001-01-03", "start date is in the past"},
		{"0001-01-01", "0001-01-03", "start date is in the past"},
		{"2024-06-10", "2024-07-11", "stay is longer than allowed"},
		{"2024-06-02", "9999-12-31", "dates are too far in the future"},
		{"2025-06-01", "2025-06-03", "dates are too far in the future"},
	} {
		rec := a.book(t, customer, venueID, tc.from, tc.to, 1)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%s..%s", tc.from, tc.to)
		assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tc.msg), rec.Body.String())
	}
	assert.Empty(t, a.events.events)

	require.Equal(t, http.StatusCreated, a.book(t, customer, venueID, "2024-06-01", "2024-06-05", 1).Code)
	require.Equal(t, http.StatusCreated, a.book(t, customer, venueID, "2024-06-10", "2024-07-10", 1).Code)

	rec := a.do(http.MethodGet, "/v1/venues/"+venueID+"/availability", "", "")
	var av model.VenueAvailability
	decode(t, rec, &av)
	assert.Len(t, av.BlockedDays, 5+31)

	rec = a.do(http.MethodGet, "/v1/venues/search?dateFrom=2024-06-10&dateTo=2024-08-10", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = a.do(http.MethodGet, "/v1/venues/search?dateFrom=2024-05-10&dateTo=2024-05-12", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingUpdateDuringStay(t *testing.T) {
	a := newApp(t)
	_, owner := a.user(t, "owner", model.RoleManager)
	_, customer := a.user(t, "kari", model.RoleCustomer)
	venueID := a.venue(t, owner, 4, 100)

	rec := a.book(t, customer, venueID, "2024-06-01", "2024-06-05", 1)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := bookingID(t, rec)

	a.now = time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, http.StatusOK, a.do(http.MethodPut, "/v1/bookings/"+id, `{"guests":3}`, customer).Code)

	rec = a.do(http.MethodPut, "/v1/bookings/"+id, `{"dateTo":"2024-06-06"}`, customer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"start date is in the past"}`, rec.Body.String())

	rec = a.do(http.MethodPut, "/v1/bookings/"+id, `{"dateFrom":"2024-06-03","dateTo":"2024-06-06"}`, customer)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestBookingAccess(t *testing.T) {
	a := newApp(t)
	_, owner := a.user(t, "owner", model.RoleManager)
	_, customer := a.user(t, "kari", model.RoleCustomer)
	_, stranger := a.user(t, "per", model.RoleCustomer)
	venueID := a.venue(t, owner, 4, 100)

	rec := a.book(t, customer, venueID, "2024-06-10", "2024-06-12", 2)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := bookingID(t, rec)
	require.Equal(t, http.StatusCreated, a.book(t, customer, venueID, "2024-06-20", "2024-06-22", 2).Code)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/v1/bookings/"+id, "", stranger).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/v1/bookings/missing", "", customer).Code)

	rec = a.do(http.MethodGet, "/v1/bookings/"+id+"?_venue=true&_customer=true", "", owner)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Data model.Booking `json:"data"`
	}
	decode(t, rec, &got)
	require.NotNil(t, got.Data.Venue)
	require.NotNil(t, got.Data.Customer)
	assert.Equal(t, "kari", got.Data.Customer.Name)

	// Moving a stay may overlap its own old dates but not another booking.
	assert.Equal(t, http.StatusOK, a.do(http.MethodPut, "/v1/bookings/"+id, `{"dateFrom":"2024-06-11","dateTo":"2024-06-13"}`, customer).Code)
	assert.Equal(t, queue.EventBookingUpdated, a.events.last().Type)
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPut, "/v1/bookings/"+id, `{"dateTo":"2024-06-21"}`, customer).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPut, "/v1/bookings/"+id, `{"guests":5}`, customer).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPut, "/v1/bookings/"+id, `{"guests":1}`, owner).Code)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodDelete, "/v1/bookings/"+id, "", stranger).Code)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/v1/bookings/"+id, "", owner).Code)
	ev := a.events.last()
	assert.Equal(t, queue.EventBookingCancelled, ev.Type)
	assert.Equal(t, "kari", ev.Customer)
	assert.Equal(t, "2024-06-11", ev.DateFrom)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/v1/bookings/"+id, "", owner).Code)
}

func TestManagerBookings(t *testing.T) {
	a := newApp(t)
	_, owner := a.user(t, "owner", model.RoleManager)
	_, other := a.user(t, "other", model.RoleManager)
	_, customer := a.user(t, "kari", model.RoleCustomer)
	mine := a.venue(t, owner, 4, 100)
	theirs := a.venue(t, other, 4, 100)

	for _, from := range []string{"2024-06-01", "2024-06-05", "2024-06-09"} {
		require.Equal(t, http.StatusCreated, a.book(t, customer, mine, from, from, 1).Code)
	}
	require.Equal(t, http.StatusCreated, a.book(t, customer, theirs, "2024-06-01", "2024-06-02", 1).Code)

	rec := a.do(http.MethodGet, "/v1/manager/bookings?limit=2", "", owner)
	require.Equal(t, http.StatusOK, rec.Code)
	var page model.Page[model.Booking]
	decode(t, rec, &page)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 3, page.Meta.TotalCount)
	assert.Equal(t, 2, page.Meta.PageCount)
	for _, b := range page.Data {
		require.NotNil(t, b.Venue)
		require.NotNil(t, b.Customer)
		assert.Equal(t, mine, b.Venue.ID)
	}

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/v1/manager/bookings", "", customer).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/v1/manager/bookings?limit=101", "", owner).Code)
}

func TestProfiles(t *testing.T) {
	a := newApp(t)
	_, owner := a.user(t, "owner", model.RoleManager)
	_, customer := a.user(t, "kari", model.RoleCustomer)
	venueID := a.venue(t, owner, 4, 100)
	require.Equal(t, http.StatusCreated, a.book(t, customer, venueID, "2024-06-10", "2024-06-12", 2).Code)

	rec := a.do(http.MethodGet, "/v1/profiles/owner", "", customer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"venueManager":true`)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/v1/profiles/nobody", "", customer).Code)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPut, "/v1/profiles/owner", `{"bio":"hi"}`, customer).Code)
	rec = a.do(http.MethodPut, "/v1/profiles/kari", `{"bio":"Loves fjords","venueManager":true}`, customer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bio":"Loves fjords"`)
	assert.Contains(t, rec.Body.String(), `"venueManager":true`)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/v1/profiles/owner/bookings", "", customer).Code)
	rec = a.do(http.MethodGet, "/v1/profiles/kari/bookings?_venue=true", "", customer)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine struct {
		Data []model.Booking `json:"data"`
	}
	decode(t, rec, &mine)
	require.Len(t, mine.Data, 1)
	require.NotNil(t, mine.Data[0].Venue)

	rec = a.do(http.MethodGet, "/v1/profiles/owner/venues", "", customer)
	require.Equal(t, http.StatusOK, rec.Code)
	var venues model.Page[model.Venue]
	decode(t, rec, &venues)
	assert.Len(t, venues.Data, 1)
	assert.Equal(t, 1, venues.Meta.TotalCount)
}
