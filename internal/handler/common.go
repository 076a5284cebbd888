package handler // handler defines http handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/holidaze/internal/availability"
	"github.com/iliyamo/holidaze/internal/middleware"
	"github.com/iliyamo/holidaze/internal/repository"
)

// dbTimeout bounds every repository call made by a handler.
var dbTimeout = 5 * time.Second

// SetDBTimeout overrides the per-request repository timeout. Call it before
// serving.
func SetDBTimeout(d time.Duration) {
	if d > 0 {
		dbTimeout = d
	}
}

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// errJSON writes {"error": msg}.
func errJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}

// internalError logs err and answers with a generic 500.
func internalError(c echo.Context, msg string, err error) error {
	slog.Error(msg, "err", err, "method", c.Request().Method, "path", c.Path())
	return errJSON(c, http.StatusInternalServerError, msg)
}

// bindValid decodes the body into v and runs the struct validator. On
// failure it writes the 400 response and returns false.
func bindValid(c echo.Context, v interface{}) (bool, error) {
	if err := c.Bind(v); err != nil {
		return false, errJSON(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(v); err != nil {
		if fields := fieldErrors(err); fields != nil {
			return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
		}
		return false, errJSON(c, http.StatusBadRequest, err.Error())
	}
	return true, nil
}

// caller returns the authenticated principal or writes a 401.
func caller(c echo.Context) (middleware.Principal, bool, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return p, false, errJSON(c, http.StatusUnauthorized, "unauthorized")
	}
	return p, true, nil
}

// Paging defaults and bounds.
const (
	defaultLimit = 20
	maxLimit     = 100
)

// parsePage reads ?page and ?limit. page >= 1; limit in 1..100, default 20.
func parsePage(c echo.Context) (page, limit int, err error) {
	page, limit = 1, defaultLimit
	if s := c.QueryParam("page"); s != "" {
		page, err = strconv.Atoi(s)
		if err != nil || page < 1 {
			return 0, 0, errors.New("page must be a positive integer")
		}
	}
	if s := c.QueryParam("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 1 || limit > maxLimit {
			return 0, 0, errors.New("limit must be between 1 and 100")
		}
	}
	return page, limit, nil
}

// boolParam reports whether ?name is "true" or "1".
func boolParam(c echo.Context, name string) bool {
	switch strings.ToLower(c.QueryParam(name)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// parseOptionalDate parses s in loc; an empty string yields nil so the
// calculator can report the missing bound.
func parseOptionalDate(s string, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := availability.ParseDate(s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// rangeError writes the response for a failed availability check. Malformed
// or missing dates are 400; overlaps are 409 and list the conflicting days.
func rangeError(c echo.Context, err error) error {
	var oe *availability.OverlapError
	switch {
	case errors.As(err, &oe):
		return c.JSON(http.StatusConflict, echo.Map{"error": availability.ErrRangeOverlapsBooking.Error(), "conflicts": oe.Days})
	case errors.Is(err, availability.ErrRangeOverlapsBooking):
		return errJSON(c, http.StatusConflict, err.Error())
	default:
		return errJSON(c, http.StatusBadRequest, err.Error())
	}
}

// repoError maps repository sentinels to statuses; anything else is a 500
// logged under msg.
func repoError(c echo.Context, msg string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return errJSON(c, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrForbidden):
		return errJSON(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, repository.ErrConflict):
		return errJSON(c, http.StatusConflict, "conflict")
	case errors.Is(err, repository.ErrTooManyGuests):
		return errJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return errJSON(c, http.StatusGatewayTimeout, "timeout")
	}
	return internalError(c, msg, err)
}
