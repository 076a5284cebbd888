package middleware

// identity.go holds the typed principal that JWTAuth attaches to a request.
// Handlers and other middleware read the caller only through PrincipalFrom.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/holidaze/internal/model"
)

const principalKey = "holidaze.principal"

// Principal is the authenticated caller.
type Principal struct {
	UserID uint64 `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// IsManager reports whether the caller may manage venues.
func (p Principal) IsManager() bool { return p.Role == model.RoleManager }

// SetPrincipal attaches p to the request context.
func SetPrincipal(c echo.Context, p Principal) { c.Set(principalKey, p) }

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok && p.UserID != 0
}

// userID returns the caller's ID as a string, or "guest".
func userID(c echo.Context) string {
	if p, ok := PrincipalFrom(c); ok {
		return strconv.FormatUint(p.UserID, 10)
	}
	return "guest"
}
