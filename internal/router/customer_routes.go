package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/holidaze/internal/handler"
	"github.com/iliyamo/holidaze/internal/middleware"
)

// RegisterCustomer registers the endpoints any signed-in user may call:
// profiles and their own bookings. Ownership checks happen in the handlers.
func RegisterCustomer(e *echo.Echo, p *handler.ProfileHandler, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER", "MANAGER"),
	)

	// ---- Profiles ----
	g.GET("/profiles/:name", p.Get)
	g.PUT("/profiles/:name", p.Update)
	g.GET("/profiles/:name/bookings", p.Bookings)
	g.GET("/profiles/:name/venues", p.Venues)

	// ---- Bookings ----
	g.POST("/bookings", b.Create)
	g.GET("/bookings/:id", b.Get)
	g.PUT("/bookings/:id", b.Update)
	g.DELETE("/bookings/:id", b.Delete)
}
