package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/holidaze/internal/handler"
	"github.com/iliyamo/holidaze/internal/middleware"
)

// RegisterManager registers MANAGER-scoped endpoints under /v1. Creating a
// venue needs the role; changing or deleting one only needs to own it, so a
// manager who switched back to CUSTOMER can still clean up.
func RegisterManager(e *echo.Echo, v *handler.VenueHandler, b *handler.BookingHandler, jwtSecret string) {
	auth := middleware.JWTAuth(jwtSecret)
	manager := middleware.RequireRole("MANAGER")

	// ---- Venues ----
	e.POST("/v1/venues", v.Create, auth, manager)
	e.PUT("/v1/venues/:id", v.Update, auth)
	e.DELETE("/v1/venues/:id", v.Delete, auth)

	// ---- Bookings on my venues ----
	g := e.Group("/v1/manager", auth, manager)
	g.GET("/bookings", b.ManagerList)
}
