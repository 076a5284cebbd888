package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/holidaze/internal/config"
	"github.com/iliyamo/holidaze/internal/handler"
	"github.com/iliyamo/holidaze/internal/middleware"
)

// RegisterMiddleware installs the middleware every route shares. The caller
// is identified before rate limiting so authenticated users get their own
// bucket; the purger runs innermost so it sees the final status.
func RegisterMiddleware(e *echo.Echo, cfg config.Config, rdb *redis.Client) {
	e.Use(middleware.RequestMetrics())
	e.Use(middleware.OptionalAuth(cfg.JWTSecret))
	e.Use(middleware.NewTokenBucket(cfg.RateLimit, rdb))
	e.Use(middleware.NewCachePurger(cfg.Cache, rdb, readOnlyRoutes...))
}

// readOnlyRoutes are POST endpoints that leave venues and bookings alone.
var readOnlyRoutes = []string{
	"/v1/auth/register",
	"/v1/auth/login",
	"/v1/auth/refresh",
	"/v1/auth/refresh-access",
	"/v1/auth/logout",
	"/v1/venues/:id/availability/check",
}

// RegisterRoutes registers the operational endpoints: /healthz for load
// balancers and /metrics for Prometheus.
func RegisterRoutes(e *echo.Echo, deps map[string]handler.Pinger) {
	e.GET("/healthz", handler.Health(deps))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers the session endpoints under /v1/auth and /v1/me.
// Logout accepts either a refresh token in the body or a bearer token, so it
// stays outside the JWT group.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers the guest browse endpoints. Responses are served
// through the Redis cache when one is configured.
func RegisterPublic(e *echo.Echo, v *handler.VenueHandler, av *handler.AvailabilityHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/venues", cache)
	g.GET("", v.List)
	g.GET("/search", v.Search)
	g.GET("/:id", v.Get)
	g.GET("/:id/availability", av.Get)

	// The check is a POST only so it can carry a body; it changes nothing.
	e.POST("/v1/venues/:id/availability/check", av.Check)
}
