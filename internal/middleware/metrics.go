package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/holidaze/internal/metrics"
)

// RequestMetrics records the latency of every request by route pattern.
// Unmatched routes are grouped under "unmatched".
func RequestMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.ObserveRequest(c.Request().Method, route, status, time.Since(start))
			return err
		}
	}
}
