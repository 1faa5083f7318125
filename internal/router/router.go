package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/cinema-seat-hold/internal/handler" // handlers implementing the API
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance: the health check and the public catalog.
// The hall layout never changes while the process runs, so it is served
// through cache; live seat status never is.  cache may be nil.
func RegisterRoutes(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	// Load balancers and monitoring probe this endpoint.
	e.GET("/healthz", handler.Health)

	g := e.Group("/v1")
	g.GET("/showtimes", p.ListShowtimes)
	g.GET("/showtimes/:id/seats", p.GetSeatStatuses)
	g.GET("/halls/:id/seats", p.GetHallLayout, orNoop(cache))
}

// orNoop substitutes a pass-through for a nil middleware.
func orNoop(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	if mw == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return mw
}
