package router

import (
	"github.com/iliyamo/cinema-seat-hold/internal/handler"
	"github.com/iliyamo/cinema-seat-hold/internal/middleware"
	"github.com/iliyamo/cinema-seat-hold/internal/utils"
	"github.com/labstack/echo/v4"
)

// RegisterCustomer registers the hold lifecycle endpoints under /v1.  All
// routes require a valid JWT; any role may hold seats, so staff can
// book at the box office too.  limiter throttles each caller and may be
// nil.
func RegisterCustomer(e *echo.Echo, h *handler.HoldHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleCustomer, utils.RoleStaff, utils.RoleAdmin),
		orNoop(limiter),
	)
	g.POST("/showtimes/:id/holds", h.AcquireHold)
	g.GET("/holds/:id", h.GetHold)
	g.POST("/holds/:id/renew", h.RenewHold)
	g.POST("/holds/:id/commit", h.CommitHold)
	g.DELETE("/holds/:id", h.ReleaseHold)
}
