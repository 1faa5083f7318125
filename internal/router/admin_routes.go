package router

import (
	"github.com/iliyamo/cinema-seat-hold/internal/handler"
	"github.com/iliyamo/cinema-seat-hold/internal/middleware"
	"github.com/iliyamo/cinema-seat-hold/internal/utils"
	"github.com/labstack/echo/v4"
)

// RegisterAdmin registers the back-office endpoints under /v1/admin.
// They require a valid JWT and the ADMIN or STAFF role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleAdmin, utils.RoleStaff),
	)
	g.GET("/holds", a.ListHolds)
	g.GET("/holds/stats", a.HoldStats)
	g.DELETE("/holds/:id", a.ForceRelease)
}
