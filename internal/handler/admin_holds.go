package handler

import (
    "net/http"
    "strconv"
    "time"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-seat-hold/internal/middleware"
    "github.com/iliyamo/cinema-seat-hold/internal/model"
    "github.com/iliyamo/cinema-seat-hold/internal/reservation"
    "github.com/iliyamo/cinema-seat-hold/pkg/logger"
)

// AdminHandler serves the back-office hold views and the force unlock.
// Routes are mounted behind RequireRole(ADMIN, STAFF); the acting staff
// member is the JWT subject.
type AdminHandler struct {
    Holds *reservation.Manager
    Log   *logger.Logger

    validate *validator.Validate
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(holds *reservation.Manager, log *logger.Logger) *AdminHandler {
    if holds == nil {
        panic("nil manager passed to NewAdminHandler")
    }
    return &AdminHandler{Holds: holds, Log: log.WithComponent("admin"), validate: newValidator()}
}

// AdminHold is a hold as shown to staff.  Unlike the customer view it
// exposes the owner.
type AdminHold struct {
    ID               string    `json:"hold_id"`
    ShowtimeID       string    `json:"showtime_id"`
    SeatIDs          []string  `json:"seat_ids"`
    Owner            string    `json:"owner"`
    CreatedAt        time.Time `json:"created_at"`
    ExpiresAt        time.Time `json:"expires_at"`
    RemainingSeconds int       `json:"remaining_seconds"`
}

func toAdminHold(h model.SeatHold, now time.Time) AdminHold {
    return AdminHold{
        ID:               h.ID,
        ShowtimeID:       h.ShowtimeID,
        SeatIDs:          h.SeatIDs,
        Owner:            h.OwnerToken,
        CreatedAt:        h.CreatedAt,
        ExpiresAt:        h.ExpiresAt,
        RemainingSeconds: int(h.Remaining(now).Seconds()),
    }
}

// parseWithin accepts a Go duration ("2m") or a plain number of seconds.
func parseWithin(raw string) (time.Duration, bool) {
    if raw == "" {
        return 0, true
    }
    if n, err := strconv.Atoi(raw); err == nil {
        return time.Duration(n) * time.Second, n >= 0
    }
    d, err := time.ParseDuration(raw)
    return d, err == nil && d >= 0
}

// ListHolds handles GET /v1/admin/holds.  Optional query parameters:
// showtime_id restricts to one showtime and expiring_within keeps holds
// that lapse within that window.  Items are ordered soonest expiry first.
func (h *AdminHandler) ListHolds(c echo.Context) error {
    within, ok := parseWithin(c.QueryParam("expiring_within"))
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid expiring_within"})
    }
    holds := h.Holds.ListHolds(reservation.HoldFilter{
        ShowtimeID:     c.QueryParam("showtime_id"),
        ExpiringWithin: within,
    })
    now := h.Holds.Now()
    items := make([]AdminHold, 0, len(holds))
    for _, hold := range holds {
        items = append(items, toAdminHold(hold, now))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// HoldStats handles GET /v1/admin/holds/stats.
func (h *AdminHandler) HoldStats(c echo.Context) error {
    return c.JSON(http.StatusOK, h.Holds.Stats())
}

// ForceRelease handles DELETE /v1/admin/holds/:id.  An optional JSON
// body {"reason": "..."} is written to the audit trail with the actor.
func (h *AdminHandler) ForceRelease(c echo.Context) error {
    actor, ok := middleware.Subject(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        Reason string `json:"reason" validate:"max=255"`
    }
    if c.Request().ContentLength > 0 {
        if err := c.Bind(&body); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
        }
    }
    if err := h.validate.Struct(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
    }
    hold, err := h.Holds.ForceRelease(c.Request().Context(), c.Param("id"), actor, body.Reason)
    if err != nil {
        return holdError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "hold_id":  hold.ID,
        "released": hold.SeatIDs,
        "actor":    actor,
    })
}
