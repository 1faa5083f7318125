package handler

import (
    "errors"
    "net/http"
    "time"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-seat-hold/internal/booking"
    "github.com/iliyamo/cinema-seat-hold/internal/middleware"
    "github.com/iliyamo/cinema-seat-hold/internal/reservation"
    "github.com/iliyamo/cinema-seat-hold/pkg/logger"
)

// HoldHandler serves the customer hold lifecycle: acquire, inspect,
// renew, commit and release.  All methods assume that JWT authentication
// has already run; the JWT subject is the hold owner token.
type HoldHandler struct {
    Holds    *reservation.Manager // seat hold state machine
    Bookings *booking.Finalizer   // commit plus reservation follow-ups
    Log      *logger.Logger

    validate *validator.Validate
}

// NewHoldHandler constructs a HoldHandler.  holds and bookings must be
// non-nil.
func NewHoldHandler(holds *reservation.Manager, bookings *booking.Finalizer, log *logger.Logger) *HoldHandler {
    if holds == nil || bookings == nil {
        panic("nil dependency passed to NewHoldHandler")
    }
    return &HoldHandler{
        Holds:    holds,
        Bookings: bookings,
        Log:      log.WithComponent("holds"),
        validate: newValidator(),
    }
}

type acquireRequest struct {
    SeatIDs    []string `json:"seat_ids" validate:"required,min=1,max=50,dive,required"`
    TTLSeconds int      `json:"ttl_seconds" validate:"gte=0"`
}

type commitRequest struct {
    PaymentRef string `json:"payment_ref" validate:"max=128"`
}

// AcquireHold handles POST /v1/showtimes/:id/holds.  The body carries a
// "seat_ids" array and an optional "ttl_seconds"; a missing TTL uses the
// configured default and longer ones are capped.  It returns 201 with
// the hold id and expiry, or 409 with the seats that were already taken.
func (h *HoldHandler) AcquireHold(c echo.Context) error {
    owner, ok := middleware.Subject(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body acquireRequest
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := h.validate.Struct(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
    }

    hold, err := h.Holds.Acquire(c.Request().Context(), c.Param("id"), body.SeatIDs, owner,
        time.Duration(body.TTLSeconds)*time.Second)
    if err != nil {
        return holdError(c, h.Log, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "hold_id":     hold.ID,
        "showtime_id": hold.ShowtimeID,
        "seat_ids":    hold.SeatIDs,
        "expires_at":  hold.ExpiresAt,
    })
}

// GetHold handles GET /v1/holds/:id.  It lets the checkout page recover
// its countdown: the response carries expires_at and the seconds left.
func (h *HoldHandler) GetHold(c echo.Context) error {
    owner, ok := middleware.Subject(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    hold, err := h.Holds.Hold(c.Param("id"), owner)
    if err != nil {
        return holdError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "hold_id":           hold.ID,
        "showtime_id":       hold.ShowtimeID,
        "seat_ids":          hold.SeatIDs,
        "created_at":        hold.CreatedAt,
        "expires_at":        hold.ExpiresAt,
        "remaining_seconds": int(hold.Remaining(h.Holds.Now()).Seconds()),
    })
}

// RenewHold handles POST /v1/holds/:id/renew.  Renewal slides the expiry
// to now + TTL; an expired hold answers 410 and must be acquired again.
func (h *HoldHandler) RenewHold(c echo.Context) error {
    owner, ok := middleware.Subject(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    hold, err := h.Holds.Renew(c.Request().Context(), c.Param("id"), owner)
    if err != nil {
        return holdError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"hold_id": hold.ID, "expires_at": hold.ExpiresAt})
}

// CommitHold handles POST /v1/holds/:id/commit.  The seats are booked
// and the reservation is recorded.  A failing record or notification
// does not undo the booking: the response is still 200 and carries a
// "warning".
func (h *HoldHandler) CommitHold(c echo.Context) error {
    owner, ok := middleware.Subject(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body commitRequest
    if c.Request().ContentLength > 0 {
        if err := c.Bind(&body); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
        }
    }
    if err := h.validate.Struct(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
    }

    res, err := h.Bookings.Finalize(c.Request().Context(), c.Param("id"), owner, body.PaymentRef)
    if err != nil && !errors.Is(err, booking.ErrFollowUp) {
        return holdError(c, h.Log, err)
    }
    out := echo.Map{
        "status":             "booked",
        "hold_id":            res.HoldID,
        "showtime_id":        res.ShowtimeID,
        "seat_ids":           res.SeatIDs,
        "total_amount_cents": res.TotalAmountCents,
        "confirmed_at":       res.ConfirmedAt,
    }
    if err != nil {
        out["warning"] = "booking confirmed but its record is pending"
    }
    return c.JSON(http.StatusOK, out)
}

// ReleaseHold handles DELETE /v1/holds/:id.  It frees the seats of an
// abandoned checkout and returns them in "released".
func (h *HoldHandler) ReleaseHold(c echo.Context) error {
    owner, ok := middleware.Subject(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    hold, err := h.Holds.Release(c.Request().Context(), c.Param("id"), owner)
    if err != nil {
        return holdError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"hold_id": hold.ID, "released": hold.SeatIDs})
}
