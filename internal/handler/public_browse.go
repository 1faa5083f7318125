// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines handlers for the public browsing API.  These routes allow
// unauthenticated users to browse showtimes, hall layouts and live seat
// availability without requiring authentication.

package handler

import (
    "context"
    "errors"
    "net/http"
    "sort"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-seat-hold/internal/catalog"
    "github.com/iliyamo/cinema-seat-hold/internal/model"
)

// SeatStatuser reports live seat statuses.  *reservation.Manager
// implements it.
type SeatStatuser interface {
    SeatStatuses(ctx context.Context, showtimeID string) (map[string]model.SeatStatus, error)
}

// PublicHandler serves the read-only catalog and availability routes.
type PublicHandler struct {
    Catalog *catalog.Catalog // halls, seats and showtimes
    Seats   SeatStatuser     // live per-showtime seat status
}

// NewPublicHandler constructs a PublicHandler.  Both dependencies must be
// non-nil.
func NewPublicHandler(cat *catalog.Catalog, seats SeatStatuser) *PublicHandler {
    if cat == nil || seats == nil {
        panic("nil dependency passed to NewPublicHandler")
    }
    return &PublicHandler{Catalog: cat, Seats: seats}
}

// PublicSeat is a seat of a showtime together with its current status.
type PublicSeat struct {
    model.Seat
    Status model.SeatStatus `json:"status"`
}

// ListShowtimes handles GET /v1/showtimes.  Response JSON contains an
// "items" array in catalog order.
func (h *PublicHandler) ListShowtimes(c echo.Context) error {
    shows := h.Catalog.Showtimes()
    return c.JSON(http.StatusOK, echo.Map{"items": shows, "count": len(shows)})
}

// GetHallLayout handles GET /v1/halls/:id/seats.  The layout is static so
// the route is served through the response cache.
func (h *PublicHandler) GetHallLayout(c echo.Context) error {
    hallID := c.Param("id")
    hall, err := h.Catalog.Hall(hallID)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
    }
    seats, err := h.Catalog.HallSeats(hallID)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
    }
    return c.JSON(http.StatusOK, echo.Map{"hall": hall, "seats": seats})
}

// GetSeatStatuses handles GET /v1/showtimes/:id/seats.  It returns every
// seat of the showtime's hall with its live status, sorted by grid
// position, plus a compact id → status map.
func (h *PublicHandler) GetSeatStatuses(c echo.Context) error {
    showID := c.Param("id")
    show, err := h.Catalog.Showtime(showID)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
    }
    statuses, err := h.Seats.SeatStatuses(c.Request().Context(), showID)
    if err != nil {
        if errors.Is(err, catalog.ErrShowtimeNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "inventory error"})
    }
    seats, err := h.Catalog.SeatsForShowtime(showID)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
    }
    layout := make([]PublicSeat, 0, len(seats))
    for _, s := range seats {
        layout = append(layout, PublicSeat{Seat: s, Status: statuses[s.ID]})
    }
    sort.Slice(layout, func(i, j int) bool {
        if layout[i].GridY != layout[j].GridY {
            return layout[i].GridY < layout[j].GridY
        }
        return layout[i].GridX < layout[j].GridX
    })
    return c.JSON(http.StatusOK, echo.Map{
        "showtime_id": show.ID,
        "movie_title": show.MovieTitle,
        "hall_id":     show.HallID,
        "seats":       statuses,
        "layout":      layout,
    })
}
