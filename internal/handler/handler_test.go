package handler

import (
    "errors"
    "fmt"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"

    "github.com/iliyamo/cinema-seat-hold/internal/reservation"
    "github.com/iliyamo/cinema-seat-hold/pkg/logger"
)

func TestHoldErrorMapping(t *testing.T) {
    cases := []struct {
        err  error
        want int
        body string
    }{
        {&reservation.SeatUnavailableError{SeatIDs: []string{"h1-A2"}}, http.StatusConflict, `"unavailable":["h1-A2"]`},
        {&reservation.PartiallyExpiredError{SeatIDs: []string{"h1-B1"}}, http.StatusConflict, `"seats":["h1-B1"]`},
        {fmt.Errorf("%w: seat_ids is required", reservation.ErrInvalidRequest), http.StatusBadRequest, "seat_ids is required"},
        {reservation.ErrShowtimeNotFound, http.StatusNotFound, "showtime not found"},
        {fmt.Errorf("%w: h9-Z1", reservation.ErrSeatNotFound), http.StatusNotFound, "h9-Z1"},
        {reservation.ErrNotFound, http.StatusNotFound, "hold not found"},
        {reservation.ErrNotOwner, http.StatusForbidden, "another owner"},
        {reservation.ErrExpired, http.StatusGone, "hold expired"},
        {errors.New("redis: connection refused"), http.StatusInternalServerError, "internal error"},
    }
    e := echo.New()
    for _, tc := range cases {
        t.Run(tc.err.Error(), func(t *testing.T) {
            rec := httptest.NewRecorder()
            c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
            assert.NoError(t, holdError(c, logger.Nop(), tc.err))
            assert.Equal(t, tc.want, rec.Code)
            assert.Contains(t, rec.Body.String(), tc.body)
        })
    }
}

func TestParseWithin(t *testing.T) {
    d, ok := parseWithin("")
    assert.True(t, ok)
    assert.Zero(t, d)

    d, ok = parseWithin("120")
    assert.True(t, ok)
    assert.Equal(t, 2*time.Minute, d)

    d, ok = parseWithin("90s")
    assert.True(t, ok)
    assert.Equal(t, 90*time.Second, d)

    _, ok = parseWithin("-1")
    assert.False(t, ok)
    _, ok = parseWithin("soon")
    assert.False(t, ok)
}

func TestValidationMessageUsesJSONNames(t *testing.T) {
    v := newValidator()
    err := v.Struct(&acquireRequest{SeatIDs: []string{}, TTLSeconds: -1})
    assert.Equal(t, "seat_ids failed min, ttl_seconds failed gte", validationMessage(err))

    err = v.Struct(&acquireRequest{SeatIDs: []string{"h1-A1", ""}})
    assert.Contains(t, validationMessage(err), "seat_ids[1] failed required")
}
