package handler

import (
    "errors"
    "fmt"
    "net/http"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-seat-hold/internal/reservation"
    "github.com/iliyamo/cinema-seat-hold/pkg/logger"
)

// holdError writes the JSON error response for a hold lifecycle error.
// Contention is expected traffic and is not logged; anything unmapped is
// logged and hidden behind a 500.
func holdError(c echo.Context, log *logger.Logger, err error) error {
    var unavailable *reservation.SeatUnavailableError
    var partial *reservation.PartiallyExpiredError
    switch {
    case errors.As(err, &unavailable):
        return c.JSON(http.StatusConflict, echo.Map{"error": "seats unavailable", "unavailable": unavailable.SeatIDs})
    case errors.As(err, &partial):
        return c.JSON(http.StatusConflict, echo.Map{"error": "hold partially expired", "seats": partial.SeatIDs})
    case errors.Is(err, reservation.ErrInvalidRequest):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, reservation.ErrShowtimeNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
    case errors.Is(err, reservation.ErrSeatNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case errors.Is(err, reservation.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "hold not found"})
    case errors.Is(err, reservation.ErrNotOwner):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "hold belongs to another owner"})
    case errors.Is(err, reservation.ErrExpired):
        return c.JSON(http.StatusGone, echo.Map{"error": "hold expired"})
    }
    log.WithError(err).ErrorContext(c.Request().Context(), "hold operation failed",
        "method", c.Request().Method, "path", c.Path())
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// validationMessage flattens validator errors into one line such as
// "seat_ids failed min, ttl_seconds failed gte".
func validationMessage(err error) string {
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) {
        return err.Error()
    }
    parts := make([]string, 0, len(verrs))
    for _, fe := range verrs {
        parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
    }
    return strings.Join(parts, ", ")
}

// newValidator returns a validator that reports fields by their JSON
// names.
func newValidator() *validator.Validate {
    v := validator.New()
    v.RegisterTagNameFunc(func(fld reflect.StructField) string {
        name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return v
}
