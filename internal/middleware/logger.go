package middleware

import (
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-seat-hold/pkg/logger"
)

// RequestLogger logs every served request through log.  It reads the
// request ID set by echo's RequestID middleware, so register it after
// that one.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                // let echo's error handler pick the status before logging it
                c.Error(err)
            }
            res := c.Response()
            reqID := res.Header().Get(echo.HeaderXRequestID)
            if reqID == "" {
                reqID = c.Request().Header.Get(echo.HeaderXRequestID)
            }
            log.LogHTTPRequest(c.Request().Context(), c.Request().Method, c.Path(),
                res.Status, time.Since(start), c.RealIP(), reqID)
            return nil
        }
    }
}
