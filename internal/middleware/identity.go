package middleware

// identity.go defines the context keys written by JWTAuth and the helpers
// handlers use to read them back.

import "github.com/labstack/echo/v4"

const (
    ctxSubject = "sub"
    ctxRole    = "role"
)

// Subject returns the authenticated caller's JWT subject.  It is the
// owner token of holds.  ok is false when JWTAuth did not run or the
// claim was empty.
func Subject(c echo.Context) (string, bool) {
    s, ok := c.Get(ctxSubject).(string)
    return s, ok && s != ""
}

// Role returns the authenticated caller's role, or "" if none.
func Role(c echo.Context) string {
    r, _ := c.Get(ctxRole).(string)
    return r
}

// userID identifies the caller for rate limiting.  Unauthenticated
// requests share the "anon" bucket of their IP.
func userID(c echo.Context) string {
    if s, ok := Subject(c); ok {
        return s
    }
    return "anon"
}
