package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-seat-hold/internal/audit"
	"github.com/iliyamo/cinema-seat-hold/internal/booking"
	"github.com/iliyamo/cinema-seat-hold/internal/catalog"
	"github.com/iliyamo/cinema-seat-hold/internal/clock"
	"github.com/iliyamo/cinema-seat-hold/internal/handler"
	"github.com/iliyamo/cinema-seat-hold/internal/inventory"
	"github.com/iliyamo/cinema-seat-hold/internal/model"
	"github.com/iliyamo/cinema-seat-hold/internal/reservation"
	"github.com/iliyamo/cinema-seat-hold/internal/utils"
	"github.com/iliyamo/cinema-seat-hold/pkg/logger"
)

const secret = "router-test-secret"

type app struct {
	e    *echo.Echo
	clk  *clock.Fake
	sink *audit.MemorySink
}

func newApp(t *testing.T) *app {
	t.Helper()
	ctx := context.Background()
	cat, err := catalog.Load(ctx, catalog.Fixture{})
	require.NoError(t, err)
	inv := inventory.NewMemory(4)
	require.NoError(t, inventory.Seed(ctx, inv, cat, nil))

	clk := clock.NewFake(time.Date(2026, 1, 4, 12, 0, 0, 0, time.UTC))
	sink := &audit.MemorySink{}
	log := logger.Nop()
	m := reservation.NewManager(reservation.Options{}, inv, cat, clk, sink, log)
	fin := booking.NewFinalizer(m, cat, log, booking.WithClock(clk))

	e := echo.New()
	RegisterRoutes(e, handler.NewPublicHandler(cat, m), nil)
	RegisterCustomer(e, handler.NewHoldHandler(m, fin, log), secret, nil)
	RegisterAdmin(e, handler.NewAdminHandler(m, log), secret)
	return &app{e: e, clk: clk, sink: sink}
}

func token(t *testing.T, sub, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, sub, role, time.Hour)
	require.NoError(t, err)
	return tok.Token
}

func (a *app) do(t *testing.T, method, path, tok, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	out := map[string]any{}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func strs(v any) []string {
	var out []string
	for _, x := range v.([]any) {
		out = append(out, x.(string))
	}
	return out
}

func TestPublicCatalog(t *testing.T) {
	a := newApp(t)

	code, _ := a.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, code)

	code, body := a.do(t, http.MethodGet, "/v1/showtimes", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 5, body["count"])

	code, body = a.do(t, http.MethodGet, "/v1/halls/h1/seats", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["seats"], 120)

	code, _ = a.do(t, http.MethodGet, "/v1/halls/h9/seats", "", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = a.do(t, http.MethodGet, "/v1/showtimes/s1/seats", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "s1", body["showtime_id"])
	seats := body["seats"].(map[string]any)
	assert.Len(t, seats, 120)
	assert.Equal(t, "available", seats["h1-E5"])
	assert.Len(t, body["layout"], 120)

	code, _ = a.do(t, http.MethodGet, "/v1/showtimes/nope/seats", "", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHoldLifecycle(t *testing.T) {
	a := newApp(t)
	alice := token(t, "alice", utils.RoleCustomer)
	bob := token(t, "bob", utils.RoleCustomer)

	code, _ := a.do(t, http.MethodPost, "/v1/showtimes/s1/holds", "", `{"seat_ids":["h1-A1"]}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := a.do(t, http.MethodPost, "/v1/showtimes/s1/holds", alice, `{"seat_ids":["h1-A2","h1-A1"],"ttl_seconds":300}`)
	require.Equal(t, http.StatusCreated, code)
	holdID := body["hold_id"].(string)
	assert.Equal(t, []string{"h1-A1", "h1-A2"}, strs(body["seat_ids"]))
	assert.Equal(t, "2026-01-04T12:05:00Z", body["expires_at"])

	code, body = a.do(t, http.MethodPost, "/v1/showtimes/s1/holds", bob, `{"seat_ids":["h1-A2","h1-A3"]}`)
	require.Equal(t, http.StatusConflict, code)
	assert.Equal(t, []string{"h1-A2"}, strs(body["unavailable"]))

	_, body = a.do(t, http.MethodGet, "/v1/showtimes/s1/seats", "", "")
	seats := body["seats"].(map[string]any)
	assert.Equal(t, "held", seats["h1-A1"])
	assert.Equal(t, "available", seats["h1-A3"])

	code, _ = a.do(t, http.MethodGet, "/v1/holds/"+holdID, bob, "")
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(t, http.MethodPost, "/v1/holds/"+holdID+"/renew", bob, "")
	assert.Equal(t, http.StatusForbidden, code)

	a.clk.Advance(time.Minute)
	code, body = a.do(t, http.MethodGet, "/v1/holds/"+holdID, alice, "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 240, body["remaining_seconds"])

	code, body = a.do(t, http.MethodPost, "/v1/holds/"+holdID+"/renew", alice, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2026-01-04T12:06:00Z", body["expires_at"])

	code, body = a.do(t, http.MethodPost, "/v1/holds/"+holdID+"/commit", alice, `{"payment_ref":"pay-1"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "booked", body["status"])
	assert.EqualValues(t, 5000, body["total_amount_cents"])
	assert.NotContains(t, body, "warning")

	code, _ = a.do(t, http.MethodPost, "/v1/holds/"+holdID+"/commit", alice, "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = a.do(t, http.MethodDelete, "/v1/holds/"+holdID, alice, "")
	assert.Equal(t, http.StatusNotFound, code)

	_, body = a.do(t, http.MethodGet, "/v1/showtimes/s1/seats", "", "")
	seats = body["seats"].(map[string]any)
	assert.Equal(t, "booked", seats["h1-A1"])
	assert.Equal(t, "booked", seats["h1-A2"])
}

func TestReleaseAndExpiry(t *testing.T) {
	a := newApp(t)
	alice := token(t, "alice", utils.RoleCustomer)

	code, body := a.do(t, http.MethodPost, "/v1/showtimes/s3/holds", alice, `{"seat_ids":["h2-C4","h2-C5"]}`)
	require.Equal(t, http.StatusCreated, code)
	code, body = a.do(t, http.MethodDelete, "/v1/holds/"+body["hold_id"].(string), alice, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"h2-C4", "h2-C5"}, strs(body["released"]))

	code, body = a.do(t, http.MethodPost, "/v1/showtimes/s3/holds", alice, `{"seat_ids":["h2-C4"],"ttl_seconds":60}`)
	require.Equal(t, http.StatusCreated, code)
	holdID := body["hold_id"].(string)

	a.clk.Advance(61 * time.Second)
	code, _ = a.do(t, http.MethodPost, "/v1/holds/"+holdID+"/renew", alice, "")
	assert.Equal(t, http.StatusGone, code)

	_, body = a.do(t, http.MethodGet, "/v1/showtimes/s3/seats", "", "")
	assert.Equal(t, "available", body["seats"].(map[string]any)["h2-C4"])
}

func TestAcquireValidation(t *testing.T) {
	a := newApp(t)
	alice := token(t, "alice", utils.RoleCustomer)

	cases := map[string]struct {
		path, body string
		want       int
	}{
		"empty seats":          {"/v1/showtimes/s1/holds", `{"seat_ids":[]}`, http.StatusBadRequest},
		"negative ttl":         {"/v1/showtimes/s1/holds", `{"seat_ids":["h1-A1"],"ttl_seconds":-5}`, http.StatusBadRequest},
		"malformed body":       {"/v1/showtimes/s1/holds", `{"seat_ids":`, http.StatusBadRequest},
		"unknown showtime":     {"/v1/showtimes/s99/holds", `{"seat_ids":["h1-A1"]}`, http.StatusNotFound},
		"seat of another hall": {"/v1/showtimes/s1/holds", `{"seat_ids":["h2-A1"]}`, http.StatusNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			code, _ := a.do(t, http.MethodPost, tc.path, alice, tc.body)
			assert.Equal(t, tc.want, code)
		})
	}
}

func TestAdminRoutes(t *testing.T) {
	a := newApp(t)
	alice := token(t, "alice", utils.RoleCustomer)
	ops := token(t, "ops", utils.RoleStaff)

	code, body := a.do(t, http.MethodPost, "/v1/showtimes/s1/holds", alice, `{"seat_ids":["h1-J3","h1-J4"]}`)
	require.Equal(t, http.StatusCreated, code)
	holdID := body["hold_id"].(string)

	code, _ = a.do(t, http.MethodGet, "/v1/admin/holds", alice, "")
	assert.Equal(t, http.StatusForbidden, code)

	code, body = a.do(t, http.MethodGet, "/v1/admin/holds?showtime_id=s1", ops, "")
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, body["count"])
	item := body["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "alice", item["owner"])
	assert.EqualValues(t, 300, item["remaining_seconds"])

	code, body = a.do(t, http.MethodGet, "/v1/admin/holds?expiring_within=1m", ops, "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["count"])

	code, _ = a.do(t, http.MethodGet, "/v1/admin/holds?expiring_within=soon", ops, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = a.do(t, http.MethodGet, "/v1/admin/holds/stats", ops, "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["active_holds"])
	assert.EqualValues(t, 1, body["acquired"])

	code, body = a.do(t, http.MethodDelete, "/v1/admin/holds/"+holdID, ops, `{"reason":"stuck checkout"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"h1-J3", "h1-J4"}, strs(body["released"]))

	code, _ = a.do(t, http.MethodDelete, "/v1/admin/holds/"+holdID, ops, "")
	assert.Equal(t, http.StatusNotFound, code)

	require.Equal(t, 1, a.sink.Count(model.AuditForceUnlock))
	ev := a.sink.Events()[0]
	assert.Equal(t, "ops", ev.Actor)
	assert.Equal(t, "stuck checkout", ev.Reason)
}
