package model

import "time"

// SeatHold represents a temporary hold on a group of seats during the
// checkout process.  The seats of a hold were acquired together and are
// committed or released together.  Holds expire at ExpiresAt unless they
// are renewed first.
//
// Fields:
//  ID         – opaque token returned to the client.
//  ShowtimeID – showtime for which the seats are held.
//  SeatIDs    – seats held, sorted ascending.
//  OwnerToken – caller identity used to authorise renew/commit/release.
//  TTL        – window length; renew extends ExpiresAt to now + TTL.
//  CreatedAt  – when the hold was granted.
//  ExpiresAt  – when the hold lapses; always after CreatedAt.
type SeatHold struct {
    ID         string        `json:"hold_id"`
    ShowtimeID string        `json:"showtime_id"`
    SeatIDs    []string      `json:"seat_ids"`
    OwnerToken string        `json:"-"`
    TTL        time.Duration `json:"-"`
    CreatedAt  time.Time     `json:"created_at"`
    ExpiresAt  time.Time     `json:"expires_at"`
}

// Expired reports whether the hold has lapsed at now.  A hold is expired
// from the ExpiresAt instant onwards; there is no grace period.
func (h SeatHold) Expired(now time.Time) bool {
    return !now.Before(h.ExpiresAt)
}

// Remaining returns the time left before expiry, never negative.
func (h SeatHold) Remaining(now time.Time) time.Duration {
    if d := h.ExpiresAt.Sub(now); d > 0 {
        return d
    }
    return 0
}
