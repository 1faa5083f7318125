package reservation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/cinema-seat-hold/internal/model"
)

// HoldFilter narrows ListHolds.  Zero values match everything.
type HoldFilter struct {
	ShowtimeID     string
	ExpiringWithin time.Duration
}

// Stats is a point-in-time summary of the hold table plus lifetime
// transition counters.
type Stats struct {
	ActiveHolds   int   `json:"active_holds"`
	ExpiringSoon  int   `json:"expiring_soon"`
	Acquired      int64 `json:"acquired"`
	Committed     int64 `json:"committed"`
	Released      int64 `json:"released"`
	ForceReleased int64 `json:"force_released"`
	Expired       int64 `json:"expired"`
}

// ForceRelease terminates a hold regardless of owner or expiry and
// records a FORCE_UNLOCK audit event naming actor.  A hold that already
// reached a terminal state yields ErrNotFound and no audit event.
func (m *Manager) ForceRelease(ctx context.Context, holdID, actor, reason string) (model.SeatHold, error) {
	if strings.TrimSpace(actor) == "" {
		return model.SeatHold{}, fmt.Errorf("%w: actor is required", ErrInvalidRequest)
	}
	e, ok := m.lookup(holdID)
	if !ok {
		return model.SeatHold{}, ErrNotFound
	}
	e.mu.Lock()
	if e.done {
		e.mu.Unlock()
		return model.SeatHold{}, ErrNotFound
	}
	h := m.finish(holdID, e)
	e.mu.Unlock()

	if err := m.releaseSeats(ctx, h); err != nil {
		m.rearm(h)
		return model.SeatHold{}, err
	}
	m.stats.forceReleased.Add(1)
	m.log.LogForceRelease(ctx, h.ID, actor, reason, h.SeatIDs)
	m.emit(ctx, model.AuditForceUnlock, actor, reason, h)
	return h, nil
}

// ListHolds returns the live holds matching f ordered by expiry, soonest
// first.
func (m *Manager) ListHolds(f HoldFilter) []model.SeatHold {
	now := m.clock.Now()
	var out []model.SeatHold
	m.holds.Range(func(_, v any) bool {
		e := v.(*entry)
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.done {
			return true
		}
		if f.ShowtimeID != "" && e.hold.ShowtimeID != f.ShowtimeID {
			return true
		}
		if f.ExpiringWithin > 0 && e.hold.Remaining(now) > f.ExpiringWithin {
			return true
		}
		out = append(out, cloneHold(e.hold))
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExpiresAt.Equal(out[j].ExpiresAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	return out
}

// Stats summarises the hold table.
func (m *Manager) Stats() Stats {
	now := m.clock.Now()
	s := Stats{
		Acquired:      m.stats.acquired.Load(),
		Committed:     m.stats.committed.Load(),
		Released:      m.stats.released.Load(),
		ForceReleased: m.stats.forceReleased.Load(),
		Expired:       m.stats.expired.Load(),
	}
	m.holds.Range(func(_, v any) bool {
		e := v.(*entry)
		e.mu.Lock()
		if !e.done {
			s.ActiveHolds++
			if e.hold.Remaining(now) <= m.opts.ExpiringSoon {
				s.ExpiringSoon++
			}
		}
		e.mu.Unlock()
		return true
	})
	return s
}

// emit writes an audit event.  Sink failures are logged; the seat
// transition already happened and is not undone.
func (m *Manager) emit(ctx context.Context, action model.AuditAction, actor, reason string, h model.SeatHold) {
	ev := model.AuditEvent{
		ID:         m.newID(),
		ActionType: action,
		Actor:      actor,
		HoldID:     h.ID,
		ShowtimeID: h.ShowtimeID,
		SeatIDs:    h.SeatIDs,
		Reason:     reason,
		OldValue:   "Status: " + string(model.StatusHeld),
		NewValue:   "Status: " + string(model.StatusAvailable),
		OccurredAt: m.clock.Now(),
	}
	ctx, cancel := detached(ctx)
	defer cancel()
	if err := m.sink.Emit(ctx, ev); err != nil {
		m.log.WithError(err).ErrorContext(ctx, "audit emit failed",
			"hold_id", h.ID, "action_type", string(action))
	}
}
