package reservation

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/cinema-seat-hold/internal/model"
	"github.com/iliyamo/cinema-seat-hold/pkg/logger"
)

// DefaultReapInterval is used when NewReaper is given a non-positive
// interval.
const DefaultReapInterval = 10 * time.Second

// Sweep expires every hold whose ExpiresAt has passed and returns how
// many were reclaimed.  A hold renewed between the scan and the claim is
// left alone.  Holds whose seats could not be released because the store
// failed stay in the table for the next sweep.
func (m *Manager) Sweep(ctx context.Context) int {
	now := m.clock.Now()
	var due []string
	m.holds.Range(func(k, v any) bool {
		e := v.(*entry)
		e.mu.Lock()
		if !e.done && e.hold.Expired(now) {
			due = append(due, k.(string))
		}
		e.mu.Unlock()
		return true
	})

	reaped := 0
	for _, id := range due {
		if ctx.Err() != nil {
			break
		}
		e, ok := m.lookup(id)
		if !ok {
			continue
		}
		e.mu.Lock()
		if e.done || !e.hold.Expired(m.clock.Now()) {
			e.mu.Unlock()
			continue
		}
		h := m.finish(id, e)
		e.mu.Unlock()
		if m.expire(ctx, h) {
			reaped++
		}
	}
	return reaped
}

// expire releases the seats of a claimed hold and records the EXPIRE
// audit event.  It reports false when the store failed and the hold was
// put back.
func (m *Manager) expire(ctx context.Context, h model.SeatHold) bool {
	if err := m.releaseSeats(ctx, h); err != nil {
		m.log.WithError(err).ErrorContext(ctx, "hold expiry failed, will retry", "hold_id", h.ID)
		m.rearm(h)
		return false
	}
	m.stats.expired.Add(1)
	m.log.LogHoldExpired(ctx, h.ID, h.ShowtimeID, h.SeatIDs)
	m.emit(ctx, model.AuditExpire, model.SystemActor, "ttl elapsed", h)
	return true
}

// Reaper runs Sweep on a fixed interval until stopped or its context is
// cancelled.
type Reaper struct {
	m        *Manager
	interval time.Duration
	log      *logger.Logger
	done     chan struct{}
	stopOnce sync.Once
}

// NewReaper creates a reaper for m.
func NewReaper(m *Manager, interval time.Duration, log *logger.Logger) *Reaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Reaper{
		m:        m,
		interval: interval,
		log:      log.WithComponent("reaper"),
		done:     make(chan struct{}),
	}
}

// Run blocks, sweeping every interval.  It returns nil when stopped or
// when ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.InfoContext(ctx, "Started hold reaper", "interval", r.interval)
	for {
		select {
		case <-ticker.C:
			if n := r.m.Sweep(ctx); n > 0 {
				r.log.InfoContext(ctx, "Reaped expired holds", "count", n)
			}
		case <-r.done:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// Stop ends Run.  Safe to call more than once.
func (r *Reaper) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
}
