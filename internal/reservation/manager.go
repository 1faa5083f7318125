// Package reservation implements the seat hold lifecycle: acquire, renew,
// commit, release, administrative force release and TTL expiry.  Seat
// mutual exclusion lives in the inventory; this package owns the hold
// table and decides which terminal transition wins for each hold.
package reservation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-seat-hold/internal/audit"
	"github.com/iliyamo/cinema-seat-hold/internal/catalog"
	"github.com/iliyamo/cinema-seat-hold/internal/clock"
	"github.com/iliyamo/cinema-seat-hold/internal/inventory"
	"github.com/iliyamo/cinema-seat-hold/internal/model"
	"github.com/iliyamo/cinema-seat-hold/pkg/logger"
)

// Defaults applied when Options leaves a window at zero.
const (
	DefaultTTL          = 5 * time.Minute
	DefaultMaxTTL       = 15 * time.Minute
	DefaultExpiringSoon = 2 * time.Minute

	// cleanupTimeout bounds rollback and release steps, which run detached
	// from the caller's context.
	cleanupTimeout = 5 * time.Second
)

// Options tunes the hold windows.
type Options struct {
	// DefaultTTL is used when a caller asks for a zero or negative TTL.
	DefaultTTL time.Duration
	// MaxTTL caps requested TTLs.
	MaxTTL time.Duration
	// ExpiringSoon is the remaining-time threshold reported by Stats.
	ExpiringSoon time.Duration
}

func (o Options) withDefaults() Options {
	if o.DefaultTTL <= 0 {
		o.DefaultTTL = DefaultTTL
	}
	if o.MaxTTL <= 0 {
		o.MaxTTL = DefaultMaxTTL
	}
	if o.DefaultTTL > o.MaxTTL {
		o.DefaultTTL = o.MaxTTL
	}
	if o.ExpiringSoon <= 0 {
		o.ExpiringSoon = DefaultExpiringSoon
	}
	return o
}

// entry is the mutable record behind one hold ID.  done flips exactly
// once, under mu, by whichever terminal operation claims the hold.
type entry struct {
	mu   sync.Mutex
	hold model.SeatHold
	done bool
}

type counters struct {
	acquired      atomic.Int64
	committed     atomic.Int64
	released      atomic.Int64
	forceReleased atomic.Int64
	expired       atomic.Int64
}

// Manager coordinates holds over an inventory store.  It is safe for
// concurrent use; there is no global lock on the request path.
type Manager struct {
	opts  Options
	inv   inventory.Store
	cat   *catalog.Catalog
	clock clock.Clock
	sink  audit.Sink
	log   *logger.Logger

	holds sync.Map // hold ID -> *entry
	stats counters

	// newID generates hold and audit identifiers.
	newID func() string
}

// NewManager wires a Manager.  A nil clock uses wall time, a nil sink
// drops audit events and a nil logger discards output.
func NewManager(opts Options, inv inventory.Store, cat *catalog.Catalog, clk clock.Clock, sink audit.Sink, log *logger.Logger) *Manager {
	if inv == nil || cat == nil {
		panic("nil inventory or catalog passed to NewManager")
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if sink == nil {
		sink = audit.SinkFunc(func(context.Context, model.AuditEvent) error { return nil })
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		opts:  opts.withDefaults(),
		inv:   inv,
		cat:   cat,
		clock: clk,
		sink:  sink,
		log:   log.WithComponent("reservation"),
		newID: uuid.NewString,
	}
}

// Options returns the effective windows after defaults were applied.
func (m *Manager) Options() Options { return m.opts }

// Now returns the time on the manager's clock, the same one expiry is
// measured against.
func (m *Manager) Now() time.Time { return m.clock.Now() }

// Acquire holds every seat in seatIDs for owner, or none of them.  Seats
// are taken in ascending ID order.  On the first seat that is not
// available the seats already taken are released and the remaining
// requested seats are inspected, without being mutated, so the caller
// learns every conflicting seat at once.
//
// ttl <= 0 selects the default window; values above the maximum are
// clamped.
func (m *Manager) Acquire(ctx context.Context, showtimeID string, seatIDs []string, owner string, ttl time.Duration) (model.SeatHold, error) {
	if owner == "" {
		return model.SeatHold{}, fmt.Errorf("%w: owner token is required", ErrInvalidRequest)
	}
	seats := normalizeSeatIDs(seatIDs)
	if len(seats) == 0 {
		return model.SeatHold{}, fmt.Errorf("%w: seat_ids is required", ErrInvalidRequest)
	}
	if _, err := m.cat.Showtime(showtimeID); err != nil {
		return model.SeatHold{}, err
	}
	for _, id := range seats {
		if _, err := m.cat.SeatForShowtime(showtimeID, id); err != nil {
			return model.SeatHold{}, err
		}
	}
	ttl = m.clampTTL(ttl)

	holdID := m.newID()
	mine := model.HeldBy(holdID)
	taken := make([]string, 0, len(seats))
	for i, id := range seats {
		ok, err := m.inv.CompareAndSet(ctx, showtimeID, id, model.Available(), mine)
		if err != nil {
			m.restore(ctx, showtimeID, taken, mine, model.Available())
			return model.SeatHold{}, fmt.Errorf("acquire seat %s: %w", id, err)
		}
		if !ok {
			m.restore(ctx, showtimeID, taken, mine, model.Available())
			return model.SeatHold{}, m.conflicts(ctx, showtimeID, id, seats[i+1:])
		}
		taken = append(taken, id)
	}

	now := m.clock.Now()
	hold := model.SeatHold{
		ID:         holdID,
		ShowtimeID: showtimeID,
		SeatIDs:    seats,
		OwnerToken: owner,
		TTL:        ttl,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	m.holds.Store(holdID, &entry{hold: hold})
	m.stats.acquired.Add(1)
	m.log.LogHoldAcquired(ctx, holdID, showtimeID, seats, hold.ExpiresAt)
	return cloneHold(hold), nil
}

// Renew extends the hold to now + TTL.  An expired hold is reclaimed on
// the spot and ErrExpired returned.
func (m *Manager) Renew(ctx context.Context, holdID, owner string) (model.SeatHold, error) {
	e, ok := m.lookup(holdID)
	if !ok {
		return model.SeatHold{}, ErrNotFound
	}
	now := m.clock.Now()
	e.mu.Lock()
	if e.done {
		e.mu.Unlock()
		return model.SeatHold{}, ErrNotFound
	}
	if e.hold.OwnerToken != owner {
		e.mu.Unlock()
		return model.SeatHold{}, ErrNotOwner
	}
	if e.hold.Expired(now) {
		h := m.finish(holdID, e)
		e.mu.Unlock()
		m.expire(ctx, h)
		return model.SeatHold{}, ErrExpired
	}
	e.hold.ExpiresAt = now.Add(e.hold.TTL)
	h := cloneHold(e.hold)
	e.mu.Unlock()
	return h, nil
}

// Commit converts every seat of the hold to booked.  If some seat is no
// longer held by this hold the seats converted so far are put back to
// available, the rest of the hold is released and a
// *PartiallyExpiredError names the missing seats.  The committed hold is
// returned so callers can record the booking.
func (m *Manager) Commit(ctx context.Context, holdID, owner string) (model.SeatHold, error) {
	h, err := m.claim(ctx, holdID, owner)
	if err != nil {
		return model.SeatHold{}, err
	}
	mine := model.HeldBy(h.ID)
	booked := model.BookedBy(h.ID)

	var done, missing []string
	for _, id := range h.SeatIDs {
		ok, err := m.inv.CompareAndSet(ctx, h.ShowtimeID, id, mine, booked)
		if err != nil {
			// Store failure: put the hold back as it was so the caller can
			// retry and the reaper still owns it.
			m.restore(ctx, h.ShowtimeID, done, booked, mine)
			m.rearm(h)
			return model.SeatHold{}, fmt.Errorf("commit seat %s: %w", id, err)
		}
		if !ok {
			missing = append(missing, id)
			continue
		}
		done = append(done, id)
	}
	if len(missing) > 0 {
		m.restore(ctx, h.ShowtimeID, done, booked, model.Available())
		m.stats.released.Add(1)
		m.log.WarnContext(ctx, "Hold commit failed, seats lost",
			"hold_id", h.ID, "showtime_id", h.ShowtimeID, "missing", missing)
		return model.SeatHold{}, &PartiallyExpiredError{SeatIDs: missing}
	}
	m.stats.committed.Add(1)
	m.log.LogHoldCommitted(ctx, h.ID, h.ShowtimeID, h.SeatIDs)
	return h, nil
}

// Release returns every seat still held by the hold to available.
// Releasing an expired hold that the reaper has not reached yet is
// allowed.
func (m *Manager) Release(ctx context.Context, holdID, owner string) (model.SeatHold, error) {
	e, ok := m.lookup(holdID)
	if !ok {
		return model.SeatHold{}, ErrNotFound
	}
	e.mu.Lock()
	if e.done {
		e.mu.Unlock()
		return model.SeatHold{}, ErrNotFound
	}
	if e.hold.OwnerToken != owner {
		e.mu.Unlock()
		return model.SeatHold{}, ErrNotOwner
	}
	h := m.finish(holdID, e)
	e.mu.Unlock()

	if err := m.releaseSeats(ctx, h); err != nil {
		m.rearm(h)
		return model.SeatHold{}, err
	}
	m.stats.released.Add(1)
	m.log.LogHoldReleased(ctx, h.ID, h.ShowtimeID, h.SeatIDs)
	return h, nil
}

// Hold returns the live hold if owner holds it.
func (m *Manager) Hold(holdID, owner string) (model.SeatHold, error) {
	e, ok := m.lookup(holdID)
	if !ok {
		return model.SeatHold{}, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.done:
		return model.SeatHold{}, ErrNotFound
	case e.hold.OwnerToken != owner:
		return model.SeatHold{}, ErrNotOwner
	}
	return cloneHold(e.hold), nil
}

// SeatStatuses returns the status of every seat of a showtime.
func (m *Manager) SeatStatuses(ctx context.Context, showtimeID string) (map[string]model.SeatStatus, error) {
	if _, err := m.cat.Showtime(showtimeID); err != nil {
		return nil, err
	}
	return m.inv.Snapshot(ctx, showtimeID)
}

// claim takes the hold for Commit.  An expired hold is reclaimed inline
// and reported as ErrExpired.
func (m *Manager) claim(ctx context.Context, holdID, owner string) (model.SeatHold, error) {
	e, ok := m.lookup(holdID)
	if !ok {
		return model.SeatHold{}, ErrNotFound
	}
	now := m.clock.Now()
	e.mu.Lock()
	if e.done {
		e.mu.Unlock()
		return model.SeatHold{}, ErrNotFound
	}
	if e.hold.OwnerToken != owner {
		e.mu.Unlock()
		return model.SeatHold{}, ErrNotOwner
	}
	h := m.finish(holdID, e)
	e.mu.Unlock()
	if h.Expired(now) {
		m.expire(ctx, h)
		return model.SeatHold{}, ErrExpired
	}
	return h, nil
}

func (m *Manager) lookup(holdID string) (*entry, bool) {
	v, ok := m.holds.Load(holdID)
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}

// finish marks e done and drops it from the table.  e.mu must be held.
func (m *Manager) finish(holdID string, e *entry) model.SeatHold {
	e.done = true
	m.holds.CompareAndDelete(holdID, e)
	return cloneHold(e.hold)
}

// rearm puts a claimed hold back after a store failure so the reaper
// retries it.
func (m *Manager) rearm(h model.SeatHold) {
	m.holds.Store(h.ID, &entry{hold: h})
}

// releaseSeats moves the hold's seats back to available.  Seats no longer
// held by it are skipped.  The first store error is returned after every
// seat was tried.
func (m *Manager) releaseSeats(ctx context.Context, h model.SeatHold) error {
	ctx, cancel := detached(ctx)
	defer cancel()
	var firstErr error
	for _, id := range h.SeatIDs {
		if _, err := m.inv.CompareAndSet(ctx, h.ShowtimeID, id, model.HeldBy(h.ID), model.Available()); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("release seat %s: %w", id, err)
		}
	}
	return firstErr
}

// restore moves seats from one state to another, logging failures.  Used
// to undo partial progress.
func (m *Manager) restore(ctx context.Context, showtimeID string, seats []string, from, to model.SeatState) {
	ctx, cancel := detached(ctx)
	defer cancel()
	for _, id := range seats {
		ok, err := m.inv.CompareAndSet(ctx, showtimeID, id, from, to)
		if err != nil || !ok {
			m.log.ErrorContext(ctx, "seat rollback failed",
				"showtime_id", showtimeID, "seat_id", id, "from", from.Status, "to", to.Status, "error", err)
		}
	}
}

// detached keeps the values of ctx but drops its cancellation.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
}

// conflicts builds the SeatUnavailableError for an acquire that failed on
// seat first.
func (m *Manager) conflicts(ctx context.Context, showtimeID, first string, rest []string) error {
	unavailable := []string{first}
	for _, id := range rest {
		st, err := m.inv.Status(ctx, showtimeID, id)
		if err != nil {
			continue
		}
		if st != model.StatusAvailable {
			unavailable = append(unavailable, id)
		}
	}
	return &SeatUnavailableError{SeatIDs: unavailable}
}

func (m *Manager) clampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return m.opts.DefaultTTL
	}
	if ttl > m.opts.MaxTTL {
		return m.opts.MaxTTL
	}
	return ttl
}

// normalizeSeatIDs drops empty and duplicate IDs and sorts the rest.
func normalizeSeatIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func cloneHold(h model.SeatHold) model.SeatHold {
	h.SeatIDs = append([]string(nil), h.SeatIDs...)
	return h
}
