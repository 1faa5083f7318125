package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-seat-hold/internal/model"
)

func TestForceReleaseIsAudited(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	hold, err := h.m.Acquire(ctx, "s1", []string{"h1-A5", "h1-A6"}, "u1", 0)
	require.NoError(t, err)

	_, err = h.m.ForceRelease(ctx, hold.ID, " ", "stuck")
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, model.StatusHeld, h.status(t, "h1-A5"))

	h.clk.Advance(30 * time.Second)
	released, err := h.m.ForceRelease(ctx, hold.ID, "admin@cinema", "customer called support")
	require.NoError(t, err)
	assert.Equal(t, hold.SeatIDs, released.SeatIDs)
	assert.Equal(t, model.StatusAvailable, h.status(t, "h1-A5"))
	assert.Equal(t, model.StatusAvailable, h.status(t, "h1-A6"))

	events := h.sink.Events()
	require.Len(t, events, 1)
	ev := events[0]
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, model.AuditForceUnlock, ev.ActionType)
	assert.Equal(t, "admin@cinema", ev.Actor)
	assert.Equal(t, hold.ID, ev.HoldID)
	assert.Equal(t, "s1", ev.ShowtimeID)
	assert.Equal(t, hold.SeatIDs, ev.SeatIDs)
	assert.Equal(t, "customer called support", ev.Reason)
	assert.Equal(t, "Status: held", ev.OldValue)
	assert.Equal(t, "Status: available", ev.NewValue)
	assert.Equal(t, t0.Add(30*time.Second), ev.OccurredAt)

	// second attempt finds nothing and writes nothing
	_, err = h.m.ForceRelease(ctx, hold.ID, "admin@cinema", "again")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, h.sink.Count(model.AuditForceUnlock))

	_, err = h.m.Commit(ctx, hold.ID, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestForceReleaseExpiredHold(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	hold, err := h.m.Acquire(ctx, "s1", []string{"h1-A7"}, "u1", time.Minute)
	require.NoError(t, err)

	h.clk.Advance(5 * time.Minute)
	_, err = h.m.ForceRelease(ctx, hold.ID, "admin", "")
	require.NoError(t, err)
	assert.Equal(t, 1, h.sink.Count(model.AuditForceUnlock))
	assert.Zero(t, h.sink.Count(model.AuditExpire))
	assert.Zero(t, h.m.Sweep(ctx))
}

func TestListHoldsFilters(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	long, err := h.m.Acquire(ctx, "s1", []string{"h1-B1"}, "u1", 10*time.Minute)
	require.NoError(t, err)
	short, err := h.m.Acquire(ctx, "s1", []string{"h1-B2"}, "u2", time.Minute)
	require.NoError(t, err)
	other, err := h.m.Acquire(ctx, "s2", []string{"h1-B1"}, "u3", 3*time.Minute)
	require.NoError(t, err)

	all := h.m.ListHolds(HoldFilter{})
	require.Len(t, all, 3)
	assert.Equal(t, []string{short.ID, other.ID, long.ID}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "u2", all[0].OwnerToken)

	s1 := h.m.ListHolds(HoldFilter{ShowtimeID: "s1"})
	assert.Len(t, s1, 2)

	soon := h.m.ListHolds(HoldFilter{ExpiringWithin: 2 * time.Minute})
	require.Len(t, soon, 1)
	assert.Equal(t, short.ID, soon[0].ID)

	_, err = h.m.Commit(ctx, short.ID, "u2")
	require.NoError(t, err)
	assert.Len(t, h.m.ListHolds(HoldFilter{}), 2)
}

func TestStats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	a, err := h.m.Acquire(ctx, "s1", []string{"h1-C1"}, "u1", time.Minute)
	require.NoError(t, err)
	b, err := h.m.Acquire(ctx, "s1", []string{"h1-C2"}, "u1", 10*time.Minute)
	require.NoError(t, err)
	c, err := h.m.Acquire(ctx, "s1", []string{"h1-C3"}, "u1", 10*time.Minute)
	require.NoError(t, err)
	_, err = h.m.Acquire(ctx, "s1", []string{"h1-C4"}, "u1", 10*time.Minute)
	require.NoError(t, err)

	s := h.m.Stats()
	assert.Equal(t, 4, s.ActiveHolds)
	assert.Equal(t, 1, s.ExpiringSoon)
	assert.Equal(t, int64(4), s.Acquired)

	_, err = h.m.Commit(ctx, b.ID, "u1")
	require.NoError(t, err)
	_, err = h.m.Release(ctx, c.ID, "u1")
	require.NoError(t, err)
	h.clk.Advance(time.Minute)
	assert.Equal(t, 1, h.m.Sweep(ctx))
	_, err = h.m.Commit(ctx, a.ID, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	s = h.m.Stats()
	assert.Equal(t, Stats{
		ActiveHolds:  1,
		ExpiringSoon: 0,
		Acquired:     4,
		Committed:    1,
		Released:     1,
		Expired:      1,
	}, s)
}
