package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-seat-hold/internal/catalog"
	"github.com/iliyamo/cinema-seat-hold/internal/clock"
	"github.com/iliyamo/cinema-seat-hold/internal/inventory"
	"github.com/iliyamo/cinema-seat-hold/internal/model"
	"github.com/iliyamo/cinema-seat-hold/internal/queue"
	"github.com/iliyamo/cinema-seat-hold/internal/reservation"
	"github.com/iliyamo/cinema-seat-hold/pkg/logger"
)

var now = time.Date(2026, 1, 4, 13, 30, 0, 0, time.UTC)

type fakeRecorder struct {
	got []model.Reservation
	err error
}

func (r *fakeRecorder) Record(_ context.Context, res model.Reservation) error {
	r.got = append(r.got, res)
	return r.err
}

type published struct {
	route   string
	payload any
}

type fakePublisher struct {
	got []published
	err error
}

func (p *fakePublisher) Publish(_ context.Context, route string, payload any) error {
	p.got = append(p.got, published{route, payload})
	return p.err
}

func setup(t *testing.T) (*reservation.Manager, *catalog.Catalog, inventory.Store) {
	t.Helper()
	ctx := context.Background()
	cat, err := catalog.Load(ctx, catalog.Fixture{})
	require.NoError(t, err)
	inv := inventory.NewMemory(2)
	require.NoError(t, inventory.Seed(ctx, inv, cat, nil))
	m := reservation.NewManager(reservation.Options{}, inv, cat, clock.NewFake(now), nil, logger.Nop())
	return m, cat, inv
}

func TestFinalizeRecordsAndPublishes(t *testing.T) {
	m, cat, inv := setup(t)
	ctx := context.Background()
	rec := &fakeRecorder{}
	pub := &fakePublisher{}
	f := NewFinalizer(m, cat, logger.Nop(), WithRecorder(rec), WithPublisher(pub, ""), WithClock(clock.NewFake(now)))

	hold, err := m.Acquire(ctx, "s1", []string{"h1-E5", "h1-E6", "h1-I3"}, "u1", 0)
	require.NoError(t, err)

	res, err := f.Finalize(ctx, hold.ID, "u1", "pay-42")
	require.NoError(t, err)
	assert.Equal(t, model.Reservation{
		HoldID:           hold.ID,
		OwnerToken:       "u1",
		ShowtimeID:       "s1",
		SeatIDs:          []string{"h1-E5", "h1-E6", "h1-I3"},
		SeatPrices:       map[string]uint32{"h1-E5": 2500, "h1-E6": 2500, "h1-I3": 4500},
		TotalAmountCents: 2500 + 2500 + 4500,
		PaymentRef:       "pay-42",
		ConfirmedAt:      now,
	}, res)

	require.Len(t, rec.got, 1)
	assert.Equal(t, res, rec.got[0])

	require.Len(t, pub.got, 1)
	assert.Equal(t, queue.BookingQueueName, pub.got[0].route)
	ev, ok := pub.got[0].payload.(queue.BookingConfirmedEvent)
	require.True(t, ok)
	assert.Equal(t, "Hall 1", ev.HallName)
	assert.Equal(t, "Neon Horizon", ev.MovieTitle)
	assert.Equal(t, "2026-01-04T14:00:00Z", ev.StartsAt)
	assert.Equal(t, []string{"E5", "E6", "I3"}, ev.SeatLabels)
	assert.Equal(t, uint32(9500), ev.TotalAmountCents)
	assert.Equal(t, "2026-01-04T13:30:00Z", ev.ConfirmedAt)

	st, err := inv.Status(ctx, "s1", "h1-E5")
	require.NoError(t, err)
	assert.Equal(t, model.StatusBooked, st)
}

func TestFinalizePassesCommitErrors(t *testing.T) {
	m, cat, _ := setup(t)
	rec := &fakeRecorder{}
	f := NewFinalizer(m, cat, nil, WithRecorder(rec))

	_, err := f.Finalize(context.Background(), "missing", "u1", "")
	assert.ErrorIs(t, err, reservation.ErrNotFound)
	assert.NotErrorIs(t, err, ErrFollowUp)
	assert.Empty(t, rec.got)
}

func TestFinalizeFollowUpFailureKeepsBooking(t *testing.T) {
	m, cat, inv := setup(t)
	ctx := context.Background()
	rec := &fakeRecorder{err: errors.New("db down")}
	pub := &fakePublisher{err: errors.New("broker down")}
	f := NewFinalizer(m, cat, nil, WithRecorder(rec), WithPublisher(pub, "bookings"))

	hold, err := m.Acquire(ctx, "s3", []string{"h2-B2"}, "u1", 0)
	require.NoError(t, err)

	res, err := f.Finalize(ctx, hold.ID, "u1", "")
	require.ErrorIs(t, err, ErrFollowUp)
	assert.Contains(t, err.Error(), "db down")
	assert.Contains(t, err.Error(), "broker down")
	assert.Equal(t, uint32(2200), res.TotalAmountCents)
	assert.Equal(t, "bookings", pub.got[0].route)

	st, err := inv.Status(ctx, "s3", "h2-B2")
	require.NoError(t, err)
	assert.Equal(t, model.StatusBooked, st)
}
