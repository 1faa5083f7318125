// Package booking turns a committed hold into a confirmed reservation.
// The seat transition to booked is done by the reservation manager; this
// package prices the seats, persists the reservation and announces it.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/cinema-seat-hold/internal/catalog"
	"github.com/iliyamo/cinema-seat-hold/internal/clock"
	"github.com/iliyamo/cinema-seat-hold/internal/model"
	"github.com/iliyamo/cinema-seat-hold/internal/queue"
	"github.com/iliyamo/cinema-seat-hold/pkg/logger"
)

// ErrFollowUp wraps recorder and publisher failures that happened after
// the seats were already booked.  The booking stands; only its record or
// notification is missing.
var ErrFollowUp = errors.New("booking follow-up failed")

// Committer commits holds.  *reservation.Manager implements it.
type Committer interface {
	Commit(ctx context.Context, holdID, owner string) (model.SeatHold, error)
}

// Recorder persists confirmed reservations.
type Recorder interface {
	Record(ctx context.Context, res model.Reservation) error
}

// Publisher sends an event to a queue or topic.
type Publisher interface {
	Publish(ctx context.Context, route string, payload any) error
}

// Finalizer commits holds and runs the booking follow-ups.  Recorder and
// Publisher are optional.
type Finalizer struct {
	holds Committer
	cat   *catalog.Catalog
	rec   Recorder
	pub   Publisher
	route string
	clock clock.Clock
	log   *logger.Logger
}

// Option customises a Finalizer.
type Option func(*Finalizer)

// WithRecorder persists every confirmed reservation.
func WithRecorder(r Recorder) Option { return func(f *Finalizer) { f.rec = r } }

// WithPublisher announces every confirmed reservation on route.  An empty
// route uses queue.BookingQueueName.
func WithPublisher(p Publisher, route string) Option {
	return func(f *Finalizer) {
		f.pub = p
		if route != "" {
			f.route = route
		}
	}
}

// WithClock sets the time source used for ConfirmedAt.
func WithClock(c clock.Clock) Option { return func(f *Finalizer) { f.clock = c } }

// NewFinalizer returns a Finalizer committing through holds.
func NewFinalizer(holds Committer, cat *catalog.Catalog, log *logger.Logger, opts ...Option) *Finalizer {
	if holds == nil || cat == nil {
		panic("nil committer or catalog passed to NewFinalizer")
	}
	if log == nil {
		log = logger.Nop()
	}
	f := &Finalizer{
		holds: holds,
		cat:   cat,
		route: queue.BookingQueueName,
		clock: clock.Real{},
		log:   log.WithComponent("booking"),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Finalize commits the hold and, on success, records and publishes the
// reservation.  Commit errors are returned unchanged.  When the commit
// succeeded but a follow-up failed, the reservation is returned together
// with an error wrapping ErrFollowUp.
func (f *Finalizer) Finalize(ctx context.Context, holdID, owner, paymentRef string) (model.Reservation, error) {
	hold, err := f.holds.Commit(ctx, holdID, owner)
	if err != nil {
		return model.Reservation{}, err
	}
	res := model.Reservation{
		HoldID:      hold.ID,
		OwnerToken:  hold.OwnerToken,
		ShowtimeID:  hold.ShowtimeID,
		SeatIDs:     hold.SeatIDs,
		SeatPrices:  make(map[string]uint32, len(hold.SeatIDs)),
		PaymentRef:  paymentRef,
		ConfirmedAt: f.clock.Now(),
	}
	show, err := f.cat.Showtime(hold.ShowtimeID)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrFollowUp, err)
	}
	labels := make([]string, 0, len(hold.SeatIDs))
	for _, id := range hold.SeatIDs {
		seat, err := f.cat.SeatForShowtime(hold.ShowtimeID, id)
		if err != nil {
			return res, fmt.Errorf("%w: %v", ErrFollowUp, err)
		}
		price := show.PriceFor(seat.Type)
		res.SeatPrices[id] = price
		res.TotalAmountCents += price
		labels = append(labels, fmt.Sprintf("%s%d", seat.Row, seat.Number))
	}

	var errs []error
	if f.rec != nil {
		if err := f.rec.Record(ctx, res); err != nil {
			f.log.WithError(err).ErrorContext(ctx, "record reservation failed", "hold_id", hold.ID)
			errs = append(errs, fmt.Errorf("record: %w", err))
		}
	}
	if f.pub != nil {
		ev := f.event(res, show, labels)
		if err := f.pub.Publish(ctx, f.route, ev); err != nil {
			f.log.WithError(err).ErrorContext(ctx, "publish booking failed", "hold_id", hold.ID, "route", f.route)
			errs = append(errs, fmt.Errorf("publish: %w", err))
		}
	}
	if len(errs) > 0 {
		return res, fmt.Errorf("%w: %w", ErrFollowUp, errors.Join(errs...))
	}
	return res, nil
}

func (f *Finalizer) event(res model.Reservation, show model.Showtime, labels []string) queue.BookingConfirmedEvent {
	ev := queue.BookingConfirmedEvent{
		HoldID:           res.HoldID,
		OwnerToken:       res.OwnerToken,
		ShowtimeID:       res.ShowtimeID,
		HallID:           show.HallID,
		MovieTitle:       show.MovieTitle,
		StartsAt:         show.StartsAt.UTC().Format(time.RFC3339),
		SeatLabels:       labels,
		TotalAmountCents: res.TotalAmountCents,
		PaymentRef:       res.PaymentRef,
		ConfirmedAt:      res.ConfirmedAt.UTC().Format(time.RFC3339),
	}
	if hall, err := f.cat.Hall(show.HallID); err == nil {
		ev.HallName = hall.Name
	}
	return ev
}
