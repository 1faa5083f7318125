// Package inventory is the authoritative per-showtime seat status table.
// Every mutation goes through CompareAndSet, which is atomic per
// (showtime, seat) key; there is no operation that locks a whole
// showtime.  The inventory stores an opaque hold tag next to the status
// but knows nothing about holds or TTLs.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/cinema-seat-hold/internal/catalog"
	"github.com/iliyamo/cinema-seat-hold/internal/model"
)

var (
	// ErrShowtimeNotFound is returned for a showtime that was never registered.
	ErrShowtimeNotFound = catalog.ErrShowtimeNotFound
	// ErrSeatNotFound is returned for a seat that is not part of a
	// registered showtime.  Callers treat it as a catalog/inventory
	// mismatch, never as contention.
	ErrSeatNotFound = catalog.ErrSeatNotFound
	// ErrAlreadyRegistered is returned by Register when the showtime has
	// already been seeded.
	ErrAlreadyRegistered = errors.New("showtime already registered")
	// ErrInvalidState is returned when a transition targets an unknown status.
	ErrInvalidState = errors.New("invalid seat state")
)

// Store is implemented by every inventory backend.
type Store interface {
	// Register seeds a showtime.  All seats start available except those
	// listed in booked.
	Register(ctx context.Context, showtimeID string, seatIDs, booked []string) error
	// Status returns the current status of one seat.
	Status(ctx context.Context, showtimeID, seatID string) (model.SeatStatus, error)
	// State returns the status and hold tag of one seat.
	State(ctx context.Context, showtimeID, seatID string) (model.SeatState, error)
	// CompareAndSet replaces the seat state with next only if it currently
	// equals expected.  It reports whether the swap happened.
	CompareAndSet(ctx context.Context, showtimeID, seatID string, expected, next model.SeatState) (bool, error)
	// Snapshot returns the status of every seat of a showtime.
	Snapshot(ctx context.Context, showtimeID string) (map[string]model.SeatStatus, error)
}

// Seed registers every showtime of the catalog.  booked maps showtime IDs
// to seats already sold.  Showtimes another replica has already seeded
// are left as they are.
func Seed(ctx context.Context, s Store, cat *catalog.Catalog, booked map[string][]string) error {
	for _, show := range cat.Showtimes() {
		seats, err := cat.SeatsForShowtime(show.ID)
		if err != nil {
			return err
		}
		ids := make([]string, len(seats))
		for i, seat := range seats {
			ids[i] = seat.ID
		}
		err = s.Register(ctx, show.ID, ids, booked[show.ID])
		if err != nil && !errors.Is(err, ErrAlreadyRegistered) {
			return fmt.Errorf("seed showtime %s: %w", show.ID, err)
		}
	}
	return nil
}

func validState(s model.SeatState) error {
	if !s.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidState, s.Status)
	}
	return nil
}

func bookedSet(seatIDs, booked []string) (map[string]bool, error) {
	known := make(map[string]bool, len(seatIDs))
	for _, id := range seatIDs {
		known[id] = true
	}
	out := make(map[string]bool, len(booked))
	for _, id := range booked {
		if !known[id] {
			return nil, fmt.Errorf("%w: booked seat %s", ErrSeatNotFound, id)
		}
		out[id] = true
	}
	return out, nil
}
