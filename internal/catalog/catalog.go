// Package catalog holds the read-only hall, seat and showtime data the
// hold service validates requests against.  The catalog is owned by
// back-office tooling; this service loads it once at startup and never
// mutates it.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/iliyamo/cinema-seat-hold/internal/model"
)

var (
	// ErrHallNotFound is returned when a hall lookup yields nothing.
	ErrHallNotFound = errors.New("hall not found")
	// ErrShowtimeNotFound is returned when a showtime lookup yields nothing.
	ErrShowtimeNotFound = errors.New("showtime not found")
	// ErrSeatNotFound is returned when a seat does not exist or does not
	// belong to the hall of the requested showtime.
	ErrSeatNotFound = errors.New("seat not found")
)

// Source provides the raw catalog rows.  The MySQL repository and the
// built-in fixture both implement it.
type Source interface {
	Load(ctx context.Context) ([]model.Hall, []model.Seat, []model.Showtime, error)
}

// Catalog is an immutable, indexed view of halls, seats and showtimes.
// All methods are safe for concurrent use because nothing is written
// after New returns.
type Catalog struct {
	halls     map[string]model.Hall
	hallSeats map[string][]model.Seat
	seats     map[string]model.Seat
	showtimes map[string]model.Showtime
	showOrder []string
}

// Load reads every row from src and indexes it.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	halls, seats, shows, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return New(halls, seats, shows)
}

// New indexes the given rows.  It rejects duplicate IDs, seats whose hall
// is unknown and showtimes scheduled in unknown halls, since any of those
// would let the inventory drift from the catalog.
func New(halls []model.Hall, seats []model.Seat, shows []model.Showtime) (*Catalog, error) {
	c := &Catalog{
		halls:     make(map[string]model.Hall, len(halls)),
		hallSeats: make(map[string][]model.Seat, len(halls)),
		seats:     make(map[string]model.Seat, len(seats)),
		showtimes: make(map[string]model.Showtime, len(shows)),
		showOrder: make([]string, 0, len(shows)),
	}
	for _, h := range halls {
		if h.ID == "" {
			return nil, errors.New("catalog: hall with empty id")
		}
		if _, dup := c.halls[h.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate hall %q", h.ID)
		}
		c.halls[h.ID] = h
	}
	for _, s := range seats {
		if _, ok := c.halls[s.HallID]; !ok {
			return nil, fmt.Errorf("catalog: seat %q references unknown hall %q", s.ID, s.HallID)
		}
		if _, dup := c.seats[s.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate seat %q", s.ID)
		}
		c.seats[s.ID] = s
		c.hallSeats[s.HallID] = append(c.hallSeats[s.HallID], s)
	}
	for _, sh := range shows {
		if _, ok := c.halls[sh.HallID]; !ok {
			return nil, fmt.Errorf("catalog: showtime %q references unknown hall %q", sh.ID, sh.HallID)
		}
		if _, dup := c.showtimes[sh.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate showtime %q", sh.ID)
		}
		c.showtimes[sh.ID] = sh
		c.showOrder = append(c.showOrder, sh.ID)
	}
	// layout order: row then number
	for id := range c.hallSeats {
		list := c.hallSeats[id]
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].GridY != list[j].GridY {
				return list[i].GridY < list[j].GridY
			}
			return list[i].Number < list[j].Number
		})
	}
	return c, nil
}

// Hall returns the hall with the given id.
func (c *Catalog) Hall(id string) (model.Hall, error) {
	h, ok := c.halls[id]
	if !ok {
		return model.Hall{}, ErrHallNotFound
	}
	return h, nil
}

// HallSeats returns the seats of a hall in layout order.  The returned
// slice is a copy.
func (c *Catalog) HallSeats(hallID string) ([]model.Seat, error) {
	if _, ok := c.halls[hallID]; !ok {
		return nil, ErrHallNotFound
	}
	src := c.hallSeats[hallID]
	out := make([]model.Seat, len(src))
	copy(out, src)
	return out, nil
}

// Showtime returns the showtime with the given id.
func (c *Catalog) Showtime(id string) (model.Showtime, error) {
	s, ok := c.showtimes[id]
	if !ok {
		return model.Showtime{}, ErrShowtimeNotFound
	}
	return s, nil
}

// Showtimes lists every showtime in load order.
func (c *Catalog) Showtimes() []model.Showtime {
	out := make([]model.Showtime, 0, len(c.showOrder))
	for _, id := range c.showOrder {
		out = append(out, c.showtimes[id])
	}
	return out
}

// SeatsForShowtime returns the seats of the hall a showtime plays in.
func (c *Catalog) SeatsForShowtime(showtimeID string) ([]model.Seat, error) {
	s, err := c.Showtime(showtimeID)
	if err != nil {
		return nil, err
	}
	return c.HallSeats(s.HallID)
}

// SeatForShowtime resolves a seat and checks it belongs to the hall of the
// showtime.
func (c *Catalog) SeatForShowtime(showtimeID, seatID string) (model.Seat, error) {
	s, err := c.Showtime(showtimeID)
	if err != nil {
		return model.Seat{}, err
	}
	seat, ok := c.seats[seatID]
	if !ok || seat.HallID != s.HallID {
		return model.Seat{}, fmt.Errorf("%w: %s", ErrSeatNotFound, seatID)
	}
	return seat, nil
}
