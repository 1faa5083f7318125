package catalog

import (
	"context"
	"time"

	"github.com/iliyamo/cinema-seat-hold/internal/model"
)

// Fixture is the built-in demo catalog: four halls and a day of
// showtimes.  Every seat starts available; booked seats only ever come
// from real reservations.
type Fixture struct{}

// Load implements Source.
func (Fixture) Load(context.Context) ([]model.Hall, []model.Seat, []model.Showtime, error) {
	halls := []model.Hall{
		{ID: "h1", Name: "Hall 1", HallType: "IMAX", Rows: 10, SeatsPerRow: 12},
		{ID: "h2", Name: "Hall 2", HallType: "Dolby", Rows: 8, SeatsPerRow: 10},
		{ID: "h3", Name: "Hall 3", HallType: "Standard", Rows: 12, SeatsPerRow: 12},
		{ID: "h4", Name: "Hall 4", HallType: "4DX", Rows: 6, SeatsPerRow: 10},
	}
	vip := map[string]bool{"h1": true, "h2": true, "h3": false, "h4": true}

	var seats []model.Seat
	for _, h := range halls {
		seats = append(seats, GenerateHallSeats(h.ID, h.Rows, h.SeatsPerRow, vip[h.ID])...)
	}

	day := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	at := func(hh, mm int) time.Time { return day.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute) }
	shows := []model.Showtime{
		{ID: "s1", MovieTitle: "Neon Horizon", HallID: "h1", StartsAt: at(14, 0), PriceCents: 2500, VIPCents: 4500},
		{ID: "s2", MovieTitle: "Neon Horizon", HallID: "h1", StartsAt: at(21, 0), PriceCents: 2500, VIPCents: 4500},
		{ID: "s3", MovieTitle: "Shadow Protocol", HallID: "h2", StartsAt: at(16, 30), PriceCents: 2200, VIPCents: 4000},
		{ID: "s4", MovieTitle: "Eternal Echoes", HallID: "h3", StartsAt: at(19, 30), PriceCents: 1800, VIPCents: 3200},
		{ID: "s5", MovieTitle: "Crimson Thunder", HallID: "h4", StartsAt: at(12, 0), PriceCents: 3500, VIPCents: 5500},
	}
	return halls, seats, shows, nil
}
