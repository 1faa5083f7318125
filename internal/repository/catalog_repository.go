package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/cinema-seat-hold/internal/catalog"
	"github.com/iliyamo/cinema-seat-hold/internal/model"
)

// CatalogRepo loads the read-only catalog from MySQL.  It implements
// catalog.Source.
type CatalogRepo struct {
	halls *HallRepo
	seats *SeatRepo
	shows *ShowRepo
}

// NewCatalogRepo constructs a CatalogRepo over db.
func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{halls: NewHallRepo(db), seats: NewSeatRepo(db), shows: NewShowRepo(db)}
}

// Load reads active halls, their active seats and scheduled shows.
// Shows of inactive halls are skipped.
func (r *CatalogRepo) Load(ctx context.Context) ([]model.Hall, []model.Seat, []model.Showtime, error) {
	dbHalls, err := r.halls.ListActive(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list halls: %w", err)
	}
	perRow := make(map[uint64]int, len(dbHalls))
	halls := make([]model.Hall, 0, len(dbHalls))
	for _, h := range dbHalls {
		perRow[h.ID] = int(h.SeatCols.Int32)
		halls = append(halls, model.Hall{
			ID:          HallKey(h.ID),
			Name:        h.Name,
			HallType:    h.Description.String,
			Rows:        int(h.SeatRows.Int32),
			SeatsPerRow: int(h.SeatCols.Int32),
		})
	}

	dbSeats, err := r.seats.ListActive(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list seats: %w", err)
	}
	seats := make([]model.Seat, 0, len(dbSeats))
	for _, s := range dbSeats {
		cols, ok := perRow[s.HallID]
		if !ok {
			continue
		}
		row, ok := catalog.RowIndex(s.RowLabel)
		if !ok {
			return nil, nil, nil, fmt.Errorf("seat %d: bad row label %q", s.ID, s.RowLabel)
		}
		hallKey := HallKey(s.HallID)
		seats = append(seats, model.Seat{
			ID:     catalog.SeatID(hallKey, s.RowLabel, int(s.SeatNumber)),
			HallID: hallKey,
			Row:    catalog.RowLabel(row),
			Number: int(s.SeatNumber),
			GridX:  catalog.GridX(int(s.SeatNumber), cols),
			GridY:  row + 1,
			Type:   seatType(s.SeatType),
		})
	}

	dbShows, err := r.shows.ListScheduled(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list shows: %w", err)
	}
	shows := make([]model.Showtime, 0, len(dbShows))
	for _, s := range dbShows {
		if _, ok := perRow[s.HallID]; !ok {
			continue
		}
		shows = append(shows, model.Showtime{
			ID:         ShowKey(s.ID),
			MovieTitle: s.Title,
			HallID:     HallKey(s.HallID),
			StartsAt:   s.StartsAt.UTC(),
			PriceCents: s.BasePriceCents,
			VIPCents:   uint32(s.VIPPriceCents.Int64),
		})
	}
	return halls, seats, shows, nil
}
