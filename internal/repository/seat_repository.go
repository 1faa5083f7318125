package repository // repository defines data access for seats

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
)

// Seat represents a physical seat within a hall. RowLabel and
// SeatNumber identify the seat's position; SeatType indicates its class.
type Seat struct {
	ID         uint64 // primary key
	HallID     uint64 // FK -> halls.id
	RowLabel   string // e.g. A, B, AA
	SeatNumber uint32 // position in the row (1-based)
	SeatType   string // STANDARD | VIP | TWIN | ACCESSIBLE
}

// SeatRepo provides methods to work with seats in the database.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// ListActive returns every active seat of every hall ordered by hall,
// row_label then seat_number.
func (r *SeatRepo) ListActive(ctx context.Context) ([]Seat, error) {
	const q = `SELECT id, hall_id, row_label, seat_number, seat_type
	           FROM seats
	           WHERE is_active = 1
	           ORDER BY hall_id, row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	return scanSeats(rows)
}

// ListByHallTx returns the active seats of one hall inside tx.
func (r *SeatRepo) ListByHallTx(ctx context.Context, tx *sql.Tx, hallID uint64) ([]Seat, error) {
	const q = `SELECT id, hall_id, row_label, seat_number, seat_type
	           FROM seats
	           WHERE hall_id = ? AND is_active = 1
	           ORDER BY row_label, seat_number`
	rows, err := tx.QueryContext(ctx, q, hallID)
	if err != nil {
		return nil, err
	}
	return scanSeats(rows)
}

func scanSeats(rows *sql.Rows) ([]Seat, error) {
	defer rows.Close()
	var result []Seat
	for rows.Next() {
		var s Seat
		if err := rows.Scan(&s.ID, &s.HallID, &s.RowLabel, &s.SeatNumber, &s.SeatType); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
