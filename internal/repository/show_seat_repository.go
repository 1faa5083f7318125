package repository // repository for show seat persistence

import (
    "context"      // context for managing deadlines
    "database/sql" // sql provides DB interfaces
    "strings"

    "github.com/iliyamo/cinema-seat-hold/internal/catalog"
)

// Show seat statuses as stored in show_seats.status.
const (
    ShowSeatFree     = "FREE"
    ShowSeatHeld     = "HELD"
    ShowSeatReserved = "RESERVED"
)

// ShowSeatRepo encapsulates database operations for show_seats.
type ShowSeatRepo struct {
    db *sql.DB
}

// NewShowSeatRepo constructs a ShowSeatRepo given a DB handle.
func NewShowSeatRepo(db *sql.DB) *ShowSeatRepo {
    return &ShowSeatRepo{db: db}
}

// BookedSeats returns the reserved seats of every show keyed by show
// catalog ID.  The inventory is seeded from it at startup.
func (r *ShowSeatRepo) BookedSeats(ctx context.Context) (map[string][]string, error) {
    const q = `SELECT ss.show_id, se.hall_id, se.row_label, se.seat_number
               FROM show_seats ss
               JOIN seats se ON se.id = ss.seat_id
               WHERE ss.status = ?
               ORDER BY ss.show_id, se.row_label, se.seat_number`
    rows, err := r.db.QueryContext(ctx, q, ShowSeatReserved)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := map[string][]string{}
    for rows.Next() {
        var (
            showID, hallID uint64
            row            string
            number         int
        )
        if err := rows.Scan(&showID, &hallID, &row, &number); err != nil {
            return nil, err
        }
        key := ShowKey(showID)
        out[key] = append(out[key], catalog.SeatID(HallKey(hallID), row, number))
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// BulkUpdateStatusTx sets the status of several seats of one show inside
// tx.  Passing no seats is a no-op.
func (r *ShowSeatRepo) BulkUpdateStatusTx(ctx context.Context, tx *sql.Tx, showID uint64, seatIDs []uint64, status string) error {
    if len(seatIDs) == 0 {
        return nil
    }
    query := `UPDATE show_seats SET status = ? WHERE show_id = ? AND seat_id IN (` +
        strings.TrimSuffix(strings.Repeat("?,", len(seatIDs)), ",") + `)`
    args := make([]interface{}, 0, len(seatIDs)+2)
    args = append(args, status, showID)
    for _, id := range seatIDs {
        args = append(args, id)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}
