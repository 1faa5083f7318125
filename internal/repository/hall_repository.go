package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
)

// Hall represents a screening hall.  SeatRows and SeatCols describe the
// seat grid; Description carries the hall format (IMAX, Dolby, ...).
type Hall struct {
	ID          uint64         // ID is the primary key of the hall
	Name        string         // Name is a human readable label for the hall
	Description sql.NullString // Description is optional text about the hall
	SeatRows    sql.NullInt32  // SeatRows indicates how many seating rows exist; nullable
	SeatCols    sql.NullInt32  // SeatCols indicates how many seats per row; nullable
}

// HallRepo reads halls.
type HallRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

// ListActive returns every active hall ordered by id.
func (r *HallRepo) ListActive(ctx context.Context) ([]Hall, error) {
	const q = `SELECT id, name, description, seat_rows, seat_cols
	           FROM halls
	           WHERE is_active = 1
	           ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Hall
	for rows.Next() {
		var h Hall
		if err := rows.Scan(&h.ID, &h.Name, &h.Description, &h.SeatRows, &h.SeatCols); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
