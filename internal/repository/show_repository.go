// Package repository contains data access logic for Show domain operations. This file defines
// the Show model and repository methods for shows. A Show represents a scheduled
// screening of a movie in a hall.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel definitions
	"time"
)

// Show represents a scheduled screening of a movie in a particular hall.
// BasePriceCents is the default seat price; VIPPriceCents is the highest
// show_seats price of the show's VIP seats, if any were priced.
type Show struct {
	ID             uint64        // ID is the primary key of the show
	HallID         uint64        // HallID references the hall where the show occurs
	Title          string        // Title is the name of the movie or event
	StartsAt       time.Time     // StartsAt is when the show begins (UTC)
	BasePriceCents uint32        // BasePriceCents is the base price for a seat in cents
	VIPPriceCents  sql.NullInt64 // VIPPriceCents is the VIP seat price in cents; nullable
}

// ErrShowNotFound indicates that a show was not located in the DB.
var ErrShowNotFound = errors.New("show not found")

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories.
func (r *ShowRepo) DB() *sql.DB {
	return r.db
}

// ListScheduled returns every show with status SCHEDULED ordered by start
// time.
func (r *ShowRepo) ListScheduled(ctx context.Context) ([]Show, error) {
	const q = `SELECT s.id, s.hall_id, s.title, s.starts_at, s.base_price_cents,
	                  (SELECT MAX(ss.price_cents)
	                     FROM show_seats ss
	                     JOIN seats se ON se.id = ss.seat_id
	                    WHERE ss.show_id = s.id AND se.seat_type = 'VIP') AS vip_price_cents
	           FROM shows s
	           WHERE s.status = 'SCHEDULED'
	           ORDER BY s.starts_at, s.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Show
	for rows.Next() {
		var s Show
		if err := rows.Scan(&s.ID, &s.HallID, &s.Title, &s.StartsAt, &s.BasePriceCents, &s.VIPPriceCents); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// HallIDTx returns the hall of a show inside tx.
func (r *ShowRepo) HallIDTx(ctx context.Context, tx *sql.Tx, showID uint64) (uint64, error) {
	const q = `SELECT hall_id FROM shows WHERE id = ?`
	var hallID uint64
	if err := tx.QueryRowContext(ctx, q, showID).Scan(&hallID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrShowNotFound
		}
		return 0, err
	}
	return hallID, nil
}
