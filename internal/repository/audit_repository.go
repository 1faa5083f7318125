package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/cinema-seat-hold/internal/model"
)

// AuditRepo writes the admin audit trail to audit_logs.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo constructs an AuditRepo.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// InsertAudit stores one event.  Seat IDs are kept as a JSON array.  It
// implements audit.Writer.
func (r *AuditRepo) InsertAudit(ctx context.Context, ev model.AuditEvent) error {
	seats, err := json.Marshal(ev.SeatIDs)
	if err != nil {
		return err
	}
	const q = `INSERT INTO audit_logs (id, action_type, actor, hold_id, showtime_id, seat_ids, reason, old_value, new_value, occurred_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q,
		ev.ID, string(ev.ActionType), ev.Actor, ev.HoldID, ev.ShowtimeID, string(seats),
		ev.Reason, ev.OldValue, ev.NewValue, ev.OccurredAt.UTC())
	return err
}
