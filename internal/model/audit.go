package model

import "time"

// AuditAction names the kind of event written to the admin audit trail.
type AuditAction string

const (
    AuditForceUnlock AuditAction = "FORCE_UNLOCK"
    AuditExpire      AuditAction = "EXPIRE"
)

// SystemActor is the actor recorded for events that no person triggered.
const SystemActor = "system"

// AuditEvent records an administrative or automatic termination of a
// hold.  OldValue/NewValue follow the audit log convention used by the
// back-office ("Status: locked" -> "Status: available").
type AuditEvent struct {
    ID         string      `json:"id"`
    ActionType AuditAction `json:"action_type"`
    Actor      string      `json:"actor"`
    HoldID     string      `json:"hold_id"`
    ShowtimeID string      `json:"showtime_id"`
    SeatIDs    []string    `json:"seat_ids"`
    Reason     string      `json:"reason,omitempty"`
    OldValue   string      `json:"old_value"`
    NewValue   string      `json:"new_value"`
    OccurredAt time.Time   `json:"occurred_at"`
}
