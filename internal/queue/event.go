// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "time"

    "github.com/iliyamo/cinema-seat-hold/internal/model"
)

const (
    // BookingQueueName carries BookingConfirmedEvent messages.
    BookingQueueName = "booking.confirmed"
    // AuditQueueName carries SeatAuditEvent messages.
    AuditQueueName = "seat.audit"
)

// BookingConfirmedEvent is published when a hold is committed.  It
// contains enough information for downstream consumers to log, notify
// or trigger analytics without querying the service.
type BookingConfirmedEvent struct {
    HoldID           string   `json:"hold_id"`
    OwnerToken       string   `json:"owner"`
    ShowtimeID       string   `json:"showtime_id"`
    HallID           string   `json:"hall_id"`
    HallName         string   `json:"hall_name"`
    MovieTitle       string   `json:"movie_title"`
    StartsAt         string   `json:"starts_at"`
    SeatLabels       []string `json:"seats"`
    TotalAmountCents uint32   `json:"total_amount_cents"`
    PaymentRef       string   `json:"payment_ref,omitempty"`
    ConfirmedAt      string   `json:"confirmed_at"`
}

// SeatAuditEvent is the wire form of model.AuditEvent.
type SeatAuditEvent struct {
    ID         string   `json:"id"`
    ActionType string   `json:"action_type"`
    Actor      string   `json:"actor"`
    HoldID     string   `json:"hold_id"`
    ShowtimeID string   `json:"showtime_id"`
    SeatIDs    []string `json:"seats"`
    Reason     string   `json:"reason,omitempty"`
    OldValue   string   `json:"old_value"`
    NewValue   string   `json:"new_value"`
    OccurredAt string   `json:"occurred_at"`
}

// NewSeatAuditEvent converts a domain audit event to its wire form.
func NewSeatAuditEvent(ev model.AuditEvent) SeatAuditEvent {
    return SeatAuditEvent{
        ID:         ev.ID,
        ActionType: string(ev.ActionType),
        Actor:      ev.Actor,
        HoldID:     ev.HoldID,
        ShowtimeID: ev.ShowtimeID,
        SeatIDs:    ev.SeatIDs,
        Reason:     ev.Reason,
        OldValue:   ev.OldValue,
        NewValue:   ev.NewValue,
        OccurredAt: ev.OccurredAt.UTC().Format(time.RFC3339),
    }
}

// PartitionKey keeps every event of one hold on the same partition.
func (e BookingConfirmedEvent) PartitionKey() string { return e.HoldID }

// PartitionKey keeps every event of one hold on the same partition.
func (e SeatAuditEvent) PartitionKey() string { return e.HoldID }
