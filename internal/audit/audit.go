// Package audit delivers hold audit events (force unlocks and expiries)
// to the back-office audit trail.  Delivery is best effort from the
// caller's point of view: the lock manager logs sink failures but never
// fails a seat operation because of them.
package audit

import (
	"context"
	"errors"
	"sync"

	"github.com/iliyamo/cinema-seat-hold/internal/model"
	"github.com/iliyamo/cinema-seat-hold/pkg/logger"
)

// Sink receives audit events.
type Sink interface {
	Emit(ctx context.Context, ev model.AuditEvent) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ev model.AuditEvent) error

// Emit calls f.
func (f SinkFunc) Emit(ctx context.Context, ev model.AuditEvent) error { return f(ctx, ev) }

// Multi fans an event out to every sink.  All sinks are tried; the
// returned error joins the individual failures.
type Multi []Sink

// Emit implements Sink.
func (m Multi) Emit(ctx context.Context, ev model.AuditEvent) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes events to the structured log.
type LogSink struct {
	Log *logger.Logger
}

// Emit implements Sink.
func (s LogSink) Emit(ctx context.Context, ev model.AuditEvent) error {
	s.Log.InfoContext(ctx, "Audit Event",
		"audit_id", ev.ID,
		"action_type", string(ev.ActionType),
		"actor", ev.Actor,
		"hold_id", ev.HoldID,
		"showtime_id", ev.ShowtimeID,
		"seats", ev.SeatIDs,
		"reason", ev.Reason,
	)
	return nil
}

// MemorySink keeps every event in memory.
type MemorySink struct {
	mu     sync.Mutex
	events []model.AuditEvent
}

// Emit implements Sink.
func (s *MemorySink) Emit(_ context.Context, ev model.AuditEvent) error {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	return nil
}

// Events returns a copy of the recorded events.
func (s *MemorySink) Events() []model.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AuditEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Count returns how many recorded events have the given action.
func (s *MemorySink) Count(action model.AuditAction) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ev := range s.events {
		if ev.ActionType == action {
			n++
		}
	}
	return n
}
