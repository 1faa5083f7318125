package audit

import (
	"context"
	"fmt"

	"github.com/iliyamo/cinema-seat-hold/internal/model"
	"github.com/iliyamo/cinema-seat-hold/internal/queue"
)

// Writer persists audit rows.  repository.AuditRepo implements it.
type Writer interface {
	InsertAudit(ctx context.Context, ev model.AuditEvent) error
}

// SQLSink stores events through a Writer.
type SQLSink struct {
	W Writer
}

// Emit implements Sink.
func (s SQLSink) Emit(ctx context.Context, ev model.AuditEvent) error {
	if err := s.W.InsertAudit(ctx, ev); err != nil {
		return fmt.Errorf("audit sql: %w", err)
	}
	return nil
}

// Publisher is the part of a message broker client the audit trail
// needs.  Both the RabbitMQ and the Kafka publishers implement it.
type Publisher interface {
	Publish(ctx context.Context, route string, payload any) error
}

// PublishSink forwards events to a broker.  Route is the queue (RabbitMQ)
// or topic (Kafka) name.
type PublishSink struct {
	Pub   Publisher
	Route string
}

// Emit implements Sink.
func (s PublishSink) Emit(ctx context.Context, ev model.AuditEvent) error {
	route := s.Route
	if route == "" {
		route = queue.AuditQueueName
	}
	if err := s.Pub.Publish(ctx, route, queue.NewSeatAuditEvent(ev)); err != nil {
		return fmt.Errorf("audit publish %s: %w", route, err)
	}
	return nil
}
