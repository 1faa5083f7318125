package audit

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-seat-hold/internal/model"
	"github.com/iliyamo/cinema-seat-hold/internal/queue"
	"github.com/iliyamo/cinema-seat-hold/pkg/logger"
)

func sampleEvent() model.AuditEvent {
	return model.AuditEvent{
		ID:         "a1",
		ActionType: model.AuditForceUnlock,
		Actor:      "staff3",
		HoldID:     "h1",
		ShowtimeID: "s1",
		SeatIDs:    []string{"h1-D5", "h1-D6"},
		OccurredAt: time.Date(2026, 1, 4, 11, 45, 0, 0, time.UTC),
	}
}

func TestMultiJoinsErrorsAndKeepsGoing(t *testing.T) {
	mem := &MemorySink{}
	boom := errors.New("boom")
	m := Multi{
		SinkFunc(func(context.Context, model.AuditEvent) error { return boom }),
		mem,
	}
	err := m.Emit(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, mem.Events(), 1)
	assert.Equal(t, 1, mem.Count(model.AuditForceUnlock))
	assert.Equal(t, 0, mem.Count(model.AuditExpire))
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := LogSink{Log: logger.NewWithWriter(&buf, "info", "prod")}
	require.NoError(t, s.Emit(context.Background(), sampleEvent()))
	assert.Contains(t, buf.String(), `"action_type":"FORCE_UNLOCK"`)
	assert.Contains(t, buf.String(), `"actor":"staff3"`)
}

type fakeWriter struct {
	got []model.AuditEvent
	err error
}

func (w *fakeWriter) InsertAudit(_ context.Context, ev model.AuditEvent) error {
	w.got = append(w.got, ev)
	return w.err
}

func TestSQLSink(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, SQLSink{W: w}.Emit(context.Background(), sampleEvent()))
	require.Len(t, w.got, 1)

	w.err = errors.New("db down")
	assert.ErrorContains(t, SQLSink{W: w}.Emit(context.Background(), sampleEvent()), "audit sql")
}

type fakePublisher struct {
	route   string
	payload any
}

func (p *fakePublisher) Publish(_ context.Context, route string, payload any) error {
	p.route, p.payload = route, payload
	return nil
}

func TestPublishSinkDefaultsToAuditQueue(t *testing.T) {
	p := &fakePublisher{}
	require.NoError(t, PublishSink{Pub: p}.Emit(context.Background(), sampleEvent()))
	assert.Equal(t, queue.AuditQueueName, p.route)
	wire, ok := p.payload.(queue.SeatAuditEvent)
	require.True(t, ok)
	assert.Equal(t, "FORCE_UNLOCK", wire.ActionType)
	assert.Equal(t, "2026-01-04T11:45:00Z", wire.OccurredAt)

	require.NoError(t, PublishSink{Pub: p, Route: "seat-audit"}.Emit(context.Background(), sampleEvent()))
	assert.Equal(t, "seat-audit", p.route)
}
