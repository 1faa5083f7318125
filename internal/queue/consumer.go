// Package queue contains the background consumer that listens to the
// booking.confirmed and seat.audit queues and writes one line per
// message to logs/booking.log and logs/audit.log.
package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/cinema-seat-hold/pkg/logger"
)

// Consumer drains the service's queues into log files.
type Consumer struct {
    URL    string         // broker URL
    LogDir string         // directory for booking.log / audit.log
    Log    *logger.Logger // diagnostics
}

// Run connects to RabbitMQ, declares both queues (durable) and consumes
// them until ctx is cancelled.  It runs a reconnect loop with
// exponential backoff; processing errors are logged and the offending
// message is rejected so the consumer keeps going.
func (c *Consumer) Run(ctx context.Context) error {
    log := c.Log.WithComponent("audit-consumer")
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return nil
        }
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            log.Warn("failed to dial broker", "error", err, "retry_in", backoff.String())
            if !sleep(ctx, backoff) {
                return nil
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return nil
        }
        log.Warn("consume loop ended; reconnecting", "error", err)
        if !sleep(ctx, 2*time.Second) {
            return nil
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Log.Warn("set QoS failed", "error", err)
    }

    type stream struct {
        queue  string
        handle func([]byte) (string, error)
        file   string
    }
    streams := []stream{
        {BookingQueueName, FormatBookingLine, "booking.log"},
        {AuditQueueName, FormatAuditLine, "audit.log"},
    }

    type delivery struct {
        d amqp.Delivery
        s stream
    }
    merged := make(chan delivery)
    for _, s := range streams {
        if _, err := ch.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", s.queue, err)
        }
        msgs, err := ch.Consume(s.queue, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", s.queue, err)
        }
        go func(s stream, msgs <-chan amqp.Delivery) {
            for d := range msgs {
                select {
                case merged <- delivery{d, s}:
                case <-ctx.Done():
                    return
                }
            }
        }(s, msgs)
    }

    closed := ch.NotifyClose(make(chan *amqp.Error, 1))
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case amqpErr := <-closed:
            if amqpErr != nil {
                return amqpErr
            }
            return errors.New("channel closed")
        case m := <-merged:
            line, err := m.s.handle(m.d.Body)
            if err == nil {
                err = appendLine(c.LogDir, m.s.file, line)
            }
            if err != nil {
                c.Log.Error("handle message failed", "queue", m.s.queue, "error", err)
                _ = m.d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = m.d.Ack(false)
        }
    }
}

// FormatBookingLine renders a booking.confirmed message as a log line.
func FormatBookingLine(body []byte) (string, error) {
    var ev BookingConfirmedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return "", fmt.Errorf("unmarshal: %w", err)
    }
    return fmt.Sprintf("[%s] Reservation confirmed | hold_id=%s | owner=%s | showtime_id=%s | hall=%q | movie=%q | total=%d cents | seats=[%s]\n",
        ev.ConfirmedAt, ev.HoldID, ev.OwnerToken, ev.ShowtimeID, ev.HallName, ev.MovieTitle, ev.TotalAmountCents, strings.Join(ev.SeatLabels, ",")), nil
}

// FormatAuditLine renders a seat.audit message as a log line.
func FormatAuditLine(body []byte) (string, error) {
    var ev SeatAuditEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return "", fmt.Errorf("unmarshal: %w", err)
    }
    if ev.ActionType == "" {
        return "", errors.New("audit event without action_type")
    }
    line := fmt.Sprintf("[%s] %s | actor=%s | hold_id=%s | showtime_id=%s | seats=[%s] | %s -> %s",
        ev.OccurredAt, ev.ActionType, ev.Actor, ev.HoldID, ev.ShowtimeID, strings.Join(ev.SeatIDs, ","), ev.OldValue, ev.NewValue)
    if ev.Reason != "" {
        line += fmt.Sprintf(" | reason=%q", ev.Reason)
    }
    return line + "\n", nil
}

func appendLine(dir, name, line string) error {
    if dir == "" {
        dir = "logs"
    }
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
