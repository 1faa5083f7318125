package publisher

import (
    "context"
    "encoding/json"
    "time"

    "github.com/segmentio/kafka-go"

    "github.com/iliyamo/cinema-seat-hold/pkg/logger"
)

// messageWriter is the subset of *kafka.Writer used here.
type messageWriter interface {
    WriteMessages(ctx context.Context, msgs ...kafka.Message) error
    Close() error
}

// Kafka publishes JSON messages to Kafka topics.  The route passed to
// Publish is the topic; the message key is taken from the payload when
// it implements Keyed so that events of one hold stay ordered.
type Kafka struct {
    w   messageWriter
    log *logger.Logger
}

// Keyed is implemented by payloads that carry a partitioning key.
type Keyed interface {
    PartitionKey() string
}

// NewKafka returns a publisher writing to brokers.
func NewKafka(brokers []string, log *logger.Logger) *Kafka {
    w := &kafka.Writer{
        Addr:                   kafka.TCP(brokers...),
        Balancer:               &kafka.Hash{},
        RequiredAcks:           kafka.RequireOne,
        BatchTimeout:           10 * time.Millisecond,
        AllowAutoTopicCreation: true,
    }
    return &Kafka{w: w, log: log.WithComponent("kafka")}
}

// Publish implements audit.Publisher.
func (p *Kafka) Publish(ctx context.Context, route string, payload any) error {
    body, err := json.Marshal(payload)
    if err != nil {
        p.log.Error("marshal event failed", "topic", route, "error", err)
        return err
    }
    msg := kafka.Message{Topic: route, Value: body, Time: time.Now().UTC()}
    if k, ok := payload.(Keyed); ok {
        msg.Key = []byte(k.PartitionKey())
    }
    if err := p.w.WriteMessages(ctx, msg); err != nil {
        p.log.Error("publish failed", "topic", route, "error", err)
        return err
    }
    return nil
}

// Close flushes pending messages and closes the writer.
func (p *Kafka) Close() error { return p.w.Close() }
