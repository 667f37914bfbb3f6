package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nikhilpunky/manaja2/internal/domain/event"
	pkgevents "github.com/nikhilpunky/manaja2/pkg/events"
	pkgkafka "github.com/nikhilpunky/manaja2/pkg/kafka"
)

// MessageWriter is the subset of *pkgkafka.Producer the publisher needs.
type MessageWriter interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// KafkaEventPublisher implements port.EventPublisher by writing events to Kafka.
type KafkaEventPublisher struct {
	producer MessageWriter
	topic    string
	logger   *slog.Logger
}

// NewKafkaEventPublisher creates a publisher targeting the given Kafka producer and topic.
func NewKafkaEventPublisher(producer MessageWriter, topic string, logger *slog.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish serialises and sends domain events to Kafka. Events are keyed by
// aggregate ID so that a loan's events stay ordered within one partition.
func (p *KafkaEventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	messages := make([]pkgkafka.Message, 0, len(events))
	for _, evt := range events {
		env, err := pkgevents.NewEnvelope(evt)
		if err != nil {
			return err
		}

		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", env.EventType,
			"aggregate_id", env.AggregateID,
			"topic", p.topic,
			"payload_size", len(env.Payload),
		)

		messages = append(messages, pkgkafka.Message{
			Key:     []byte(env.AggregateID),
			Value:   env.Payload,
			Headers: env.Headers(),
		})
	}

	if len(messages) == 0 {
		return nil
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}
	return nil
}

// LogEventPublisher writes events to the log instead of a broker. It is used
// when no Kafka brokers are configured.
type LogEventPublisher struct {
	logger *slog.Logger
}

// NewLogEventPublisher creates a publisher that only logs.
func NewLogEventPublisher(logger *slog.Logger) *LogEventPublisher {
	return &LogEventPublisher{logger: logger}
}

// Publish logs each event at info level.
func (p *LogEventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	for _, evt := range events {
		p.logger.InfoContext(ctx, "domain event",
			"event_type", evt.EventType(),
			"event_id", evt.EventID(),
			"aggregate_id", evt.AggregateID(),
			"user_id", evt.UserID(),
		)
	}
	return nil
}
