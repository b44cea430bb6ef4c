// Package kafka publishes gem change events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/hidden-gems-service/internal/config"
	"github.com/couchcryptid/hidden-gems-service/internal/domain"
	"github.com/couchcryptid/hidden-gems-service/internal/observability"
)

// flushInterval bounds how long a single-event write waits for its batch to
// fill. kafka-go's default of one second would stall every Publish call.
const flushInterval = 10 * time.Millisecond

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces gem events to the configured topic.
// It implements pipeline.EventPublisher.
type Publisher struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured event topic.
func NewPublisher(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		BatchTimeout:           flushInterval,
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, metrics: metrics, logger: logger}
}

// Publish writes a single event keyed by gem id, so events for one gem stay
// ordered within a partition.
func (p *Publisher) Publish(ctx context.Context, event domain.GemEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		p.metrics.EventsPublished.WithLabelValues(event.Type, "error").Inc()
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.EventsPublished.WithLabelValues(event.Type, "error").Inc()
		return fmt.Errorf("publish %s for gem %s: %w", event.Type, event.GemID, err)
	}
	p.metrics.EventsPublished.WithLabelValues(event.Type, "success").Inc()
	p.logger.Debug("event published", "type", event.Type, "gem_id", event.GemID)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func serializeToMessage(event domain.GemEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize gem event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.GemID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "occurred_at", Value: []byte(event.OccurredAt.Format(time.RFC3339))},
		},
	}, nil
}
