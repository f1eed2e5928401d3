package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/Ramsey-B/briar/pkg/tracing"
)

// Producer hands composed messages to the outbound delivery channel.
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	requiredAcks := kafka.RequiredAcks(cfg.RequiredAcks)

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           requiredAcks,
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.Topic,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// OutboundMessageEvent is the payload handed to the delivery channel. The
// downstream consumer owns the actual WhatsApp/SMS delivery.
type OutboundMessageEvent struct {
	MessageID   string    `json:"message_id"`
	DemandID    string    `json:"demand_id"`
	ClientName  string    `json:"client_name"`
	ClientPhone string    `json:"client_phone"`
	PropertyIDs []string  `json:"property_ids"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

// PublishOutboundMessage publishes an outbound message event to Kafka.
// Keyed by client phone so one client's messages stay ordered.
func (p *Producer) PublishOutboundMessage(ctx context.Context, event *OutboundMessageEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishOutboundMessage")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.ClientPhone),
		Value: data,
		Headers: []kafka.Header{
			{Key: "demand_id", Value: []byte(event.DemandID)},
			{Key: "message_id", Value: []byte(event.MessageID)},
			{Key: "traceparent", Value: []byte(tracing.GetTraceParent(ctx))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish outbound message")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"message_id": event.MessageID,
		"demand_id":  event.DemandID,
		"properties": len(event.PropertyIDs),
	}).Debug("Published outbound message")

	return nil
}
