package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"server/internal/events"
)

// Publisher writes donation events to a Kafka topic, keyed by payment
// reference so redeliveries for one payment land on one partition.
type Publisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

func NewPublisher(brokers []string, topic string, logger zerolog.Logger) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		logger: logger,
	}
}

func (p *Publisher) PublishDonationRecorded(ctx context.Context, ev events.DonationRecorded) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode donation event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Reference),
		Value: data,
	}); err != nil {
		return fmt.Errorf("publish donation event: %w", err)
	}
	p.logger.Debug().Str("reference", ev.Reference).Msg("kafka: donation event published")
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
