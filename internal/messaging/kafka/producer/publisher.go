package producer

import (
	"context"

	"github.com/glbits/Rudraksha-Hospital-IMS/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
)

// Keyed by aggregate id so all lifecycle events of one help request land on
// the same partition, preserving their order for downstream tallies.
func publishEvent(ctx context.Context, writer *kafkago.Writer, event kafka.OutboxEvent) error {
	msg := kafkago.Message{
		Topic: event.Topic,
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte(event.AggregateType)},
		},
	}

	return writer.WriteMessages(ctx, msg)
}
