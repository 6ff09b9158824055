package sink

import (
	"context"

	"privid/internal/eventlog/models"
	"privid/internal/platform/rabbitmq"
)

// AMQPPublisher is the subset of the RabbitMQ publisher the sink needs.
type AMQPPublisher interface {
	Publish(ctx context.Context, msgs []rabbitmq.Message) error
}

// RabbitMQ publishes events to a direct exchange with broker confirms.
type RabbitMQ struct {
	publisher AMQPPublisher
}

func NewRabbitMQ(p AMQPPublisher) *RabbitMQ {
	return &RabbitMQ{publisher: p}
}

func (r *RabbitMQ) Name() string { return "rabbitmq" }

func (r *RabbitMQ) Publish(ctx context.Context, events []models.Event) error {
	msgs := make([]rabbitmq.Message, 0, len(events))
	for i := range events {
		e := &events[i]
		body, err := encode(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, rabbitmq.Message{
			MessageID: MessageID(e),
			Type:      string(e.Type),
			Body:      body,
			Headers:   headers(e),
			Timestamp: e.OccurredAt,
		})
	}
	return r.publisher.Publish(ctx, msgs)
}
