package sink

import (
	"context"

	"privid/internal/eventlog/models"
	"privid/internal/platform/kafka/producer"
)

// Producer is the subset of the Kafka producer the sink needs.
type Producer interface {
	ProduceBatch(ctx context.Context, msgs []*producer.Message) error
}

// Kafka publishes events to one topic keyed by entity ID, so the events of
// one credential or request stay ordered within a partition.
type Kafka struct {
	producer Producer
	topic    string
}

func NewKafka(p Producer, topic string) *Kafka {
	return &Kafka{producer: p, topic: topic}
}

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) Publish(ctx context.Context, events []models.Event) error {
	msgs := make([]*producer.Message, 0, len(events))
	for i := range events {
		e := &events[i]
		body, err := encode(e)
		if err != nil {
			return err
		}
		h := headers(e)
		h["message_id"] = MessageID(e)
		msgs = append(msgs, &producer.Message{
			Topic:   k.topic,
			Key:     []byte(string(e.Type) + ":" + e.EntityID),
			Value:   body,
			Headers: h,
		})
	}
	return k.producer.ProduceBatch(ctx, msgs)
}
