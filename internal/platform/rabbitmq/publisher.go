// Package rabbitmq holds a confirm-mode publisher for a single exchange.
package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Message is one publishing on the configured exchange.
type Message struct {
	MessageID string
	Type      string
	Body      []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Publisher publishes persistent JSON messages and waits for broker confirms.
type Publisher struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	exchange   string
	routingKey string

	mu     sync.Mutex
	closed bool
}

// Dial connects to url, declares a durable direct exchange and puts the
// channel in confirm mode.
func Dial(url, exchange, routingKey string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange, routingKey: routingKey}, nil
}

// Publish sends msgs in order and returns once the broker has confirmed all
// of them, or with the first nack or transport error.
func (p *Publisher) Publish(ctx context.Context, msgs []Message) error {
	// One batch at a time: confirms are matched to the batch that is in flight.
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	confirms := make([]*amqp.DeferredConfirmation, 0, len(msgs))
	for _, msg := range msgs {
		headers := make(amqp.Table, len(msg.Headers))
		for k, v := range msg.Headers {
			headers[k] = v
		}
		dc, err := p.ch.PublishWithDeferredConfirmWithContext(ctx,
			p.exchange,
			p.routingKey,
			false, false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.MessageID,
				Type:         msg.Type,
				Timestamp:    msg.Timestamp,
				Headers:      headers,
				Body:         msg.Body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish %s: %w", msg.MessageID, err)
		}
		confirms = append(confirms, dc)
	}

	for i, dc := range confirms {
		acked, err := dc.WaitContext(ctx)
		if err != nil {
			return fmt.Errorf("await confirm for %s: %w", msgs[i].MessageID, err)
		}
		if !acked {
			return fmt.Errorf("broker nacked %s", msgs[i].MessageID)
		}
	}
	return nil
}

// Healthy reports whether the connection and channel are open.
func (p *Publisher) Healthy(_ context.Context) error {
	if p.conn.IsClosed() || p.ch.IsClosed() {
		return fmt.Errorf("amqp connection closed")
	}
	return nil
}

// Close closes the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	_ = p.ch.Close()
	return p.conn.Close()
}
