// internal/events/publisher.go
package events

import (
	"encoding/json"
	"log"

	"github.com/streadway/amqp"
)

// AdUpdateEvent is the refresh ping pushed to dashboard consumers whenever
// an ad record changes. Payload is intentionally thin: clients re-poll for
// the actual data.
type AdUpdateEvent struct {
	Type   string `json:"type"`
	AdID   int    `json:"ad_id,omitempty"`
	UserID *int   `json:"user_id,omitempty"`
	Status string `json:"status,omitempty"`
}

type Publisher interface {
	PublishAdUpdate(event AdUpdateEvent) error
	Close() error
}

// AMQPPublisher fans ad-update events out on a RabbitMQ exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewAMQPPublisher connects and declares the fanout exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) PublishAdUpdate(event AdUpdateEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.ch.Publish(
		p.exchange,
		"", // fanout ignores the routing key
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		log.Println("⚠️ failed to close AMQP channel:", err)
	}
	return p.conn.Close()
}

// NoopPublisher drops events; used when no broker is configured and in tests.
type NoopPublisher struct{}

func (NoopPublisher) PublishAdUpdate(AdUpdateEvent) error { return nil }
func (NoopPublisher) Close() error                        { return nil }

var _ Publisher = (*AMQPPublisher)(nil)
var _ Publisher = NoopPublisher{}
