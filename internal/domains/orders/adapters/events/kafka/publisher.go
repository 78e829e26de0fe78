// Package kafka publishes order domain events to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
	platformkafka "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/platform/kafka"
)

// DefaultTopic receives every order event.
const DefaultTopic = "orders.events"

// HeaderEventName carries the event name so consumers can route without decoding the payload.
const HeaderEventName = "event-name"

// Envelope is the JSON document written for each event.
type Envelope struct {
	Name       string       `json:"name"`
	OccurredAt time.Time    `json:"occurredAt"`
	Payload    domain.Event `json:"payload"`
}

// Publisher writes events keyed by the human order id, keeping the events of one order on one
// partition.
type Publisher struct {
	writer platformkafka.MessageWriter
}

// NewPublisher wraps a message writer.
func NewPublisher(writer platformkafka.MessageWriter) *Publisher {
	return &Publisher{writer: writer}
}

// Publish implements ports.EventPublisher.
func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	envelope := Envelope{
		Name:       event.EventName(),
		OccurredAt: event.OccurredAt().UTC(),
		Payload:    event,
	}
	header := kafkago.Header{Key: HeaderEventName, Value: []byte(envelope.Name)}
	if err := platformkafka.PublishJSON(ctx, p.writer, eventKey(event), envelope, header); err != nil {
		return fmt.Errorf("publish %s: %w", envelope.Name, err)
	}
	return nil
}

func eventKey(event domain.Event) string {
	switch e := event.(type) {
	case domain.OrderPlaced:
		return e.OrderID
	case domain.OrderStatusChanged:
		return e.OrderID
	case domain.OrderUpdated:
		return e.OrderID
	default:
		return event.EventName()
	}
}

var _ ports.EventPublisher = (*Publisher)(nil)
