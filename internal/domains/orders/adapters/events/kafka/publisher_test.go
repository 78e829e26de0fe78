package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
)

type captureWriter struct {
	messages []kafkago.Message
	err      error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func TestPublishWritesEnvelopeKeyedByOrderID(t *testing.T) {
	writer := &captureWriter{}
	publisher := NewPublisher(writer)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	err := publisher.Publish(context.Background(), domain.OrderStatusChanged{
		BaseEvent:  domain.BaseEvent{Timestamp: at},
		OrderID:    "ORD-42",
		FromStatus: domain.StatusPending,
		ToStatus:   domain.StatusShipped,
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "ORD-42", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, HeaderEventName, msg.Headers[0].Key)
	assert.Equal(t, "orders.order.status_changed", string(msg.Headers[0].Value))

	var decoded struct {
		Name       string          `json:"name"`
		OccurredAt time.Time       `json:"occurredAt"`
		Payload    json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "orders.order.status_changed", decoded.Name)
	assert.True(t, decoded.OccurredAt.Equal(at))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(decoded.Payload, &payload))
	assert.Equal(t, "PENDING", payload["fromStatus"])
	assert.Equal(t, "SHIPPED", payload["toStatus"])
}

func TestPublishWrapsWriterErrors(t *testing.T) {
	boom := errors.New("broker down")
	publisher := NewPublisher(&captureWriter{err: boom})

	err := publisher.Publish(context.Background(), domain.OrderUpdated{OrderID: "ORD-1"})

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "orders.order.updated")
}
