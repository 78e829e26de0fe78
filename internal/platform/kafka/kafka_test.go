package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	messages []kafka.Message
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func TestNewClientParsesBrokers(t *testing.T) {
	client := NewClient(" localhost:9092, ,broker-2:9092 ")
	assert.Equal(t, []string{"localhost:9092", "broker-2:9092"}, client.Brokers)
	assert.True(t, client.Enabled())
	assert.False(t, NewClient("").Enabled())
}

func TestNewWriterRequiresBrokers(t *testing.T) {
	_, err := NewClient("").NewWriter("orders.events")
	require.ErrorIs(t, err, ErrDisabled)

	writer, err := NewClient("localhost:9092").NewWriter("orders.events")
	require.NoError(t, err)
	assert.Equal(t, "orders.events", writer.Topic)
}

func TestPublishJSONKeysMessage(t *testing.T) {
	writer := &captureWriter{}
	err := PublishJSON(context.Background(), writer, "ORD-1", map[string]string{"status": "PENDING"},
		kafka.Header{Key: "event", Value: []byte("orders.order.placed")})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "ORD-1", string(msg.Key))
	var payload map[string]string
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "PENDING", payload["status"])
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event", msg.Headers[0].Key)
}
