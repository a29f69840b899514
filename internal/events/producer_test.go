package events

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func testBroker(t *testing.T) string {
	t.Helper()
	brokers := os.Getenv("KAFKA_TEST_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_TEST_BROKERS is not set")
	}
	return strings.Split(brokers, ",")[0]
}

func consumeNextEvent(t *testing.T, broker, topic string, produce func()) (kafka.Message, map[string]any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	conn, err := kafka.DialLeader(ctx, "tcp", broker, topic, 0)
	require.NoError(t, err)
	end, err := conn.ReadLastOffset()
	require.NoError(t, err)
	_ = conn.Close()

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
		MaxWait:   time.Second,
	})
	defer r.Close()
	require.NoError(t, r.SetOffset(end))

	produce()

	m, err := r.ReadMessage(ctx)
	require.NoError(t, err)

	var event map[string]any
	require.NoError(t, json.Unmarshal(m.Value, &event))
	return m, event
}

func TestProducer_PublishEvent(t *testing.T) {
	broker := testBroker(t)
	topic := "storefront_test_events"

	p := NewProducer([]string{broker})
	defer p.Close()

	// First write creates the topic.
	require.NoError(t, p.PublishEvent(context.Background(), topic, "warmup", map[string]string{"type": "warmup"}))

	msg, event := consumeNextEvent(t, broker, topic, func() {
		require.NoError(t, p.PublishEvent(context.Background(), topic, "order-1", map[string]any{
			"type":    "order_created",
			"orderID": "order-1",
		}))
	})
	require.Equal(t, "order-1", string(msg.Key))
	require.Equal(t, "order_created", event["type"])
	require.Equal(t, "order-1", event["orderID"])
}

func TestProducer_PublishEvent_BadPayload(t *testing.T) {
	t.Parallel()

	p := NewProducer([]string{"127.0.0.1:1"})
	defer p.Close()

	err := p.PublishEvent(context.Background(), "t", "k", make(chan int))
	require.Error(t, err)
	require.Contains(t, err.Error(), "json.Marshal")
}
