package kafka

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoBrokers)

	_, err = NewProducer(context.Background(), &ProducerConfig{})
	assert.ErrorIs(t, err, ErrNoBrokers)
}

func TestNewProducer_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := NewProducer(ctx, &ProducerConfig{Brokers: []string{"127.0.0.1:1"}})
	assert.Error(t, err)
}

func TestProducerOpts(t *testing.T) {
	assert.Len(t, producerOpts(&ProducerConfig{Brokers: []string{"b:9092"}}), 2)

	full := producerOpts(&ProducerConfig{
		Brokers:       []string{"b:9092"},
		ClientID:      "travel-service",
		MaxRetries:    3,
		RetryInterval: time.Second,
		LingerMs:      10,
	})
	assert.Len(t, full, 6)
}

func TestToRecord(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := toRecord(&Message{
		Topic:     "travel-events",
		Key:       []byte("pkg-1"),
		Value:     []byte(`{"a":1}`),
		Headers:   map[string]string{"event_type": "activity.enrolled", "source": "travel-service"},
		Timestamp: ts,
	})

	assert.Equal(t, "travel-events", rec.Topic)
	assert.Equal(t, []byte("pkg-1"), rec.Key)
	assert.Equal(t, ts, rec.Timestamp)
	require.Len(t, rec.Headers, 2)

	keys := []string{rec.Headers[0].Key, rec.Headers[1].Key}
	sort.Strings(keys)
	assert.Equal(t, []string{"event_type", "source"}, keys)
}
