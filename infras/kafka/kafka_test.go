package kafka_test

import (
	"context"
	"testing"
	"voyage/config"
	"voyage/infras/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
}

func TestToKafkaMessage(t *testing.T) {
	msg := kafka.Message{
		Key:     "booking-1",
		Value:   payload{Reference: "TRV-ABC-123456", Amount: 600},
		Headers: map[string]string{"event": "payment.recorded"},
	}

	km, err := msg.ToKafkaMessage("booking-lifecycle")
	require.NoError(t, err)

	assert.Equal(t, "booking-lifecycle", km.Topic)
	assert.Equal(t, []byte("booking-1"), km.Key)
	require.Len(t, km.Headers, 1)
	assert.Equal(t, "event", km.Headers[0].Key)

	decoded, err := kafka.DecodeValue[payload](km)
	require.NoError(t, err)
	assert.Equal(t, "TRV-ABC-123456", decoded.Reference)
	assert.InDelta(t, 600.0, decoded.Amount, 0.001)
}

func TestToKafkaMessageMarshalError(t *testing.T) {
	msg := kafka.Message{Key: "k", Value: make(chan int)}

	_, err := msg.ToKafkaMessage("topic")
	assert.Error(t, err)
}

func TestDisabledClient(t *testing.T) {
	client := kafka.New(&config.Config{})

	assert.NoError(t, client.SendMessages(context.Background(), "topic", kafka.Message{Key: "k", Value: 1}))
	assert.NoError(t, client.Close())
}
