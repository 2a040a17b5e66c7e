package kafka

//go:generate go run go.uber.org/mock/mockgen -source=./kafka.go -destination=./mocks/kafka_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"voyage/config"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

const writeTimeout = 10 * time.Second

type Message struct {
	Key     string
	Value   any
	Headers map[string]string
}

func (m *Message) ToKafkaMessage(topic string) (kafkaGo.Message, error) {
	jsonValue, err := json.Marshal(m.Value)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal message value to JSON")

		return kafkaGo.Message{}, fmt.Errorf("failed to marshal message value to JSON: %w", err)
	}

	headers := make([]kafkaGo.Header, 0, len(m.Headers))
	for key, value := range m.Headers {
		headers = append(headers, kafkaGo.Header{Key: key, Value: []byte(value)})
	}

	return kafkaGo.Message{
		Topic:   topic,
		Key:     []byte(m.Key),
		Value:   jsonValue,
		Headers: headers,
	}, nil
}

// DecodeValue unmarshals a kafka message payload into T.
func DecodeValue[T any](msg kafkaGo.Message) (T, error) {
	var value T

	if err := json.Unmarshal(msg.Value, &value); err != nil {
		return value, fmt.Errorf("failed to unmarshal Kafka message value from JSON: %w", err)
	}

	return value, nil
}

type Client interface {
	SendMessages(ctx context.Context, topic string, messages ...Message) (err error)
	Close() error
}

type kafkaClientImpl struct {
	writer *kafkaGo.Writer
}

// New returns a writer-backed client, or a client that drops messages when
// kafka is disabled.
func New(config *config.Config) Client {
	if !config.Kafka.Enable || len(config.Kafka.Brokers) == 0 {
		log.Warn().Msg("Kafka disabled, domain events will be dropped")

		return &disabledClient{}
	}

	transport := &kafkaGo.Transport{}
	if config.Kafka.SASL.Username != "" {
		transport.SASL = plain.Mechanism{
			Username: config.Kafka.SASL.Username,
			Password: config.Kafka.SASL.Password,
		}
	}

	log.Info().Strs("brokers", config.Kafka.Brokers).Msg("Kafka client initialized")

	return &kafkaClientImpl{
		writer: &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(config.Kafka.Brokers...),
			Balancer:               &kafkaGo.Hash{},
			Transport:              transport,
			AllowAutoTopicCreation: true,
			RequiredAcks:           kafkaGo.RequireOne,
			WriteTimeout:           writeTimeout,
		},
	}
}

func (k *kafkaClientImpl) SendMessages(ctx context.Context, topic string, messages ...Message) (err error) {
	msgs := make([]kafkaGo.Message, 0, len(messages))

	for _, message := range messages {
		msg, err := message.ToKafkaMessage(topic)
		if err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("Failed to convert message to Kafka message.")

			return fmt.Errorf("failed to convert message to Kafka message: %w", err)
		}

		msgs = append(msgs, msg)
	}

	err = k.writer.WriteMessages(ctx, msgs...)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to send message to Kafka.")

		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	log.Debug().Str("topic", topic).Int("count", len(msgs)).Msg("Sent message successfully.")

	return nil
}

func (k *kafkaClientImpl) Close() error {
	if err := k.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}

	return nil
}

type disabledClient struct{}

func (d *disabledClient) SendMessages(_ context.Context, topic string, messages ...Message) error {
	log.Debug().Str("topic", topic).Int("count", len(messages)).Msg("Kafka disabled, messages dropped.")

	return nil
}

func (d *disabledClient) Close() error {
	return nil
}
