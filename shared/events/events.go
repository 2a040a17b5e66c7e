// Package events publishes booking-lifecycle domain events for the
// notification service. Delivery is best effort: callers log failures and
// never roll back a committed state change because an event was lost.
package events

//go:generate go run go.uber.org/mock/mockgen -source=./events.go -destination=./mocks/events_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"voyage/config"
	"voyage/infras/kafka"
	"voyage/infras/otel"
	"voyage/shared/constant"
	"voyage/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const headerEventType = "event_type"

const (
	AppointmentCreated     = "appointment.created"
	AppointmentConfirmed   = "appointment.confirmed"
	AppointmentRescheduled = "appointment.rescheduled"
	AppointmentCancelled   = "appointment.cancelled"
	AppointmentCompleted   = "appointment.completed"
	AppointmentNoShow      = "appointment.no_show"
	AppointmentConverted   = "appointment.converted"

	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
	BookingRefunded  = "booking.refunded"
	PaymentRecorded  = "payment.recorded"

	ApprovalRequested = "approval.requested"
	ApprovalDecided   = "approval.decided"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Actor      string    `json:"actor,omitempty"`
	Payload    any       `json:"payload"`
}

// New builds an event keyed by the aggregate id so that all events of one
// appointment or booking land on the same partition.
func New(eventType, key, actor string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: timezone.Now(),
		Actor:      actor,
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

type kafkaPublisher struct {
	client kafka.Client
	topic  string
	otel   otel.Otel
}

func NewPublisher(client kafka.Client, cfg *config.Config, otel otel.Otel) Publisher {
	return &kafkaPublisher{
		client: client,
		topic:  cfg.Kafka.Topic,
		otel:   otel,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, events ...Event) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Publish")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	messages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		messages = append(messages, kafka.Message{
			Key:     event.Key,
			Value:   event,
			Headers: map[string]string{headerEventType: event.Type},
		})
	}

	if err = p.client.SendMessages(ctx, p.topic, messages...); err != nil {
		log.Error().Err(err).Str("topic", p.topic).Msg("failed to publish domain events")

		return fmt.Errorf("failed to publish domain events: %w", err)
	}

	return nil
}

// maxInflight bounds concurrent background publishes. Past it, PublishAsync
// sends on the caller's goroutine.
const maxInflight = 64

var (
	inflight sync.WaitGroup
	sending  = make(chan struct{}, maxInflight)
)

// PublishAsync publishes outside the request lifecycle and only logs failures.
// Drain waits for everything started here.
func PublishAsync(ctx context.Context, publisher Publisher, events ...Event) {
	c := context.WithoutCancel(ctx)

	select {
	case sending <- struct{}{}:
	default:
		log.Warn().Int("inflight", maxInflight).Msg("Event publisher saturated, sending inline")
		publish(c, publisher, events)

		return
	}

	inflight.Add(1)

	go func() {
		defer func() {
			<-sending
			inflight.Done()
		}()

		publish(c, publisher, events)
	}()
}

func publish(ctx context.Context, publisher Publisher, events []Event) {
	if err := publisher.Publish(ctx, events...); err != nil {
		log.Warn().Err(err).Int("count", len(events)).Msg("domain events dropped")
	}
}

// Drain blocks until background publishes finish or ctx is done.
func Drain(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events still in flight: %w", ctx.Err())
	}
}

// Shutdown flushes pending events and releases the broker connection.
type Shutdown func(ctx context.Context) error

func NewShutdown(client kafka.Client) Shutdown {
	return func(ctx context.Context) error {
		drainErr := Drain(ctx)
		if drainErr != nil {
			log.Error().Err(drainErr).Msg("Domain events lost at shutdown")
		}

		if err := client.Close(); err != nil {
			return errors.Join(drainErr, fmt.Errorf("failed to close kafka client: %w", err))
		}

		return drainErr
	}
}
