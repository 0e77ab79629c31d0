package messaging

import (
	"fmt"

	"github.com/sony/gobreaker"

	"github.com/ledgerbank/transfer-engine/internal/infrastructure/messaging/kafka"
	"github.com/ledgerbank/transfer-engine/internal/pkg/logging"
)

// EventPublisher defines the interface for publishing transfer lifecycle events.
type EventPublisher interface {
	PublishTransferCompleted(event TransferCompletedEvent) error
	PublishTransferRejected(event TransferRejectedEvent) error
	PublishTransferFailed(event TransferFailedEvent) error
	PublishAccountStatusChanged(event AccountStatusChangedEvent) error
	Close() error
	IsHealthy() bool
}

// KafkaEventPublisher implements EventPublisher using Kafka.
type KafkaEventPublisher struct {
	producer *kafka.Producer
}

// NewKafkaEventPublisher creates a new Kafka event publisher.
func NewKafkaEventPublisher(config *kafka.Config) (*KafkaEventPublisher, error) {
	producer, err := kafka.NewProducer(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer: producer,
	}, nil
}

// PublishTransferCompleted publishes a settled-transfer event, keyed by
// transaction ID so all consumers see a stable partition per transaction.
func (p *KafkaEventPublisher) PublishTransferCompleted(event TransferCompletedEvent) error {
	return p.producer.PublishEvent(kafka.TopicTransferCompleted, event.TransactionID.String(), event)
}

// PublishTransferRejected publishes a domain-rejection event.
func (p *KafkaEventPublisher) PublishTransferRejected(event TransferRejectedEvent) error {
	return p.producer.PublishEvent(kafka.TopicTransferRejected, event.TransactionID.String(), event)
}

// PublishTransferFailed publishes a system-failure event, emitted whenever
// Execute returns an error.
func (p *KafkaEventPublisher) PublishTransferFailed(event TransferFailedEvent) error {
	return p.producer.PublishEvent(kafka.TopicTransferFailed, event.TransactionID.String(), event)
}

// PublishAccountStatusChanged publishes a freeze/unfreeze transition.
func (p *KafkaEventPublisher) PublishAccountStatusChanged(event AccountStatusChangedEvent) error {
	return p.producer.PublishEvent(kafka.TopicAccountStatusChanged, event.AccountID.String(), event)
}

// Close closes the Kafka producer.
func (p *KafkaEventPublisher) Close() error {
	return p.producer.Close()
}

// IsHealthy checks if the publisher is healthy.
func (p *KafkaEventPublisher) IsHealthy() bool {
	return p.producer.IsHealthy()
}

// BreakerEventPublisher wraps any EventPublisher with a circuit breaker so
// a down broker never blocks the transfer's HTTP response: when the
// breaker is open, PublishX short-circuits to a logged no-op.
type BreakerEventPublisher struct {
	inner   EventPublisher
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerEventPublisher wraps inner with a named circuit breaker.
func NewBreakerEventPublisher(inner EventPublisher) *BreakerEventPublisher {
	return &BreakerEventPublisher{inner: inner, breaker: kafka.NewBreaker("event-publisher")}
}

func (p *BreakerEventPublisher) guarded(name string, publish func() error) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, publish()
	})
	if err == gobreaker.ErrOpenState {
		logging.Warn("event publish short-circuited: breaker open", map[string]interface{}{"event": name})
		return nil
	}
	return err
}

func (p *BreakerEventPublisher) PublishTransferCompleted(event TransferCompletedEvent) error {
	return p.guarded("transfer_completed", func() error { return p.inner.PublishTransferCompleted(event) })
}

func (p *BreakerEventPublisher) PublishTransferRejected(event TransferRejectedEvent) error {
	return p.guarded("transfer_rejected", func() error { return p.inner.PublishTransferRejected(event) })
}

func (p *BreakerEventPublisher) PublishTransferFailed(event TransferFailedEvent) error {
	return p.guarded("transfer_failed", func() error { return p.inner.PublishTransferFailed(event) })
}

func (p *BreakerEventPublisher) PublishAccountStatusChanged(event AccountStatusChangedEvent) error {
	return p.guarded("account_status_changed", func() error { return p.inner.PublishAccountStatusChanged(event) })
}

func (p *BreakerEventPublisher) Close() error    { return p.inner.Close() }
func (p *BreakerEventPublisher) IsHealthy() bool { return p.inner.IsHealthy() }

// NoOpEventPublisher is a no-op implementation for testing.
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a no-op event publisher.
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

func (p *NoOpEventPublisher) PublishTransferCompleted(event TransferCompletedEvent) error {
	return nil
}
func (p *NoOpEventPublisher) PublishTransferRejected(event TransferRejectedEvent) error { return nil }
func (p *NoOpEventPublisher) PublishTransferFailed(event TransferFailedEvent) error     { return nil }
func (p *NoOpEventPublisher) PublishAccountStatusChanged(event AccountStatusChangedEvent) error {
	return nil
}
func (p *NoOpEventPublisher) Close() error    { return nil }
func (p *NoOpEventPublisher) IsHealthy() bool { return true }
