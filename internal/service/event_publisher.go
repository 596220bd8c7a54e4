package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/travel-booking/internal/domain"
	"github.com/prohmpiriya/travel-booking/pkg/kafka"
	"github.com/prohmpiriya/travel-booking/pkg/logger"
	"github.com/prohmpiriya/travel-booking/pkg/retry"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// EventPublisher defines the interface for publishing travel events
type EventPublisher interface {
	// PublishPassengerRegistered publishes a passenger registered event
	PublishPassengerRegistered(ctx context.Context, pkg *domain.TravelPackage, p *domain.Passenger) error

	// PublishActivityEnrolled publishes an activity enrolled event
	PublishActivityEnrolled(ctx context.Context, pkg *domain.TravelPackage, p *domain.Passenger, a *domain.Activity, paid decimal.Decimal) error

	// Close closes the event publisher
	Close() error
}

// MessageProducer is the subset of kafka.Producer the publisher needs
type MessageProducer interface {
	Produce(ctx context.Context, msg *kafka.Message) error
	Close()
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
	Retry       *retry.Config
	Breaker     *BreakerConfig
}

// BreakerConfig controls when publishing stops trying a failing broker
type BreakerConfig struct {
	// ConsecutiveFailures of whole publishes, retries included, that open the breaker
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker rejects publishes before probing again
	OpenTimeout time.Duration
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    MessageProducer
	topic       string
	serviceName string
	retrier     *retry.Retrier
	breaker     *gobreaker.CircuitBreaker
	log         *logger.Logger
}

// NewKafkaEventPublisher connects a producer and wraps it in a publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig, log *logger.Logger) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "travel-service-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 500 * time.Millisecond,
		LingerMs:      5,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return NewKafkaEventPublisherWithProducer(producer, cfg, log), nil
}

// NewKafkaEventPublisherWithProducer builds a publisher over an existing producer
func NewKafkaEventPublisherWithProducer(producer MessageProducer, cfg *EventPublisherConfig, log *logger.Logger) *KafkaEventPublisher {
	p := &KafkaEventPublisher{
		producer:    producer,
		topic:       "travel-events",
		serviceName: "travel-service",
		retrier:     retry.New(nil),
		log:         log,
	}
	if cfg != nil {
		if cfg.Topic != "" {
			p.topic = cfg.Topic
		}
		if cfg.ServiceName != "" {
			p.serviceName = cfg.ServiceName
		}
		if cfg.Retry != nil {
			p.retrier = retry.New(cfg.Retry)
		}
	}
	if p.log == nil {
		p.log = logger.Nop()
	}

	breakerCfg := BreakerConfig{ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second}
	if cfg != nil && cfg.Breaker != nil {
		if cfg.Breaker.ConsecutiveFailures > 0 {
			breakerCfg.ConsecutiveFailures = cfg.Breaker.ConsecutiveFailures
		}
		if cfg.Breaker.OpenTimeout > 0 {
			breakerCfg.OpenTimeout = cfg.Breaker.OpenTimeout
		}
	}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kafka-" + p.topic,
		MaxRequests: 1,
		Timeout:     breakerCfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerCfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.log.Warn("event publisher breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return p
}

// PublishPassengerRegistered publishes a passenger registered event
func (p *KafkaEventPublisher) PublishPassengerRegistered(ctx context.Context, pkg *domain.TravelPackage, passenger *domain.Passenger) error {
	return p.publish(ctx, domain.NewPassengerRegisteredEvent(uuid.NewString(), pkg, passenger))
}

// PublishActivityEnrolled publishes an activity enrolled event
func (p *KafkaEventPublisher) PublishActivityEnrolled(ctx context.Context, pkg *domain.TravelPackage, passenger *domain.Passenger, a *domain.Activity, paid decimal.Decimal) error {
	return p.publish(ctx, domain.NewActivityEnrolledEvent(uuid.NewString(), pkg, passenger, a, paid))
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

func (p *KafkaEventPublisher) publish(ctx context.Context, event *domain.TravelEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.Key()),
		Value: value,
		Headers: map[string]string{
			"event_type":   string(event.EventType),
			"event_id":     event.EventID,
			"source":       p.serviceName,
			"content_type": "application/json",
		},
		Timestamp: event.OccurredAt,
	}

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.send(ctx, event, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("event publishing suspended, %s event dropped: %w", event.EventType, err)
	}
	return err
}

func (p *KafkaEventPublisher) send(ctx context.Context, event *domain.TravelEvent, msg *kafka.Message) error {
	result := p.retrier.Do(ctx, func(ctx context.Context) error {
		return p.producer.Produce(ctx, msg)
	}, func(attempt int, err error, next time.Duration) {
		p.log.Warn("retrying event publish",
			zap.String("event_type", string(event.EventType)),
			zap.String("event_id", event.EventID),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", next),
			zap.Error(err),
		)
	})
	if result.Err != nil {
		return fmt.Errorf("failed to publish %s event after %d attempts: %w", event.EventType, result.Attempts, result.Err)
	}
	return nil
}

// NoOpEventPublisher discards events; used when Kafka is disabled
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishPassengerRegistered is a no-op
func (p *NoOpEventPublisher) PublishPassengerRegistered(ctx context.Context, pkg *domain.TravelPackage, passenger *domain.Passenger) error {
	return nil
}

// PublishActivityEnrolled is a no-op
func (p *NoOpEventPublisher) PublishActivityEnrolled(ctx context.Context, pkg *domain.TravelPackage, passenger *domain.Passenger, a *domain.Activity, paid decimal.Decimal) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}
