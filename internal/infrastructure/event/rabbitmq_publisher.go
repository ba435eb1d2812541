package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/estate/listings/internal/domain/shared"
)

const (
	exchangeKind    = "topic"
	contentTypeJSON = "application/json"
	appID           = "listings"
)

// publishChannel is the subset of *amqp.Channel the publisher needs.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher sends events to a durable topic exchange. The routing key
// is the event type, so consumers can bind to e.g. "ListingDeleted" or "#".
type RabbitMQPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  publishChannel
	exchange string
	logger   *zap.Logger
	closed   bool
}

// NewRabbitMQPublisher dials url, opens a channel and declares the exchange.
func NewRabbitMQPublisher(url, exchange string, logger *zap.Logger) (*RabbitMQPublisher, error) {
	if url == "" {
		return nil, fmt.Errorf("rabbitmq url is required")
	}
	if exchange == "" {
		return nil, fmt.Errorf("rabbitmq exchange is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	// durable, not auto-deleted, not internal, wait for confirmation
	if err := ch.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %q: %w", exchange, err)
	}

	logger.Info("RabbitMQ event publisher ready", zap.String("exchange", exchange))
	return &RabbitMQPublisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		logger:   logger,
	}, nil
}

// newPublisherWithChannel is used by tests to skip the dial.
func newPublisherWithChannel(ch publishChannel, exchange string, logger *zap.Logger) *RabbitMQPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RabbitMQPublisher{channel: ch, exchange: exchange, logger: logger}
}

// Publish sends every event as a persistent JSON message. It stops at the
// first failure.
func (p *RabbitMQPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errors.New("rabbitmq publisher is closed")
	}

	for _, e := range events {
		if e == nil {
			continue
		}
		msg, err := buildMessage(e)
		if err != nil {
			return err
		}
		if err := p.channel.PublishWithContext(ctx, p.exchange, e.EventType(), false, false, msg); err != nil {
			return fmt.Errorf("failed to publish %s event %s: %w", e.EventType(), e.EventID(), err)
		}
		p.logger.Debug("Event published",
			zap.String("exchange", p.exchange),
			zap.String("routing_key", e.EventType()),
			zap.String("event_id", e.EventID().String()),
		)
	}
	return nil
}

// Close closes the channel and then the connection. Calling it twice is safe.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

func buildMessage(e shared.DomainEvent) (amqp.Publishing, error) {
	body, err := Marshal(e)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    e.EventID().String(),
		Timestamp:    e.OccurredAt().UTC(),
		Type:         e.EventType(),
		AppId:        appID,
		Body:         body,
	}, nil
}

var _ shared.EventPublisher = (*RabbitMQPublisher)(nil)
