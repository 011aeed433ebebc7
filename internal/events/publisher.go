// Package events fans access decisions out to a RabbitMQ topic exchange.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

const (
	RoutingAllowed = "access.allowed"
	RoutingDenied  = "access.denied"
)

// channel is the subset of *amqp091.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type Publisher struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	ch       channel
	exchange string
	logger   *zap.Logger
}

// Dial connects to the broker at url and declares a durable topic exchange.
func Dial(url, exchange string, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp091.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp declare exchange %q: %w", exchange, err)
	}
	logger.Info("amqp publisher connected", zap.String("exchange", exchange))
	p := NewPublisher(ch, exchange, logger)
	p.conn = conn
	return p, nil
}

// NewPublisher wraps an open channel.
func NewPublisher(ch channel, exchange string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{ch: ch, exchange: exchange, logger: logger}
}

// Publish sends e as JSON, routed by outcome.
func (p *Publisher) Publish(ctx context.Context, e types.AccessLogEntry) error {
	key, msg, err := buildPublishing(e)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, p.exchange, key, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func buildPublishing(e types.AccessLogEntry) (string, amqp091.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return "", amqp091.Publishing{}, err
	}
	key := RoutingDenied
	if e.Allowed {
		key = RoutingAllowed
	}
	return key, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    e.ID,
		Timestamp:    e.Timestamp,
		Type:         "access.decision",
		Headers: amqp091.Table{
			"terminal_id": e.TerminalID,
			"reason":      string(e.Reason),
		},
		Body: body,
	}, nil
}
