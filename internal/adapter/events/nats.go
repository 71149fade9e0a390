// Package events publishes marketplace domain events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bikemarket/internal/domain"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var _ domain.EventPublisher = (*Publisher)(nil)

type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// Publisher encodes payloads as JSON and publishes them under
// <prefix>.<subject>.
type Publisher struct {
	nc     conn
	prefix string
	log    *zap.Logger
}

// Connect dials url and returns a Publisher.
func Connect(url, prefix string, timeout time.Duration, log *zap.Logger) (*Publisher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	opts := []nats.Option{
		nats.Name("bikemarket"),
		nats.Timeout(timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	log.Info("connected to NATS", zap.String("url", nc.ConnectedUrl()))
	return newPublisher(nc, prefix, log), nil
}

func newPublisher(nc conn, prefix string, log *zap.Logger) *Publisher {
	return &Publisher{nc: nc, prefix: prefix, log: log}
}

// Publish implements domain.EventPublisher.
func (p *Publisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}
	full := p.subject(subject)
	if err := p.nc.Publish(full, data); err != nil {
		return fmt.Errorf("publish %s: %w", full, err)
	}
	p.log.Debug("event published", zap.String("subject", full), zap.Int("bytes", len(data)))
	return nil
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() error {
	return p.nc.Drain()
}

func (p *Publisher) subject(s string) string {
	if p.prefix == "" {
		return s
	}
	return p.prefix + "." + s
}
