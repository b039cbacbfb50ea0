package pubsub

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
)

type NATS struct {
	Conn *nats.Conn
}

func (p *NATS) Pub(_ context.Context, topic string, data []byte) error {
	if err := p.Conn.Publish(topic, data); err != nil {
		return fmt.Errorf("nats publish %q: %w", topic, err)
	}
	return nil
}

func (p *NATS) Sub(topic string, handler func(data []byte)) (func() error, error) {
	sub, err := p.Conn.Subscribe(topic, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("nats subscribe %q: %w", topic, err)
	}

	return func() error {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			return fmt.Errorf("nats unsubscribe %q: %w", topic, err)
		}
		return nil
	}, nil
}
