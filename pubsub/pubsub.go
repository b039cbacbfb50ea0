// Package pubsub fans change notifications out to live subscribers.
// Handlers run on the publisher's delivery goroutine and must not block.
package pubsub

import "context"

type PubSub interface {
	Pub(ctx context.Context, topic string, data []byte) error
	Sub(topic string, handler func(data []byte)) (unsub func() error, err error)
}
