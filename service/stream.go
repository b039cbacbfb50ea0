package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/foodbridge/foodbridge/types"
)

type changeKind string

const (
	changeConversationCreated changeKind = "conversation_created"
	changeMessageCreated      changeKind = "message_created"
	changeMessagesRead        changeKind = "messages_read"
)

// changeEvent only tells subscribers that something changed; streams
// reload the authoritative state from the database.
type changeEvent struct {
	Kind           changeKind `msgpack:"k"`
	ConversationID string     `msgpack:"c"`
	ActorID        string     `msgpack:"a,omitempty"`
}

func conversationsTopic(userID string) string {
	return "conversations." + userID
}

func messagesTopic(conversationID string) string {
	return "messages." + conversationID
}

func (svc *Service) publish(ev changeEvent, topics ...string) {
	if svc.PubSub == nil {
		return
	}

	b, err := msgpackChange(ev)
	if err != nil {
		svc.reportErr(fmt.Errorf("msgpack marshal change event: %w", err))
		return
	}

	svc.background(func(ctx context.Context) error {
		var errs []error
		for _, topic := range topics {
			if err := svc.PubSub.Pub(ctx, topic, b); err != nil {
				svc.Metrics.IncPublishErrors()
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// watch emits load's result once and again after every change published
// on topics. Bursts of changes collapse into a single reload. A failed
// reload is delivered as an update carrying the error and the stream
// stays open. The channel is closed and the subscriptions released once
// ctx is done.
func watch[T any](ctx context.Context, svc *Service, kind string, topics []string, load func(ctx context.Context) (T, error)) (<-chan types.Update[T], error) {
	if svc.PubSub == nil {
		return nil, errors.New("live streams need a pubsub")
	}

	changed := make(chan struct{}, 1)
	notify := func(data []byte) {
		var ev changeEvent
		if err := msgpack.Unmarshal(data, &ev); err != nil {
			svc.logger().Warn("malformed change event", "stream", kind, "err", err)
		} else {
			svc.logger().Debug("change event", "stream", kind, "kind", ev.Kind, "conversation_id", ev.ConversationID)
		}

		select {
		case changed <- struct{}{}:
		default:
		}
	}

	var unsubs []func() error
	unsubscribeAll := func() {
		for _, unsub := range unsubs {
			if err := unsub(); err != nil {
				svc.logger().Error("unsubscribe", "stream", kind, "err", err)
			}
		}
	}

	// Subscribe before the first load so no change falls in between.
	for _, topic := range topics {
		unsub, err := svc.PubSub.Sub(topic, notify)
		if err != nil {
			unsubscribeAll()
			return nil, fmt.Errorf("subscribe to %s: %w", topic, err)
		}

		unsubs = append(unsubs, unsub)
	}

	initial, err := load(ctx)
	if err != nil {
		unsubscribeAll()
		return nil, err
	}

	out := make(chan types.Update[T])
	streamClosed := svc.Metrics.StreamOpened(kind)

	go func() {
		defer close(out)
		defer streamClosed()
		defer unsubscribeAll()

		u, pending := types.Update[T]{Value: initial}, true
		for {
			if pending {
				select {
				case out <- u:
					pending = false
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-changed:
			case <-ctx.Done():
				return
			}

			next, err := load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}

				svc.logger().Error("reload stream", "stream", kind, "err", err)
				u, pending = types.Update[T]{Err: err}, true
				continue
			}

			u, pending = types.Update[T]{Value: next}, true
		}
	}()

	return out, nil
}

func msgpackChange(ev changeEvent) ([]byte, error) {
	return msgpack.Marshal(ev)
}
