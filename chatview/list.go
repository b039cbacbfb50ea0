// Package chatview projects the live chat streams into per-screen state:
// the conversation list and a single message thread.
package chatview

import (
	"context"
	"sync"

	"github.com/foodbridge/foodbridge/types"
)

type ListSource interface {
	ConversationsStream(ctx context.Context) (<-chan types.Update[[]types.Conversation], error)
	TotalUnreadCountStream(ctx context.Context) (<-chan types.Update[int], error)
	CreateOrGetConversation(ctx context.Context, in types.CreateOrGetConversation) (types.Conversation, error)
}

type ListState struct {
	Conversations []types.Conversation `json:"conversations"`
	Loading       bool                 `json:"loading"`
	Err           error                `json:"-"`
	TotalUnread   int                  `json:"totalUnread"`
}

// ConversationList holds the signed-in user's conversations and total
// unread count, replaced wholesale on every stream delivery.
type ConversationList struct {
	src ListSource

	mu      sync.Mutex
	state   ListState
	updates *broadcast[ListState]
}

func NewConversationList(src ListSource) *ConversationList {
	return &ConversationList{
		src:     src,
		state:   ListState{Loading: true, Conversations: []types.Conversation{}},
		updates: newBroadcast[ListState](),
	}
}

// Open subscribes to both streams until ctx is done. Updates is closed
// afterwards. A stream delivery carrying an error is stored as the list
// error; the previous conversations are kept.
func (l *ConversationList) Open(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	conversations, err := l.src.ConversationsStream(ctx)
	if err != nil {
		cancel()
		l.fail(err)
		l.updates.close()
		return err
	}

	unread, err := l.src.TotalUnreadCountStream(ctx)
	if err != nil {
		// Releases the conversations stream opened above.
		cancel()
		l.fail(err)
		l.updates.close()
		return err
	}

	go func() {
		defer l.updates.close()
		defer cancel()

		for conversations != nil || unread != nil {
			select {
			case u, ok := <-conversations:
				if !ok {
					conversations = nil
					continue
				}

				if u.Err != nil {
					l.fail(u.Err)
					continue
				}

				l.set(func(s *ListState) {
					s.Conversations = u.Value
					s.Loading = false
				})
			case u, ok := <-unread:
				if !ok {
					unread = nil
					continue
				}

				if u.Err != nil {
					l.fail(u.Err)
					continue
				}

				l.set(func(s *ListState) {
					s.TotalUnread = u.Value
				})
			}
		}
	}()

	return nil
}

// StartConversation opens or reuses the conversation for a donation. The
// new conversation shows up in the list through the stream.
func (l *ConversationList) StartConversation(ctx context.Context, in types.CreateOrGetConversation) (types.Conversation, error) {
	out, err := l.src.CreateOrGetConversation(ctx, in)
	if err != nil {
		l.fail(err)
		return out, err
	}

	return out, nil
}

func (l *ConversationList) State() ListState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Updates delivers the latest state after every change. Slow readers
// only see the most recent one.
func (l *ConversationList) Updates() <-chan ListState {
	return l.updates.ch
}

func (l *ConversationList) fail(err error) {
	l.set(func(s *ListState) {
		s.Err = err
		s.Loading = false
	})
}

func (l *ConversationList) set(fn func(s *ListState)) {
	l.mu.Lock()
	fn(&l.state)
	state := l.state
	l.mu.Unlock()

	l.updates.send(state)
}

// broadcast keeps only the latest value for a single reader.
type broadcast[T any] struct {
	mu     sync.Mutex
	ch     chan T
	closed bool
}

func newBroadcast[T any]() *broadcast[T] {
	return &broadcast[T]{ch: make(chan T, 1)}
}

func (b *broadcast[T]) send(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	select {
	case <-b.ch:
	default:
	}

	b.ch <- v
}

func (b *broadcast[T]) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		close(b.ch)
	}
}
