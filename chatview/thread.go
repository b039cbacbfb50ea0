package chatview

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/foodbridge/foodbridge/auth"
	"github.com/foodbridge/foodbridge/types"
)

// DefaultSettleDelay is how long a thread waits for message bursts to
// settle before sending a read receipt.
const DefaultSettleDelay = 500 * time.Millisecond

// ErrSendInFlight is returned when a thread is already sending.
var ErrSendInFlight = errors.New("a message is already being sent")

type ThreadSource interface {
	MessagesStream(ctx context.Context, in types.RetrieveConversation) (<-chan types.Update[[]types.Message], error)
	SendMessage(ctx context.Context, in types.SendMessage) (types.Created, error)
	MarkMessagesAsRead(ctx context.Context, in types.MarkMessagesAsRead) error
}

type ThreadState struct {
	Messages []types.Message `json:"messages"`
	Loading  bool            `json:"loading"`
	Sending  bool            `json:"sending"`
	Err      error           `json:"-"`
}

type ThreadConfig struct {
	ConversationID string
	// ReceiverID and DonationTitle are forwarded with every send.
	ReceiverID    string
	DonationTitle string
	SettleDelay   time.Duration
}

type Thread struct {
	src ThreadSource
	cfg ThreadConfig

	mu       sync.Mutex
	state    ThreadState
	viewerID string
	receipt  *time.Timer
	updates  *broadcast[ThreadState]
}

func NewThread(src ThreadSource, cfg ThreadConfig) *Thread {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}

	return &Thread{
		src:     src,
		cfg:     cfg,
		state:   ThreadState{Loading: true, Messages: []types.Message{}},
		updates: newBroadcast[ThreadState](),
	}
}

// Open streams the thread until ctx is done. A read receipt is scheduled
// on open and again whenever unread messages addressed to the viewer
// arrive; bursts collapse into one call. Stream errors land in the
// thread error state.
func (t *Thread) Open(ctx context.Context) error {
	t.mu.Lock()
	t.viewerID = auth.UserID(ctx)
	t.mu.Unlock()

	mm, err := t.src.MessagesStream(ctx, types.RetrieveConversation{ConversationID: t.cfg.ConversationID})
	if err != nil {
		t.fail(err)
		t.updates.close()
		return err
	}

	t.scheduleReadReceipt(ctx)

	go func() {
		defer t.updates.close()
		defer t.stopReadReceipt()

		for {
			select {
			case u, ok := <-mm:
				if !ok {
					return
				}

				if u.Err != nil {
					t.fail(u.Err)
					continue
				}

				t.set(func(s *ThreadState) {
					s.Messages = u.Value
					s.Loading = false
				})

				if t.hasUnread(u.Value) {
					t.scheduleReadReceipt(ctx)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Send posts content to the thread. Only one send may be in flight; a
// concurrent call fails with ErrSendInFlight without reaching the store.
func (t *Thread) Send(ctx context.Context, content string) (types.Created, error) {
	t.mu.Lock()
	if t.state.Sending {
		t.mu.Unlock()
		return types.Created{}, ErrSendInFlight
	}
	t.state.Sending = true
	t.state.Err = nil
	state := t.state
	t.mu.Unlock()

	t.updates.send(state)

	out, err := t.src.SendMessage(ctx, types.SendMessage{
		ConversationID: t.cfg.ConversationID,
		ReceiverID:     t.cfg.ReceiverID,
		Content:        content,
		DonationTitle:  t.cfg.DonationTitle,
	})

	t.set(func(s *ThreadState) {
		s.Sending = false
		s.Err = err
	})

	return out, err
}

func (t *Thread) State() ThreadState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Thread) Updates() <-chan ThreadState {
	return t.updates.ch
}

func (t *Thread) hasUnread(messages []types.Message) bool {
	t.mu.Lock()
	viewerID := t.viewerID
	t.mu.Unlock()

	for _, m := range messages {
		if !m.Read && m.ReceiverID == viewerID {
			return true
		}
	}
	return false
}

func (t *Thread) scheduleReadReceipt(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.receipt != nil {
		t.receipt.Reset(t.cfg.SettleDelay)
		return
	}

	t.receipt = time.AfterFunc(t.cfg.SettleDelay, func() {
		if ctx.Err() != nil {
			return
		}

		err := t.src.MarkMessagesAsRead(ctx, types.MarkMessagesAsRead{ConversationID: t.cfg.ConversationID})
		if err != nil && ctx.Err() == nil {
			t.fail(err)
		}
	})
}

func (t *Thread) stopReadReceipt() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.receipt != nil {
		t.receipt.Stop()
	}
}

func (t *Thread) fail(err error) {
	t.set(func(s *ThreadState) {
		s.Err = err
		s.Loading = false
	})
}

func (t *Thread) set(fn func(s *ThreadState)) {
	t.mu.Lock()
	fn(&t.state)
	state := t.state
	t.mu.Unlock()

	t.updates.send(state)
}
