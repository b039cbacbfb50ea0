package chatview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nicolasparada/go-errs"

	"github.com/foodbridge/foodbridge/auth"
	"github.com/foodbridge/foodbridge/types"
	"github.com/foodbridge/foodbridge/validator"
)

const (
	donorID    = "d1d1d1d1d1d1d1d1d1d1d"
	receiverID = "r1r1r1r1r1r1r1r1r1r1r"
)

var testConversationID = types.ConversationID("donation-1", donorID, receiverID)

type fakeListSource struct {
	conversations chan types.Update[[]types.Conversation]
	unread        chan types.Update[int]
	unreadErr     error
	createErr     error

	conversationsCtx context.Context
}

func (f *fakeListSource) ConversationsStream(ctx context.Context) (<-chan types.Update[[]types.Conversation], error) {
	f.conversationsCtx = ctx
	return f.conversations, nil
}

func (f *fakeListSource) TotalUnreadCountStream(ctx context.Context) (<-chan types.Update[int], error) {
	if f.unreadErr != nil {
		return nil, f.unreadErr
	}
	return f.unread, nil
}

func (f *fakeListSource) CreateOrGetConversation(ctx context.Context, in types.CreateOrGetConversation) (types.Conversation, error) {
	if f.createErr != nil {
		return types.Conversation{}, f.createErr
	}
	return types.Conversation{ID: in.ConversationID()}, nil
}

type fakeThreadSource struct {
	messages chan types.Update[[]types.Message]

	sendStarted chan struct{}
	sendRelease chan struct{}
	sends       atomic.Int32
	reads       atomic.Int32
}

func (f *fakeThreadSource) MessagesStream(ctx context.Context, in types.RetrieveConversation) (<-chan types.Update[[]types.Message], error) {
	return f.messages, nil
}

func (f *fakeThreadSource) SendMessage(ctx context.Context, in types.SendMessage) (types.Created, error) {
	f.sends.Add(1)
	if f.sendStarted != nil {
		f.sendStarted <- struct{}{}
	}
	if f.sendRelease != nil {
		<-f.sendRelease
	}
	return types.Created{ID: fmt.Sprintf("m%d", f.sends.Load())}, nil
}

func (f *fakeThreadSource) MarkMessagesAsRead(ctx context.Context, in types.MarkMessagesAsRead) error {
	f.reads.Add(1)
	return nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestConversationList(t *testing.T) {
	src := &fakeListSource{
		conversations: make(chan types.Update[[]types.Conversation]),
		unread:        make(chan types.Update[int]),
	}
	list := NewConversationList(src)

	if !list.State().Loading {
		t.Fatal("expected loading before open")
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := list.Open(ctx); err != nil {
		t.Fatal(err)
	}

	src.conversations <- types.Update[[]types.Conversation]{Value: []types.Conversation{{ID: "a"}, {ID: "b"}}}
	src.unread <- types.Update[int]{Value: 3}

	waitFor(t, "state", func() bool {
		s := list.State()
		return !s.Loading && len(s.Conversations) == 2 && s.TotalUnread == 3
	})

	src.conversations <- types.Update[[]types.Conversation]{Value: []types.Conversation{{ID: "c"}}}
	waitFor(t, "replaced list", func() bool {
		s := list.State()
		return len(s.Conversations) == 1 && s.Conversations[0].ID == "c"
	})

	cancel()
	close(src.conversations)
	close(src.unread)

	for range list.Updates() {
	}
}

func TestConversationList_StreamError(t *testing.T) {
	src := &fakeListSource{
		conversations: make(chan types.Update[[]types.Conversation]),
		unread:        make(chan types.Update[int]),
	}
	list := NewConversationList(src)

	ctx, cancel := context.WithCancel(context.Background())
	if err := list.Open(ctx); err != nil {
		t.Fatal(err)
	}

	src.conversations <- types.Update[[]types.Conversation]{Value: []types.Conversation{{ID: "a"}}}
	waitFor(t, "first delivery", func() bool { return len(list.State().Conversations) == 1 })

	errDown := errors.New("db down")
	src.conversations <- types.Update[[]types.Conversation]{Err: errDown}
	waitFor(t, "stream error", func() bool { return errors.Is(list.State().Err, errDown) })

	if got := list.State().Conversations; len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected the previous conversations to be kept, got %+v", got)
	}

	src.unread <- types.Update[int]{Err: errDown}
	src.unread <- types.Update[int]{Value: 4}
	waitFor(t, "unread after error", func() bool { return list.State().TotalUnread == 4 })

	cancel()
	close(src.conversations)
	close(src.unread)

	for range list.Updates() {
	}
}

func TestConversationList_OpenReleasesFirstStream(t *testing.T) {
	errDown := errors.New("db down")
	src := &fakeListSource{
		conversations: make(chan types.Update[[]types.Conversation]),
		unreadErr:     errDown,
	}
	list := NewConversationList(src)

	if err := list.Open(context.Background()); !errors.Is(err, errDown) {
		t.Fatalf("expected open to fail, got %v", err)
	}

	select {
	case <-src.conversationsCtx.Done():
	default:
		t.Fatal("expected the conversations stream context to be cancelled")
	}

	if !errors.Is(list.State().Err, errDown) {
		t.Fatalf("expected error in state, got %v", list.State().Err)
	}

	// Ranging ends only once updates is closed.
	for range list.Updates() {
	}
}

func TestConversationList_StartConversationError(t *testing.T) {
	src := &fakeListSource{createErr: types.ErrInvalidParticipants}
	list := NewConversationList(src)

	_, err := list.StartConversation(context.Background(), types.CreateOrGetConversation{})
	if !errors.Is(err, types.ErrInvalidParticipants) {
		t.Fatalf("expected invalid participants, got %v", err)
	}

	if !errors.Is(list.State().Err, types.ErrInvalidParticipants) {
		t.Fatalf("expected error in state, got %v", list.State().Err)
	}
}

func TestThread_SendInFlight(t *testing.T) {
	src := &fakeThreadSource{
		messages:    make(chan types.Update[[]types.Message]),
		sendStarted: make(chan struct{}),
		sendRelease: make(chan struct{}),
	}
	thread := NewThread(src, ThreadConfig{ConversationID: testConversationID})

	ctx := auth.ContextWithUser(context.Background(), types.User{ID: donorID})

	var wg sync.WaitGroup
	wg.Go(func() {
		if _, err := thread.Send(ctx, "hello"); err != nil {
			t.Errorf("first send: %v", err)
		}
	})

	<-src.sendStarted

	if !thread.State().Sending {
		t.Fatal("expected sending while in flight")
	}

	_, err := thread.Send(ctx, "again")
	if !errors.Is(err, ErrSendInFlight) {
		t.Fatalf("expected ErrSendInFlight, got %v", err)
	}

	close(src.sendRelease)
	wg.Wait()

	if got := src.sends.Load(); got != 1 {
		t.Fatalf("expected the store to see 1 send, got %d", got)
	}

	if thread.State().Sending {
		t.Fatal("expected sending to reset")
	}
}

func TestThread_ReadReceiptDebounced(t *testing.T) {
	src := &fakeThreadSource{messages: make(chan types.Update[[]types.Message])}
	thread := NewThread(src, ThreadConfig{
		ConversationID: testConversationID,
		SettleDelay:    50 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(auth.ContextWithUser(context.Background(), types.User{ID: receiverID}))
	defer cancel()

	if err := thread.Open(ctx); err != nil {
		t.Fatal(err)
	}

	for i := range 5 {
		src.messages <- types.Update[[]types.Message]{Value: []types.Message{{
			ID:         fmt.Sprintf("m%d", i),
			SenderID:   donorID,
			ReceiverID: receiverID,
			Content:    "hi",
		}}}
	}

	waitFor(t, "read receipt", func() bool { return src.reads.Load() >= 1 })
	time.Sleep(150 * time.Millisecond)

	if got := src.reads.Load(); got != 1 {
		t.Fatalf("expected one read receipt for the burst, got %d", got)
	}

	if got := len(thread.State().Messages); got != 1 {
		t.Fatalf("expected the last delivered list, got %d messages", got)
	}
}

func TestThread_StreamError(t *testing.T) {
	src := &fakeThreadSource{messages: make(chan types.Update[[]types.Message])}
	thread := NewThread(src, ThreadConfig{ConversationID: testConversationID})

	ctx, cancel := context.WithCancel(auth.ContextWithUser(context.Background(), types.User{ID: donorID}))
	defer cancel()

	if err := thread.Open(ctx); err != nil {
		t.Fatal(err)
	}

	src.messages <- types.Update[[]types.Message]{Value: []types.Message{{ID: "m1", SenderID: donorID, ReceiverID: receiverID, Content: "hi"}}}
	waitFor(t, "first delivery", func() bool { return len(thread.State().Messages) == 1 })

	errDown := errors.New("db down")
	src.messages <- types.Update[[]types.Message]{Err: errDown}
	waitFor(t, "stream error", func() bool { return errors.Is(thread.State().Err, errDown) })

	if got := thread.State().Messages; len(got) != 1 || got[0].ID != "m1" {
		t.Fatalf("expected the previous messages to be kept, got %+v", got)
	}
}

func TestDescribe(t *testing.T) {
	v := validator.New()
	v.AddError("Name", "Name is required")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "in_flight", err: ErrSendInFlight, want: "Please wait, your previous message is still being sent."},
		{name: "empty", err: types.ErrEmptyMessage, want: "Type a message before sending."},
		{name: "wrapped_not_participant", err: fmt.Errorf("send: %w", types.ErrUnauthorizedParticipant), want: "You are not part of this conversation."},
		{name: "unauthenticated", err: errs.Unauthenticated, want: "Please sign in to continue."},
		{name: "validation", err: v, want: "Some of the information is invalid. Please check it and try again."},
		{name: "unknown", err: errors.New("boom"), want: "Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.err); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}
