package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/foodbridge/foodbridge/auth"
	"github.com/foodbridge/foodbridge/types"
)

func TestService_CreateOrGetConversation(t *testing.T) {
	svc, _ := newTestService(t)

	donor := genUser(t, svc, types.RoleDonor)
	receiver := genUser(t, svc, types.RoleReceiver)
	stranger := genUser(t, svc, types.RoleReceiver)

	in := types.CreateOrGetConversation{
		DonationID:    genDonationID(),
		DonorID:       donor.ID,
		ReceiverID:    receiver.ID,
		DonationTitle: "Fresh bread",
	}

	t.Run("creates_once", func(t *testing.T) {
		first, err := svc.CreateOrGetConversation(asUser(receiver), in)
		if err != nil {
			t.Fatal(err)
		}

		if want := types.ConversationID(in.DonationID, donor.ID, receiver.ID); first.ID != want {
			t.Errorf("id = %s, want %s", first.ID, want)
		}

		if first.CreatedBy != receiver.ID {
			t.Errorf("created by = %s, want %s", first.CreatedBy, receiver.ID)
		}

		if first.UnreadCount != (types.UnreadCount{}) {
			t.Errorf("expected zero counters, got %+v", first.UnreadCount)
		}

		again := in
		again.DonationTitle = "Changed title"
		second, err := svc.CreateOrGetConversation(asUser(donor), again)
		if err != nil {
			t.Fatal(err)
		}

		if second.ID != first.ID || !second.CreatedAt.Equal(first.CreatedAt) {
			t.Errorf("expected the same conversation back")
		}

		if second.DonationTitle != "Fresh bread" || second.CreatedBy != receiver.ID {
			t.Errorf("existing conversation must be returned unchanged, got %+v", second)
		}
	})

	t.Run("concurrent_creates_converge", func(t *testing.T) {
		in := in
		in.DonationID = genDonationID()

		var wg sync.WaitGroup
		ids := make([]string, 8)
		errs := make([]error, 8)
		for i := range ids {
			wg.Go(func() {
				user := donor
				if i%2 == 0 {
					user = receiver
				}
				c, err := svc.CreateOrGetConversation(asUser(user), in)
				ids[i], errs[i] = c.ID, err
			})
		}
		wg.Wait()

		for i := range ids {
			if errs[i] != nil {
				t.Fatalf("create %d: %v", i, errs[i])
			}
			if ids[i] != ids[0] {
				t.Errorf("create %d returned %s, want %s", i, ids[i], ids[0])
			}
		}
	})

	t.Run("non_participant", func(t *testing.T) {
		_, err := svc.CreateOrGetConversation(asUser(stranger), in)
		if !errors.Is(err, types.ErrUnauthorizedParticipant) {
			t.Errorf("expected ErrUnauthorizedParticipant, got %v", err)
		}

		_, err = svc.Conversation(asUser(stranger), types.RetrieveConversation{ConversationID: in.ConversationID()})
		if !errors.Is(err, types.ErrUnauthorizedParticipant) {
			t.Errorf("expected ErrUnauthorizedParticipant on read, got %v", err)
		}
	})

	t.Run("unknown_user", func(t *testing.T) {
		in := in
		in.DonationID = genDonationID()
		in.ReceiverID = "u1u1u1u1u1u1u1u1u1u1u"

		_, err := svc.CreateOrGetConversation(asUser(donor), in)
		if !errors.Is(err, types.ErrInvalidParticipants) {
			t.Errorf("expected ErrInvalidParticipants, got %v", err)
		}
	})
}

func TestService_ConversationsStream(t *testing.T) {
	svc, ps := newTestService(t)

	donor := genUser(t, svc, types.RoleDonor)
	receiver := genUser(t, svc, types.RoleReceiver)

	ctx, cancel := context.WithCancel(asUser(donor))
	conversations, err := svc.ConversationsStream(ctx)
	if err != nil {
		t.Fatal(err)
	}

	unread, err := svc.TotalUnreadCountStream(auth.ContextWithUser(t.Context(), receiver))
	if err != nil {
		t.Fatal(err)
	}

	if got := recv(t, conversations); len(got) != 0 {
		t.Fatalf("expected no conversations, got %d", len(got))
	}

	if got := recv(t, unread); got != 0 {
		t.Fatalf("expected no unread, got %d", got)
	}

	conv, err := svc.CreateOrGetConversation(asUser(donor), types.CreateOrGetConversation{
		DonationID: genDonationID(),
		DonorID:    donor.ID,
		ReceiverID: receiver.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := recv(t, conversations); len(got) != 1 || got[0].ID != conv.ID {
		t.Fatalf("expected the new conversation, got %+v", got)
	}

	if _, err := svc.SendMessage(asUser(donor), types.SendMessage{ConversationID: conv.ID, Content: "hello"}); err != nil {
		t.Fatal(err)
	}

	for {
		if got := recv(t, unread); got == 1 {
			break
		}
	}

	cancel()
	for range conversations {
	}

	if got := ps.Subscribers(conversationsTopic(donor.ID)); got != 0 {
		t.Errorf("expected the subscription to be released, got %d subscribers", got)
	}
}
