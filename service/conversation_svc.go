package service

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/nicolasparada/go-errs"
	"golang.org/x/sync/errgroup"

	"github.com/foodbridge/foodbridge/auth"
	"github.com/foodbridge/foodbridge/types"
)

// CreateOrGetConversation returns the conversation for the donation and
// pair, creating it on first use. An existing conversation is returned
// untouched.
func (svc *Service) CreateOrGetConversation(ctx context.Context, in types.CreateOrGetConversation) (types.Conversation, error) {
	var out types.Conversation

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return out, errs.Unauthenticated
	}

	if err := in.Validate(); err != nil {
		return out, err
	}

	if loggedInUser.ID != in.DonorID && loggedInUser.ID != in.ReceiverID {
		return out, types.ErrUnauthorizedParticipant
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	conversationID := in.ConversationID()
	out, err := svc.Cockroach.Conversation(ctx, conversationID)
	if err == nil {
		return out, nil
	}

	if !errors.Is(err, types.ErrConversationNotFound) {
		return out, err
	}

	created, err := svc.Cockroach.CreateConversation(ctx, in)
	if err != nil {
		return out, err
	}

	out, err = svc.Cockroach.Conversation(ctx, conversationID)
	if err != nil {
		return out, err
	}

	if created {
		svc.Metrics.IncConversationsCreated()
		svc.publish(changeEvent{
			Kind:           changeConversationCreated,
			ConversationID: conversationID,
			ActorID:        loggedInUser.ID,
		}, conversationsTopic(out.DonorID), conversationsTopic(out.ReceiverID))
	}

	return out, nil
}

func (svc *Service) Conversation(ctx context.Context, in types.RetrieveConversation) (types.Conversation, error) {
	var out types.Conversation

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return out, errs.Unauthenticated
	}

	if err := in.Validate(); err != nil {
		return out, err
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	out, err := svc.Cockroach.Conversation(ctx, in.ConversationID)
	if err != nil {
		return out, err
	}

	if !out.HasParticipant(loggedInUser.ID) {
		return types.Conversation{}, types.ErrUnauthorizedParticipant
	}

	return out, nil
}

// Conversations where the signed-in user is either the donor or the
// receiver, most recent activity first.
func (svc *Service) Conversations(ctx context.Context) ([]types.Conversation, error) {
	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return nil, errs.Unauthenticated
	}

	asDonor, asReceiver, err := svc.userConversations(ctx, loggedInUser.ID)
	if err != nil {
		return nil, err
	}

	return mergeConversations(asDonor, asReceiver), nil
}

// ConversationsStream emits the signed-in user's conversations and again
// after each change to any of them. Cancel ctx to stop it.
func (svc *Service) ConversationsStream(ctx context.Context) (<-chan types.Update[[]types.Conversation], error) {
	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return nil, errs.Unauthenticated
	}

	userID := loggedInUser.ID
	return watch(ctx, svc, "conversations", []string{conversationsTopic(userID)}, func(ctx context.Context) ([]types.Conversation, error) {
		asDonor, asReceiver, err := svc.userConversations(ctx, userID)
		if err != nil {
			return nil, err
		}

		return mergeConversations(asDonor, asReceiver), nil
	})
}

// TotalUnreadCountStream emits the sum of the signed-in user's unread
// counters across all their conversations.
func (svc *Service) TotalUnreadCountStream(ctx context.Context) (<-chan types.Update[int], error) {
	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return nil, errs.Unauthenticated
	}

	userID := loggedInUser.ID
	return watch(ctx, svc, "unread_count", []string{conversationsTopic(userID)}, func(ctx context.Context) (int, error) {
		asDonor, asReceiver, err := svc.userConversations(ctx, userID)
		if err != nil {
			return 0, err
		}

		return totalUnread(asDonor, asReceiver), nil
	})
}

func (svc *Service) userConversations(ctx context.Context, userID string) (asDonor, asReceiver []types.Conversation, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		asDonor, err = svc.Cockroach.ConversationsByDonor(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		asReceiver, err = svc.Cockroach.ConversationsByReceiver(gctx, userID)
		return err
	})
	err = g.Wait()
	return asDonor, asReceiver, err
}

// mergeConversations dedupes by id and orders by last activity, newest
// first, with the id as tie breaker.
func mergeConversations(lists ...[]types.Conversation) []types.Conversation {
	seen := map[string]struct{}{}
	out := []types.Conversation{}
	for _, list := range lists {
		for _, c := range list {
			if _, ok := seen[c.ID]; ok {
				continue
			}

			seen[c.ID] = struct{}{}
			out = append(out, c)
		}
	}

	slices.SortStableFunc(out, func(a, b types.Conversation) int {
		if n := b.LastMessageAt.Compare(a.LastMessageAt); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return out
}

func totalUnread(asDonor, asReceiver []types.Conversation) int {
	var n int
	for _, c := range asDonor {
		n += c.UnreadCount.Donor
	}
	for _, c := range asReceiver {
		n += c.UnreadCount.Receiver
	}
	return n
}
