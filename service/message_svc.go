package service

import (
	"context"

	"github.com/nicolasparada/go-errs"

	"github.com/foodbridge/foodbridge/auth"
	"github.com/foodbridge/foodbridge/types"
)

// SendMessage appends a message from the signed-in user. The message,
// the counters and the last message preview commit together or not at
// all.
func (svc *Service) SendMessage(ctx context.Context, in types.SendMessage) (types.Created, error) {
	var out types.Created

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return out, errs.Unauthenticated
	}

	if err := in.Validate(); err != nil {
		return out, err
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	out, conv, err := svc.Cockroach.CreateMessage(ctx, in)
	if err != nil {
		return out, err
	}

	svc.Metrics.IncMessagesSent()
	svc.publish(changeEvent{
		Kind:           changeMessageCreated,
		ConversationID: conv.ID,
		ActorID:        loggedInUser.ID,
	}, messagesTopic(conv.ID), conversationsTopic(conv.DonorID), conversationsTopic(conv.ReceiverID))

	return out, nil
}

// MarkMessagesAsRead clears the signed-in user's unread counter and flags
// the messages addressed to them as read. Calling it again is a no-op.
func (svc *Service) MarkMessagesAsRead(ctx context.Context, in types.MarkMessagesAsRead) error {
	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return errs.Unauthenticated
	}

	if err := in.Validate(); err != nil {
		return err
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	conv, err := svc.Cockroach.MarkMessagesAsRead(ctx, in)
	if err != nil {
		return err
	}

	svc.Metrics.IncReadReceipts()
	svc.publish(changeEvent{
		Kind:           changeMessagesRead,
		ConversationID: conv.ID,
		ActorID:        loggedInUser.ID,
	}, messagesTopic(conv.ID), conversationsTopic(loggedInUser.ID))

	return nil
}

func (svc *Service) Messages(ctx context.Context, in types.RetrieveConversation) ([]types.Message, error) {
	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return nil, errs.Unauthenticated
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	if err := svc.ensureParticipant(ctx, in.ConversationID, loggedInUser.ID); err != nil {
		return nil, err
	}

	return svc.Cockroach.Messages(ctx, in.ConversationID)
}

// MessagesStream emits the conversation's messages oldest first, and
// again after each new message or read receipt. Cancel ctx to stop it.
func (svc *Service) MessagesStream(ctx context.Context, in types.RetrieveConversation) (<-chan types.Update[[]types.Message], error) {
	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return nil, errs.Unauthenticated
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	if err := svc.ensureParticipant(ctx, in.ConversationID, loggedInUser.ID); err != nil {
		return nil, err
	}

	userID, conversationID := loggedInUser.ID, in.ConversationID
	return watch(ctx, svc, "messages", []string{messagesTopic(conversationID)}, func(ctx context.Context) ([]types.Message, error) {
		messages, err := svc.Cockroach.Messages(ctx, conversationID)
		if err != nil {
			return nil, err
		}

		if !involves(messages, userID) {
			return nil, types.ErrUnauthorizedParticipant
		}

		return messages, nil
	})
}

func (svc *Service) ensureParticipant(ctx context.Context, conversationID, userID string) error {
	conv, err := svc.Cockroach.Conversation(ctx, conversationID)
	if err != nil {
		return err
	}

	if !conv.HasParticipant(userID) {
		return types.ErrUnauthorizedParticipant
	}

	return nil
}

// involves reports whether userID sent or received at least one of the
// messages. An empty list involves everyone.
func involves(messages []types.Message, userID string) bool {
	if len(messages) == 0 {
		return true
	}

	for _, m := range messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			return true
		}
	}

	return false
}
