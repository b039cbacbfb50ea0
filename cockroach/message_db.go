package cockroach

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgxutil"

	"github.com/foodbridge/foodbridge/id"
	"github.com/foodbridge/foodbridge/types"
)

const sqlMessageCols = `
	  messages.id
	, messages.conversation_id
	, messages.sender_id
	, messages.receiver_id
	, messages.content
	, messages.type
	, messages.read
	, messages.created_at
`

// CreateMessage stores the message and updates the conversation counters
// and last message in a single transaction. Nothing is written when the
// conversation is missing or the sender does not take part in it.
func (c *Cockroach) CreateMessage(ctx context.Context, in types.SendMessage) (types.Created, types.Conversation, error) {
	var (
		out  types.Created
		conv types.Conversation
	)
	return out, conv, c.db.RunTx(ctx, func(ctx context.Context) error {
		var err error
		conv, err = c.conversation(ctx, in.ConversationID, true)
		if err != nil {
			return err
		}

		senderID := in.LoggedInUserID()
		if !conv.HasParticipant(senderID) {
			return types.ErrUnauthorizedParticipant
		}

		receiverID := conv.OtherParticipant(senderID)
		if in.ReceiverID != "" && in.ReceiverID != receiverID {
			return types.ErrUnauthorizedParticipant
		}

		out, err = c.createMessage(ctx, in.ConversationID, senderID, receiverID, in.Content)
		if err != nil {
			return err
		}

		conv, err = c.bumpConversation(ctx, in, out)
		return err
	})
}

func (c *Cockroach) createMessage(ctx context.Context, conversationID, senderID, receiverID, content string) (types.Created, error) {
	const query = `
		INSERT INTO messages (id, conversation_id, sender_id, receiver_id, content, type)
		VALUES (@message_id, @conversation_id, @sender_id, @receiver_id, @content, @type)
		RETURNING id, created_at
	`
	args := pgx.StrictNamedArgs{
		"message_id":      id.Generate(),
		"conversation_id": conversationID,
		"sender_id":       senderID,
		"receiver_id":     receiverID,
		"content":         content,
		"type":            types.MessageTypeText,
	}
	out, err := pgxutil.SelectRow(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.Created])
	if err != nil {
		return out, fmt.Errorf("sql insert message: %w", err)
	}

	return out, nil
}

// bumpConversation increments the receiving side counter and resets the
// sender's own.
func (c *Cockroach) bumpConversation(ctx context.Context, in types.SendMessage, msg types.Created) (types.Conversation, error) {
	query := `
		UPDATE conversations
		SET donor_unread = CASE WHEN donor_id = @sender_id THEN 0 ELSE donor_unread + 1 END
		  , receiver_unread = CASE WHEN receiver_id = @sender_id THEN 0 ELSE receiver_unread + 1 END
		  , last_message = @content
		  , last_message_at = @last_message_at
		  , donation_title = COALESCE(NULLIF(@donation_title::VARCHAR, ''), donation_title)
		WHERE id = @conversation_id
		RETURNING ` + sqlConversationCols
	args := pgx.StrictNamedArgs{
		"conversation_id": in.ConversationID,
		"sender_id":       in.LoggedInUserID(),
		"content":         in.Content,
		"last_message_at": msg.CreatedAt,
		"donation_title":  in.DonationTitle,
	}
	out, err := pgxutil.SelectRow(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.Conversation])
	if err != nil {
		return out, fmt.Errorf("sql update conversation after message: %w", err)
	}

	return out, nil
}

// MarkMessagesAsRead resets the reader's counter and flags every message
// addressed to them as read.
func (c *Cockroach) MarkMessagesAsRead(ctx context.Context, in types.MarkMessagesAsRead) (types.Conversation, error) {
	var conv types.Conversation
	return conv, c.db.RunTx(ctx, func(ctx context.Context) error {
		var err error
		conv, err = c.conversation(ctx, in.ConversationID, true)
		if err != nil {
			return err
		}

		readerID := in.LoggedInUserID()
		if !conv.HasParticipant(readerID) {
			return types.ErrUnauthorizedParticipant
		}

		query := `
			UPDATE conversations
			SET donor_unread = CASE WHEN donor_id = @reader_id THEN 0 ELSE donor_unread END
			  , receiver_unread = CASE WHEN receiver_id = @reader_id THEN 0 ELSE receiver_unread END
			WHERE id = @conversation_id
			RETURNING ` + sqlConversationCols
		args := pgx.StrictNamedArgs{
			"conversation_id": in.ConversationID,
			"reader_id":       readerID,
		}
		conv, err = pgxutil.SelectRow(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.Conversation])
		if err != nil {
			return fmt.Errorf("sql reset conversation unread count: %w", err)
		}

		_, err = c.db.Exec(ctx, `
			UPDATE messages
			SET read = true
			WHERE conversation_id = @conversation_id
				AND receiver_id = @reader_id
				AND read = false
		`, args)
		if err != nil {
			return fmt.Errorf("sql update messages as read: %w", err)
		}

		return nil
	})
}

// Messages in ascending creation order. The id breaks ties between rows
// written within the same transaction timestamp.
func (c *Cockroach) Messages(ctx context.Context, conversationID string) ([]types.Message, error) {
	query := `SELECT ` + sqlMessageCols + ` FROM messages` +
		where([]string{"messages.conversation_id = @conversation_id"}) +
		`ORDER BY messages.created_at ASC, messages.id ASC`
	args := pgx.StrictNamedArgs{
		"conversation_id": conversationID,
	}
	out, err := pgxutil.Select(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.Message])
	if err != nil {
		return nil, fmt.Errorf("sql select messages: %w", err)
	}

	return out, nil
}
