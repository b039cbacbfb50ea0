package cockroach

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgxutil"

	"github.com/foodbridge/foodbridge/types"
)

const sqlConversationCols = `
	  conversations.id
	, conversations.donation_id
	, conversations.donor_id
	, conversations.receiver_id
	, conversations.donation_title
	, conversations.last_message
	, conversations.last_message_at
	, json_build_object(
		'donor', conversations.donor_unread,
		'receiver', conversations.receiver_unread
	) AS unread_count
	, conversations.created_by
	, conversations.created_at
`

func (c *Cockroach) Conversation(ctx context.Context, conversationID string) (types.Conversation, error) {
	return c.conversation(ctx, conversationID, false)
}

func (c *Cockroach) conversation(ctx context.Context, conversationID string, forUpdate bool) (types.Conversation, error) {
	query := `SELECT ` + sqlConversationCols + ` FROM conversations WHERE conversations.id = @conversation_id`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	args := pgx.StrictNamedArgs{
		"conversation_id": conversationID,
	}
	out, err := pgxutil.SelectRow(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.Conversation])
	if errors.Is(err, pgx.ErrNoRows) {
		return out, types.ErrConversationNotFound
	}

	if err != nil {
		return out, fmt.Errorf("sql select conversation: %w", err)
	}

	return out, nil
}

// CreateConversation inserts the conversation unless one with the same
// id already exists. It reports whether a row was written.
func (c *Cockroach) CreateConversation(ctx context.Context, in types.CreateOrGetConversation) (bool, error) {
	const query = `
		INSERT INTO conversations (id, donation_id, donor_id, receiver_id, donation_title, created_by)
		VALUES (@conversation_id, @donation_id, @donor_id, @receiver_id, @donation_title, @created_by)
		ON CONFLICT (id) DO NOTHING
	`

	tag, err := c.db.Exec(ctx, query, pgx.StrictNamedArgs{
		"conversation_id": in.ConversationID(),
		"donation_id":     in.DonationID,
		"donor_id":        in.DonorID,
		"receiver_id":     in.ReceiverID,
		"donation_title":  in.DonationTitle,
		"created_by":      in.LoggedInUserID(),
	})
	if isForeignKeyViolation(err) {
		return false, types.ErrInvalidParticipants
	}

	if err != nil {
		return false, fmt.Errorf("sql insert conversation: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (c *Cockroach) ConversationsByDonor(ctx context.Context, userID string) ([]types.Conversation, error) {
	return c.conversationsBy(ctx, "donor_id", userID)
}

func (c *Cockroach) ConversationsByReceiver(ctx context.Context, userID string) ([]types.Conversation, error) {
	return c.conversationsBy(ctx, "receiver_id", userID)
}

func (c *Cockroach) conversationsBy(ctx context.Context, col, userID string) ([]types.Conversation, error) {
	query := `SELECT ` + sqlConversationCols + ` FROM conversations` +
		where([]string{"conversations." + col + " = @user_id"}) +
		`ORDER BY conversations.last_message_at DESC, conversations.id`
	args := pgx.StrictNamedArgs{
		"user_id": userID,
	}
	out, err := pgxutil.Select(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.Conversation])
	if err != nil {
		return nil, fmt.Errorf("sql select conversations by %s: %w", col, err)
	}

	return out, nil
}
