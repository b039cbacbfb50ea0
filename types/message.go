package types

import (
	"strings"
	"time"
	"unicode/utf8"
)

const maxMessageLength = 1000

type MessageType string

const MessageTypeText MessageType = "text"

type Message struct {
	ID             string      `json:"id" db:"id"`
	ConversationID string      `json:"conversationID" db:"conversation_id"`
	SenderID       string      `json:"senderID" db:"sender_id"`
	ReceiverID     string      `json:"receiverID" db:"receiver_id"`
	Content        string      `json:"content" db:"content"`
	Type           MessageType `json:"type" db:"type"`
	Read           bool        `json:"read" db:"read"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
}

type SendMessage struct {
	ConversationID string
	ReceiverID     string
	Content        string
	// DonationTitle refreshes the denormalized title on the conversation when set.
	DonationTitle string

	loggedInUserID string
}

func (in *SendMessage) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in SendMessage) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *SendMessage) Validate() error {
	in.Content = strings.TrimSpace(in.Content)
	in.DonationTitle = strings.TrimSpace(in.DonationTitle)

	if in.Content == "" {
		return ErrEmptyMessage
	}

	if utf8.RuneCountInString(in.Content) > maxMessageLength {
		return ErrMessageTooLong
	}

	if !ValidConversationID(in.ConversationID) {
		return ErrConversationNotFound
	}

	if utf8.RuneCountInString(in.DonationTitle) > 200 {
		return ErrInvalidDonationTitle
	}

	return nil
}

type MarkMessagesAsRead struct {
	ConversationID string

	loggedInUserID string
}

func (in *MarkMessagesAsRead) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in MarkMessagesAsRead) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *MarkMessagesAsRead) Validate() error {
	if !ValidConversationID(in.ConversationID) {
		return ErrConversationNotFound
	}
	return nil
}
