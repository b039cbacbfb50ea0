package types

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/foodbridge/foodbridge/id"
)

const conversationIDSep = "_"

type Conversation struct {
	ID            string      `json:"id" db:"id"`
	DonationID    string      `json:"donationID" db:"donation_id"`
	DonorID       string      `json:"donorID" db:"donor_id"`
	ReceiverID    string      `json:"receiverID" db:"receiver_id"`
	DonationTitle string      `json:"donationTitle" db:"donation_title"`
	LastMessage   *string     `json:"lastMessage" db:"last_message"`
	LastMessageAt time.Time   `json:"lastMessageAt" db:"last_message_at"`
	UnreadCount   UnreadCount `json:"unreadCount" db:"unread_count"`
	CreatedBy     string      `json:"createdBy" db:"created_by"`
	CreatedAt     time.Time   `json:"createdAt" db:"created_at"`
}

// UnreadCount holds one counter per side of the conversation.
type UnreadCount struct {
	Donor    int `json:"donor"`
	Receiver int `json:"receiver"`
}

func (c Conversation) HasParticipant(userID string) bool {
	return userID != "" && (c.DonorID == userID || c.ReceiverID == userID)
}

// OtherParticipant returns the counterpart of userID.
func (c Conversation) OtherParticipant(userID string) string {
	if c.DonorID == userID {
		return c.ReceiverID
	}
	return c.DonorID
}

// UnreadFor returns the counter belonging to userID.
func (c Conversation) UnreadFor(userID string) int {
	switch userID {
	case c.DonorID:
		return c.UnreadCount.Donor
	case c.ReceiverID:
		return c.UnreadCount.Receiver
	}
	return 0
}

// ConversationID is a pure function of its parts so that concurrent
// creations for the same donation and pair converge on one record.
func ConversationID(donationID, donorID, receiverID string) string {
	return donationID + conversationIDSep + donorID + conversationIDSep + receiverID
}

// ValidConversationID reports whether s has the donation_donor_receiver shape.
func ValidConversationID(s string) bool {
	parts := strings.Split(s, conversationIDSep)
	if len(parts) != 3 {
		return false
	}
	return validDonationID(parts[0]) && id.Valid(parts[1]) && id.Valid(parts[2]) && parts[1] != parts[2]
}

func validDonationID(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '-') {
			return false
		}
	}
	return true
}

type CreateOrGetConversation struct {
	DonationID    string
	DonorID       string
	ReceiverID    string
	DonationTitle string

	loggedInUserID string
}

func (in *CreateOrGetConversation) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in CreateOrGetConversation) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in CreateOrGetConversation) ConversationID() string {
	return ConversationID(in.DonationID, in.DonorID, in.ReceiverID)
}

func (in *CreateOrGetConversation) Validate() error {
	in.DonationID = strings.TrimSpace(in.DonationID)
	in.DonationTitle = strings.TrimSpace(in.DonationTitle)

	if !validDonationID(in.DonationID) ||
		!id.Valid(in.DonorID) ||
		!id.Valid(in.ReceiverID) ||
		in.DonorID == in.ReceiverID {
		return ErrInvalidParticipants
	}

	if utf8.RuneCountInString(in.DonationTitle) > 200 {
		return ErrInvalidDonationTitle
	}

	return nil
}

type RetrieveConversation struct {
	ConversationID string

	loggedInUserID string
}

func (in *RetrieveConversation) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in RetrieveConversation) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *RetrieveConversation) Validate() error {
	if !ValidConversationID(in.ConversationID) {
		return ErrConversationNotFound
	}
	return nil
}
