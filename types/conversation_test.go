package types

import (
	"errors"
	"strings"
	"testing"
)

const (
	testDonorID    = "d1d1d1d1d1d1d1d1d1d1d"
	testReceiverID = "r1r1r1r1r1r1r1r1r1r1r"
)

func TestConversationID(t *testing.T) {
	got := ConversationID("don42", testDonorID, testReceiverID)
	want := "don42_" + testDonorID + "_" + testReceiverID
	if got != want {
		t.Fatalf("ConversationID() = %q; want %q", got, want)
	}

	if !ValidConversationID(got) {
		t.Errorf("ValidConversationID(%q) = false", got)
	}

	in := CreateOrGetConversation{DonationID: "don42", DonorID: testDonorID, ReceiverID: testReceiverID}
	if in.ConversationID() != got {
		t.Errorf("input ConversationID() = %q; want %q", in.ConversationID(), got)
	}
}

func TestValidConversationID(t *testing.T) {
	tt := []struct {
		name string
		in   string
		want bool
	}{
		{name: "ok", in: "don42_" + testDonorID + "_" + testReceiverID, want: true},
		{name: "missing_part", in: "don42_" + testDonorID, want: false},
		{name: "same_participants", in: "don42_" + testDonorID + "_" + testDonorID, want: false},
		{name: "extra_separator", in: "don_42_" + testDonorID + "_" + testReceiverID, want: false},
		{name: "empty_donation", in: "_" + testDonorID + "_" + testReceiverID, want: false},
		{name: "empty", in: "", want: false},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidConversationID(tc.in); got != tc.want {
				t.Errorf("ValidConversationID(%q) = %v; want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestCreateOrGetConversation_Validate(t *testing.T) {
	tt := []struct {
		name string
		in   CreateOrGetConversation
		want error
	}{
		{
			name: "ok",
			in:   CreateOrGetConversation{DonationID: "don42", DonorID: testDonorID, ReceiverID: testReceiverID, DonationTitle: " Fresh Bread "},
		},
		{
			name: "same_participants",
			in:   CreateOrGetConversation{DonationID: "don42", DonorID: testDonorID, ReceiverID: testDonorID},
			want: ErrInvalidParticipants,
		},
		{
			name: "empty_donor",
			in:   CreateOrGetConversation{DonationID: "don42", ReceiverID: testReceiverID},
			want: ErrInvalidParticipants,
		},
		{
			name: "donation_with_separator",
			in:   CreateOrGetConversation{DonationID: "don_42", DonorID: testDonorID, ReceiverID: testReceiverID},
			want: ErrInvalidParticipants,
		},
		{
			name: "title_too_long",
			in:   CreateOrGetConversation{DonationID: "don42", DonorID: testDonorID, ReceiverID: testReceiverID, DonationTitle: strings.Repeat("a", 201)},
			want: ErrInvalidDonationTitle,
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if !errors.Is(err, tc.want) {
				t.Errorf("Validate() = %v; want %v", err, tc.want)
			}
		})
	}
}

func TestSendMessage_Validate(t *testing.T) {
	cid := ConversationID("don42", testDonorID, testReceiverID)

	in := SendMessage{ConversationID: cid, Content: "  Still available?  "}
	if err := in.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if in.Content != "Still available?" {
		t.Errorf("content not trimmed: %q", in.Content)
	}

	for _, content := range []string{"", "   ", "\n\t "} {
		in := SendMessage{ConversationID: cid, Content: content}
		if err := in.Validate(); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("Validate(%q) = %v; want %v", content, err, ErrEmptyMessage)
		}
	}

	in = SendMessage{ConversationID: cid, Content: strings.Repeat("x", 1001)}
	if err := in.Validate(); !errors.Is(err, ErrMessageTooLong) {
		t.Errorf("Validate() = %v; want %v", err, ErrMessageTooLong)
	}

	in = SendMessage{ConversationID: "nope", Content: "hi"}
	if err := in.Validate(); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Validate() = %v; want %v", err, ErrConversationNotFound)
	}
}

func TestConversation_Participants(t *testing.T) {
	c := Conversation{
		DonorID:     testDonorID,
		ReceiverID:  testReceiverID,
		UnreadCount: UnreadCount{Donor: 2, Receiver: 5},
	}

	if !c.HasParticipant(testDonorID) || !c.HasParticipant(testReceiverID) {
		t.Error("participants not recognised")
	}
	if c.HasParticipant("") || c.HasParticipant("someone") {
		t.Error("unexpected participant")
	}
	if got := c.OtherParticipant(testDonorID); got != testReceiverID {
		t.Errorf("OtherParticipant(donor) = %q", got)
	}
	if got := c.UnreadFor(testReceiverID); got != 5 {
		t.Errorf("UnreadFor(receiver) = %d; want 5", got)
	}
	if got := c.UnreadFor("someone"); got != 0 {
		t.Errorf("UnreadFor(stranger) = %d; want 0", got)
	}
}
