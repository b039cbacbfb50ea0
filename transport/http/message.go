package http

import (
	"net/http"

	"github.com/matryer/way"

	"github.com/foodbridge/foodbridge/auth"
	"github.com/foodbridge/foodbridge/chatview"
	"github.com/foodbridge/foodbridge/types"
)

// threadEvent is what the messages stream sends for every thread state
// change.
type threadEvent struct {
	chatview.ThreadState
	Error string `json:"error,omitempty"`
}

func (h *handler) messages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := way.Param(ctx, "conversation_id")
	if !wantsEventStream(r) {
		mm, err := h.svc.Messages(ctx, types.RetrieveConversation{ConversationID: conversationID})
		if err != nil {
			h.respondErr(w, err)
			return
		}

		if mm == nil {
			mm = []types.Message{} // non null array
		}

		h.respond(w, mm, http.StatusOK)
		return
	}

	thread := chatview.NewThread(h.svc, chatview.ThreadConfig{
		ConversationID: conversationID,
		SettleDelay:    h.readReceiptDelay,
	})
	if err := thread.Open(ctx); err != nil {
		h.respondErr(w, err)
		return
	}

	f, err := startEventStream(w)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	for state := range thread.Updates() {
		if state.Messages == nil {
			state.Messages = []types.Message{} // non null array
		}

		h.writeSSE(w, threadEvent{
			ThreadState: state,
			Error:       chatview.Describe(state.Err),
		})
		f.Flush()
	}
}

type sendMessageReqBody struct {
	ReceiverID    string `json:"receiverID"`
	Content       string `json:"content"`
	DonationTitle string `json:"donationTitle"`
}

func (h *handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var in sendMessageReqBody
	if err := decodeJSON(r, &in); err != nil {
		h.respondErr(w, err)
		return
	}

	ctx := r.Context()
	if userID := auth.UserID(ctx); userID != "" && !h.sendLimiter.Allow(userID) {
		h.respondErr(w, errTooManyRequests)
		return
	}

	out, err := h.svc.SendMessage(ctx, types.SendMessage{
		ConversationID: way.Param(ctx, "conversation_id"),
		ReceiverID:     in.ReceiverID,
		Content:        in.Content,
		DonationTitle:  in.DonationTitle,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *handler) markMessagesAsRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := h.svc.MarkMessagesAsRead(ctx, types.MarkMessagesAsRead{
		ConversationID: way.Param(ctx, "conversation_id"),
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
