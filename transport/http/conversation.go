package http

import (
	"context"
	"net/http"

	"github.com/matryer/way"

	"github.com/foodbridge/foodbridge/chatview"
	"github.com/foodbridge/foodbridge/types"
)

type createOrGetConversationReqBody struct {
	DonationID    string `json:"donationID"`
	DonorID       string `json:"donorID"`
	ReceiverID    string `json:"receiverID"`
	DonationTitle string `json:"donationTitle"`
}

func (h *handler) createOrGetConversation(w http.ResponseWriter, r *http.Request) {
	var in createOrGetConversationReqBody
	if err := decodeJSON(r, &in); err != nil {
		h.respondErr(w, err)
		return
	}

	out, err := h.svc.CreateOrGetConversation(r.Context(), types.CreateOrGetConversation{
		DonationID:    in.DonationID,
		DonorID:       in.DonorID,
		ReceiverID:    in.ReceiverID,
		DonationTitle: in.DonationTitle,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}

// conversationListEvent is what the conversations stream sends for every
// list state change.
type conversationListEvent struct {
	chatview.ListState
	Error string `json:"error,omitempty"`
}

func (h *handler) conversations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !wantsEventStream(r) {
		cc, err := h.svc.Conversations(ctx)
		if err != nil {
			h.respondErr(w, err)
			return
		}

		h.respond(w, cc, http.StatusOK)
		return
	}

	list := chatview.NewConversationList(h.svc)
	if err := list.Open(ctx); err != nil {
		h.respondErr(w, err)
		return
	}

	f, err := startEventStream(w)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	for state := range list.Updates() {
		h.writeSSE(w, conversationListEvent{
			ListState: state,
			Error:     chatview.Describe(state.Err),
		})
		f.Flush()
	}
}

func (h *handler) conversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.svc.Conversation(ctx, types.RetrieveConversation{
		ConversationID: way.Param(ctx, "conversation_id"),
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}

// unreadCountEvent keeps the last known count when a reload fails.
type unreadCountEvent struct {
	TotalUnread int    `json:"totalUnread"`
	Error       string `json:"error,omitempty"`
}

func (h *handler) totalUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	counts, err := h.svc.TotalUnreadCountStream(ctx)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	if !wantsEventStream(r) {
		select {
		case u := <-counts:
			if u.Err != nil {
				h.respondErr(w, u.Err)
				return
			}

			h.respond(w, unreadCountEvent{TotalUnread: u.Value}, http.StatusOK)
		case <-ctx.Done():
		}
		return
	}

	f, err := startEventStream(w)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	var last int
	for u := range counts {
		ev := unreadCountEvent{TotalUnread: last}
		if u.Err != nil {
			ev.Error = chatview.Describe(u.Err)
		} else {
			last = u.Value
			ev.TotalUnread = u.Value
		}

		h.writeSSE(w, ev)
		f.Flush()
	}
}
