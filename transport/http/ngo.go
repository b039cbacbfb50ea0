package http

import (
	"net/http"
	"time"

	"github.com/matryer/way"

	"github.com/foodbridge/foodbridge/types"
)

type createNGOReqBody struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Phone       *string `json:"phone"`
}

func (h *handler) createNGO(w http.ResponseWriter, r *http.Request) {
	var in createNGOReqBody
	if err := decodeJSON(r, &in); err != nil {
		h.respondErr(w, err)
		return
	}

	out, err := h.svc.CreateNGO(r.Context(), types.CreateNGO{
		Name:        in.Name,
		Description: in.Description,
		Phone:       in.Phone,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *handler) verifiedNGOs(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.VerifiedNGOs(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}

	if out == nil {
		out = []types.NGO{} // non null array
	}

	h.respond(w, out, http.StatusOK)
}

func (h *handler) matchNGOs(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.MatchNGOs(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}

func (h *handler) ngo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.svc.NGO(ctx, way.Param(ctx, "ngo_id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}

type submitBulkRequestReqBody struct {
	NGOID                  string          `json:"ngoID"`
	Title                  string          `json:"title"`
	Description            string          `json:"description"`
	Urgency                types.Urgency   `json:"urgency"`
	EventType              string          `json:"eventType"`
	Deadline               time.Time       `json:"deadline"`
	EstimatedBeneficiaries int             `json:"estimatedBeneficiaries"`
	Logistics              types.Logistics `json:"logistics"`
	WhatsAppContact        string          `json:"whatsAppContact"`
}

func (h *handler) submitBulkRequest(w http.ResponseWriter, r *http.Request) {
	var in submitBulkRequestReqBody
	if err := decodeJSON(r, &in); err != nil {
		h.respondErr(w, err)
		return
	}

	out, err := h.svc.SubmitBulkRequest(r.Context(), types.SubmitBulkRequest{
		NGOID:                  in.NGOID,
		Title:                  in.Title,
		Description:            in.Description,
		Urgency:                in.Urgency,
		EventType:              in.EventType,
		Deadline:               in.Deadline,
		EstimatedBeneficiaries: in.EstimatedBeneficiaries,
		Logistics:              in.Logistics,
		WhatsAppContact:        in.WhatsAppContact,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *handler) bulkRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageArgs, err := parsePageArgs(q)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	in := types.ListBulkRequests{
		PageArgs: pageArgs,
	}

	if q.Has("ngo_id") {
		in.NGOID = new(q.Get("ngo_id"))
	}

	if q.Has("status") {
		in.Status = new(types.BulkRequestStatus(q.Get("status")))
	}

	page, err := h.svc.BulkRequests(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	if page.Items == nil {
		page.Items = []types.BulkRequest{} // non null array
	}

	h.respond(w, page, http.StatusOK)
}

func (h *handler) bulkRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.svc.BulkRequest(ctx, way.Param(ctx, "request_id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}

type updateBulkRequestStatusReqBody struct {
	Status types.BulkRequestStatus `json:"status"`
}

func (h *handler) updateBulkRequestStatus(w http.ResponseWriter, r *http.Request) {
	var in updateBulkRequestStatusReqBody
	if err := decodeJSON(r, &in); err != nil {
		h.respondErr(w, err)
		return
	}

	ctx := r.Context()
	out, err := h.svc.UpdateBulkRequestStatus(ctx, types.UpdateBulkRequestStatus{
		RequestID: way.Param(ctx, "request_id"),
		Status:    in.Status,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}

type respondToBulkRequestReqBody struct {
	DonationItems    string    `json:"donationItems"`
	Quantity         string    `json:"quantity"`
	AvailabilityDate time.Time `json:"availabilityDate"`
	CanDeliver       bool      `json:"canDeliver"`
	Notes            string    `json:"notes"`
}

func (h *handler) respondToBulkRequest(w http.ResponseWriter, r *http.Request) {
	var in respondToBulkRequestReqBody
	if err := decodeJSON(r, &in); err != nil {
		h.respondErr(w, err)
		return
	}

	ctx := r.Context()
	out, err := h.svc.RespondToBulkRequest(ctx, types.RespondToBulkRequest{
		RequestID:        way.Param(ctx, "request_id"),
		DonationItems:    in.DonationItems,
		Quantity:         in.Quantity,
		AvailabilityDate: in.AvailabilityDate,
		CanDeliver:       in.CanDeliver,
		Notes:            in.Notes,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *handler) bulkResponses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.svc.BulkResponses(ctx, way.Param(ctx, "request_id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	if out == nil {
		out = []types.BulkResponse{} // non null array
	}

	h.respond(w, out, http.StatusOK)
}

type updateBulkResponseStatusReqBody struct {
	Status types.BulkResponseStatus `json:"status"`
}

func (h *handler) updateBulkResponseStatus(w http.ResponseWriter, r *http.Request) {
	var in updateBulkResponseStatusReqBody
	if err := decodeJSON(r, &in); err != nil {
		h.respondErr(w, err)
		return
	}

	ctx := r.Context()
	out, err := h.svc.UpdateBulkResponseStatus(ctx, types.UpdateBulkResponseStatus{
		ResponseID: way.Param(ctx, "response_id"),
		Status:     in.Status,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}

func (h *handler) achievements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.svc.Achievements(ctx, way.Param(ctx, "user_id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}
