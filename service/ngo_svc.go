package service

import (
	"context"
	"fmt"

	"github.com/nicolasparada/go-errs"

	"github.com/foodbridge/foodbridge/auth"
	"github.com/foodbridge/foodbridge/id"
	"github.com/foodbridge/foodbridge/textutil"
	"github.com/foodbridge/foodbridge/types"
	"github.com/foodbridge/foodbridge/whatsapp"
)

const (
	contactMessagePrefix  = "Hi! I'd like to help with your request: "
	contactTitleMaxLength = 80
)

func (svc *Service) CreateNGO(ctx context.Context, in types.CreateNGO) (types.NGO, error) {
	var out types.NGO

	if err := in.Validate(); err != nil {
		return out, err
	}

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return out, errs.Unauthenticated
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	return svc.Cockroach.CreateNGO(ctx, in)
}

func (svc *Service) NGO(ctx context.Context, ngoID string) (types.NGO, error) {
	if !id.Valid(ngoID) {
		return types.NGO{}, types.ErrNGONotFound
	}

	return svc.Cockroach.NGO(ctx, ngoID)
}

// VerifiedNGOs lists only NGOs whose verification completed.
func (svc *Service) VerifiedNGOs(ctx context.Context) ([]types.NGO, error) {
	return svc.Cockroach.VerifiedNGOs(ctx)
}

// SubmitBulkRequest publishes a new open request on behalf of an NGO the
// signed-in user owns. The NGO request counter is bumped afterwards in
// the background and may lag behind.
func (svc *Service) SubmitBulkRequest(ctx context.Context, in types.SubmitBulkRequest) (types.BulkRequest, error) {
	var out types.BulkRequest

	if err := in.Validate(svc.timeNow()); err != nil {
		return out, err
	}

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return out, errs.Unauthenticated
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	if _, err := svc.ownedNGO(ctx, in.NGOID, loggedInUser.ID); err != nil {
		return out, err
	}

	out, err := svc.Cockroach.CreateBulkRequest(ctx, in)
	if err != nil {
		return out, err
	}

	svc.Metrics.IncBulkRequests()
	ngoID := out.NGOID
	svc.background(func(ctx context.Context) error {
		return svc.Cockroach.IncreaseNGOTotalRequests(ctx, ngoID)
	})

	withContactLink(&out)

	return out, nil
}

// RespondToBulkRequest records a donor pledge against an open request.
func (svc *Service) RespondToBulkRequest(ctx context.Context, in types.RespondToBulkRequest) (types.BulkResponse, error) {
	var out types.BulkResponse

	if err := in.Validate(); err != nil {
		return out, err
	}

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return out, errs.Unauthenticated
	}

	if !loggedInUser.IsDonor() {
		return out, types.ErrDonorOnly
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	out, err := svc.Cockroach.CreateBulkResponse(ctx, in)
	if err != nil {
		return out, err
	}

	svc.Metrics.IncBulkResponses()

	return out, nil
}

func (svc *Service) BulkRequests(ctx context.Context, in types.ListBulkRequests) (types.Page[types.BulkRequest], error) {
	var out types.Page[types.BulkRequest]

	if err := in.Validate(); err != nil {
		return out, err
	}

	out, err := svc.Cockroach.BulkRequests(ctx, in)
	if err != nil {
		return out, err
	}

	for i := range out.Items {
		withContactLink(&out.Items[i])
	}

	return out, nil
}

func (svc *Service) BulkRequest(ctx context.Context, requestID string) (types.BulkRequest, error) {
	if !id.Valid(requestID) {
		return types.BulkRequest{}, types.ErrBulkRequestNotFound
	}

	out, err := svc.Cockroach.BulkRequest(ctx, requestID)
	if err != nil {
		return out, err
	}

	withContactLink(&out)

	return out, nil
}

// BulkResponses to a request. Only the owner of the requesting NGO can
// see who pledged what.
func (svc *Service) BulkResponses(ctx context.Context, requestID string) ([]types.BulkResponse, error) {
	if !id.Valid(requestID) {
		return nil, types.ErrBulkRequestNotFound
	}

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return nil, errs.Unauthenticated
	}

	req, err := svc.Cockroach.BulkRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if _, err := svc.ownedNGO(ctx, req.NGOID, loggedInUser.ID); err != nil {
		return nil, err
	}

	return svc.Cockroach.BulkResponses(ctx, requestID)
}

func (svc *Service) UpdateBulkRequestStatus(ctx context.Context, in types.UpdateBulkRequestStatus) (types.BulkRequest, error) {
	var out types.BulkRequest

	if err := in.Validate(); err != nil {
		return out, err
	}

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return out, errs.Unauthenticated
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	req, err := svc.Cockroach.BulkRequest(ctx, in.RequestID)
	if err != nil {
		return out, err
	}

	if _, err := svc.ownedNGO(ctx, req.NGOID, loggedInUser.ID); err != nil {
		return out, err
	}

	out, err = svc.Cockroach.UpdateBulkRequestStatus(ctx, in)
	if err != nil {
		return out, err
	}

	withContactLink(&out)

	return out, nil
}

func (svc *Service) UpdateBulkResponseStatus(ctx context.Context, in types.UpdateBulkResponseStatus) (types.BulkResponse, error) {
	var out types.BulkResponse

	if err := in.Validate(); err != nil {
		return out, err
	}

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return out, errs.Unauthenticated
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	resp, err := svc.Cockroach.BulkResponse(ctx, in.ResponseID)
	if err != nil {
		return out, err
	}

	req, err := svc.Cockroach.BulkRequest(ctx, resp.RequestID)
	if err != nil {
		return out, fmt.Errorf("bulk request of response %s: %w", resp.ID, err)
	}

	if _, err := svc.ownedNGO(ctx, req.NGOID, loggedInUser.ID); err != nil {
		return out, err
	}

	return svc.Cockroach.UpdateBulkResponseStatus(ctx, in)
}

func (svc *Service) ownedNGO(ctx context.Context, ngoID, userID string) (types.NGO, error) {
	ngo, err := svc.Cockroach.NGO(ctx, ngoID)
	if err != nil {
		return ngo, err
	}

	if ngo.OwnerID != userID {
		return types.NGO{}, types.ErrNotNGOOwner
	}

	return ngo, nil
}

func withContactLink(req *types.BulkRequest) {
	req.ContactLink = whatsapp.Link(req.WhatsAppContact, contactMessagePrefix+textutil.Truncate(req.Title, contactTitleMaxLength))
}
