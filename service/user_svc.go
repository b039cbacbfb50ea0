package service

import (
	"context"

	"github.com/nicolasparada/go-errs"

	"github.com/foodbridge/foodbridge/auth"
	"github.com/foodbridge/foodbridge/id"
	"github.com/foodbridge/foodbridge/types"
)

func (svc *Service) User(ctx context.Context, userID string) (types.User, error) {
	if !id.Valid(userID) {
		return types.User{}, types.ErrUserNotFound
	}

	return svc.Cockroach.User(ctx, userID)
}

// UpdateProfile changes the signed-in user's display name and phone.
// An empty phone clears it.
func (svc *Service) UpdateProfile(ctx context.Context, in types.UpdateProfile) (types.User, error) {
	var out types.User

	if err := in.Validate(); err != nil {
		return out, err
	}

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return out, errs.Unauthenticated
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	return svc.Cockroach.UpdateProfile(ctx, in)
}
