package service

import (
	"context"

	"github.com/foodbridge/foodbridge/id"
	"github.com/foodbridge/foodbridge/types"
)

// Achievements returns the precomputed gamification document. Users
// without one get a fresh level 1 document.
func (svc *Service) Achievements(ctx context.Context, userID string) (types.Achievements, error) {
	if !id.Valid(userID) {
		return types.Achievements{}, types.ErrUserNotFound
	}

	return svc.Cockroach.Achievements(ctx, userID)
}
