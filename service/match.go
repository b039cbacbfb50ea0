package service

import (
	"cmp"
	"context"
	"slices"

	"github.com/nicolasparada/go-errs"

	"github.com/foodbridge/foodbridge/auth"
	"github.com/foodbridge/foodbridge/types"
)

const (
	verifiedScore       = 30
	pendingScore        = 20
	fulfillmentWeight   = 25
	peopleServedMax     = 25
	peopleServedPerUnit = 100
	fastResponseScore   = 20
	fastResponseHours   = 24
)

// CalculateMatchScore ranks how good a partner the NGO is, from 0 to 100.
// The score depends on the NGO alone; donor is currently unused.
func CalculateMatchScore(ngo types.NGO, donor types.User) int {
	var score float64

	switch ngo.VerificationStatus {
	case types.VerificationVerified:
		score += verifiedScore
	case types.VerificationPending:
		score += pendingScore
	}

	if ngo.TotalRequests > 0 {
		score += float64(ngo.FulfilledRequests) / float64(ngo.TotalRequests) * fulfillmentWeight
	}

	score += min(float64(ngo.PeopleServed)/peopleServedPerUnit, peopleServedMax)

	if ngo.AvgResponseHours != nil && *ngo.AvgResponseHours < fastResponseHours {
		score += fastResponseScore
	}

	return int(max(0, min(100, score)))
}

// MatchNGOs ranks the verified NGOs for the signed-in user, best first.
func (svc *Service) MatchNGOs(ctx context.Context) ([]types.NGOMatch, error) {
	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return nil, errs.Unauthenticated
	}

	ngos, err := svc.Cockroach.VerifiedNGOs(ctx)
	if err != nil {
		return nil, err
	}

	return rankNGOs(ngos, loggedInUser), nil
}

func rankNGOs(ngos []types.NGO, donor types.User) []types.NGOMatch {
	out := make([]types.NGOMatch, 0, len(ngos))
	for _, ngo := range ngos {
		out = append(out, types.NGOMatch{
			NGO:   ngo,
			Score: CalculateMatchScore(ngo, donor),
		})
	}

	slices.SortStableFunc(out, func(a, b types.NGOMatch) int {
		if n := cmp.Compare(b.Score, a.Score); n != 0 {
			return n
		}
		return cmp.Compare(a.NGO.Name, b.NGO.Name)
	})

	return out
}
