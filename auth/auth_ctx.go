package auth

import (
	"context"

	"github.com/foodbridge/foodbridge/types"
)

var ctxKeyUser = struct{ name string }{name: "ctx-key-user"}

// ContextWithUser stores the signed-in user. Every service call reads
// the session from its context.
func ContextWithUser(ctx context.Context, user types.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func UserFromContext(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(ctxKeyUser).(types.User)
	return user, ok && user.ID != ""
}

// UserID is a shorthand for the signed-in user id, or "".
func UserID(ctx context.Context) string {
	user, _ := UserFromContext(ctx)
	return user.ID
}

// Role of the signed-in user, or "".
func Role(ctx context.Context) types.Role {
	user, _ := UserFromContext(ctx)
	return user.Role
}
