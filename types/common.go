package types

import (
	"time"

	"github.com/nicolasparada/go-errs"
)

var (
	ErrInvalidParticipants     = errs.InvalidArgumentError("invalid participants")
	ErrEmptyMessage            = errs.InvalidArgumentError("empty message")
	ErrUnauthorizedParticipant = errs.PermissionDeniedError("not a participant of this conversation")
	ErrConversationNotFound    = errs.NotFoundError("conversation not found")
	ErrInvalidDonationTitle    = errs.InvalidArgumentError("donation title must be at most 200 characters")
	ErrMessageTooLong          = errs.InvalidArgumentError("message must be at most 1000 characters")

	ErrUserNotFound         = errs.NotFoundError("user not found")
	ErrEmailTaken           = errs.ConflictError("email taken")
	ErrInvalidCredentials   = errs.UnauthenticatedError("invalid credentials")
	ErrUserSuspended        = errs.PermissionDeniedError("user suspended")
	ErrNGONotFound          = errs.NotFoundError("ngo not found")
	ErrNotNGOOwner          = errs.PermissionDeniedError("not the owner of this ngo")
	ErrBulkRequestNotFound  = errs.NotFoundError("bulk request not found")
	ErrBulkRequestClosed    = errs.PermissionDeniedError("bulk request does not accept responses")
	ErrBulkResponseNotFound = errs.NotFoundError("bulk response not found")
	ErrDonorOnly            = errs.PermissionDeniedError("only donors can do this")
)

type Created struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
