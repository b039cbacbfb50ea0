package chatview

import (
	"context"
	"errors"
	"net/http"

	"github.com/nicolasparada/go-errs"
	"github.com/nicolasparada/go-errs/httperrs"

	"github.com/foodbridge/foodbridge/types"
	"github.com/foodbridge/foodbridge/validator"
)

// Describe turns an error stored in view state into text for a transient
// notification. Nil yields "".
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSendInFlight):
		return "Please wait, your previous message is still being sent."
	case errors.Is(err, types.ErrEmptyMessage):
		return "Type a message before sending."
	case errors.Is(err, types.ErrMessageTooLong):
		return "That message is too long."
	case errors.Is(err, types.ErrInvalidParticipants):
		return "This conversation can't be started."
	case errors.Is(err, types.ErrUnauthorizedParticipant):
		return "You are not part of this conversation."
	case errors.Is(err, types.ErrConversationNotFound):
		return "This conversation no longer exists."
	case errors.Is(err, errs.Unauthenticated):
		return "Please sign in to continue."
	case errors.As(err, new(*validator.Validator)):
		return "Some of the information is invalid. Please check it and try again."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The request took too long. Please try again."
	}

	switch httperrs.Code(err) {
	case http.StatusUnauthorized:
		return "Please sign in to continue."
	case http.StatusForbidden:
		return "You don't have permission to do that."
	case http.StatusNotFound:
		return "We couldn't find what you were looking for."
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "Some of the information is invalid. Please check it and try again."
	case http.StatusConflict:
		return "That already exists."
	}

	return "Something went wrong. Please try again."
}
