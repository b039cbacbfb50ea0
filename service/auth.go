package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hako/branca"
	"github.com/nicolasparada/go-errs"
	"golang.org/x/crypto/bcrypt"

	"github.com/foodbridge/foodbridge/auth"
	"github.com/foodbridge/foodbridge/id"
	"github.com/foodbridge/foodbridge/types"
)

const authTokenTTL = time.Hour * 24 * 14

var (
	// ErrInvalidToken denotes an invalid token.
	ErrInvalidToken = errs.InvalidArgumentError("invalid token")
	// ErrExpiredToken denotes that the token already expired.
	ErrExpiredToken = errs.UnauthenticatedError("expired token")
)

// Register creates an account and signs it in right away.
func (svc *Service) Register(ctx context.Context, in types.Register) (types.AuthOutput, error) {
	var out types.AuthOutput

	if err := in.Validate(); err != nil {
		return out, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return out, fmt.Errorf("bcrypt hash password: %w", err)
	}

	in.SetPasswordHash(hash)

	user, err := svc.Cockroach.CreateUser(ctx, in)
	if err != nil {
		return out, err
	}

	return svc.authOutput(user)
}

func (svc *Service) Login(ctx context.Context, in types.Login) (types.AuthOutput, error) {
	var out types.AuthOutput

	if err := in.Validate(); err != nil {
		return out, err
	}

	creds, err := svc.Cockroach.UserCredentials(ctx, in.Email)
	if errors.Is(err, types.ErrUserNotFound) {
		return out, types.ErrInvalidCredentials
	}

	if err != nil {
		return out, err
	}

	err = bcrypt.CompareHashAndPassword(creds.PasswordHash, []byte(in.Password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return out, types.ErrInvalidCredentials
	}

	if err != nil {
		return out, fmt.Errorf("bcrypt compare password: %w", err)
	}

	if !creds.Active {
		return out, types.ErrUserSuspended
	}

	return svc.authOutput(creds.User)
}

func (svc *Service) authOutput(user types.User) (types.AuthOutput, error) {
	var out types.AuthOutput

	token, err := svc.codec().EncodeToString(user.ID)
	if err != nil {
		return out, fmt.Errorf("could not create token: %w", err)
	}

	out.User = user
	out.Token = token
	out.ExpiresAt = svc.timeNow().Add(authTokenTTL)

	return out, nil
}

// AuthUserIDFromToken decodes the token into a user ID.
func (svc *Service) AuthUserIDFromToken(token string) (string, error) {
	uid, err := svc.codec().DecodeToString(token)
	if err != nil {
		if errors.Is(err, branca.ErrInvalidToken) || errors.Is(err, branca.ErrInvalidTokenVersion) {
			return "", ErrInvalidToken
		}

		var expired *branca.ErrExpiredToken
		if errors.As(err, &expired) {
			return "", ErrExpiredToken
		}

		// branca does not export the chacha20poly1305 error for a wrong key.
		if strings.HasSuffix(err.Error(), "authentication failed") {
			return "", errs.Unauthenticated
		}

		return "", fmt.Errorf("could not decode token: %w", err)
	}

	if !id.Valid(uid) {
		return "", ErrInvalidToken
	}

	return uid, nil
}

// UserFromToken resolves the token into an active user, ready to be put
// in the request context.
func (svc *Service) UserFromToken(ctx context.Context, token string) (types.User, error) {
	uid, err := svc.AuthUserIDFromToken(token)
	if err != nil {
		return types.User{}, err
	}

	user, err := svc.Cockroach.User(ctx, uid)
	if errors.Is(err, types.ErrUserNotFound) {
		return user, errs.Unauthenticated
	}

	if err != nil {
		return user, err
	}

	if !user.Active {
		return types.User{}, types.ErrUserSuspended
	}

	return user, nil
}

// AuthUser is the current authenticated user.
func (svc *Service) AuthUser(ctx context.Context) (types.User, error) {
	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return types.User{}, errs.Unauthenticated
	}

	return svc.Cockroach.User(ctx, loggedInUser.ID)
}

func (svc *Service) codec() *branca.Branca {
	cdc := branca.NewBranca(svc.TokenKey)
	cdc.SetTTL(uint32(authTokenTTL.Seconds()))
	return cdc
}
