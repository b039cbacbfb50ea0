package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nicolasparada/go-errs"

	"github.com/foodbridge/foodbridge/id"
	"github.com/foodbridge/foodbridge/types"
)

func TestService_tokenRoundTrip(t *testing.T) {
	svc := New(&Config{TokenKey: testTokenKey, Logger: discardLogger()})
	defer svc.Close()

	user := types.User{ID: id.Generate()}
	out, err := svc.authOutput(user)
	if err != nil {
		t.Fatal(err)
	}

	if !out.ExpiresAt.After(svc.timeNow()) {
		t.Errorf("token already expired at %s", out.ExpiresAt)
	}

	got, err := svc.AuthUserIDFromToken(out.Token)
	if err != nil {
		t.Fatal(err)
	}

	if got != user.ID {
		t.Errorf("user id = %s, want %s", got, user.ID)
	}

	other := New(&Config{TokenKey: "anothersecretkeyof32bytes0000000", Logger: discardLogger()})
	defer other.Close()

	if _, err := other.AuthUserIDFromToken(out.Token); err == nil {
		t.Error("expected a token signed with another key to be rejected")
	}
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	email := id.Generate() + "@example.org"
	registered, err := svc.Register(ctx, types.Register{
		Email:       "  " + email + " ",
		Password:    "correct horse battery",
		DisplayName: "Ana",
		Role:        types.RoleDonor,
	})
	if err != nil {
		t.Fatal(err)
	}

	if registered.Token == "" || registered.User.Role != types.RoleDonor || !registered.User.Active {
		t.Fatalf("unexpected register output %+v", registered)
	}

	_, err = svc.Register(ctx, types.Register{
		Email:       email,
		Password:    "another password",
		DisplayName: "Ana again",
		Role:        types.RoleReceiver,
	})
	if !errors.Is(err, types.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	_, err = svc.Login(ctx, types.Login{Email: email, Password: "wrong password"})
	if !errors.Is(err, types.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	loggedIn, err := svc.Login(ctx, types.Login{Email: email, Password: "correct horse battery"})
	if err != nil {
		t.Fatal(err)
	}

	user, err := svc.UserFromToken(ctx, loggedIn.Token)
	if err != nil {
		t.Fatal(err)
	}

	if user.ID != registered.User.ID {
		t.Errorf("token user = %s, want %s", user.ID, registered.User.ID)
	}

	updated, err := svc.UpdateProfile(asUser(user), types.UpdateProfile{DisplayName: new("Ana M."), Phone: new("+54 11 5555 0000")})
	if err != nil {
		t.Fatal(err)
	}

	if updated.DisplayName != "Ana M." || updated.Role != types.RoleDonor || updated.Phone == nil {
		t.Errorf("unexpected profile %+v", updated)
	}

	if _, err := testDB.Exec(ctx, `UPDATE users SET active = false WHERE id = $1`, user.ID); err != nil {
		t.Fatal(err)
	}

	_, err = svc.Login(ctx, types.Login{Email: email, Password: "correct horse battery"})
	if !errors.Is(err, types.ErrUserSuspended) {
		t.Errorf("expected ErrUserSuspended, got %v", err)
	}

	if _, err := svc.AuthUser(ctx); !errors.Is(err, errs.Unauthenticated) {
		t.Errorf("expected unauthenticated, got %v", err)
	}
}
