package cockroach

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgxutil"
	"github.com/nicolasparada/go-db"

	"github.com/foodbridge/foodbridge/id"
	"github.com/foodbridge/foodbridge/types"
)

const sqlUserCols = `
	  users.id
	, users.email
	, users.display_name
	, users.role
	, users.phone
	, users.active
	, users.donations_made
	, users.donations_received
	, users.rating
	, users.beneficiary_count
	, users.verification_status
	, users.created_at
	, users.updated_at
`

func (c *Cockroach) CreateUser(ctx context.Context, in types.Register) (types.User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, display_name, role, phone)
		VALUES (@user_id, @email, @password_hash, @display_name, @role, @phone)
		RETURNING ` + sqlUserCols
	args := pgx.StrictNamedArgs{
		"user_id":       id.Generate(),
		"email":         in.Email,
		"password_hash": in.PasswordHash(),
		"display_name":  in.DisplayName,
		"role":          in.Role,
		"phone":         in.Phone,
	}
	user, err := pgxutil.SelectRow(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.User])
	if db.IsUniqueViolationError(err, "email") {
		return user, types.ErrEmailTaken
	}

	if err != nil {
		return user, fmt.Errorf("sql insert user: %w", err)
	}

	return user, nil
}

func (c *Cockroach) User(ctx context.Context, userID string) (types.User, error) {
	query := `SELECT ` + sqlUserCols + ` FROM users WHERE id = @user_id`
	args := pgx.StrictNamedArgs{
		"user_id": userID,
	}
	user, err := pgxutil.SelectRow(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.User])
	if errors.Is(err, pgx.ErrNoRows) {
		return user, types.ErrUserNotFound
	}

	if err != nil {
		return user, fmt.Errorf("sql select user: %w", err)
	}

	return user, nil
}

func (c *Cockroach) UserCredentials(ctx context.Context, email string) (types.UserCredentials, error) {
	query := `SELECT ` + sqlUserCols + `, users.password_hash FROM users WHERE email = @email`
	args := pgx.StrictNamedArgs{
		"email": email,
	}
	out, err := pgxutil.SelectRow(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.UserCredentials])
	if errors.Is(err, pgx.ErrNoRows) {
		return out, types.ErrUserNotFound
	}

	if err != nil {
		return out, fmt.Errorf("sql select user credentials: %w", err)
	}

	return out, nil
}

func (c *Cockroach) UpdateProfile(ctx context.Context, in types.UpdateProfile) (types.User, error) {
	query := `
		UPDATE users
		SET display_name = COALESCE(@display_name::VARCHAR, display_name)
		  , phone = CASE WHEN @phone::VARCHAR IS NULL THEN phone ELSE NULLIF(@phone, '') END
		  , updated_at = now()
		WHERE id = @user_id
		RETURNING ` + sqlUserCols
	args := pgx.StrictNamedArgs{
		"user_id":      in.LoggedInUserID(),
		"display_name": in.DisplayName,
		"phone":        in.Phone,
	}
	user, err := pgxutil.SelectRow(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.User])
	if errors.Is(err, pgx.ErrNoRows) {
		return user, types.ErrUserNotFound
	}

	if err != nil {
		return user, fmt.Errorf("sql update user profile: %w", err)
	}

	return user, nil
}
