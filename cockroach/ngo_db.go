package cockroach

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgxutil"

	"github.com/foodbridge/foodbridge/id"
	"github.com/foodbridge/foodbridge/types"
)

const sqlNGOCols = `
	  ngos.id
	, ngos.owner_id
	, ngos.name
	, ngos.description
	, ngos.phone
	, ngos.verification_status
	, ngos.total_requests
	, ngos.fulfilled_requests
	, ngos.people_served
	, ngos.avg_response_hours
	, ngos.created_at
`

func (c *Cockroach) CreateNGO(ctx context.Context, in types.CreateNGO) (types.NGO, error) {
	query := `
		INSERT INTO ngos (id, owner_id, name, description, phone)
		VALUES (@ngo_id, @owner_id, @name, @description, NULLIF(@phone::VARCHAR, ''))
		RETURNING ` + sqlNGOCols
	args := pgx.StrictNamedArgs{
		"ngo_id":      id.Generate(),
		"owner_id":    in.LoggedInUserID(),
		"name":        in.Name,
		"description": in.Description,
		"phone":       in.Phone,
	}
	out, err := pgxutil.SelectRow(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.NGO])
	if err != nil {
		return out, fmt.Errorf("sql insert ngo: %w", err)
	}

	return out, nil
}

func (c *Cockroach) NGO(ctx context.Context, ngoID string) (types.NGO, error) {
	query := `SELECT ` + sqlNGOCols + ` FROM ngos WHERE ngos.id = @ngo_id`
	args := pgx.StrictNamedArgs{
		"ngo_id": ngoID,
	}
	out, err := pgxutil.SelectRow(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.NGO])
	if errors.Is(err, pgx.ErrNoRows) {
		return out, types.ErrNGONotFound
	}

	if err != nil {
		return out, fmt.Errorf("sql select ngo: %w", err)
	}

	return out, nil
}

func (c *Cockroach) VerifiedNGOs(ctx context.Context) ([]types.NGO, error) {
	query := `SELECT ` + sqlNGOCols + ` FROM ngos` +
		where([]string{"ngos.verification_status = @status"}) +
		`ORDER BY ngos.name, ngos.id`
	args := pgx.StrictNamedArgs{
		"status": types.VerificationVerified,
	}
	out, err := pgxutil.Select(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.NGO])
	if err != nil {
		return nil, fmt.Errorf("sql select verified ngos: %w", err)
	}

	return out, nil
}

func (c *Cockroach) IncreaseNGOTotalRequests(ctx context.Context, ngoID string) error {
	_, err := c.db.Exec(ctx, `
		UPDATE ngos SET total_requests = total_requests + 1 WHERE id = @ngo_id
	`, pgx.StrictNamedArgs{
		"ngo_id": ngoID,
	})
	if err != nil {
		return fmt.Errorf("sql increase ngo total requests: %w", err)
	}

	return nil
}
