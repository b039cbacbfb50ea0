package cockroach

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgxutil"

	"github.com/foodbridge/foodbridge/types"
)

// Achievements returns the precomputed document, or a level 1 document
// when nothing was computed for the user yet.
func (c *Cockroach) Achievements(ctx context.Context, userID string) (types.Achievements, error) {
	const query = `
		SELECT user_id, level, points, badges, achievements, updated_at
		FROM achievements
		WHERE user_id = @user_id
	`
	args := pgx.StrictNamedArgs{
		"user_id": userID,
	}
	out, err := pgxutil.SelectRow(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.Achievements])
	if errors.Is(err, pgx.ErrNoRows) {
		return types.EmptyAchievements(userID), nil
	}

	if err != nil {
		return out, fmt.Errorf("sql select achievements: %w", err)
	}

	return out, nil
}
