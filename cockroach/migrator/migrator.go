package migrator

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nicolasparada/go-db"
)

// Migrate applies every not yet recorded *.sql file from fsys in
// lexical order. Each file runs in its own transaction together with
// its bookkeeping row.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) (applied []string, err error) {
	db := db.New(pool)
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return nil, err
	}

	matches, err := fs.Glob(fsys, "*/*.sql")
	if err != nil {
		return nil, fmt.Errorf("glob migration files: %w", err)
	}

	slices.Sort(matches)

	for _, match := range matches {
		name := strings.TrimSuffix(path.Base(match), ".sql")

		err := db.RunTx(ctx, func(ctx context.Context) error {
			exists, err := migrationExists(ctx, db, name)
			if err != nil {
				return err
			}

			if exists {
				return nil
			}

			b, err := fs.ReadFile(fsys, match)
			if err != nil {
				return fmt.Errorf("read migration file %s: %w", match, err)
			}

			if _, err := db.Exec(ctx, string(b)); err != nil {
				return fmt.Errorf("sql exec migration %s: %w", name, err)
			}

			if err := recordMigration(ctx, db, name); err != nil {
				return err
			}

			applied = append(applied, name)
			return nil
		})
		if err != nil {
			return applied, err
		}
	}

	return applied, nil
}

func ensureMigrationsTable(ctx context.Context, db *db.DB) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS migrations (
			name VARCHAR NOT NULL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("sql create migrations table: %w", err)
	}
	return nil
}

func migrationExists(ctx context.Context, db *db.DB, name string) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM migrations WHERE name = $1
		)
	`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sql check migration exists: %w", err)
	}
	return exists, nil
}

func recordMigration(ctx context.Context, db *db.DB, name string) error {
	_, err := db.Exec(ctx, `
		INSERT INTO migrations (name) VALUES ($1)
	`, name)
	if err != nil {
		return fmt.Errorf("sql record migration: %w", err)
	}
	return nil
}
