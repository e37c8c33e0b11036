// Package persistence holds the Postgres repositories for the state the
// dashboard owns itself: sessions, conversations and job executions. All
// company and job data stays in the warehouse.
package persistence

import (
	"context"
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrations embed.FS

// EnsureSchema applies the embedded migrations in file order, the numeric
// prefixes keep that order stable. Runs at startup, the statements are
// idempotent.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("migrations.ReadDir: %w", err)
	}

	for _, entry := range entries {
		ddl, err := migrations.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("migrations.ReadFile: %w", err)
		}

		if _, err = db.ExecContext(ctx, string(ddl)); err != nil {
			return fmt.Errorf("db.ExecContext(%s): %w", entry.Name(), err)
		}
	}

	return nil
}
