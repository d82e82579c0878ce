package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schema string

// Migrate creates the calendar tables when they do not exist. Player, guild and
// instance bind tables belong to the game database and are never created here.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply calendar schema: %w", err)
	}
	return nil
}
