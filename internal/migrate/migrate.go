package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/beheryahmed1991/meal-subscription-service/migrations"
)

func setup() error {
	goose.SetBaseFS(migrations.Files)
	goose.SetVerbose(false)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return nil
}

// Up runs embedded Goose migrations.
func Up(ctx context.Context, db *sql.DB) error {
	return run(ctx, db, "up")
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB) error {
	return run(ctx, db, "down")
}

// Status prints the applied state of every migration.
func Status(ctx context.Context, db *sql.DB) error {
	return run(ctx, db, "status")
}

func run(ctx context.Context, db *sql.DB, command string) error {
	if err := setup(); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, "."); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
