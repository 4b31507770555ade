package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beheryahmed1991/meal-subscription-service/internal/db"
	"github.com/beheryahmed1991/meal-subscription-service/internal/migrate"
)

var migrateActions = map[string]func(context.Context, *sql.DB) error{
	"up":     migrate.Up,
	"down":   migrate.Down,
	"status": migrate.Status,
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or inspect database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action, ok := migrateActions[args[0]]
			if !ok {
				return fmt.Errorf("unknown migrate action %q", args[0])
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}

			database, err := db.New(cmd.Context(), cfg.DB)
			if err != nil {
				return fmt.Errorf("connect to postgres: %w", err)
			}
			defer database.Close()

			return action(cmd.Context(), database)
		},
	}
}
