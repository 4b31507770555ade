package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beheryahmed1991/meal-subscription-service/internal/db"
	"github.com/beheryahmed1991/meal-subscription-service/internal/logger"
	"github.com/beheryahmed1991/meal-subscription-service/internal/mealplan"
	"github.com/beheryahmed1991/meal-subscription-service/internal/subscription"
)

// newApplyPlanChangesCommand promotes next_billing plan changes whose period has ended.
// Meant to be run from cron.
func newApplyPlanChangesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply-plan-changes",
		Short: "Switch subscriptions whose billing period ended to their pending meal plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log.Level)

			database, err := db.New(cmd.Context(), cfg.DB)
			if err != nil {
				return fmt.Errorf("connect to postgres: %w", err)
			}
			defer database.Close()

			pub, _ := publisher(cfg.AMQP, log)
			defer pub.Close()

			subs := subscription.NewService(subscription.NewRepository(database), mealplan.NewRepository(database), pub, log)
			n, err := subs.ApplyDuePlanChanges(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d pending plan changes\n", n)
			return nil
		},
	}
}
