package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/beheryahmed1991/meal-subscription-service/internal/config"
	"github.com/beheryahmed1991/meal-subscription-service/internal/db"
	"github.com/beheryahmed1991/meal-subscription-service/internal/delivery"
	"github.com/beheryahmed1991/meal-subscription-service/internal/events"
	"github.com/beheryahmed1991/meal-subscription-service/internal/holiday"
	"github.com/beheryahmed1991/meal-subscription-service/internal/logger"
	"github.com/beheryahmed1991/meal-subscription-service/internal/mealplan"
	"github.com/beheryahmed1991/meal-subscription-service/internal/middleware"
	"github.com/beheryahmed1991/meal-subscription-service/internal/migrate"
	"github.com/beheryahmed1991/meal-subscription-service/internal/schedule"
	"github.com/beheryahmed1991/meal-subscription-service/internal/server"
	"github.com/beheryahmed1991/meal-subscription-service/internal/skip"
	"github.com/beheryahmed1991/meal-subscription-service/internal/subscription"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	var migrateFirst bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, migrateFirst)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "Apply pending migrations before serving")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, migrateFirst bool) error {
	log := logger.New(cfg.Log.Level)
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := cfg.Schedule.Location()
	if err != nil {
		return err
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer database.Close()

	if migrateFirst {
		if err := migrate.Up(ctx, database); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	cache, closeCache := holidayCache(ctx, cfg.Redis, log)
	defer closeCache()

	pub, eventsState := publisher(cfg.AMQP, log)
	defer pub.Close()

	policy := schedule.NewPolicy(loc, cfg.Schedule.CutoffHour, time.Now)

	plans := mealplan.NewRepository(database)
	subs := subscription.NewService(subscription.NewRepository(database), plans, pub, log)
	holidays := holiday.NewService(holiday.NewRepository(database), cache, pub, log, policy.Today)
	skipStore := skip.NewRepository(database)
	skips := skip.NewService(subs, holidays, skipStore, policy, pub, log, cfg.Schedule.UpcomingDays)
	deliveries := delivery.NewService(delivery.NewRepository(database), subs, skipStore, pub, log, policy.Now)

	router := server.NewRouter(server.Options{
		Log:           log,
		ClientURL:     cfg.App.ClientURL,
		SwaggerHost:   cfg.Swagger.Host,
		Auth:          middleware.NewAuthenticator(cfg.Auth.JWTSecret),
		MealPlans:     mealplan.NewHandler(plans, log),
		Holidays:      holiday.NewHandler(holidays, loc, log),
		Subscriptions: subscription.NewHandler(subs, log, cfg.App.ProfilePath),
		Skips:         skip.NewHandler(skips, log, cfg.App.ProfilePath),
		Deliveries:    delivery.NewHandler(deliveries, policy, log),
		Checks:        []server.Checker{{Name: "database", Check: database.PingContext}},
		EventsState:   eventsState,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", srv.Addr, "timezone", loc.String(), "cutoff_hour", cfg.Schedule.CutoffHour)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// holidayCache prefers Redis and falls back to a process-local cache with the same TTL.
func holidayCache(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) (holiday.Cache, func()) {
	if cfg.URL == "" {
		return holiday.NewMemoryCache(cfg.TTL), func() {}
	}
	rc, err := holiday.NewRedisCache(ctx, cfg.URL, cfg.TTL)
	if err != nil {
		log.Warn("redis unavailable, using in-memory holiday cache", "error", err)
		return holiday.NewMemoryCache(cfg.TTL), func() {}
	}
	return rc, func() {
		if err := rc.Close(); err != nil {
			log.Warn("close redis", "error", err)
		}
	}
}

// publisher connects to RabbitMQ behind a circuit breaker, or only logs events when no broker is configured.
func publisher(cfg config.AMQPConfig, log *slog.Logger) (events.Publisher, func() string) {
	if cfg.URL == "" {
		return events.NewLogPublisher(log), nil
	}
	rmq, err := events.NewRabbitMQPublisher(cfg.URL, cfg.Exchange, log)
	if err != nil {
		log.Warn("rabbitmq unavailable, events will only be logged", "error", err)
		return events.NewLogPublisher(log), nil
	}
	bp := events.NewBreakerPublisher(rmq, events.BreakerSettings{}, log)
	return bp, bp.State
}
