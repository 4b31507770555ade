package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/beheryahmed1991/meal-subscription-service/internal/config"
)

const (
	driverName  = "postgres"
	pingTimeout = 5 * time.Second
)

// New opens the PostgreSQL pool described by cfg, applies pool limits and pings it.
func New(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	if cfg.User == "" || cfg.Name == "" {
		return nil, fmt.Errorf("postgres user and database name are required")
	}

	database, err := sql.Open(driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime == 0 {
		lifetime = time.Hour
	}

	database.SetMaxOpenConns(maxOpen)
	database.SetMaxIdleConns(maxIdle)
	database.SetConnMaxLifetime(lifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := database.PingContext(pingCtx); err != nil {
		database.Close()
		return nil, fmt.Errorf("ping postgres %s:%s/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}

	return database, nil
}
