package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates every tunable part of the application.
type Config struct {
	App      AppConfig
	DB       DBConfig
	Log      LogConfig
	Swagger  SwaggerConfig
	Redis    RedisConfig
	AMQP     AMQPConfig
	Auth     AuthConfig
	Schedule ScheduleConfig
}

// AppConfig contains settings related to the HTTP server.
type AppConfig struct {
	Port        string
	Env         string
	ClientURL   string
	ProfilePath string
}

// DBConfig represents PostgreSQL connection settings.
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds the postgres connection string from the individual fields.
func (db DBConfig) DSN() string {
	host := db.Host
	if host == "" {
		host = "localhost"
	}

	port := db.Port
	if port == "" {
		port = "5432"
	}

	sslMode := db.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		db.User,
		db.Password,
		host,
		port,
		db.Name,
		sslMode,
	)
}

// LogConfig controls logger behavior.
type LogConfig struct {
	Level string
}

// SwaggerConfig configures the generated documentation.
type SwaggerConfig struct {
	Host string
}

// RedisConfig points at the optional holiday cache. An empty URL disables it.
type RedisConfig struct {
	URL string
	TTL time.Duration
}

// AMQPConfig points at the optional event broker. An empty URL disables it.
type AMQPConfig struct {
	URL      string
	Exchange string
}

// AuthConfig holds the JWT verification settings.
type AuthConfig struct {
	JWTSecret string
}

// ScheduleConfig tunes the delivery calendar and skip cutoff.
type ScheduleConfig struct {
	Timezone     string
	CutoffHour   int
	UpcomingDays int
}

// Location resolves the configured time zone.
func (s ScheduleConfig) Location() (*time.Location, error) {
	if s.Timezone == "" || strings.EqualFold(s.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// Load reads the .env file and environment variables and validates the final configuration.
func Load() (Config, error) {
	_ = godotenv.Load("../.env", ".env")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		App: AppConfig{
			Port:        v.GetString("APP_PORT"),
			Env:         v.GetString("APP_ENV"),
			ClientURL:   v.GetString("CLIENT_URL"),
			ProfilePath: v.GetString("PROFILE_PATH"),
		},
		DB: DBConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Log: LogConfig{
			Level: strings.ToLower(v.GetString("LOG_LEVEL")),
		},
		Swagger: SwaggerConfig{
			Host: v.GetString("SWAGGER_HOST"),
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
			TTL: v.GetDuration("HOLIDAY_CACHE_TTL"),
		},
		AMQP: AMQPConfig{
			URL:      v.GetString("AMQP_URL"),
			Exchange: v.GetString("AMQP_EXCHANGE"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
		},
		Schedule: ScheduleConfig{
			Timezone:     v.GetString("DELIVERY_TIMEZONE"),
			CutoffHour:   v.GetInt("SKIP_CUTOFF_HOUR"),
			UpcomingDays: v.GetInt("UPCOMING_DAYS"),
		},
	}

	if cfg.Swagger.Host == "" {
		cfg.Swagger.Host = fmt.Sprintf("localhost:%s", cfg.App.Port)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("PROFILE_PATH", "/profile#subscriptions")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HOLIDAY_CACHE_TTL", 5*time.Minute)
	v.SetDefault("AMQP_EXCHANGE", "mealsub.events")
	v.SetDefault("DELIVERY_TIMEZONE", "Local")
	v.SetDefault("SKIP_CUTOFF_HOUR", 19)
	v.SetDefault("UPCOMING_DAYS", 14)
}

func (cfg Config) validate() error {
	var missing []string

	if cfg.DB.User == "" {
		missing = append(missing, "DB_USER")
	}
	if cfg.DB.Password == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if cfg.DB.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	if cfg.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if cfg.Schedule.CutoffHour < 0 || cfg.Schedule.CutoffHour > 23 {
		return fmt.Errorf("SKIP_CUTOFF_HOUR must be between 0 and 23, got %d", cfg.Schedule.CutoffHour)
	}
	if cfg.Schedule.UpcomingDays <= 0 {
		return fmt.Errorf("UPCOMING_DAYS must be positive, got %d", cfg.Schedule.UpcomingDays)
	}
	if _, err := cfg.Schedule.Location(); err != nil {
		return err
	}

	return nil
}
