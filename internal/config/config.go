package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/Jetrca92/geotagger-backend/internal/scoring"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the configuration for the geotagger service.
// Environment variables are parsed from the GEOTAGGER_ prefix.
type Config struct {
	// Build target selects high-level environment: local, cloud-dev, cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"cloud-dev"`

	// Derived from BuildTarget when "auto"
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// debug, info, warn or error; unknown values fall back to info
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:""`

	// Auth
	JWTSecret     string `envconfig:"JWT_SECRET" default:""`
	JWTTTLMinutes int    `envconfig:"JWT_TTL_MINUTES" default:"60"`
	DevToken      string `envconfig:"DEV_TOKEN" default:""`

	// Points economy
	InitialPoints    int `envconfig:"INITIAL_POINTS" default:"10"`
	GuessCostFirst   int `envconfig:"GUESS_COST_FIRST" default:"1"`
	GuessCostSecond  int `envconfig:"GUESS_COST_SECOND" default:"2"`
	GuessCostCeiling int `envconfig:"GUESS_COST_CEILING" default:"3"`

	LeaderboardLimit   int `envconfig:"LEADERBOARD_LIMIT" default:"13"`
	RecentActionsLimit int `envconfig:"RECENT_ACTIONS_LIMIT" default:"100"`

	// Guess submissions per caller per minute; 0 disables limiting.
	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`

	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`

	EventBuffer int `envconfig:"EVENT_BUFFER" default:"256"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver and SQLitePath when unset.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = DriverSQLite
	case "cloud-dev", "cloud":
		defaultDB = DriverPostgres
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}

	switch c.DBDriver {
	case DriverPostgres:
	case DriverSQLite:
		if c.SQLitePath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("resolve sqlite path: %w", err)
			}
			c.SQLitePath = filepath.Join(home, ".geotagger", "geotagger.db")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	if err := c.CostSchedule().Validate(); err != nil {
		return fmt.Errorf("invalid guess cost schedule: %w", err)
	}
	if c.InitialPoints < 0 {
		return fmt.Errorf("INITIAL_POINTS must be >= 0, got %d", c.InitialPoints)
	}
	if c.LeaderboardLimit <= 0 {
		return fmt.Errorf("LEADERBOARD_LIMIT must be > 0, got %d", c.LeaderboardLimit)
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be >= 0, got %d", c.RateLimitPerMinute)
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	return nil
}

// New creates a new Config by parsing environment variables
// Environment variables should be prefixed with GEOTAGGER_
// Example: GEOTAGGER_HTTP_PORT, GEOTAGGER_LEADERBOARD_LIMIT
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("GEOTAGGER", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Str("log_level", cfg.LogLevel).
		Int("port", cfg.HTTPPort).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Str("sqlite_path", cfg.SQLitePath).
		Ints("guess_costs", []int{cfg.GuessCostFirst, cfg.GuessCostSecond, cfg.GuessCostCeiling}).
		Int("leaderboard_limit", cfg.LeaderboardLimit).
		Int("initial_points", cfg.InitialPoints).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		BuildTarget:               "local",
		DBDriver:                  DriverSQLite,
		Environment:               EnvTesting,
		LogLevel:                  "info",
		HTTPPort:                  8080,
		JWTSecret:                 "test-secret",
		JWTTTLMinutes:             60,
		InitialPoints:             10,
		GuessCostFirst:            scoring.DefaultFirstAttemptCost,
		GuessCostSecond:           scoring.DefaultSecondAttemptCost,
		GuessCostCeiling:          scoring.DefaultCeilingAttemptCost,
		LeaderboardLimit:          13,
		RecentActionsLimit:        100,
		RateLimitPerMinute:        0,
		HealthIntervalSeconds:     30,
		HealthProbeTimeoutSeconds: 2,
		EventBuffer:               256,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// CostSchedule returns the configured escalating guess cost schedule.
func (c *Config) CostSchedule() scoring.Schedule {
	return scoring.Schedule{First: c.GuessCostFirst, Second: c.GuessCostSecond, Ceiling: c.GuessCostCeiling}
}

func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

func (c *Config) HealthInterval() time.Duration {
	return time.Duration(c.HealthIntervalSeconds) * time.Second
}

func (c *Config) HealthProbeTimeout() time.Duration {
	return time.Duration(c.HealthProbeTimeoutSeconds) * time.Second
}
