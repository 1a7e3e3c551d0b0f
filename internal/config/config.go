package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the service configuration.
// Environment variables are parsed from the FOUNDLY_ prefix,
// e.g. FOUNDLY_HTTP_PORT, FOUNDLY_POSTGRES_DSN.
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// DBDriver selects the store backend. "auto" resolves to postgres when a
	// DSN is configured, sqlite otherwise.
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/foundly.db"`

	// MatchWindowHours is the privacy window length for found items.
	MatchWindowHours int `envconfig:"MATCH_WINDOW_HOURS" default:"24"`
	// SweepIntervalMinutes is the cadence of the privacy window sweeper.
	SweepIntervalMinutes int `envconfig:"SWEEP_INTERVAL_MINUTES" default:"60"`

	HealthCheckIntervalSeconds int `envconfig:"HEALTH_CHECK_INTERVAL_SECONDS" default:"15"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// New parses the environment and resolves derived defaults.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("FOUNDLY", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolveDefaults derives DBDriver when set to "auto" and validates the result.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}
	switch c.DBDriver {
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("FOUNDLY_POSTGRES_DSN is required when DB_DRIVER is postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("FOUNDLY_SQLITE_PATH is required when DB_DRIVER is sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.MatchWindowHours <= 0 {
		return fmt.Errorf("MATCH_WINDOW_HOURS must be positive")
	}
	if c.SweepIntervalMinutes <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL_MINUTES must be positive")
	}
	return nil
}

func (c *Config) HTTPAddr() string { return fmt.Sprintf(":%d", c.HTTPPort) }

func (c *Config) MatchWindow() time.Duration {
	return time.Duration(c.MatchWindowHours) * time.Hour
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}

func (c *Config) HealthCheckInterval() time.Duration {
	return time.Duration(c.HealthCheckIntervalSeconds) * time.Second
}

func (c *Config) IsProduction() bool { return c.Environment == "production" }
