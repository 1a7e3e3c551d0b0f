package config

import (
	"os"
	"testing"
)

func TestConfigDefaults(t *testing.T) {
	for _, v := range []string{"FOUNDLY_DB_DRIVER", "FOUNDLY_POSTGRES_DSN", "FOUNDLY_HTTP_PORT", "FOUNDLY_MATCH_WINDOW_HOURS"} {
		_ = os.Unsetenv(v)
	}

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("unexpected default port: %d", cfg.HTTPPort)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("expected auto driver to resolve to sqlite, got %s", cfg.DBDriver)
	}
	if cfg.MatchWindowHours != 24 || cfg.SweepIntervalMinutes != 60 {
		t.Fatalf("unexpected window defaults: %+v", cfg)
	}
}

func TestConfigAutoDriverWithDSN(t *testing.T) {
	_ = os.Setenv("FOUNDLY_POSTGRES_DSN", "postgres://localhost/foundly")
	defer func() { _ = os.Unsetenv("FOUNDLY_POSTGRES_DSN") }()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("expected auto driver to resolve to postgres, got %s", cfg.DBDriver)
	}
}

func TestConfigRejectsPostgresWithoutDSN(t *testing.T) {
	_ = os.Unsetenv("FOUNDLY_POSTGRES_DSN")
	_ = os.Setenv("FOUNDLY_DB_DRIVER", "postgres")
	defer func() { _ = os.Unsetenv("FOUNDLY_DB_DRIVER") }()

	if _, err := New(); err == nil {
		t.Fatal("expected error for postgres driver without DSN")
	}
}

func TestConfigRejectsUnknownDriver(t *testing.T) {
	_ = os.Setenv("FOUNDLY_DB_DRIVER", "mongodb")
	defer func() { _ = os.Unsetenv("FOUNDLY_DB_DRIVER") }()

	if _, err := New(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestConfigEnvOverride(t *testing.T) {
	_ = os.Setenv("FOUNDLY_MATCH_WINDOW_HOURS", "48")
	defer func() { _ = os.Unsetenv("FOUNDLY_MATCH_WINDOW_HOURS") }()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.MatchWindowHours != 48 {
		t.Fatalf("env override failed, got %d", cfg.MatchWindowHours)
	}
}
