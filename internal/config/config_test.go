package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned %v", err)
	}
	if cfg.App.Port == "" {
		t.Fatal("default port empty")
	}
	if cfg.SLA.SweepInterval() <= 0 {
		t.Fatal("sweep interval not positive")
	}
	if cfg.Dashboard.CacheTTL() <= 0 {
		t.Fatal("cache TTL not positive")
	}
}

func TestLoadReadsEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9191")
	t.Setenv("SLA_SWEEP_INTERVAL_SECONDS", "30")
	t.Setenv("AUTH_BCRYPT_COST", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned %v", err)
	}
	if cfg.App.Port != "9191" {
		t.Fatalf("port=%q", cfg.App.Port)
	}
	if cfg.SLA.SweepInterval() != 30*time.Second {
		t.Fatalf("sweep interval=%v", cfg.SLA.SweepInterval())
	}
	if cfg.Auth.BcryptCost != 12 {
		t.Fatalf("invalid int did not fall back: %d", cfg.Auth.BcryptCost)
	}
}

func TestAddr(t *testing.T) {
	app := AppConfig{Host: "127.0.0.1", Port: "8080"}
	if app.Addr() != "127.0.0.1:8080" {
		t.Fatalf("Addr()=%q", app.Addr())
	}
}
