package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("DASHBOARD_AT_RISK_THRESHOLD", "")
	t.Setenv("APP_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Postgres.UsesMemoryStore() {
		t.Error("empty DSN should select the memory store")
	}
	if cfg.Dashboard.AtRiskThreshold != 70 {
		t.Errorf("AtRiskThreshold = %d, want 70", cfg.Dashboard.AtRiskThreshold)
	}
	if cfg.App.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr = %q, want 0.0.0.0:8080", cfg.App.Addr())
	}
	if cfg.Redis.ChannelPrefix != "notifications" {
		t.Errorf("ChannelPrefix = %q, want notifications", cfg.Redis.ChannelPrefix)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DASHBOARD_AT_RISK_THRESHOLD", "55")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/okr")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dashboard.AtRiskThreshold != 55 {
		t.Errorf("AtRiskThreshold = %d, want 55", cfg.Dashboard.AtRiskThreshold)
	}
	if cfg.App.RequestTimeout() != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.App.RequestTimeout())
	}
	if cfg.Postgres.UsesMemoryStore() {
		t.Error("DSN set, memory store selected")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("DASHBOARD_AT_RISK_THRESHOLD", "140")
	t.Setenv("AUTH_BCRYPT_COST", "abc")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dashboard.AtRiskThreshold != 70 {
		t.Errorf("AtRiskThreshold = %d, want fallback 70", cfg.Dashboard.AtRiskThreshold)
	}
	if cfg.Auth.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want fallback 12", cfg.Auth.BcryptCost)
	}

	t.Setenv("REDIS_DB", "one")
	if _, err := Load(); err == nil {
		t.Error("invalid REDIS_DB should fail loading")
	}
}
