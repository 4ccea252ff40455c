package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("AUTH_BCRYPT_COST", "")
	t.Setenv("SMTP_HOST", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App.Port != "8000" {
		t.Errorf("App.Port = %q, want 8000", cfg.App.Port)
	}
	if cfg.Auth.BcryptCost != 12 {
		t.Errorf("Auth.BcryptCost = %d, want 12", cfg.Auth.BcryptCost)
	}
	if cfg.Auth.CookieName == "" {
		t.Error("Auth.CookieName should default")
	}
	if cfg.Mail.Host != "" {
		t.Errorf("Mail.Host = %q, want empty", cfg.Mail.Host)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_SESSION_TTL_MINUTES", "30")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("SMTP_PORT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.App.Addr(); got != "127.0.0.1:9090" {
		t.Errorf("Addr() = %q", got)
	}
	if got := cfg.Auth.SessionTTL(); got != 30*time.Minute {
		t.Errorf("SessionTTL() = %v", got)
	}
	if cfg.Postgres.RunMigrations {
		t.Error("RunMigrations should be false")
	}
	if cfg.Mail.Port != 587 {
		t.Errorf("Mail.Port = %d, want fallback 587", cfg.Mail.Port)
	}
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "x")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid REDIS_DB")
	}
}

func TestDurationsFallback(t *testing.T) {
	if got := (AppConfig{}).RequestTimeout(); got != 0 {
		t.Errorf("RequestTimeout() = %v, want 0", got)
	}
	if got := (AuthConfig{}).SessionTTL(); got != 24*time.Hour {
		t.Errorf("SessionTTL() = %v", got)
	}
	if got := (MailConfig{}).Timeout(); got != 10*time.Second {
		t.Errorf("Timeout() = %v", got)
	}
}
