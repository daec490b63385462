package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"AUTH_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Port != "8080" || cfg.Storage != DriverMongo {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.SessionCookie != "session_token" {
		t.Fatalf("expected default session cookie, got %q", cfg.Auth.SessionCookie)
	}
	if cfg.Auth.SessionTTL != 168*time.Hour {
		t.Fatalf("expected 168h TTL, got %s", cfg.Auth.SessionTTL)
	}
	if cfg.Guard.WaitTimeout != 5*time.Second {
		t.Fatalf("expected 5s guard wait, got %s", cfg.Guard.WaitTimeout)
	}
	if cfg.SignIn.MaxAttempts != 5 || cfg.SignIn.Lockout != 15*time.Minute {
		t.Fatalf("unexpected sign-in defaults: %+v", cfg.SignIn)
	}
	if cfg.Mongo.Transactions {
		t.Fatalf("transactions should default to off")
	}
	if cfg.IsProduction() {
		t.Fatalf("default env should not be production")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"AUTH_SECRET":              "s3cret",
		"SESSION_COOKIE":           "sid",
		"ENV":                      "production",
		"STORAGE":                  "memory",
		"SESSION_TTL":              "30m",
		"GUARD_WAIT_TIMEOUT":       "250ms",
		"MONGO_TRANSACTIONS":       "true",
		"REDIS_DB":                 "3",
		"AUDIT_WORKERS":            "2",
		"BOOTSTRAP_ADMIN_EMAIL":    "root@example.com",
		"BOOTSTRAP_ADMIN_PASSWORD": "changeme!",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if !cfg.IsProduction() || cfg.Storage != DriverMemory {
		t.Fatalf("unexpected env/storage: %+v", cfg)
	}
	if cfg.Auth.SessionCookie != "sid" || cfg.Auth.SessionTTL != 30*time.Minute {
		t.Fatalf("unexpected auth config: %+v", cfg.Auth)
	}
	if cfg.Guard.WaitTimeout != 250*time.Millisecond {
		t.Fatalf("unexpected guard wait: %s", cfg.Guard.WaitTimeout)
	}
	if !cfg.Mongo.Transactions || cfg.Redis.DB != 3 || cfg.Audit.Workers != 2 {
		t.Fatalf("unexpected storage config: %+v %+v %+v", cfg.Mongo, cfg.Redis, cfg.Audit)
	}
	if cfg.Bootstrap.Name != "Administrator" {
		t.Fatalf("expected default bootstrap name, got %q", cfg.Bootstrap.Name)
	}
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := map[string]map[string]string{
		"missing secret":        {},
		"unknown storage":       {"AUTH_SECRET": "x", "STORAGE": "sqlite"},
		"bad duration":          {"AUTH_SECRET": "x", "SESSION_TTL": "soon"},
		"zero guard wait":       {"AUTH_SECRET": "x", "GUARD_WAIT_TIMEOUT": "0s"},
		"weak bootstrap secret": {"AUTH_SECRET": "x", "BOOTSTRAP_ADMIN_EMAIL": "a@b.c", "BOOTSTRAP_ADMIN_PASSWORD": "short"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(env)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadFrom_RejectsNegativeSignInAttempts(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"AUTH_SECRET":         "s3cret",
		"SIGNIN_MAX_ATTEMPTS": "-1",
	}))
	if err == nil {
		t.Fatal("expected error for negative SIGNIN_MAX_ATTEMPTS")
	}
}
