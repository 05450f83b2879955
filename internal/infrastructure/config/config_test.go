package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iho/bankledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.DatabaseDriver != config.DriverPostgres {
		t.Fatalf("expected postgres driver by default, got %q", cfg.DatabaseDriver)
	}

	if cfg.DatabaseIsolationLevel != "read committed" {
		t.Fatalf("expected read committed default, got %q", cfg.DatabaseIsolationLevel)
	}

	if cfg.HTTPPort != "8080" || cfg.GRPCPort != "9090" {
		t.Fatalf("unexpected default ports http=%s grpc=%s", cfg.HTTPPort, cfg.GRPCPort)
	}

	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("expected no kafka brokers by default, got %v", cfg.KafkaBrokers)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")
	t.Setenv("DATABASE_URL", "ledger:ledger@tcp(db:3306)/ledger")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9091")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("DATABASE_LOCK_TIMEOUT", "750ms")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseDriver != config.DriverMySQL {
		t.Fatalf("expected mysql driver, got %s", cfg.DatabaseDriver)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9091" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second || cfg.DatabaseLockTimeout != 750*time.Millisecond {
		t.Fatalf("unexpected timeouts: %s %s", cfg.DatabaseTimeout, cfg.DatabaseLockTimeout)
	}

	if !cfg.AuthEnabled || cfg.JWTSecret != "top-secret" {
		t.Fatalf("expected auth enabled with secret")
	}

	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown driver":      {"DATABASE_DRIVER": "oracle"},
		"auth without secret": {"AUTH_ENABLED": "true", "JWT_SECRET": ""},
		"bad duration":        {"DATABASE_LOCK_TIMEOUT": "soon"},
		"zero batch":          {"OUTBOX_BATCH_SIZE": "0"},
	}

	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}

			if _, err := config.Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("GRPC_PORT=7070\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	t.Chdir(dir)
	t.Cleanup(func() { _ = os.Unsetenv("GRPC_PORT") })

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.GRPCPort != "7070" {
		t.Fatalf("expected GRPC_PORT from .env, got %s", cfg.GRPCPort)
	}
}
