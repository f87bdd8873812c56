package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected default addr %q", cfg.HTTP.Addr)
	}
	if cfg.Classifier.Endpoint != "" {
		t.Fatalf("classifier must be unconfigured by default, got %q", cfg.Classifier.Endpoint)
	}
	if cfg.Classifier.Timeout != 5*time.Second {
		t.Fatalf("unexpected classifier timeout %v", cfg.Classifier.Timeout)
	}
	if cfg.Rescan.Enabled {
		t.Fatal("rescan must be disabled by default")
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != Default().HTTP.Addr {
		t.Fatalf("expected defaults, got addr %q", cfg.HTTP.Addr)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
http:
  addr: ":9090"
classifier:
  endpoint: "https://moderation.example.com/v1/classify"
  api_key: "sk-real"
  timeout: 2s
rescan:
  enabled: true
  interval: 1h
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("yaml addr not applied: %q", cfg.HTTP.Addr)
	}
	if cfg.Classifier.Endpoint != "https://moderation.example.com/v1/classify" {
		t.Fatalf("yaml classifier endpoint not applied: %q", cfg.Classifier.Endpoint)
	}
	if cfg.Classifier.Timeout != 2*time.Second {
		t.Fatalf("yaml classifier timeout not applied: %v", cfg.Classifier.Timeout)
	}
	if !cfg.Rescan.Enabled || cfg.Rescan.Interval != time.Hour {
		t.Fatalf("yaml rescan not applied: %+v", cfg.Rescan)
	}
	// Untouched sections keep their defaults.
	if cfg.Postgres.DSN != Default().Postgres.DSN {
		t.Fatalf("postgres dsn should be default, got %q", cfg.Postgres.DSN)
	}
}

func TestEnvOverridesWinOverYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("classifier:\n  endpoint: \"https://yaml.example.com\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CLASSIFIER_ENDPOINT", "https://env.example.com")
	t.Setenv("CLASSIFIER_API_KEY", "sk-env")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("POSTGRES_MAX_CONNS", "25")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Classifier.Endpoint != "https://env.example.com" {
		t.Fatalf("env endpoint not applied: %q", cfg.Classifier.Endpoint)
	}
	if cfg.Classifier.APIKey != "sk-env" {
		t.Fatalf("env api key not applied: %q", cfg.Classifier.APIKey)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Fatalf("env jwt secret not applied: %q", cfg.Auth.JWTSecret)
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("env redis db not applied: %d", cfg.Redis.DB)
	}
	if cfg.Postgres.MaxConns != 25 {
		t.Fatalf("env postgres max conns not applied: %d", cfg.Postgres.MaxConns)
	}
}

func TestEnvOverrideParseErrors(t *testing.T) {
	t.Setenv("CLASSIFIER_TIMEOUT", "soon")

	if _, err := Load(""); err == nil {
		t.Fatal("expected parse error for bad duration")
	}
}
