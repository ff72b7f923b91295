package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
environment: test
server:
  port: 8080
  read_timeout: 10s
  write_timeout: 10s
  shutdown_timeout: 15s
postgres:
  dsn: postgres://localhost:5432/coinsight?sslmode=disable
models:
  dir: ./models
  runtime_url: http://localhost:8501
  sequence_length: 70
prediction:
  symbols: [BTC, ETH]
  cache_ttl: 5m
  risk_cache_ttl: 2h
  ensemble_method: weighted_average
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Port != 8080 || c.Server.ShutdownTimeout != 15*time.Second {
		t.Fatalf("server = %+v", c.Server)
	}
	if c.Models.SequenceLength != 70 {
		t.Fatalf("sequence length = %d", c.Models.SequenceLength)
	}
	if len(c.Prediction.Symbols) != 2 || c.Prediction.CacheTTL != 5*time.Minute {
		t.Fatalf("prediction = %+v", c.Prediction)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateRejectsBadMethod(t *testing.T) {
	c, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Prediction.EnsembleMethod = "median"
	if err := c.Validate(); err == nil {
		t.Fatal("unsupported ensemble method accepted")
	}
}

func TestValidateRequiredFields(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*Config)
	}{
		{"environment", func(c *Config) { c.Environment = "" }},
		{"dsn", func(c *Config) { c.Postgres.DSN = "" }},
		{"models dir", func(c *Config) { c.Models.Dir = "" }},
		{"runtime url", func(c *Config) { c.Models.RuntimeURL = "" }},
		{"symbols", func(c *Config) { c.Prediction.Symbols = nil }},
		{"kafka brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }},
	} {
		c, err := Load(writeConfig(t, validYAML))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		tc.mutate(c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://override:5432/db")
	t.Setenv("SYMBOLS", "SOL,ADA")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if c.Postgres.DSN != "postgres://override:5432/db" {
		t.Fatalf("dsn = %q", c.Postgres.DSN)
	}
	if len(c.Prediction.Symbols) != 2 || c.Prediction.Symbols[0] != "SOL" {
		t.Fatalf("symbols = %v", c.Prediction.Symbols)
	}
	if len(c.Kafka.Brokers) != 2 {
		t.Fatalf("brokers = %v", c.Kafka.Brokers)
	}
}
