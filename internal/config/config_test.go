package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lumenlab/lumen/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("default server addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Detector.URL != "http://localhost:5000" {
		t.Errorf("default detector url = %q", cfg.Detector.URL)
	}
	if cfg.Detector.Timeout.Duration() != 30*time.Second {
		t.Errorf("default detector timeout = %v", cfg.Detector.Timeout.Duration())
	}
	if cfg.Sessions.Backend != "memory" {
		t.Errorf("default sessions backend = %q", cfg.Sessions.Backend)
	}
	if cfg.Archive.Backend != "memory" {
		t.Errorf("default archive backend = %q", cfg.Archive.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults failed validation: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lumen.toml")
	content := `
[server]
addr = ":9090"
shutdown_timeout = "5s"

[detector]
url = "https://detect.example.com"
timeout = "10s"

[sessions]
backend = "redis"
ttl = "1h"

[sessions.redis]
addr = "localhost:6379"
db = 2

[archive]
backend = "mongo"

[archive.mongo]
uri = "mongodb://localhost:27017"
database = "lumen"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout.Duration() != 5*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.Server.ShutdownTimeout.Duration())
	}
	if cfg.Detector.URL != "https://detect.example.com" {
		t.Errorf("detector url = %q", cfg.Detector.URL)
	}
	if cfg.Sessions.Backend != "redis" || cfg.Sessions.Redis.DB != 2 {
		t.Errorf("sessions = %+v", cfg.Sessions)
	}
	if cfg.Sessions.TTL.Duration() != time.Hour {
		t.Errorf("sessions ttl = %v", cfg.Sessions.TTL.Duration())
	}
	if cfg.Archive.Mongo.Database != "lumen" {
		t.Errorf("mongo database = %q", cfg.Archive.Mongo.Database)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	// Unset sections keep their defaults.
	if cfg.Cache.TTL.Duration() != 7*24*time.Hour {
		t.Errorf("cache ttl = %v", cfg.Cache.TTL.Duration())
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		if !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("error = %v, want INVALID_CONFIG", err)
		}
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("[server\naddr = "), 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		if !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("error = %v, want INVALID_CONFIG", err)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"bad detector url", func(c *Config) { c.Detector.URL = "ftp://example.com" }},
		{"unknown session backend", func(c *Config) { c.Sessions.Backend = "dynamo" }},
		{"redis without addr", func(c *Config) { c.Sessions.Backend = "redis" }},
		{"unknown archive backend", func(c *Config) { c.Archive.Backend = "s3" }},
		{"mongo without uri", func(c *Config) { c.Archive.Backend = "mongo" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "trace" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
			}
		})
	}
}
