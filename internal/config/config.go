// Package config loads the service configuration from a TOML file.
//
// Everything has a sensible default, so `lumen serve` works with no
// config file at all: an in-memory session store, an in-memory archive,
// and the detection service on localhost.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lumenlab/lumen/pkg/errors"
)

// Config is the service configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Detector DetectorConfig `toml:"detector"`
	Cache    CacheConfig    `toml:"cache"`
	Sessions SessionsConfig `toml:"sessions"`
	Archive  ArchiveConfig  `toml:"archive"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	ShutdownTimeout duration `toml:"shutdown_timeout"`
}

// DetectorConfig configures the upstream ArUco measurement service.
type DetectorConfig struct {
	URL     string   `toml:"url"`
	Timeout duration `toml:"timeout"`
}

// CacheConfig configures the detection response cache.
type CacheConfig struct {
	Dir string   `toml:"dir"` // empty means ~/.cache/lumen
	TTL duration `toml:"ttl"`
}

// SessionsConfig selects and configures the session store backend.
type SessionsConfig struct {
	// Backend is one of "memory", "file", "redis".
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"` // file backend; empty means default
	TTL     duration `toml:"ttl"`

	Redis RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis session backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// ArchiveConfig selects and configures the plan archive backend.
type ArchiveConfig struct {
	// Backend is one of "memory", "mongo".
	Backend string `toml:"backend"`

	Mongo MongoConfig `toml:"mongo"`
}

// MongoConfig configures the mongo archive backend.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `toml:"level"`
}

// duration wraps time.Duration for TOML decoding of values like "30s".
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Duration returns the wrapped time.Duration.
func (d duration) Duration() time.Duration { return time.Duration(d) }

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: duration(10 * time.Second),
		},
		Detector: DetectorConfig{
			URL:     "http://localhost:5000",
			Timeout: duration(30 * time.Second),
		},
		Cache: CacheConfig{
			TTL: duration(7 * 24 * time.Hour),
		},
		Sessions: SessionsConfig{
			Backend: "memory",
			TTL:     duration(24 * time.Hour),
		},
		Archive: ArchiveConfig{
			Backend: "memory",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the TOML file at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config file %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints the TOML decoder cannot.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr cannot be empty")
	}
	if err := errors.ValidateURL(c.Detector.URL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "detector.url")
	}

	switch c.Sessions.Backend {
	case "memory", "file":
	case "redis":
		if c.Sessions.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "sessions.redis.addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"sessions.backend must be one of memory, file, redis; got %q", c.Sessions.Backend)
	}

	switch c.Archive.Backend {
	case "memory":
	case "mongo":
		if c.Archive.Mongo.URI == "" || c.Archive.Mongo.Database == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "archive.mongo.uri and archive.mongo.database are required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"archive.backend must be one of memory, mongo; got %q", c.Archive.Backend)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}

	return nil
}
