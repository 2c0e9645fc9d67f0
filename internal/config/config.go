// Package config loads application configuration from a YAML file and
// environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "STATUSDECK_"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Poll      PollConfig      `koanf:"poll"`
	Snapshots SnapshotsConfig `koanf:"snapshots"`
	CORS      CORSConfig      `koanf:"cors"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port"`
	MetricsPort       string        `koanf:"metrics_port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// PollConfig contains probe fan-out settings.
type PollConfig struct {
	// Timeout is the shared deadline for one full poll across all probes.
	Timeout time.Duration `koanf:"timeout"`
	// WorkerHeadroom sizes the probe worker pool as a multiple of the
	// probe count, so no probe queues behind another under normal load.
	WorkerHeadroom float64 `koanf:"worker_headroom"`
	// UserAgent is sent on outbound probe requests. Several status pages
	// reject requests without a browser-like agent.
	UserAgent string `koanf:"user_agent"`
	// RequestsPerSecond caps outbound requests per provider.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// SnapshotsConfig contains the snapshot scheduler settings.
type SnapshotsConfig struct {
	Interval     time.Duration `koanf:"interval"`
	PollDeadline time.Duration `koanf:"poll_deadline"`
	Retention    time.Duration `koanf:"retention"`
}

// CORSConfig contains CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// defaults returns the built-in configuration values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              "8080",
			MetricsPort:       "9090",
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Poll: PollConfig{
			Timeout:           5 * time.Second,
			WorkerHeadroom:    1.25,
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			RequestsPerSecond: 1,
		},
		Snapshots: SnapshotsConfig{
			Interval:     15 * time.Minute,
			PollDeadline: 10 * time.Second,
			Retention:    90 * 24 * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load reads configuration from the given YAML file (optional) and
// STATUSDECK_* environment variables, layered over defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	// STATUSDECK_SERVER_PORT=8081 overrides server.port. Only the first
	// underscore separates the section from the key.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.Replace(s, "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime behavior.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}

	if c.Snapshots.Interval <= 0 {
		return fmt.Errorf("snapshots.interval must be positive, got %s", c.Snapshots.Interval)
	}
	if c.Snapshots.PollDeadline >= c.Snapshots.Interval {
		return fmt.Errorf("snapshots.poll_deadline %s must be less than snapshots.interval %s",
			c.Snapshots.PollDeadline, c.Snapshots.Interval)
	}
	if c.Snapshots.Retention <= 0 {
		return fmt.Errorf("snapshots.retention must be positive, got %s", c.Snapshots.Retention)
	}
	if c.Poll.Timeout <= 0 {
		return fmt.Errorf("poll.timeout must be positive, got %s", c.Poll.Timeout)
	}
	if c.Poll.WorkerHeadroom < 1 {
		return fmt.Errorf("poll.worker_headroom must be >= 1, got %g", c.Poll.WorkerHeadroom)
	}

	return nil
}
