// Package config provides configuration management for the Corex proxy.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration structure
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Audit    AuditConfig    `yaml:"audit"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Listen is the address the public server binds to.
	Listen string `yaml:"listen"`

	// BasePath is the fixed path prefix under which masked URLs live.
	BasePath string `yaml:"base_path"`

	// Environment is "development" or "production". Development echoes
	// internal error details to callers; production keeps them generic.
	Environment string `yaml:"environment"`
}

// StorageConfig contains mapping storage settings
type StorageConfig struct {
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig contains Redis connection settings. An empty URL selects the
// in-memory fallback store.
type RedisConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// UpstreamConfig contains settings for the upstream fetch client
type UpstreamConfig struct {
	ConnectTimeout        time.Duration `yaml:"connect_timeout"`
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig contains Prometheus metrics settings
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// AuditConfig contains audit trail settings
type AuditConfig struct {
	Enabled           bool `yaml:"enabled"`
	IncludeOriginURLs bool `yaml:"include_origin_urls"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:      ":23480",
			BasePath:    "/corex",
			Environment: "production",
		},
		Storage: StorageConfig{
			Redis: RedisConfig{},
		},
		Upstream: UpstreamConfig{
			ConnectTimeout:        10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:  true,
			Endpoint: "/metrics",
		},
		Audit: AuditConfig{
			Enabled:           true,
			IncludeOriginURLs: false,
		},
	}
}

// Load loads the configuration from file and environment. A missing config
// file is not an error: defaults plus environment overrides apply.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Sanitize and validate path to prevent path traversal
	configPath = sanitizeConfigPath(configPath)

	data, err := os.ReadFile(configPath) //#nosec G304 -- config path is sanitized above
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment variables on top of file/default values.
// The Redis URL and token come from the environment in every deployment;
// their absence selects the in-memory store, never a startup failure.
func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Listen = ":" + port
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		c.Server.Environment = env
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		c.Storage.Redis.URL = url
	}
	if token := os.Getenv("REDIS_TOKEN"); token != "" {
		c.Storage.Redis.Token = token
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// sanitizeConfigPath cleans and validates a config file path
func sanitizeConfigPath(path string) string {
	// Clean the path to remove any . or .. components
	cleaned := filepath.Clean(path)

	// If path is absolute, use it as-is (operator explicitly set full path)
	// If relative, ensure it doesn't escape the current directory
	if !filepath.IsAbs(cleaned) {
		for len(cleaned) > 2 && cleaned[:3] == "../" {
			cleaned = cleaned[3:]
		}
		if cleaned == ".." {
			cleaned = "config.yaml"
		}
	}

	return cleaned
}
