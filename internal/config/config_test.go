package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Listen != ":23480" {
		t.Errorf("Listen = %q, want :23480", cfg.Server.Listen)
	}
	if cfg.Server.BasePath != "/corex" {
		t.Errorf("BasePath = %q, want /corex", cfg.Server.BasePath)
	}
	if cfg.Storage.Redis.URL != "" {
		t.Errorf("Redis.URL = %q, want empty (memory fallback)", cfg.Storage.Redis.URL)
	}
	if cfg.Upstream.ConnectTimeout != 10*time.Second {
		t.Errorf("ConnectTimeout = %v, want 10s", cfg.Upstream.ConnectTimeout)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want production by default")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Listen != ":23480" {
		t.Errorf("Listen = %q, want default", cfg.Server.Listen)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  listen: ":9000"
  environment: development
logging:
  level: debug
metrics:
  enabled: false
`)
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Listen != ":9000" {
		t.Errorf("Listen = %q, want :9000", cfg.Server.Listen)
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = true, want false")
	}
	// Untouched sections keep their defaults.
	if cfg.Server.BasePath != "/corex" {
		t.Errorf("BasePath = %q, want default", cfg.Server.BasePath)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server: [broken"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want parse failure")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	t.Setenv("PORT", "8123")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REDIS_TOKEN", "sekrit")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Listen != ":8123" {
		t.Errorf("Listen = %q, want :8123", cfg.Server.Listen)
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}
	if cfg.Storage.Redis.URL != "redis://localhost:6379/0" {
		t.Errorf("Redis.URL = %q, want env value", cfg.Storage.Redis.URL)
	}
	if cfg.Storage.Redis.Token != "sekrit" {
		t.Errorf("Redis.Token = %q, want env value", cfg.Storage.Redis.Token)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestSanitizeConfigPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"plain filename", "config.yaml", "config.yaml"},
		{"relative subdir", "conf/config.yaml", "conf/config.yaml"},
		{"leading traversal stripped", "../config.yaml", "config.yaml"},
		{"double traversal stripped", "../../config.yaml", "config.yaml"},
		{"bare dotdot", "..", "config.yaml"},
		{"absolute path kept", "/etc/corex/config.yaml", "/etc/corex/config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeConfigPath(tt.path); got != tt.want {
				t.Errorf("sanitizeConfigPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
