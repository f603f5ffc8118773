package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.API.BaseURL != "https://printbackend.onrender.com" {
		t.Errorf("expected default BaseURL, got %s", cfg.API.BaseURL)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected Level=info, got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	// Ensure no env vars interfere
	t.Setenv("PRINTSHOP_API_URL", "")
	t.Setenv("PRINTSHOP_SESSION_DB", "")
	t.Setenv("PRINTSHOP_LOG_LEVEL", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "http://localhost:5000"
	cfg.API.Timeout = "5s"
	cfg.Logging.Categories = map[string]bool{"api": false}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.API.BaseURL != "http://localhost:5000" {
		t.Errorf("expected BaseURL=http://localhost:5000, got %s", loaded.API.BaseURL)
	}
	if loaded.API.GetTimeout() != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", loaded.API.GetTimeout())
	}
	if enabled, ok := loaded.Logging.Categories["api"]; !ok || enabled {
		t.Errorf("expected api category disabled, got %v (present=%v)", enabled, ok)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("PRINTSHOP_API_URL", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != DefaultConfig().API.BaseURL {
		t.Errorf("expected defaults, got %s", cfg.API.BaseURL)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error for invalid yaml")
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PRINTSHOP_API_URL", "http://api.internal:8080")
	t.Setenv("PRINTSHOP_SESSION_DB", "/tmp/ps.db")
	t.Setenv("PRINTSHOP_LOG_LEVEL", "debug")
	t.Setenv("PRINTSHOP_THEME", "dark")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	if cfg.API.BaseURL != "http://api.internal:8080" {
		t.Errorf("expected env BaseURL, got %s", cfg.API.BaseURL)
	}
	if cfg.Storage.SessionDB != "/tmp/ps.db" {
		t.Errorf("expected env SessionDB, got %s", cfg.Storage.SessionDB)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected env level, got %s", cfg.Logging.Level)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("expected env theme, got %s", cfg.UI.Theme)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"no scheme", func(c *Config) { c.API.BaseURL = "localhost:5000" }, true},
		{"ftp scheme", func(c *Config) { c.API.BaseURL = "ftp://host" }, true},
		{"negative rate", func(c *Config) { c.API.RequestsPerSecond = -1 }, true},
		{"no session db", func(c *Config) { c.Storage.SessionDB = "" }, true},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, true},
		{"dark theme", func(c *Config) { c.UI.Theme = "Dark" }, false},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAPIConfig_GetTimeoutFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Timeout = "not-a-duration"
	if got := cfg.API.GetTimeout(); got != 30*time.Second {
		t.Errorf("expected fallback 30s, got %v", got)
	}
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	var cfg LoggingConfig
	if !cfg.IsCategoryEnabled("api") {
		t.Error("expected categories enabled without a filter")
	}
	cfg.Categories = map[string]bool{"api": false, "ui": true}
	if cfg.IsCategoryEnabled("api") {
		t.Error("expected api disabled")
	}
	if !cfg.IsCategoryEnabled("ui") || !cfg.IsCategoryEnabled("store") {
		t.Error("expected listed-true and unlisted categories enabled")
	}
}
