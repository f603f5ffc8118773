package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all printshop configuration.
type Config struct {
	// Remote service
	API APIConfig `yaml:"api"`

	// Durable client state
	Storage StorageConfig `yaml:"storage"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`
}

// APIConfig configures the HTTP client used for every remote call.
type APIConfig struct {
	BaseURL           string  `yaml:"base_url"`
	Timeout           string  `yaml:"timeout"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 disables client-side throttling
	Burst             int     `yaml:"burst"`
	UserAgent         string  `yaml:"user_agent"`
}

// StorageConfig configures where the session identity is persisted.
type StorageConfig struct {
	SessionDB string `yaml:"session_db"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "https://printbackend.onrender.com",
			Timeout:           "30s",
			RequestsPerSecond: 10,
			Burst:             5,
			UserAgent:         "printshop-cli/1.0",
		},
		Storage: StorageConfig{
			SessionDB: filepath.Join(DefaultDir(), "session.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		UI: DefaultUIConfig(),
	}
}

// DefaultDir returns the directory holding config and session state.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".printshop"
	}
	return filepath.Join(home, ".printshop")
}

// DefaultPath returns the default path to config.yaml.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if u := os.Getenv("PRINTSHOP_API_URL"); u != "" {
		c.API.BaseURL = u
	}
	if path := os.Getenv("PRINTSHOP_SESSION_DB"); path != "" {
		c.Storage.SessionDB = path
	}
	if level := os.Getenv("PRINTSHOP_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if theme := os.Getenv("PRINTSHOP_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// GetTimeout returns the HTTP client timeout as a duration, falling back to
// 30s when unset or malformed.
func (c APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api base_url %q (expected scheme://host)", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api base_url scheme: %s", u.Scheme)
	}

	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("api requests_per_second must not be negative")
	}

	if c.Storage.SessionDB == "" {
		return fmt.Errorf("storage session_db not configured (set PRINTSHOP_SESSION_DB)")
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}

	validTheme := false
	for _, t := range ValidThemes {
		if strings.EqualFold(c.UI.Theme, t) {
			validTheme = true
			break
		}
	}
	if !validTheme {
		return fmt.Errorf("invalid ui theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}

	return nil
}
