// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"
)

// Config represents the service configuration, loadable from a JSON file.
// All fields are optional; missing values use defaults or env vars.
type Config struct {
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	Model       string `json:"model,omitempty"`        // Gemini model name
	Schedule    string `json:"schedule,omitempty"`     // Cron expression for the weekly refresh
	ListenAddr  string `json:"listen_addr,omitempty"`  // Address for health/metrics HTTP server
	LogLevel    string `json:"log_level,omitempty"`    // "debug" or "info"

	// Backoff tuning for the provider retry loop.
	BackoffAttempts int `json:"backoff_attempts,omitempty"`
	BackoffBaseMs   int `json:"backoff_base_ms,omitempty"`
	BackoffMaxMs    int `json:"backoff_max_ms,omitempty"`
}

// Defaults returns the built-in configuration: Sunday midnight refresh,
// matching the provider tuning the pipeline was deployed with.
func Defaults() Config {
	return Config{
		Model:           "gemini-2.0-flash",
		Schedule:        "0 0 * * 0",
		ListenAddr:      ":9090",
		LogLevel:        "info",
		BackoffAttempts: 6,
		BackoffBaseMs:   1500,
		BackoffMaxMs:    45000,
	}
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Schedule != "" {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			return fmt.Errorf("config error: invalid schedule %q: %w", c.Schedule, err)
		}
	}
	if c.BackoffAttempts < 0 {
		return fmt.Errorf("config error: 'backoff_attempts' must be non-negative")
	}
	if c.BackoffBaseMs < 0 || c.BackoffMaxMs < 0 {
		return fmt.Errorf("config error: backoff delays must be non-negative")
	}
	if c.BackoffMaxMs > 0 && c.BackoffBaseMs > c.BackoffMaxMs {
		return fmt.Errorf("config error: 'backoff_base_ms' exceeds 'backoff_max_ms'")
	}
	switch c.LogLevel {
	case "", "debug", "info":
	default:
		return fmt.Errorf("config error: 'log_level' must be \"debug\" or \"info\"")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults, then from environment variables for secrets.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.Schedule == "" {
		result.Schedule = defaults.Schedule
	}
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.BackoffAttempts == 0 {
		result.BackoffAttempts = defaults.BackoffAttempts
	}
	if result.BackoffBaseMs == 0 {
		result.BackoffBaseMs = defaults.BackoffBaseMs
	}
	if result.BackoffMaxMs == 0 {
		result.BackoffMaxMs = defaults.BackoffMaxMs
	}

	if result.APIKey == "" {
		result.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	return result
}
