// Package config loads the toolset configuration from a YAML file and
// applies defaults for everything not set.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Load for unset fields.
const (
	DefaultPageSize       = 100
	DefaultStaleAfterDays = 180
	DefaultCFPath         = "cf"
	DefaultUaacPath       = "uaac"
	DefaultLogLevel       = "info"
)

// Config is the toolset configuration.
type Config struct {
	// APIURL is the Cloud Controller base URL, e.g.
	// https://api.sys.example.com. Required.
	APIURL string `yaml:"api_url"`

	// PageSize is the per_page value for collection requests.
	PageSize int `yaml:"page_size,omitempty"`

	// StaleAfterDays sets the stale-app cutoff: apps last updated
	// strictly more than this many days ago are reported.
	StaleAfterDays int `yaml:"stale_after_days,omitempty"`

	// RedisAddr enables response caching and rate limit state when
	// set. Empty disables both; the tools still work without Redis.
	RedisAddr string `yaml:"redis_addr,omitempty"`

	// CFPath is the cf CLI binary used to obtain OAuth tokens.
	CFPath string `yaml:"cf_path,omitempty"`

	// UaacPath is the uaac CLI binary used by the group audit.
	UaacPath string `yaml:"uaac_path,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`

	// StrictJoins fails a report on duplicate join keys instead of
	// keeping the last-seen record.
	StrictJoins bool `yaml:"strict_joins,omitempty"`
}

// Load reads the configuration from path and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.StaleAfterDays == 0 {
		c.StaleAfterDays = DefaultStaleAfterDays
	}
	if c.CFPath == "" {
		c.CFPath = DefaultCFPath
	}
	if c.UaacPath == "" {
		c.UaacPath = DefaultUaacPath
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate ensures the config has required fields and sane values.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("api_url must start with http:// or https://")
	}
	if c.PageSize < 1 || c.PageSize > 5000 {
		return fmt.Errorf("page_size must be between 1 and 5000")
	}
	if c.StaleAfterDays < 1 {
		return fmt.Errorf("stale_after_days must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	return nil
}
