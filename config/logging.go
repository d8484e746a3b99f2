package config

import (
	"fmt"
	"strings"
	"time"
)

// LoggingConfig defines the application log level.
type LoggingConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks the level name.
func (c LoggingConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("unknown level %s", c.Level)
}

// DebugConfig selects where optimizer runs are recorded. An empty store
// type disables recording.
type DebugConfig struct {
	Store ModuleConfig `json:"store"`
	// TimeoutSeconds bounds a single append.
	TimeoutSeconds int `json:"timeout_seconds"`
	// APIToken protects the query endpoint with a bearer token when set.
	APIToken string `json:"api_token"`
}

// Enabled reports whether a debug store is configured.
func (c DebugConfig) Enabled() bool { return c.Store.Type != "" }

// Timeout returns the append timeout, two seconds when unset.
func (c DebugConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks mandatory fields.
func (c DebugConfig) Validate() error {
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative")
	}
	return nil
}
