package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/econdispatch/core/metrics"
	"github.com/kilianp07/econdispatch/infra/mqtt"
)

// EnvPrefix marks environment variables overriding file settings.
// ECON_SYSTEM__INTERVAL_MINUTES=15 overrides system.interval_minutes.
const EnvPrefix = "ECON_"

type Config struct {
	System      SystemConfig       `json:"system"`
	Components  []ComponentConfig  `json:"components"`
	Connections []ConnectionConfig `json:"connections"`
	Forecast    ForecastConfig     `json:"forecast"`
	Optimizer   ModuleConfig       `json:"optimizer"`
	Debug       DebugConfig        `json:"debug"`
	Logging     LoggingConfig      `json:"logging"`
	MQTT        mqtt.Config        `json:"mqtt"`
	Metrics     metrics.Config     `json:"metrics"`
	Sentry      SentryConfig       `json:"sentry"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every unset section.
func (c *Config) SetDefaults() {
	c.System.SetDefaults()
	c.Logging.SetDefaults()
	if c.Optimizer.Type == "" {
		c.Optimizer.Type = "lp"
	}
	if c.Forecast.Weather.Type == "" {
		c.Forecast.Weather.Type = "static"
	}
}

// Validate checks every section and the references between them.
func (c Config) Validate() error {
	var errs []error
	if err := c.System.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("system: %w", err))
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	if err := c.MQTT.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("mqtt: %w", err))
	}
	if err := c.Debug.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("debug: %w", err))
	}
	for i, comp := range c.Components {
		if comp.Type == "" {
			errs = append(errs, fmt.Errorf("components[%d]: type is required", i))
		}
	}
	for i, m := range c.Forecast.Models {
		if m.Type == "" {
			errs = append(errs, fmt.Errorf("forecast.models[%d]: type is required", i))
		}
	}
	for i, conn := range c.Connections {
		if conn.From == "" || conn.To == "" {
			errs = append(errs, fmt.Errorf("connections[%d]: from and to are required", i))
		}
	}
	return errors.Join(errs...)
}
