package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines the optimization cadence loaded from configuration.
type Config struct {
	IntervalMinutes int    `json:"interval_minutes" yaml:"interval_minutes"`
	Policy          string `json:"policy" yaml:"policy"`
	Location        string `json:"location" yaml:"location"`
}

// SetDefaults fills unset fields: hourly runs, single-step advance, local time.
func (c *Config) SetDefaults() {
	if c.IntervalMinutes == 0 {
		c.IntervalMinutes = 60
	}
	if c.Policy == "" {
		c.Policy = string(AdvanceSingle)
	}
	if c.Location == "" {
		c.Location = "Local"
	}
}

// Validate checks the cadence and policy.
func (c Config) Validate() error {
	if c.IntervalMinutes <= 0 {
		return errors.New("interval_minutes must be positive")
	}
	if _, err := ParsePolicy(c.Policy); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Location); err != nil {
		return fmt.Errorf("location: %w", err)
	}
	return nil
}

// Interval returns the configured interval as a duration.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// LoadLocation resolves the configured time zone.
func (c Config) LoadLocation() (*time.Location, error) {
	if c.Location == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Location)
}

// LoadConfig reads a cadence file in JSON or YAML, chosen by extension.
// The result has defaults applied and is validated.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return DecodeConfig(f, ext)
}

// DecodeConfig reads a Config from r in the given format ("yaml", "yml" or "json").
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	var err error
	switch strings.ToLower(format) {
	case "yaml", "yml":
		err = yaml.NewDecoder(r).Decode(&cfg)
	case "json":
		err = json.NewDecoder(r).Decode(&cfg)
	default:
		return Config{}, fmt.Errorf("unsupported config format: %q", format)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode %s: %w", format, err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
