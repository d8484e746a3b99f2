package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/econdispatch/core/factory"
	"github.com/kilianp07/econdispatch/core/model"
	"github.com/kilianp07/econdispatch/core/scheduler"
)

// ModuleConfig describes a pluggable module by name, type tag and raw
// settings decoded by the module factory.
type ModuleConfig = factory.ModuleConfig

// ComponentConfig declares one component instance.
type ComponentConfig = factory.ModuleConfig

// SystemConfig controls the optimization cadence and key collision policy.
type SystemConfig struct {
	IntervalMinutes int    `json:"interval_minutes"`
	Policy          string `json:"policy"`
	Location        string `json:"location"`
	// StrictKeys turns parameter key collisions into errors.
	StrictKeys bool `json:"strict_keys"`
	// TickSeconds is how often live inputs are pushed to the components.
	// Optimizer runs still follow the interval grid.
	TickSeconds int `json:"tick_seconds"`
}

// Schedule returns the cadence settings.
func (c SystemConfig) Schedule() scheduler.Config {
	return scheduler.Config{IntervalMinutes: c.IntervalMinutes, Policy: c.Policy, Location: c.Location}
}

// SetDefaults applies the scheduler defaults.
func (c *SystemConfig) SetDefaults() {
	s := c.Schedule()
	s.SetDefaults()
	c.IntervalMinutes, c.Policy, c.Location = s.IntervalMinutes, s.Policy, s.Location
	if c.TickSeconds == 0 {
		c.TickSeconds = 60
	}
}

// Validate checks the cadence.
func (c SystemConfig) Validate() error {
	if c.TickSeconds < 0 {
		return fmt.Errorf("tick_seconds must not be negative")
	}
	return c.Schedule().Validate()
}

// TickPeriod returns the input polling period.
func (c SystemConfig) TickPeriod() time.Duration {
	return time.Duration(c.TickSeconds) * time.Second
}

// ConnectionConfig declares a directed link between two components. An
// empty IOType links every capability the two have in common.
type ConnectionConfig struct {
	From   string `json:"from"`
	To     string `json:"to"`
	IOType string `json:"io_type"`
}

// Capability returns the configured io type.
func (c ConnectionConfig) Capability() model.Capability {
	return model.Capability(c.IOType)
}

// ForecastConfig selects the weather model and the derivation providers.
// Providers run in the listed order.
type ForecastConfig struct {
	Weather ModuleConfig   `json:"weather"`
	Models  []ModuleConfig `json:"models"`
}
