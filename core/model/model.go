// Package model holds the value types exchanged between the orchestrator,
// the component models and the external collaborators.
package model

import "time"

// Capability names a kind of energy or resource flow between components.
type Capability string

const (
	Heat         Capability = "heat"
	HeatedWater  Capability = "heated_water"
	ChilledWater Capability = "chilled_water"
	Electricity  Capability = "electricity"
	NaturalGas   Capability = "natural_gas"
)

// Inputs carries the live measurements supplied with a tick.
type Inputs map[string]float64

// Get returns the value for key or def when the key is absent.
func (in Inputs) Get(key string, def float64) float64 {
	if v, ok := in[key]; ok {
		return v
	}
	return def
}

// Parameters is the flat namespace handed to the optimizer.
type Parameters map[string]any

// Clone returns a shallow copy of p.
func (p Parameters) Clone() Parameters {
	cp := make(Parameters, len(p))
	for k, v := range p {
		cp[k] = v
	}
	return cp
}

// WeatherRecord is one raw weather timestep as returned by a weather model.
type WeatherRecord struct {
	Timestamp time.Time          `json:"timestamp" yaml:"timestamp"`
	Values    map[string]float64 `json:"values" yaml:"values"`
}

// ForecastRecord holds the derived variables of one timestep. Records are
// positional: the timestep they belong to is implied by their index.
type ForecastRecord map[string]float64

// Allocation maps a component name to the load the optimizer assigned to it.
type Allocation map[string]float64

// Commands maps a device identifier to its command values.
type Commands map[string]map[string]any

// Merge copies every device entry of other into c, replacing existing
// devices. It returns the devices that were already present.
func (c Commands) Merge(other Commands) []string {
	var replaced []string
	for dev, cmds := range other {
		if _, ok := c[dev]; ok {
			replaced = append(replaced, dev)
		}
		c[dev] = cmds
	}
	return replaced
}
