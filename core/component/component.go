// Package component defines the contract every energy-conversion model
// implements and the type-tag registry used to build them from
// configuration.
package component

import (
	"time"

	"github.com/kilianp07/econdispatch/core/model"
)

// Component is one pluggable model of a physical energy-conversion device.
type Component interface {
	// Name is the unique instance name used for graph wiring and allocations.
	Name() string
	// OutputCapabilities lists what the component produces.
	OutputCapabilities() []model.Capability
	// InputCapabilities lists what the component consumes, in declared order.
	InputCapabilities() []model.Capability
	// UpdateParameters refreshes the operating point from live inputs.
	// Absent keys fall back to documented defaults.
	UpdateParameters(ts time.Time, in model.Inputs)
	// OptimizationParameters returns this component's contribution to the
	// optimizer namespace. Implementations may serve it from a ParamCache.
	OptimizationParameters() (model.Parameters, error)
	// Commands translates the allocation into device commands. A component
	// missing from the allocation returns an empty map.
	Commands(alloc model.Allocation) model.Commands
}

// Base carries the identity and capability declarations shared by the
// concrete variants.
type Base struct {
	name    string
	outputs []model.Capability
	inputs  []model.Capability
}

// NewBase returns a Base with the given name and capability lists.
func NewBase(name string, outputs, inputs []model.Capability) Base {
	return Base{name: name, outputs: outputs, inputs: inputs}
}

func (b Base) Name() string { return b.name }

func (b Base) OutputCapabilities() []model.Capability {
	return append([]model.Capability(nil), b.outputs...)
}

func (b Base) InputCapabilities() []model.Capability {
	return append([]model.Capability(nil), b.inputs...)
}
