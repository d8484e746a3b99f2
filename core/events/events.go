package events

import (
	"time"

	"github.com/kilianp07/econdispatch/core/model"
)

// OptimizationEvent is published after each optimizer run.
type OptimizationEvent struct {
	RunID      string
	Time       time.Time
	Duration   time.Duration
	Allocation model.Allocation
	Err        error
}

// ProviderFailureEvent reports a deriver or component whose contribution
// was skipped. Kind is "deriver", "parameters" or "commands".
type ProviderFailureEvent struct {
	RunID    string
	Provider string
	Kind     string
	Err      error
}

// DuplicateComponentEvent is published when a registration reuses a name.
type DuplicateComponentEvent struct {
	Name     string
	OldType  string
	NewType  string
	Replaced time.Time
}

// CommandEvent is published for each device command delivery.
type CommandEvent struct {
	Device   string
	Commands map[string]any
	Err      error
	Latency  time.Duration
}
