package metrics

import (
	"time"

	"github.com/kilianp07/econdispatch/core/model"
)

// OptimizationRecord describes one optimizer run.
type OptimizationRecord struct {
	RunID      string
	Time       time.Time
	Duration   time.Duration
	Allocation model.Allocation
	Success    bool
	Error      string
}

// MetricsSink records optimizer runs for observability purposes.
type MetricsSink interface {
	RecordOptimization(rec OptimizationRecord) error
}

// ProviderFailure describes a deriver or component skipped during a run.
type ProviderFailure struct {
	RunID    string
	Provider string
	Kind     string
	Error    string
	Time     time.Time
}

// ProviderFailureRecorder records isolated provider failures.
type ProviderFailureRecorder interface {
	RecordProviderFailure(ev ProviderFailure) error
}

// CommandRecord describes the delivery of one device's commands.
type CommandRecord struct {
	Device    string
	Delivered bool
	Latency   time.Duration
	Error     string
	Time      time.Time
}

// CommandRecorder records command deliveries.
type CommandRecorder interface {
	RecordCommand(ev CommandRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordOptimization(OptimizationRecord) error { return nil }
func (NopSink) RecordProviderFailure(ProviderFailure) error { return nil }
func (NopSink) RecordCommand(CommandRecord) error           { return nil }
