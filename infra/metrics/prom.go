// Package metrics provides the Prometheus and InfluxDB metrics sinks and the
// event collector feeding them from the event bus.
package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/econdispatch/core/metrics"
)

// PromSink records optimization metrics in Prometheus collectors.
type PromSink struct {
	runs       *prometheus.CounterVec
	duration   prometheus.Histogram
	allocation *prometheus.GaugeVec
	failures   *prometheus.CounterVec
	commands   *prometheus.CounterVec
}

// NewPromSink registers the collectors on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// register adds c to reg, returning the collector already registered under
// the same descriptor when there is one.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.runs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizations_total",
		Help: "Total number of optimizer runs",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimization_duration_seconds",
		Help:    "Duration of an optimization run, forecasts to commands",
		Buckets: prometheus.DefBuckets,
	})); err != nil {
		return nil, err
	}
	if s.allocation, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "component_allocation",
		Help: "Load assigned to each component by the last successful run",
	}, []string{"component"})); err != nil {
		return nil, err
	}
	if s.failures, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_failures_total",
		Help: "Deriver and component failures isolated during runs",
	}, []string{"provider", "kind"})); err != nil {
		return nil, err
	}
	if s.commands, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "device_commands_total",
		Help: "Device command deliveries",
	}, []string{"device", "delivered"})); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordOptimization counts the run and, on success, updates the allocation
// gauges.
func (s *PromSink) RecordOptimization(rec coremetrics.OptimizationRecord) error {
	status := "success"
	if !rec.Success {
		status = "failure"
	}
	s.runs.WithLabelValues(status).Inc()
	s.duration.Observe(rec.Duration.Seconds())
	if rec.Success {
		for name, v := range rec.Allocation {
			s.allocation.WithLabelValues(name).Set(v)
		}
	}
	return nil
}

// RecordProviderFailure increments the failure counter.
func (s *PromSink) RecordProviderFailure(ev coremetrics.ProviderFailure) error {
	s.failures.WithLabelValues(ev.Provider, ev.Kind).Inc()
	return nil
}

// RecordCommand increments the command counter.
func (s *PromSink) RecordCommand(ev coremetrics.CommandRecord) error {
	s.commands.WithLabelValues(ev.Device, strconv.FormatBool(ev.Delivered)).Inc()
	return nil
}
