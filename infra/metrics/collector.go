package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/econdispatch/core/events"
	coremetrics "github.com/kilianp07/econdispatch/core/metrics"
	"github.com/kilianp07/econdispatch/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				collect(sink, ev)
			}
		}
	}()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func collect(sink coremetrics.MetricsSink, ev eventbus.Event) {
	switch e := ev.(type) {
	case events.OptimizationEvent:
		_ = sink.RecordOptimization(coremetrics.OptimizationRecord{
			RunID:      e.RunID,
			Time:       e.Time,
			Duration:   e.Duration,
			Allocation: e.Allocation,
			Success:    e.Err == nil,
			Error:      errString(e.Err),
		})
	case events.ProviderFailureEvent:
		if r, ok := sink.(coremetrics.ProviderFailureRecorder); ok {
			_ = r.RecordProviderFailure(coremetrics.ProviderFailure{
				RunID:    e.RunID,
				Provider: e.Provider,
				Kind:     e.Kind,
				Error:    errString(e.Err),
				Time:     time.Now(),
			})
		}
	case events.CommandEvent:
		if r, ok := sink.(coremetrics.CommandRecorder); ok {
			_ = r.RecordCommand(coremetrics.CommandRecord{
				Device:    e.Device,
				Delivered: e.Err == nil,
				Latency:   e.Latency,
				Error:     errString(e.Err),
				Time:      time.Now(),
			})
		}
	}
}
