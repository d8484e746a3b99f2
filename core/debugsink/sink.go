package debugsink

import (
	"context"
	"time"

	"github.com/kilianp07/econdispatch/core/logger"
	"github.com/kilianp07/econdispatch/core/model"
)

// Sink adapts a Store to the orchestrator's debug sink. Write failures are
// logged and never reach the optimization loop.
type Sink struct {
	store   Store
	log     logger.Logger
	timeout time.Duration
}

// NewSink wraps store. A zero timeout defaults to five seconds.
func NewSink(store Store, log logger.Logger, timeout time.Duration) *Sink {
	if log == nil {
		log = logger.Nop{}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Sink{store: store, log: log, timeout: timeout}
}

// Record appends one run to the store.
func (s *Sink) Record(runID string, now time.Time, alloc model.Allocation, forecasts []model.ForecastRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	rec := Record{Timestamp: now, RunID: runID, Allocation: alloc, Forecasts: forecasts}
	if err := s.store.Append(ctx, rec); err != nil {
		s.log.Errorf("debug record %s: %v", runID, err)
	}
}

// Store returns the wrapped store.
func (s *Sink) Store() Store { return s.store }

// Close closes the wrapped store.
func (s *Sink) Close() error { return s.store.Close() }
