package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordOptimization forwards the record to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordOptimization(rec OptimizationRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordOptimization(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordProviderFailure forwards to the sinks supporting it.
func (m *MultiSink) RecordProviderFailure(ev ProviderFailure) error {
	for _, s := range m.Sinks {
		if r, ok := s.(ProviderFailureRecorder); ok {
			if err := r.RecordProviderFailure(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordCommand forwards to the sinks supporting it.
func (m *MultiSink) RecordCommand(ev CommandRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(CommandRecorder); ok {
			if err := r.RecordCommand(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
