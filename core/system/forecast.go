package system

import (
	"context"
	"time"

	"github.com/kilianp07/econdispatch/core/forecast"
	"github.com/kilianp07/econdispatch/core/model"
)

type namedDeriver struct {
	name string
	d    forecast.Deriver
}

// AddForecastModel registers a derivation provider. Providers are merged in
// registration order; a reused name replaces the provider in its slot.
func (s *System) AddForecastModel(name string, d forecast.Deriver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, nd := range s.derivers {
		if nd.name == name {
			s.log.Warnf("forecast model %s registered twice, replacing", name)
			s.derivers[i].d = d
			return
		}
	}
	s.derivers = append(s.derivers, namedDeriver{name: name, d: d})
}

// Forecasts returns one merged record per weather timestep, in weather
// order. Deriver failures are returned as ProviderErrors; a weather model
// failure is returned as the error.
func (s *System) Forecasts(ctx context.Context, now time.Time) ([]model.ForecastRecord, []ProviderError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forecasts(ctx, now)
}

func (s *System) forecasts(ctx context.Context, now time.Time) ([]model.ForecastRecord, []ProviderError, error) {
	weather, err := s.weather.Forecast(ctx, now)
	if err != nil {
		return nil, nil, err
	}
	var fails []ProviderError
	out := make([]model.ForecastRecord, len(weather))
	for i, w := range weather {
		rec := model.ForecastRecord{}
		for _, nd := range s.derivers {
			raw := make(map[string]float64, len(w.Values))
			for k, v := range w.Values {
				raw[k] = v
			}
			vals, err := nd.d.Derive(w.Timestamp, raw)
			if err != nil {
				fails = append(fails, ProviderError{Provider: nd.name, Kind: KindDeriver, Err: err})
				s.log.Warnw("forecast model failed", map[string]any{
					"model": nd.name, "timestamp": w.Timestamp, "error": err.Error(),
				})
				continue
			}
			for k, v := range vals {
				rec[k] = v
			}
		}
		out[i] = rec
	}
	return out, fails, nil
}
