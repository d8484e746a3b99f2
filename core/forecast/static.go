package forecast

import (
	"context"
	"time"

	"github.com/kilianp07/econdispatch/core/model"
)

// StaticConfig configures the Static weather model.
type StaticConfig struct {
	Steps  int                `json:"steps"`
	Step   time.Duration      `json:"step"`
	Values map[string]float64 `json:"values"`
}

// Static returns the same values for every timestep. It is used for
// commissioning and tests.
type Static struct {
	cfg StaticConfig
}

// NewStatic returns a Static model. Steps defaults to 1 and Step to one hour.
func NewStatic(cfg StaticConfig) *Static {
	if cfg.Steps <= 0 {
		cfg.Steps = 1
	}
	if cfg.Step <= 0 {
		cfg.Step = time.Hour
	}
	return &Static{cfg: cfg}
}

func (s *Static) Forecast(_ context.Context, now time.Time) ([]model.WeatherRecord, error) {
	out := make([]model.WeatherRecord, s.cfg.Steps)
	for i := range out {
		vals := make(map[string]float64, len(s.cfg.Values))
		for k, v := range s.cfg.Values {
			vals[k] = v
		}
		out[i] = model.WeatherRecord{Timestamp: now.Add(time.Duration(i) * s.cfg.Step), Values: vals}
	}
	return out, nil
}
