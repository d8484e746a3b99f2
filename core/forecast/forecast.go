package forecast

import (
	"context"
	"time"

	"github.com/kilianp07/econdispatch/core/model"
)

// WeatherModel returns the raw weather timesteps covering the optimization
// horizon starting at now.
type WeatherModel interface {
	Forecast(ctx context.Context, now time.Time) ([]model.WeatherRecord, error)
}

// Deriver derives forecast variables from one weather timestep.
type Deriver interface {
	Derive(ts time.Time, raw map[string]float64) (model.ForecastRecord, error)
}

// WeatherFunc adapts a function to WeatherModel.
type WeatherFunc func(ctx context.Context, now time.Time) ([]model.WeatherRecord, error)

func (f WeatherFunc) Forecast(ctx context.Context, now time.Time) ([]model.WeatherRecord, error) {
	return f(ctx, now)
}

// DeriverFunc adapts a function to Deriver.
type DeriverFunc func(ts time.Time, raw map[string]float64) (model.ForecastRecord, error)

func (f DeriverFunc) Derive(ts time.Time, raw map[string]float64) (model.ForecastRecord, error) {
	return f(ts, raw)
}
