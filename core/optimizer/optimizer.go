// Package optimizer defines the contract of the dispatch optimizer and
// provides a merit-order linear program as the reference implementation.
package optimizer

import (
	"context"
	"time"

	"github.com/kilianp07/econdispatch/core/factory"
	"github.com/kilianp07/econdispatch/core/model"
)

// Optimizer computes the load allocation for one optimization run.
type Optimizer interface {
	Optimize(ctx context.Context, now time.Time, forecasts []model.ForecastRecord, params model.Parameters) (model.Allocation, error)
}

// Func adapts a function to Optimizer.
type Func func(ctx context.Context, now time.Time, forecasts []model.ForecastRecord, params model.Parameters) (model.Allocation, error)

func (f Func) Optimize(ctx context.Context, now time.Time, forecasts []model.ForecastRecord, params model.Parameters) (model.Allocation, error) {
	return f(ctx, now, forecasts, params)
}

var registry = factory.NewRegistry[Optimizer]()

// Register adds an optimizer factory.
func Register(typeTag string, f factory.Factory[Optimizer]) error {
	return registry.Register(typeTag, f)
}

// New builds the optimizer described by cfg.
func New(cfg factory.ModuleConfig) (Optimizer, error) {
	return registry.Create(cfg)
}

// Types lists the registered optimizer types.
func Types() []string { return registry.Types() }

func init() {
	_ = Register("lp", func(_ string, conf map[string]any) (Optimizer, error) {
		var c LPConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewLP(c)
	})
}
