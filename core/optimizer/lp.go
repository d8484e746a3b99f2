package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/econdispatch/core/model"
)

// ErrInfeasible indicates the demand cannot be met within unit capacities.
var ErrInfeasible = errors.New("lp infeasible")

// UnitConfig describes one dispatchable component. Capacity and cost may be
// fixed or read from the optimization parameters.
type UnitConfig struct {
	Component     string  `json:"component"`
	Demand        string  `json:"demand"`
	Capacity      float64 `json:"capacity"`
	CapacityParam string  `json:"capacity_param"`
	Cost          float64 `json:"cost"`
	CostParam     string  `json:"cost_param"`
}

// LPConfig configures the merit-order optimizer.
type LPConfig struct {
	Units []UnitConfig `json:"units"`
	// Step selects the forecast record to dispatch against.
	Step      int     `json:"step"`
	Tolerance float64 `json:"tolerance"`
}

// LP allocates each demand forecast to the units serving it at minimum
// total cost, subject to 0 <= load <= capacity.
type LP struct {
	cfg LPConfig
}

// NewLP validates cfg and returns the optimizer.
func NewLP(cfg LPConfig) (*LP, error) {
	if len(cfg.Units) == 0 {
		return nil, errors.New("lp: at least one unit required")
	}
	seen := map[string]bool{}
	for i, u := range cfg.Units {
		if u.Component == "" || u.Demand == "" {
			return nil, fmt.Errorf("lp: unit %d needs component and demand", i)
		}
		if seen[u.Component] {
			return nil, fmt.Errorf("lp: duplicate unit %s", u.Component)
		}
		seen[u.Component] = true
	}
	if cfg.Step < 0 {
		return nil, errors.New("lp: step must not be negative")
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = 1e-6
	}
	return &LP{cfg: cfg}, nil
}

// solveLP minimizes costs·x subject to 0 <= x <= caps and, for each demand
// group g, the sum of x over members[g] equal to demand[g].
func solveLP(costs, caps []float64, members [][]int, demand []float64) ([]float64, error) {
	n := len(costs)
	g := mat.NewDense(2*n, n, nil)
	h := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		g.Set(i, i, 1)
		h[i] = caps[i]
		g.Set(n+i, i, -1)
	}
	a := mat.NewDense(len(members), n, nil)
	for row, idx := range members {
		for _, i := range idx {
			a.Set(row, i, 1)
		}
	}
	cStd, aStd, bStd := lp.Convert(costs, g, h, a, demand)
	_, sol, err := lp.Simplex(cStd, aStd, bStd, 1e-10, nil)
	if err != nil {
		return nil, err
	}
	// Convert splits x into positive and negative parts.
	x := make([]float64, n)
	for i := range x {
		x[i] = sol[i] - sol[n+i]
	}
	return x, nil
}

// lpSolve points to the function used to solve the LP. Tests override it to
// simulate solver failures.
var lpSolve = solveLP

func (o *LP) Optimize(ctx context.Context, _ time.Time, forecasts []model.ForecastRecord, params model.Parameters) (model.Allocation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if o.cfg.Step >= len(forecasts) {
		return nil, fmt.Errorf("lp: no forecast for step %d (%d records)", o.cfg.Step, len(forecasts))
	}
	rec := forecasts[o.cfg.Step]

	n := len(o.cfg.Units)
	costs := make([]float64, n)
	caps := make([]float64, n)
	groupIndex := map[string]int{}
	var members [][]int
	var demand []float64
	for i, u := range o.cfg.Units {
		var err error
		if caps[i], err = value(params, u.CapacityParam, u.Capacity); err != nil {
			return nil, fmt.Errorf("unit %s capacity: %w", u.Component, err)
		}
		if costs[i], err = value(params, u.CostParam, u.Cost); err != nil {
			return nil, fmt.Errorf("unit %s cost: %w", u.Component, err)
		}
		gi, ok := groupIndex[u.Demand]
		if !ok {
			d, found := rec[u.Demand]
			if !found {
				return nil, fmt.Errorf("lp: forecast variable %q missing", u.Demand)
			}
			if d < 0 {
				d = 0
			}
			gi = len(members)
			groupIndex[u.Demand] = gi
			members = append(members, nil)
			demand = append(demand, d)
		}
		members[gi] = append(members[gi], i)
	}

	for gi, idx := range members {
		var total float64
		for _, i := range idx {
			total += caps[i]
		}
		if demand[gi] > total+o.cfg.Tolerance {
			return nil, fmt.Errorf("%w: demand %.3f exceeds capacity %.3f", ErrInfeasible, demand[gi], total)
		}
	}

	x, err := lpSolve(costs, caps, members, demand)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return nil, fmt.Errorf("%w: %v", ErrInfeasible, err)
		}
		return nil, fmt.Errorf("lp solve: %w", err)
	}

	alloc := make(model.Allocation, n)
	for i, u := range o.cfg.Units {
		v := math.Max(0, math.Min(x[i], caps[i]))
		if math.Abs(v) < o.cfg.Tolerance {
			v = 0
		}
		alloc[u.Component] = v
	}
	for gi, idx := range members {
		var sum float64
		for _, i := range idx {
			sum += alloc[o.cfg.Units[i].Component]
		}
		if math.Abs(sum-demand[gi]) > 1e-3 {
			return alloc, ErrInfeasible
		}
	}
	return alloc, nil
}

// value reads key from params when set, falling back to def.
func value(params model.Parameters, key string, def float64) (float64, error) {
	if key == "" {
		return def, nil
	}
	raw, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("parameter %q missing", key)
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("parameter %q is %T, want a number", key, raw)
}
