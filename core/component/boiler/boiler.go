// Package boiler models a gas boiler producing heated water. Optimization
// parameters come from a three-segment piecewise-linear fit of gas input
// against heat output.
package boiler

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/econdispatch/core/component"
	"github.com/kilianp07/econdispatch/core/factory"
	"github.com/kilianp07/econdispatch/core/fit"
	"github.com/kilianp07/econdispatch/core/model"
)

const (
	TypeTag = "boiler"

	DefaultCapacity = 8.0
	DefaultQbp      = 55.0

	seriesGas  = "boiler_gas_input"
	seriesHeat = "boiler_heat_output"

	// Heat output breakpoints (mmBtu/h) separating the fit segments.
	lowBreak  = 24.0
	highBreak = 45.0
)

// Config holds boiler settings. History takes precedence over HistoryFile.
type Config struct {
	HistoryFile string               `json:"history_data_file"`
	History     map[string][]float64 `json:"history"`
	Capacity    float64              `json:"capacity"`
}

// Boiler implements component.Component.
type Boiler struct {
	component.Base
	capacity float64
	gas      []float64
	heat     []float64
	qbp      float64
	cache    component.ParamCache
}

func init() {
	_ = component.Register(TypeTag, func(name string, conf map[string]any) (component.Component, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return New(name, c)
	})
}

// New loads the boiler history and returns the component.
func New(name string, cfg Config) (*Boiler, error) {
	h := component.History(cfg.History)
	if h == nil {
		if cfg.HistoryFile == "" {
			return nil, errors.New("boiler: history or history_data_file required")
		}
		var err error
		if h, err = component.LoadHistory(cfg.HistoryFile); err != nil {
			return nil, err
		}
	}
	gas, err := h.Series(seriesGas)
	if err != nil {
		return nil, err
	}
	heat, err := h.Series(seriesHeat)
	if err != nil {
		return nil, err
	}
	if len(gas) != len(heat) {
		return nil, fmt.Errorf("boiler: %d gas samples for %d heat samples", len(gas), len(heat))
	}
	capacity := cfg.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	return &Boiler{
		Base:     component.NewBase(name, []model.Capability{model.HeatedWater}, []model.Capability{model.NaturalGas}),
		capacity: capacity,
		gas:      gas,
		heat:     heat,
		qbp:      DefaultQbp,
	}, nil
}

// UpdateParameters records the current heat load (Qbp).
func (b *Boiler) UpdateParameters(_ time.Time, in model.Inputs) {
	b.qbp = in.Get("Qbp", DefaultQbp)
}

// Load returns the heat load seen on the last update.
func (b *Boiler) Load() float64 { return b.qbp }

// SetHistory replaces the training data and invalidates cached parameters.
func (b *Boiler) SetHistory(gas, heat []float64) error {
	if len(gas) != len(heat) {
		return fmt.Errorf("boiler: %d gas samples for %d heat samples", len(gas), len(heat))
	}
	b.gas = append([]float64(nil), gas...)
	b.heat = append([]float64(nil), heat...)
	b.cache.MarkDirty()
	return nil
}

func (b *Boiler) OptimizationParameters() (model.Parameters, error) {
	return b.cache.Get(b.compute)
}

func (b *Boiler) Commands(alloc model.Allocation) model.Commands {
	load, ok := alloc[b.Name()]
	if !ok {
		return model.Commands{}
	}
	return model.Commands{b.Name(): {"boiler_on": load > 0}}
}

func (b *Boiler) compute() (model.Parameters, error) {
	q := append([]float64(nil), b.heat...)
	idx := make([]int, len(q))
	floats.Argsort(q, idx)
	g := make([]float64, len(q))
	for i, j := range idx {
		g[i] = b.gas[j]
	}

	n1 := lastBelow(q, lowBreak)
	n2 := lastBelow(q, highBreak)
	if n1 < 0 || n2 < 0 {
		return nil, fmt.Errorf("%w: boiler history has no output below %v", fit.ErrInsufficientData, lowBreak)
	}
	segs := [3][2]int{{0, n1 + 1}, {n1, n2 + 1}, {n2, len(q)}}

	var intercept, slope, xmin, xmax [3]float64
	for k, s := range segs {
		xs, ys := q[s[0]:s[1]], g[s[0]:s[1]]
		xmax[k] = floats.Max(xs)
		if k == 1 {
			continue
		}
		var err error
		if intercept[k], slope[k], err = fit.Linear(xs, ys); err != nil {
			return nil, fmt.Errorf("boiler segment %d: %w", k, err)
		}
	}
	xmin[0] = floats.Min(q[segs[0][0]:segs[0][1]])
	xmin[1] = xmax[0]
	xmin[2] = xmax[1]

	// The middle segment bridges the two outer fits.
	x1, x2 := xmax[0], xmin[2]
	if x1 == x2 {
		return nil, errors.New("boiler: degenerate middle segment")
	}
	y1 := intercept[0] + slope[0]*x1
	y2 := intercept[2] + slope[2]*x2
	slope[1] = (y2 - y1) / (x2 - x1)
	intercept[1] = y1 - slope[1]*x1

	return model.Parameters{
		"xmin_boiler": xmin[:],
		"xmax_boiler": xmax[:],
		"mat_boiler":  [][]float64{intercept[:], slope[:]},
		"cap_boiler":  b.capacity,
	}, nil
}

// lastBelow returns the last index of the sorted slice holding a value below
// limit, or -1.
func lastBelow(sorted []float64, limit float64) int {
	return sort.SearchFloat64s(sorted, limit) - 1
}
