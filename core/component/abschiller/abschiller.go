// Package abschiller models an absorption chiller driven by heat.
package abschiller

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/econdispatch/core/component"
	"github.com/kilianp07/econdispatch/core/factory"
	"github.com/kilianp07/econdispatch/core/fit"
	"github.com/kilianp07/econdispatch/core/model"
)

const (
	TypeTag = "absorption_chiller"

	DefaultCapacity = 464.0

	DefaultTcho  = 45.8
	DefaultTcdi  = 83.7
	DefaultTgeni = 335.0
	DefaultQin   = 8.68
	DefaultTchr  = 55.0

	specificHeatWater = 4.184 // kJ/kg-C
	densityWater      = 1.0   // kg/L

	tonsToMMBtu = 3.517 / 293.1
	// Samples at or above this cooling output (mmBtu/h) are excluded from the fit.
	fitLimit = 8.0

	seriesCooling = "Qch(tons)"
	seriesHeat    = "Qin(MMBtu/h)"
)

// Config holds absorption chiller settings. History takes precedence over
// HistoryFile.
type Config struct {
	HistoryFile string               `json:"history_data_file"`
	History     map[string][]float64 `json:"history"`
	Capacity    float64              `json:"capacity"`
}

// State is the operating point taken from the last live inputs.
type State struct {
	Tcho  float64 // chilled water supply, F
	Tcdi  float64 // condenser water inlet, F
	Tgeni float64 // generator inlet, F
	Qin   float64 // generator heat input, mmBtu/h
	Tchr  float64 // chilled water return, F
}

// Chiller implements component.Component.
type Chiller struct {
	component.Base
	capacity float64
	cooling  []float64
	heat     []float64
	state    State
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

func defaultState() State {
	return State{Tcho: DefaultTcho, Tcdi: DefaultTcdi, Tgeni: DefaultTgeni, Qin: DefaultQin, Tchr: DefaultTchr}
}

// New loads the chiller history and returns the component.
func New(name string, cfg Config) (*Chiller, error) {
	h := component.History(cfg.History)
	if h == nil {
		if cfg.HistoryFile == "" {
			return nil, errors.New("abschiller: history or history_data_file required")
		}
		var err error
		if h, err = component.LoadHistory(cfg.HistoryFile); err != nil {
			return nil, err
		}
	}
	cooling, err := h.Series(seriesCooling)
	if err != nil {
		return nil, err
	}
	heat, err := h.Series(seriesHeat)
	if err != nil {
		return nil, err
	}
	if len(cooling) != len(heat) {
		return nil, fmt.Errorf("abschiller: %d cooling samples for %d heat samples", len(cooling), len(heat))
	}
	capacity := cfg.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	return &Chiller{
		Base:     component.NewBase(name, []model.Capability{model.ChilledWater}, []model.Capability{model.Heat}),
		capacity: capacity,
		cooling:  cooling,
		heat:     heat,
		state:    defaultState(),
	}, nil
}

func (c *Chiller) UpdateParameters(_ time.Time, in model.Inputs) {
	c.state = State{
		Tcho:  in.Get("Tcho", DefaultTcho),
		Tcdi:  in.Get("Tcdi", DefaultTcdi),
		Tgeni: in.Get("Tgeni", DefaultTgeni),
		Qin:   in.Get("Qin", DefaultQin),
		Tchr:  in.Get("Tchr", DefaultTchr),
	}
}

// State returns the operating point seen on the last update.
func (c *Chiller) State() State { return c.state }

func (c *Chiller) OptimizationParameters() (model.Parameters, error) {
	return c.cache.Get(c.compute)
}

// Commands converts the allocated load (mmBtu/h) into a chilled water
// volume flow setpoint.
func (c *Chiller) Commands(alloc model.Allocation) model.Commands {
	load, ok := alloc[c.Name()]
	if !ok {
		return model.Commands{}
	}
	var flow float64
	if dt := c.state.Tchr - c.state.Tcho; dt != 0 {
		kw := load * 1000 / 3.412
		flow = kw / (specificHeatWater * dt) / densityWater
	}
	return model.Commands{c.Name(): {"vol_flow_rate_setpoint_abs": flow}}
}

func (c *Chiller) compute() (model.Parameters, error) {
	var xs, ys []float64
	for i, tons := range c.cooling {
		q := tons * tonsToMMBtu
		if q < fitLimit {
			xs = append(xs, q)
			ys = append(ys, c.heat[i])
		}
	}
	b0, b1, err := fit.Linear(xs, ys)
	if err != nil {
		return nil, fmt.Errorf("abschiller fit: %w", err)
	}
	return model.Parameters{
		"xmax_abschiller": floats.Max(xs),
		"xmin_abschiller": floats.Min(xs),
		"mat_abschiller":  []float64{b0, b1},
		"cap_abs_chiller": c.capacity,
	}, nil
}
