// Package chiller models a centrifugal electric chiller whose curve
// coefficients are supplied statically.
package chiller

import (
	"fmt"
	"time"

	"github.com/kilianp07/econdispatch/core/component"
	"github.com/kilianp07/econdispatch/core/factory"
	"github.com/kilianp07/econdispatch/core/model"
)

const TypeTag = "centrifugal_chiller"

// Compressor control types.
const (
	IGV = "IGV"
	VSD = "VSD"
)

// Config holds the static curve of the chiller.
type Config struct {
	ChillerType string      `json:"chiller_type"`
	Mat         [][]float64 `json:"mat_chiller"`
	Xmax        float64     `json:"xmax_chiller"`
	Xmin        float64     `json:"xmin_chiller"`
}

// Chiller implements component.Component.
type Chiller struct {
	component.Base
	cfg Config
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

// New returns a chiller. An empty type defaults to IGV.
func New(name string, cfg Config) (*Chiller, error) {
	switch cfg.ChillerType {
	case "":
		cfg.ChillerType = IGV
	case IGV, VSD:
	default:
		return nil, fmt.Errorf("chiller: unknown chiller_type %q", cfg.ChillerType)
	}
	return &Chiller{
		Base: component.NewBase(name, []model.Capability{model.ChilledWater}, []model.Capability{model.Electricity}),
		cfg:  cfg,
	}, nil
}

func (c *Chiller) UpdateParameters(time.Time, model.Inputs) {}

func (c *Chiller) OptimizationParameters() (model.Parameters, error) {
	suffix := c.cfg.ChillerType
	return model.Parameters{
		"mat_chiller" + suffix:  c.cfg.Mat,
		"xmax_chiller" + suffix: c.cfg.Xmax,
		"xmin_chiller" + suffix: c.cfg.Xmin,
	}, nil
}

// Commands is always empty; the chiller follows its own controls.
func (c *Chiller) Commands(model.Allocation) model.Commands { return model.Commands{} }
