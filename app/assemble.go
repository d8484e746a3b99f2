package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/econdispatch/config"
	"github.com/kilianp07/econdispatch/core/component"
	"github.com/kilianp07/econdispatch/core/debugsink"
	"github.com/kilianp07/econdispatch/core/forecast"
	"github.com/kilianp07/econdispatch/core/optimizer"
	"github.com/kilianp07/econdispatch/core/scheduler"
	"github.com/kilianp07/econdispatch/core/system"
	"github.com/kilianp07/econdispatch/infra/logger"

	// Built-in variants register themselves with the module registries.
	_ "github.com/kilianp07/econdispatch/core/component/abschiller"
	_ "github.com/kilianp07/econdispatch/core/component/boiler"
	_ "github.com/kilianp07/econdispatch/core/component/chiller"
	_ "github.com/kilianp07/econdispatch/infra/weather"
)

// Assembly is a System built from configuration together with the pieces
// the service needs alongside it.
type Assembly struct {
	System   *system.System
	Location *time.Location
	// Debug is nil when no debug store is configured.
	Debug *debugsink.Sink
}

// Close releases the debug store.
func (a *Assembly) Close() error {
	if a.Debug == nil {
		return nil
	}
	return a.Debug.Close()
}

// Assemble builds the optimizer, weather model, components, forecast
// providers and connections described by cfg. Component and provider
// construction errors are collected and returned together.
func Assemble(cfg *config.Config, log logger.Logger) (*Assembly, error) {
	if log == nil {
		log = logger.NopLogger{}
	}
	sched := cfg.System.Schedule()
	loc, err := sched.LoadLocation()
	if err != nil {
		return nil, fmt.Errorf("location: %w", err)
	}
	policy, err := scheduler.ParsePolicy(sched.Policy)
	if err != nil {
		return nil, err
	}
	weather, err := forecast.NewWeather(cfg.Forecast.Weather)
	if err != nil {
		return nil, fmt.Errorf("weather model: %w", err)
	}
	opt, err := optimizer.New(cfg.Optimizer)
	if err != nil {
		return nil, fmt.Errorf("optimizer: %w", err)
	}
	sys, err := system.New(system.Config{
		Interval:   sched.Interval(),
		Policy:     policy,
		StrictKeys: cfg.System.StrictKeys,
	}, opt, weather, log)
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, mc := range cfg.Components {
		c, err := component.New(mc.Type, mc.Name, mc.Conf)
		if err != nil {
			errs = append(errs, fmt.Errorf("component %s: %w", nameOf(mc), err))
			continue
		}
		sys.AddComponent(c, mc.Type)
	}
	for _, mc := range cfg.Forecast.Models {
		d, err := forecast.NewDeriver(mc)
		if err != nil {
			errs = append(errs, fmt.Errorf("forecast model %s: %w", nameOf(mc), err))
			continue
		}
		sys.AddForecastModel(nameOf(mc), d)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	for _, conn := range cfg.Connections {
		n, err := sys.Connect(conn.From, conn.To, conn.Capability())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if n == 0 {
			log.Warnw("connection created no edge", map[string]any{"from": conn.From, "to": conn.To})
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	asm := &Assembly{System: sys, Location: loc}
	if cfg.Debug.Enabled() {
		store, err := debugsink.New(cfg.Debug.Store)
		if err != nil {
			return nil, fmt.Errorf("debug store: %w", err)
		}
		asm.Debug = debugsink.NewSink(store, logger.New("debugsink"), cfg.Debug.Timeout())
		sys.SetDebugSink(asm.Debug)
	}
	return asm, nil
}

func nameOf(mc config.ModuleConfig) string {
	if mc.Name != "" {
		return mc.Name
	}
	return mc.Type
}
