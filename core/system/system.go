package system

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/econdispatch/core/component"
	"github.com/kilianp07/econdispatch/core/events"
	"github.com/kilianp07/econdispatch/core/forecast"
	"github.com/kilianp07/econdispatch/core/logger"
	"github.com/kilianp07/econdispatch/core/model"
	"github.com/kilianp07/econdispatch/core/optimizer"
	"github.com/kilianp07/econdispatch/core/scheduler"
	"github.com/kilianp07/econdispatch/internal/eventbus"
)

// Config controls the orchestration behavior.
type Config struct {
	Interval   time.Duration
	Policy     scheduler.AdvancePolicy
	StrictKeys bool
}

// DebugSink receives every optimizer run. Record must not block for long;
// failures are the sink's concern.
type DebugSink interface {
	Record(runID string, now time.Time, alloc model.Allocation, forecasts []model.ForecastRecord)
}

// TickResult describes one call to Tick.
type TickResult struct {
	Fired      bool
	RunID      string
	Commands   model.Commands
	Allocation model.Allocation
	Failures   []ProviderError
	// NextOptimization is the next scheduled run after this tick.
	NextOptimization time.Time
}

// System is the orchestrator. All methods are safe for concurrent use; a
// single mutex serializes ticks, assembly and introspection.
type System struct {
	mu        sync.Mutex
	cfg       Config
	log       logger.Logger
	registry  *Registry
	graph     *Graph
	derivers  []namedDeriver
	weather   forecast.WeatherModel
	optimizer optimizer.Optimizer
	schedule  *scheduler.Schedule
	sink      DebugSink
	bus       eventbus.EventBus
}

// New returns an empty System. The optimizer and weather model are
// required.
func New(cfg Config, opt optimizer.Optimizer, weather forecast.WeatherModel, log logger.Logger) (*System, error) {
	if opt == nil {
		return nil, errors.New("system: optimizer required")
	}
	if weather == nil {
		return nil, errors.New("system: weather model required")
	}
	sched, err := scheduler.New(cfg.Interval, cfg.Policy)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &System{
		cfg:       cfg,
		log:       log,
		registry:  newRegistry(),
		graph:     newGraph(),
		weather:   weather,
		optimizer: opt,
		schedule:  sched,
	}, nil
}

// SetDebugSink installs the sink recording optimizer runs. Nil disables it.
func (s *System) SetDebugSink(d DebugSink) {
	s.mu.Lock()
	s.sink = d
	s.mu.Unlock()
}

// SetBus installs the event bus. Nil disables events.
func (s *System) SetBus(b eventbus.EventBus) {
	s.mu.Lock()
	s.bus = b
	s.mu.Unlock()
}

func (s *System) publish(ev eventbus.Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}

// AddComponent registers c under its name with the given type tag. A
// previous component with the same name is replaced in its slot.
func (s *System) AddComponent(c component.Component, typeTag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := c.Name()
	old, replaced := s.registry.add(c, typeTag)
	s.graph.addNode(name, typeTag)
	if replaced {
		s.log.Warnw("duplicate component name, replacing", map[string]any{
			"name": name, "old_type": old, "new_type": typeTag,
		})
		s.publish(events.DuplicateComponentEvent{Name: name, OldType: old, NewType: typeTag, Replaced: time.Now()})
		return
	}
	s.log.Debugf("registered component %s (%s)", name, typeTag)
}

// Component returns the component registered under name.
func (s *System) Component(name string) (component.Component, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Get(name)
}

// ComponentNames lists the registered components in registration order.
func (s *System) ComponentNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Names()
}

// Connect adds edges from one component to another and returns how many
// were created. With ioType set exactly one edge with that label is added
// and capabilities are not checked. Otherwise one edge is added for each
// capability that from outputs and to accepts, in to's input order.
func (s *System) Connect(from, to string, ioType model.Capability) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.registry.Get(from)
	if !ok {
		return 0, fmt.Errorf("connect %s -> %s: %w: %s", from, to, ErrComponentNotFound, from)
	}
	dst, ok := s.registry.Get(to)
	if !ok {
		return 0, fmt.Errorf("connect %s -> %s: %w: %s", from, to, ErrComponentNotFound, to)
	}
	if ioType != "" {
		s.graph.addEdge(from, to, ioType)
		return 1, nil
	}
	outputs := map[model.Capability]bool{}
	for _, c := range src.OutputCapabilities() {
		outputs[c] = true
	}
	n := 0
	for _, c := range dst.InputCapabilities() {
		if outputs[c] {
			s.graph.addEdge(from, to, c)
			n++
		}
	}
	if n == 0 {
		s.log.Debugf("no shared capability between %s and %s", from, to)
	}
	return n, nil
}

// Graph returns a snapshot of the capability graph.
func (s *System) Graph() *Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.clone()
}

// NextOptimization returns the next scheduled run and whether the schedule
// is armed.
func (s *System) NextOptimization() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule.Next()
}

// Tick updates every component from the live inputs and, when the schedule
// is due, runs the optimizer and returns the resulting commands. When the
// optimizer does not fire the commands are empty. Weather and optimizer
// failures abort the run; the schedule has already advanced so the next
// interval retries.
func (s *System) Tick(ctx context.Context, now time.Time, inputs model.Inputs) (TickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.registry.entries {
		e.comp.UpdateParameters(now, inputs)
	}

	res := TickResult{Commands: model.Commands{}}
	if !s.schedule.Due(now) {
		res.NextOptimization, _ = s.schedule.Next()
		return res, nil
	}
	res.Fired = true
	res.RunID = uuid.NewString()
	res.NextOptimization, _ = s.schedule.Next()
	start := time.Now()
	s.log.Infof("optimization %s at %s", res.RunID, now.Format(time.RFC3339))

	fail := func(err error) (TickResult, error) {
		s.log.Errorf("optimization %s: %v", res.RunID, err)
		s.publish(events.OptimizationEvent{RunID: res.RunID, Time: now, Duration: time.Since(start), Err: err})
		return res, err
	}

	forecasts, fails, err := s.forecasts(ctx, now)
	if err != nil {
		return fail(fmt.Errorf("weather forecast: %w", err))
	}
	res.Failures = append(res.Failures, fails...)

	params, fails, err := s.parameters()
	res.Failures = append(res.Failures, fails...)
	if err != nil {
		return fail(fmt.Errorf("parameters: %w", err))
	}

	alloc, err := s.optimizer.Optimize(ctx, now, forecasts, params)
	if err != nil {
		return fail(fmt.Errorf("optimize: %w", err))
	}
	if alloc == nil {
		alloc = model.Allocation{}
	}
	res.Allocation = alloc

	if s.sink != nil {
		s.sink.Record(res.RunID, now, alloc, forecasts)
	}

	cmds, fails := s.commands(alloc)
	res.Commands = cmds
	res.Failures = append(res.Failures, fails...)

	for _, f := range res.Failures {
		s.publish(events.ProviderFailureEvent{RunID: res.RunID, Provider: f.Provider, Kind: f.Kind, Err: f.Err})
	}
	s.publish(events.OptimizationEvent{RunID: res.RunID, Time: now, Duration: time.Since(start), Allocation: alloc})
	s.log.Infof("optimization %s dispatched %d devices, next at %s", res.RunID, len(cmds), res.NextOptimization.Format(time.RFC3339))
	return res, nil
}
