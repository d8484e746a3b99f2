package app

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/kilianp07/econdispatch/api/components"
	"github.com/kilianp07/econdispatch/api/optimizations"
	"github.com/kilianp07/econdispatch/config"
	"github.com/kilianp07/econdispatch/core/events"
	coremetrics "github.com/kilianp07/econdispatch/core/metrics"
	"github.com/kilianp07/econdispatch/core/model"
	coremon "github.com/kilianp07/econdispatch/core/monitoring"
	coremqtt "github.com/kilianp07/econdispatch/core/mqtt"
	"github.com/kilianp07/econdispatch/core/system"
	"github.com/kilianp07/econdispatch/infra/logger"
	"github.com/kilianp07/econdispatch/infra/metrics"
	"github.com/kilianp07/econdispatch/infra/monitoring"
	"github.com/kilianp07/econdispatch/infra/mqtt"
	"github.com/kilianp07/econdispatch/internal/eventbus"
)

// Service drives the orchestrator: it feeds live inputs into the System on
// every tick and delivers the commands of each optimizer run.
type Service struct {
	cfg        *config.Config
	asm        *Assembly
	bus        *eventbus.Bus
	sink       coremetrics.MetricsSink
	publisher  coremqtt.Publisher
	inputs     coremqtt.InputSource
	disconnect func()
	log        logger.Logger
	now        func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithPublisher replaces the MQTT command publisher.
func WithPublisher(p coremqtt.Publisher) Option { return func(s *Service) { s.publisher = p } }

// WithInputSource replaces the MQTT live input source.
func WithInputSource(src coremqtt.InputSource) Option { return func(s *Service) { s.inputs = src } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	log := logger.New("service")
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	asm, err := Assemble(cfg, logger.New("system"))
	if err != nil {
		return nil, err
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = asm.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	bus := eventbus.New(eventbus.WithBuffer(64))
	asm.System.SetBus(bus)

	s := &Service{cfg: cfg, asm: asm, bus: bus, sink: sink, log: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if cfg.MQTT.Enabled() && (s.publisher == nil || s.inputs == nil) {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = asm.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		s.disconnect = client.Disconnect
		if s.publisher == nil {
			s.publisher = client
		}
		if s.inputs == nil {
			s.inputs = client
		}
	}
	return s, nil
}

// System returns the orchestrator driven by the service.
func (s *Service) System() *system.System { return s.asm.System }

// Bus returns the event bus the orchestrator publishes on.
func (s *Service) Bus() eventbus.EventBus { return s.bus }

// Handlers returns the HTTP handlers mounted next to /metrics.
func (s *Service) Handlers() map[string]http.Handler {
	h := map[string]http.Handler{components.Path: components.NewStatusHandler(s.asm.System)}
	if s.asm.Debug != nil {
		h[optimizations.Path] = optimizations.NewHandler(s.asm.Debug.Store(), s.cfg.Debug.APIToken)
	}
	return h
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	defer coremon.Recover()
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr, s.Handlers()); err != nil {
				s.log.Errorf("prom server: %v", err)
				coremon.Capture("metrics", err)
			}
		}()
	}

	ticker := time.NewTicker(s.cfg.System.TickPeriod())
	defer ticker.Stop()
	s.Step(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Step(ctx)
		}
	}
}

// Step performs one tick at the current time in the configured location and
// delivers the resulting commands.
func (s *Service) Step(ctx context.Context) system.TickResult {
	now := s.now().In(s.asm.Location)
	var inputs model.Inputs
	if s.inputs != nil {
		inputs = s.inputs.Snapshot()
	}
	res, err := s.asm.System.Tick(ctx, now, inputs)
	if err != nil {
		coremon.Capture("system", err, "run_id", res.RunID)
		return res
	}
	for _, f := range res.Failures {
		s.log.Warnw("provider failure", map[string]any{"run_id": res.RunID, "provider": f.Provider, "kind": f.Kind, "error": f.Err.Error()})
	}
	if res.Fired {
		s.deliver(ctx, res.Commands)
	}
	return res
}

func (s *Service) deliver(ctx context.Context, cmds model.Commands) {
	devices := make([]string, 0, len(cmds))
	for d := range cmds {
		devices = append(devices, d)
	}
	sort.Strings(devices)
	if s.publisher == nil {
		if len(devices) > 0 {
			s.log.Debugw("no command transport configured", map[string]any{"devices": devices})
		}
		return
	}
	ackTimeout := s.cfg.MQTT.AckTimeout()
	for _, dev := range devices {
		start := time.Now()
		id, err := s.publisher.Publish(ctx, dev, cmds[dev])
		if err == nil && ackTimeout > 0 {
			var ok bool
			ok, err = s.publisher.WaitForAck(id, ackTimeout)
			if err == nil && !ok {
				err = fmt.Errorf("device %s rejected command %s", dev, id)
			}
		}
		if err != nil {
			s.log.Errorf("deliver %s: %v", dev, err)
		}
		s.bus.Publish(events.CommandEvent{Device: dev, Commands: cmds[dev], Err: err, Latency: time.Since(start)})
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.disconnect != nil {
		s.disconnect()
	}
	s.bus.Close()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	coremon.Flush(2 * time.Second)
	return s.asm.Close()
}
