package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/econdispatch/core/metrics"
	"github.com/kilianp07/econdispatch/infra/logger"
)

// InfluxConfig holds the InfluxDB connection settings.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes optimization events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordOptimization writes one run point and one allocation point per
// component.
func (s *InfluxSink) RecordOptimization(rec coremetrics.OptimizationRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("optimization_run").
		AddTag("run_id", rec.RunID).
		AddTag("component", "orchestrator").
		AddField("success", rec.Success).
		AddField("duration_ms", round3(rec.Duration.Seconds()*1000)).
		AddField("components", len(rec.Allocation)).
		SetTime(rec.Time)
	if rec.Error != "" {
		p = p.AddField("error", rec.Error)
	}
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		return err
	}
	for name, v := range rec.Allocation {
		ap := write.NewPointWithMeasurement("component_allocation").
			AddTag("run_id", rec.RunID).
			AddTag("component", name).
			AddField("load", round3(v)).
			SetTime(rec.Time)
		if err := s.writeAPI.WritePoint(ctx, ap); err != nil {
			return err
		}
	}
	return nil
}

// RecordProviderFailure writes an isolated provider failure.
func (s *InfluxSink) RecordProviderFailure(ev coremetrics.ProviderFailure) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("provider_failure").
		AddTag("run_id", ev.RunID).
		AddTag("provider", ev.Provider).
		AddTag("kind", ev.Kind).
		AddField("error", ev.Error).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordCommand writes a command delivery result.
func (s *InfluxSink) RecordCommand(ev coremetrics.CommandRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("device_command").
		AddTag("device", ev.Device).
		AddField("delivered", ev.Delivered).
		AddField("latency_ms", round3(ev.Latency.Seconds()*1000)).
		SetTime(ev.Time)
	if ev.Error != "" {
		p = p.AddField("error", ev.Error)
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client resources.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
