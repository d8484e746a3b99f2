package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/econdispatch/core/model"
)

// FileConfig configures the File weather model.
type FileConfig struct {
	Path string `json:"path"`
	// Horizon limits the returned records to [now-Lookback, now+Horizon).
	// Zero means no limit.
	Horizon  time.Duration `json:"horizon"`
	Lookback time.Duration `json:"lookback"`
}

type fileRecord struct {
	Timestamp string             `json:"timestamp" yaml:"timestamp"`
	Values    map[string]float64 `json:"values" yaml:"values"`
}

// File serves weather records read once from a JSON or YAML file.
type File struct {
	cfg     FileConfig
	records []model.WeatherRecord
}

// NewFile loads and sorts the records of cfg.Path. Timestamps use RFC 3339.
func NewFile(cfg FileConfig) (*File, error) {
	b, err := os.ReadFile(cfg.Path)
	if err != nil {
		return nil, err
	}
	var raw []fileRecord
	switch strings.ToLower(filepath.Ext(cfg.Path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &raw)
	case ".json":
		err = json.Unmarshal(b, &raw)
	default:
		return nil, fmt.Errorf("unsupported weather file format: %s", cfg.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("decode weather file: %w", err)
	}
	recs := make([]model.WeatherRecord, 0, len(raw))
	for i, r := range raw {
		ts, err := time.Parse(time.RFC3339, r.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("weather record %d: %w", i, err)
		}
		recs = append(recs, model.WeatherRecord{Timestamp: ts, Values: r.Values})
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Timestamp.Before(recs[j].Timestamp) })
	return &File{cfg: cfg, records: recs}, nil
}

func (f *File) Forecast(ctx context.Context, now time.Time) ([]model.WeatherRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := now.Add(-f.cfg.Lookback)
	var out []model.WeatherRecord
	for _, r := range f.records {
		if r.Timestamp.Before(start) {
			continue
		}
		if f.cfg.Horizon > 0 && !r.Timestamp.Before(now.Add(f.cfg.Horizon)) {
			break
		}
		vals := make(map[string]float64, len(r.Values))
		for k, v := range r.Values {
			vals[k] = v
		}
		out = append(out, model.WeatherRecord{Timestamp: r.Timestamp, Values: vals})
	}
	return out, nil
}
