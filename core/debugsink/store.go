// Package debugsink records every optimizer run (allocation and the
// forecasts it was computed from) so runs can be inspected and charted
// afterwards.
package debugsink

import (
	"context"
	"time"

	"github.com/kilianp07/econdispatch/core/model"
)

// Record captures one optimizer run.
type Record struct {
	Timestamp  time.Time              `json:"timestamp"`
	RunID      string                 `json:"run_id"`
	Allocation model.Allocation       `json:"allocation"`
	Forecasts  []model.ForecastRecord `json:"forecasts"`
}

// Query defines filters for retrieving records. Zero values do not filter.
type Query struct {
	Start     time.Time
	End       time.Time
	Component string
	RunID     string
}

// Match reports whether r passes the query filters.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.Component != "" {
		if _, ok := r.Allocation[q.Component]; !ok {
			return false
		}
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
