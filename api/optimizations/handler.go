// Package optimizations exposes the recorded optimizer runs over HTTP.
package optimizations

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/econdispatch/core/debugsink"
)

// Path is where the handler is mounted.
const Path = "/api/optimizations"

// NewHandler returns an HTTP handler exposing debug records via
// GET /api/optimizations?start=&end=&component=&run_id=. Times are RFC3339.
// Requests must include an Authorization header with "Bearer <token>" when
// token is non-empty.
func NewHandler(store debugsink.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q, err := parseQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []debugsink.Record{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func parseQuery(r *http.Request) (debugsink.Query, error) {
	v := r.URL.Query()
	q := debugsink.Query{Component: v.Get("component"), RunID: v.Get("run_id")}
	for _, f := range []struct {
		key string
		dst *time.Time
	}{{"start", &q.Start}, {"end", &q.End}} {
		s := v.Get(f.key)
		if s == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, fmt.Errorf("invalid %s: %w", f.key, err)
		}
		*f.dst = t
	}
	return q, nil
}
