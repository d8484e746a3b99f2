// Package components exposes the registered components and their capability
// graph over HTTP.
package components

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kilianp07/econdispatch/core/system"
)

// Path is where the handler is mounted.
const Path = "/api/components"

// Topology is the part of the orchestrator the handler reads.
type Topology interface {
	Graph() *system.Graph
	NextOptimization() (time.Time, bool)
}

// Status is the JSON document served by the handler.
type Status struct {
	Components       []system.Node `json:"components"`
	Connections      []system.Edge `json:"connections"`
	NextOptimization *time.Time    `json:"next_optimization,omitempty"`
}

// NewStatusHandler serves GET /api/components. With ?format=dot the graph is
// rendered in Graphviz format instead.
func NewStatusHandler(topo Topology) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		g := topo.Graph()
		if r.URL.Query().Get("format") == "dot" {
			w.Header().Set("Content-Type", "text/vnd.graphviz")
			_, _ = w.Write([]byte(g.DOT()))
			return
		}
		st := Status{Components: g.Nodes(), Connections: g.Edges()}
		if st.Components == nil {
			st.Components = []system.Node{}
		}
		if st.Connections == nil {
			st.Connections = []system.Edge{}
		}
		if next, ok := topo.NextOptimization(); ok {
			st.NextOptimization = &next
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(st); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
