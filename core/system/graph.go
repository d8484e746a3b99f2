package system

import (
	"fmt"
	"strings"

	"github.com/kilianp07/econdispatch/core/model"
)

// Node is a graph vertex: a registered component and its type tag.
type Node struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Edge is a directed connection carrying one capability.
type Edge struct {
	From  string           `json:"from"`
	To    string           `json:"to"`
	Label model.Capability `json:"label"`
}

// Graph is a directed multigraph of components. Parallel edges between the
// same pair are allowed, one per capability. It is used for introspection
// only and never drives execution order.
type Graph struct {
	nodes []Node
	index map[string]int
	edges []Edge
}

func newGraph() *Graph {
	return &Graph{index: make(map[string]int)}
}

func (g *Graph) addNode(name, typeTag string) {
	if i, ok := g.index[name]; ok {
		g.nodes[i].Type = typeTag
		return
	}
	g.index[name] = len(g.nodes)
	g.nodes = append(g.nodes, Node{Name: name, Type: typeTag})
}

func (g *Graph) addEdge(from, to string, label model.Capability) {
	g.edges = append(g.edges, Edge{From: from, To: to, Label: label})
}

// Nodes returns the nodes in registration order.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Edges returns all edges in creation order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// EdgesBetween returns the edges from one node to another.
func (g *Graph) EdgesBetween(from, to string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.From == from && e.To == to {
			out = append(out, e)
		}
	}
	return out
}

// TypeOf returns the type tag stored on a node.
func (g *Graph) TypeOf(name string) (string, bool) {
	i, ok := g.index[name]
	if !ok {
		return "", false
	}
	return g.nodes[i].Type, true
}

// DOT renders the graph in Graphviz format.
func (g *Graph) DOT() string {
	var b strings.Builder
	b.WriteString("digraph components {\n")
	for _, n := range g.nodes {
		fmt.Fprintf(&b, "  %q [label=%q];\n", n.Name, n.Name+"\n"+n.Type)
	}
	for _, e := range g.edges {
		fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", e.From, e.To, string(e.Label))
	}
	b.WriteString("}\n")
	return b.String()
}

func (g *Graph) clone() *Graph {
	cp := &Graph{
		nodes: g.Nodes(),
		edges: g.Edges(),
		index: make(map[string]int, len(g.index)),
	}
	for k, v := range g.index {
		cp.index[k] = v
	}
	return cp
}
