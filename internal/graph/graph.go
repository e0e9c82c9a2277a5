// Package graph holds the labelled directed graph handed between the store,
// the invokers and the visualizer. Node labels are the store's vertex ids;
// gonum works on the int64 ids underneath.
package graph

import (
	"sort"
	"strings"

	"graph_router/pkg"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Edge is a labelled source -> target pair
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is a directed graph without self loops or parallel edges
type Graph struct {
	g      *simple.DirectedGraph
	ids    map[string]int64
	labels map[int64]string
}

// New creates an empty graph
func New() *Graph {
	return &Graph{
		g:      simple.NewDirectedGraph(),
		ids:    make(map[string]int64),
		labels: make(map[int64]string),
	}
}

// FromEdges builds a graph from an edge list. Self loops keep their node but
// drop the edge.
func FromEdges(edges []Edge) *Graph {
	g := New()
	for _, e := range edges {
		g.AddEdge(e.Source, e.Target)
	}
	return g
}

// FromRecords builds a graph from store edge records
func FromRecords(records []pkg.EdgeRecord) *Graph {
	g := New()
	for _, r := range records {
		g.AddEdge(r.Source, r.Target)
	}
	return g
}

// AddNode adds label if missing and returns its id
func (g *Graph) AddNode(label string) int64 {
	if id, ok := g.ids[label]; ok {
		return id
	}
	n := g.g.NewNode()
	g.g.AddNode(n)
	g.ids[label] = n.ID()
	g.labels[n.ID()] = label
	return n.ID()
}

// AddEdge adds source -> target, creating nodes as needed
func (g *Graph) AddEdge(source, target string) {
	u := g.AddNode(source)
	v := g.AddNode(target)
	if u == v {
		return
	}
	g.g.SetEdge(g.g.NewEdge(simple.Node(u), simple.Node(v)))
}

// Directed exposes the underlying gonum graph
func (g *Graph) Directed() *simple.DirectedGraph {
	return g.g
}

// Undirected is an undirected view over the same nodes and edges
func (g *Graph) Undirected() gonum.Undirected {
	return gonum.Undirect{G: g.g}
}

// ID returns the gonum id of label
func (g *Graph) ID(label string) (int64, bool) {
	id, ok := g.ids[label]
	return id, ok
}

// Resolve finds the label a user meant: the exact label, or the single label
// whose key after the collection prefix matches ("A" for "nodes/A").
func (g *Graph) Resolve(name string) (string, bool) {
	if _, ok := g.ids[name]; ok {
		return name, true
	}
	match := ""
	for label := range g.ids {
		if i := strings.LastIndexByte(label, '/'); i >= 0 && label[i+1:] == name {
			if match != "" {
				return "", false
			}
			match = label
		}
	}
	return match, match != ""
}

// Label returns the label of a gonum id
func (g *Graph) Label(id int64) string {
	return g.labels[id]
}

// Labels maps gonum nodes to their labels
func (g *Graph) Labels(nodes []gonum.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = g.labels[n.ID()]
	}
	return out
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.ids)
}

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int {
	return g.g.Edges().Len()
}

// Nodes returns all labels, sorted
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.ids))
	for label := range g.ids {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// Edges returns the edge list sorted by source then target
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.EdgeCount())
	it := g.g.Edges()
	for it.Next() {
		e := it.Edge()
		out = append(out, Edge{Source: g.labels[e.From().ID()], Target: g.labels[e.To().ID()]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// Successors returns the labels reachable over one outgoing edge, sorted
func (g *Graph) Successors(label string) []string {
	return g.neighbours(label, g.g.From)
}

// Predecessors returns the labels with an edge into label, sorted
func (g *Graph) Predecessors(label string) []string {
	return g.neighbours(label, g.g.To)
}

func (g *Graph) neighbours(label string, next func(int64) gonum.Nodes) []string {
	id, ok := g.ids[label]
	if !ok {
		return nil
	}
	out := g.Labels(gonum.NodesOf(next(id)))
	sort.Strings(out)
	return out
}

// Subgraph returns the graph induced by labels; unknown labels are ignored
func (g *Graph) Subgraph(labels []string) *Graph {
	keep := make(map[string]bool, len(labels))
	for _, l := range labels {
		if _, ok := g.ids[l]; ok {
			keep[l] = true
		}
	}

	sub := New()
	for _, l := range sortedKeys(keep) {
		sub.AddNode(l)
	}
	for _, e := range g.Edges() {
		if keep[e.Source] && keep[e.Target] {
			sub.AddEdge(e.Source, e.Target)
		}
	}
	return sub
}

// Reverse returns a copy with every edge flipped
func (g *Graph) Reverse() *Graph {
	rev := New()
	for _, l := range g.Nodes() {
		rev.AddNode(l)
	}
	for _, e := range g.Edges() {
		rev.AddEdge(e.Target, e.Source)
	}
	return rev
}

// MarshalJSON encodes the graph as sorted node and edge lists
func (g *Graph) MarshalJSON() ([]byte, error) {
	return pkg.JSON.Marshal(struct {
		Nodes []string `json:"nodes"`
		Edges []Edge   `json:"edges"`
	}{Nodes: g.Nodes(), Edges: g.Edges()})
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
