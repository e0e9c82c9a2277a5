// Package accel is the accelerated graph engine: the store graph is converted
// into a compressed sparse row layout and kernels run partitioned across
// worker goroutines.
package accel

import (
	"sort"

	"graph_router/internal/graph"
	"graph_router/pkg"
)

// CSR is a directed graph in compressed sparse row form. Out-edges of vertex v
// are Targets[Offsets[v]:Offsets[v+1]]; in-edges use InOffsets/Sources.
type CSR struct {
	Labels    []string
	Offsets   []int
	Targets   []int32
	InOffsets []int
	Sources   []int32

	index map[string]int32
}

// FromEdgeList builds a CSR over vertices. Every edge endpoint must be in the
// vertex set and the edge list must not be empty; otherwise a ConversionError.
func FromEdgeList(vertices []string, edges []graph.Edge) (*CSR, error) {
	if len(edges) == 0 {
		return nil, pkg.NewError(pkg.KindConversion, "empty edge list")
	}

	c := &CSR{
		Labels: append([]string(nil), vertices...),
		index:  make(map[string]int32, len(vertices)),
	}
	for i, v := range c.Labels {
		if _, dup := c.index[v]; dup {
			return nil, pkg.Errorf(pkg.KindConversion, "duplicate vertex %q", v)
		}
		c.index[v] = int32(i)
	}

	n := len(c.Labels)
	src := make([]int32, len(edges))
	dst := make([]int32, len(edges))
	for i, e := range edges {
		u, ok := c.index[e.Source]
		if !ok {
			return nil, pkg.Errorf(pkg.KindConversion, "edge source %q is not a vertex", e.Source)
		}
		v, ok := c.index[e.Target]
		if !ok {
			return nil, pkg.Errorf(pkg.KindConversion, "edge target %q is not a vertex", e.Target)
		}
		src[i], dst[i] = u, v
	}

	c.Offsets, c.Targets = compress(n, src, dst)
	c.InOffsets, c.Sources = compress(n, dst, src)
	return c, nil
}

// FromGraph converts the store graph
func FromGraph(g *graph.Graph) (*CSR, error) {
	return FromEdgeList(g.Nodes(), g.Edges())
}

// compress groups to[] by from[] into offset/adjacency arrays, sorted per row
func compress(n int, from, to []int32) ([]int, []int32) {
	offsets := make([]int, n+1)
	for _, u := range from {
		offsets[u+1]++
	}
	for i := 0; i < n; i++ {
		offsets[i+1] += offsets[i]
	}

	adj := make([]int32, len(from))
	next := append([]int(nil), offsets[:n]...)
	for i, u := range from {
		adj[next[u]] = to[i]
		next[u]++
	}
	for v := 0; v < n; v++ {
		row := adj[offsets[v]:offsets[v+1]]
		sort.Slice(row, func(i, j int) bool { return row[i] < row[j] })
	}
	return offsets, adj
}

// NumVertices returns the vertex count
func (c *CSR) NumVertices() int { return len(c.Labels) }

// NumEdges returns the edge count
func (c *CSR) NumEdges() int { return len(c.Targets) }

// Out returns the out-neighbours of v
func (c *CSR) Out(v int32) []int32 { return c.Targets[c.Offsets[v]:c.Offsets[v+1]] }

// In returns the in-neighbours of v
func (c *CSR) In(v int32) []int32 { return c.Sources[c.InOffsets[v]:c.InOffsets[v+1]] }

// Index returns the vertex index of label
func (c *CSR) Index(label string) (int32, bool) {
	v, ok := c.index[label]
	return v, ok
}
