package storage

import (
	"context"
	"os"

	"graph_router/internal/graph"
	"graph_router/pkg"
)

// MemoryGraphStore is an in-memory GraphStore for development and tests.
// It cannot execute AQL.
type MemoryGraphStore struct {
	edges []pkg.EdgeRecord
	nodes []string
}

// NewMemoryGraphStore creates a store seeded with edges
func NewMemoryGraphStore(edges []pkg.EdgeRecord) *MemoryGraphStore {
	return &MemoryGraphStore{edges: append([]pkg.EdgeRecord(nil), edges...)}
}

// LoadMemoryGraphStore reads a JSON edge list file into a new store
func LoadMemoryGraphStore(path string) (*MemoryGraphStore, error) {
	edges, err := ReadEdgeFile(path)
	if err != nil {
		return nil, pkg.Wrap(pkg.KindConnection, err, "failed to load graph file")
	}
	return NewMemoryGraphStore(edges), nil
}

// AddNode registers an isolated node
func (m *MemoryGraphStore) AddNode(label string) {
	m.nodes = append(m.nodes, label)
}

// ExecuteQuery always fails: there is no query engine behind this store
func (m *MemoryGraphStore) ExecuteQuery(ctx context.Context, query string) ([]map[string]any, error) {
	return nil, pkg.NewError(pkg.KindQuery, "AQL queries need an ArangoDB store")
}

// FetchGraph builds a fresh graph on every call so callers never share state
func (m *MemoryGraphStore) FetchGraph(ctx context.Context) (*graph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, pkg.Wrap(pkg.KindQuery, err, "")
	}
	if len(m.edges) == 0 && len(m.nodes) == 0 {
		return nil, nil
	}
	g := graph.FromRecords(m.edges)
	for _, n := range m.nodes {
		g.AddNode(n)
	}
	return g, nil
}

// InsertEdges appends edges
func (m *MemoryGraphStore) InsertEdges(ctx context.Context, edges []pkg.EdgeRecord) error {
	m.edges = append(m.edges, edges...)
	return nil
}

// ReadEdgeFile decodes a JSON array of {"source","target"} objects
func ReadEdgeFile(path string) ([]pkg.EdgeRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var edges []pkg.EdgeRecord
	if err := pkg.JSON.Unmarshal(data, &edges); err != nil {
		return nil, err
	}
	return edges, nil
}
