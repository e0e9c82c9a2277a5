package storage

import (
	"context"

	"graph_router/internal/graph"
	"graph_router/pkg"
)

// GraphStore is the graph database contract the router depends on
type GraphStore interface {
	// ExecuteQuery runs a query string and returns its records
	ExecuteQuery(ctx context.Context, query string) ([]map[string]any, error)
	// FetchGraph loads the whole graph; nil means no graph is loaded
	FetchGraph(ctx context.Context) (*graph.Graph, error)
	// InsertEdges writes source/target pairs
	InsertEdges(ctx context.Context, edges []pkg.EdgeRecord) error
}

// SchemaDescriber is implemented by stores that can list their collections
// for the AQL generation prompt
type SchemaDescriber interface {
	Schema(ctx context.Context) ([]pkg.CollectionSchema, error)
}
