package storage

import (
	"context"

	"graph_router/pkg"
)

// HistoryStore keeps an audit log of routed queries. Routing never reads it.
type HistoryStore interface {
	Save(ctx context.Context, record pkg.RunRecord) error
	Recent(ctx context.Context, n int) ([]pkg.RunRecord, error)
	Get(ctx context.Context, id string) (*pkg.RunRecord, error)
	Close() error
}
