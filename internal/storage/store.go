package storage

import (
	"context"

	"github.com/henrythdu/GraphMigrator/internal/graph"
)

// GraphStore persists one run's assembled graph and loads it back for
// later queries. A save replaces the previous run entirely: symbol IDs
// are process-local, so mixing runs would corrupt edge references.
type GraphStore interface {
	SaveGraph(ctx context.Context, g *graph.Graph) error
	LoadGraph(ctx context.Context) (*graph.Graph, error)
	Close() error
}
