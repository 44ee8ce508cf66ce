package storage

import (
	"context"

	"github.com/poiesic/rankfuse/core"
)

// VectorCache stores embedding vectors keyed by content hash so repeated
// queries skip the embedding service. Implementations must be thread-safe
// and support concurrent access.
type VectorCache interface {
	// Get returns the cached vector for key, and whether it was present.
	Get(ctx context.Context, key core.ID) ([]float32, bool, error)

	// Put stores a vector under key, replacing any previous entry.
	Put(ctx context.Context, key core.ID, vector []float32) error

	// Close closes the cache backend and releases resources.
	Close() error
}
