package driven

import (
	"context"

	"github.com/localforge/ragcore/internal/core/domain"
)

// ChunkStore is the authoritative mapping from identifier to chunk record.
// Identifiers are generated on insert, monotonic and dense within a
// session, and are the join key the index writer hands to the vector and
// lexical indexes.
type ChunkStore interface {
	// InsertBatch assigns identifiers to records in caller-supplied order
	// and persists them, returning the assigned identifiers in the same
	// order. An empty batch is a no-op.
	InsertBatch(ctx context.Context, records []domain.ChunkRecord) ([]int64, error)

	// Get performs a point lookup by identifier. Returns domain.ErrNotFound
	// if the identifier does not exist.
	Get(ctx context.Context, id int64) (*domain.ChunkRecord, error)

	// GetBatch looks up multiple identifiers, silently skipping any that
	// do not exist (a deleted record observed mid-flight is not an error).
	GetBatch(ctx context.Context, ids []int64) ([]domain.ChunkRecord, error)

	// ListBySourceURI returns all chunk records for a given source, ordered
	// by ChunkIndex.
	ListBySourceURI(ctx context.Context, sourceURI string) ([]domain.ChunkRecord, error)

	// Size returns the number of chunk records currently stored.
	Size(ctx context.Context) (int, error)

	// Reset deletes all records and resets identifier allocation to start
	// at 1 on the next InsertBatch.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}
