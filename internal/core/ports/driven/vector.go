package driven

import "context"

// VectorIndex is identifier-keyed dense inner-product search with
// persistence. Two variants satisfy this interface behind a platform
// resolver: a native ANN-backed adapter and a portable exhaustive
// in-memory adapter. Both share this exact contract; switching variants
// requires deleting the existing on-disk file (the formats are incompatible).
type VectorIndex interface {
	// Dimension returns the configured vector dimension.
	Dimension() int

	// Count returns the number of vectors currently held.
	Count() int

	// AddWithIDs inserts vectors under caller-supplied identifiers.
	// Exclusive with concurrent searches and with Save.
	AddWithIDs(ctx context.Context, ids []int64, vectors [][]float32) error

	// Search returns the top_k nearest neighbours by descending inner
	// product for a single query vector. When fewer than top_k records
	// exist, unfilled slots carry score 0.0 and the sentinel id -1.
	Search(ctx context.Context, query []float32, topK int) ([]VectorHit, error)

	// SearchBatch is Search over multiple query vectors at once.
	SearchBatch(ctx context.Context, queries [][]float32, topK int) ([][]VectorHit, error)

	// Save persists the index to path as a total replacement: a search
	// started before Save and concurrent with it continues to observe the
	// pre-save in-memory state.
	Save(path string) error

	// Load replaces in-memory state with the contents of path.
	Load(path string) error

	// Close releases resources.
	Close() error
}

// VectorHit represents one similarity search result.
type VectorHit struct {
	// ID is the matched chunk identifier, or -1 for an unfilled slot.
	ID int64

	// Score is the inner-product similarity.
	Score float32
}
