package driven

import (
	"context"

	"github.com/localforge/ragcore/internal/core/domain"
)

// SearchEngine is a BM25 inverted index over chunk content, keyed by the
// same identifiers used by the vector index and chunk store. Two variants
// satisfy this interface: a native adapter wrapping a real BM25 library,
// and a portable hand-rolled inverted index.
type SearchEngine interface {
	// Index adds a chunk document to the lexical index. Commits are
	// deferred to Commit, called once at the end of an ingest batch.
	Index(ctx context.Context, record domain.ChunkRecord) error

	// Delete removes a document from the lexical index by identifier.
	Delete(ctx context.Context, id int64) error

	// Commit makes indexed documents since the last commit visible to Search.
	Commit(ctx context.Context) error

	// Search performs a BM25 keyword search and returns the top_k hits.
	Search(ctx context.Context, query string, topK int) ([]SearchHit, error)

	// Close releases resources.
	Close() error
}

// SearchHit represents one lexical search result.
type SearchHit struct {
	// ID is the matched chunk identifier.
	ID int64

	// Score is the BM25 relevance score.
	Score float64
}
