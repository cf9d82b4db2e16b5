package driven

import "context"

// Embedder tokenizes text, runs the inference session, masked mean pools,
// and L2 normalizes. Implemented internally on top of a Tokenizer and an
// InferenceSession; kept as a port so the retriever and query pipeline
// depend on an interface, not a concrete type.
type Embedder interface {
	// Embed returns the unit-L2-normalized embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds multiple texts, internally divided into
	// fixed-size batches per the embedding_batch_size setting.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the output embedding dimension.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// Reranker performs cross-encoder pair scoring over candidate (query,
// chunk) pairs.
type Reranker interface {
	// Rerank returns records sorted by descending model score. If the
	// reranker is disabled or its model is absent, implementations return
	// the input ordering unchanged.
	Rerank(ctx context.Context, query string, records []ScoredRecord) ([]ScoredRecord, error)
}

// ScoredRecord pairs an opaque chunk identifier and content with a score
// assigned by a ranking stage (RRF fusion or cross-encoder reranking).
// SourceURI rides along so the query pipeline can cite it without a second
// chunk-store round trip.
type ScoredRecord struct {
	ID        int64
	Content   string
	Score     float64
	SourceURI string
}
