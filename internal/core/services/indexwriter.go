package services

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/localforge/ragcore/internal/core/domain"
	"github.com/localforge/ragcore/internal/core/ports/driven"
	"github.com/localforge/ragcore/internal/logger"
)

// PendingChunk pairs a not-yet-identified chunk record with the embedding
// vector computed for it; IndexWriter assigns the identifier that joins them.
type PendingChunk struct {
	Record domain.ChunkRecord
	Vector domain.Embedding
}

// VectorIndexFactory builds a fresh, empty VectorIndex for use after Reset.
type VectorIndexFactory func() (driven.VectorIndex, error)

// SearchEngineFactory builds a fresh, empty SearchEngine for use after Reset.
type SearchEngineFactory func() (driven.SearchEngine, error)

// IndexWriter is the atomic cross-store append that keeps the chunk
// store, vector index, and lexical index in identifier lockstep.
type IndexWriter struct {
	mu sync.Mutex

	chunkStore  driven.ChunkStore
	vectorIndex driven.VectorIndex
	searchIndex driven.SearchEngine

	vectorIndexPath  string
	lexicalIndexPath string

	newVectorIndex  VectorIndexFactory
	newSearchEngine SearchEngineFactory
}

// NewIndexWriter builds an IndexWriter over already-open collaborators.
// vectorIndexPath and lexicalIndexPath are used by SaveVectorIndex and by
// Reset, which deletes and recreates the on-disk state via the factories.
func NewIndexWriter(
	chunkStore driven.ChunkStore,
	vectorIndex driven.VectorIndex,
	searchIndex driven.SearchEngine,
	vectorIndexPath, lexicalIndexPath string,
	newVectorIndex VectorIndexFactory,
	newSearchEngine SearchEngineFactory,
) *IndexWriter {
	return &IndexWriter{
		chunkStore:       chunkStore,
		vectorIndex:      vectorIndex,
		searchIndex:      searchIndex,
		vectorIndexPath:  vectorIndexPath,
		lexicalIndexPath: lexicalIndexPath,
		newVectorIndex:   newVectorIndex,
		newSearchEngine:  newSearchEngine,
	}
}

// AddBatch inserts chunk records into the chunk store first so identifiers
// are materialized in insertion order, adds the vectors under those
// identifiers to the vector index, indexes each record's text into the
// lexical index, then commits it.
func (w *IndexWriter) AddBatch(ctx context.Context, chunks []PendingChunk) ([]domain.ChunkID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(chunks) == 0 {
		return nil, nil
	}

	records := make([]domain.ChunkRecord, len(chunks))
	vectors := make([][]float32, len(chunks))
	for i, c := range chunks {
		records[i] = c.Record
		vectors[i] = c.Vector
	}

	rawIDs, err := w.chunkStore.InsertBatch(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("insert chunk batch: %w", err)
	}
	logger.Debug("index writer: inserted %d chunk records", len(rawIDs))

	if err := w.vectorIndex.AddWithIDs(ctx, rawIDs, vectors); err != nil {
		return nil, fmt.Errorf("add vectors: %w", err)
	}

	ids := make([]domain.ChunkID, len(rawIDs))
	for i, id := range rawIDs {
		ids[i] = domain.ChunkID(id)
		rec := records[i]
		rec.ID = ids[i]
		if err := w.searchIndex.Index(ctx, rec); err != nil {
			return nil, fmt.Errorf("index lexical document %d: %w", id, err)
		}
	}

	if err := w.searchIndex.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit lexical index: %w", err)
	}

	return ids, nil
}

// SaveVectorIndex persists the vector index to disk. Called once at the end
// of an ingest session, after all batches have been committed.
func (w *IndexWriter) SaveVectorIndex() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.vectorIndex.Save(w.vectorIndexPath); err != nil {
		return fmt.Errorf("save vector index: %w", err)
	}
	return nil
}

// LoadVectorIndex replaces in-memory vector-index state with the contents
// of the on-disk file.
func (w *IndexWriter) LoadVectorIndex() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.vectorIndex.Load(w.vectorIndexPath); err != nil {
		return fmt.Errorf("load vector index: %w", err)
	}
	return nil
}

// Reset deletes the chunk-store contents, the vector-index file, and the
// lexical-index directory, then reinitializes all three as empty stores.
// A reset that fails partway leaves the writer in an unrecoverable state
// for the current session; the next session starts from whatever survived
// on disk.
func (w *IndexWriter) Reset(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.chunkStore.Reset(ctx); err != nil {
		return fmt.Errorf("reset chunk store: %w", err)
	}

	if err := w.vectorIndex.Close(); err != nil {
		logger.Warn("index writer: error closing vector index during reset: %v", err)
	}
	if w.vectorIndexPath != "" {
		if err := os.Remove(w.vectorIndexPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove vector index file: %w", err)
		}
	}
	freshVector, err := w.newVectorIndex()
	if err != nil {
		return fmt.Errorf("recreate vector index: %w", err)
	}
	w.vectorIndex = freshVector

	if err := w.searchIndex.Close(); err != nil {
		logger.Warn("index writer: error closing lexical index during reset: %v", err)
	}
	if w.lexicalIndexPath != "" {
		if err := os.RemoveAll(w.lexicalIndexPath); err != nil {
			return fmt.Errorf("remove lexical index directory: %w", err)
		}
	}
	freshSearch, err := w.newSearchEngine()
	if err != nil {
		return fmt.Errorf("recreate lexical index: %w", err)
	}
	w.searchIndex = freshSearch

	return nil
}

// Size returns the number of chunk records currently stored.
func (w *IndexWriter) Size(ctx context.Context) (int, error) {
	return w.chunkStore.Size(ctx)
}
