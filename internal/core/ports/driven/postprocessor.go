package driven

import (
	"context"

	"github.com/localforge/ragcore/internal/core/domain"
)

// PostProcessor processes a source document to produce chunk records, or
// transforms chunk records already produced by an earlier stage.
// PostProcessors are chained in a pipeline (e.g., chunking, then embedding).
// Identifiers are not yet assigned at this stage; the chunk store fills
// them in when the index writer calls InsertBatch.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a source document and the chunks produced so far and
	// returns the updated chunk set. A processor that creates chunks
	// (e.g. the chunker) receives nil and returns new chunks.
	Process(ctx context.Context, doc *domain.SourceDocument, chunks []domain.ChunkRecord) ([]domain.ChunkRecord, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	Process(ctx context.Context, doc *domain.SourceDocument) ([]domain.ChunkRecord, error)
}
