// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"time"

	"github.com/localforge/ragcore/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1600

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits a source document's content into fixed-size,
// overlapping chunks. It implements the PostProcessor interface.
// Chunk identifiers are not assigned here; the chunk store assigns them
// on insert.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits doc's content into chunks. Input chunks are ignored;
// this processor creates new chunks from source content.
func (p *Processor) Process(_ context.Context, doc *domain.SourceDocument, _ []domain.ChunkRecord) ([]domain.ChunkRecord, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}
	if doc.Content == "" {
		return nil, nil
	}

	texts := p.split(doc.Content)
	now := time.Now()
	records := make([]domain.ChunkRecord, len(texts))
	for i, text := range texts {
		records[i] = domain.ChunkRecord{
			Content:     text,
			SourceURI:   doc.URI,
			SourceType:  doc.Type,
			ChunkIndex:  i,
			TotalChunks: len(texts),
			CreatedAt:   now,
		}
	}
	return records, nil
}

// split divides content into overlapping, fixed-size slices.
func (p *Processor) split(content string) []string {
	contentLen := len(content)
	estimated := (contentLen / (p.chunkSize - p.overlap)) + 1
	texts := make([]string, 0, estimated)

	start := 0
	for start < contentLen {
		end := start + p.chunkSize
		if end > contentLen {
			end = contentLen
		}
		texts = append(texts, content[start:end])

		start += p.chunkSize - p.overlap
		if p.chunkSize <= p.overlap {
			break
		}
	}
	return texts
}
