package driving

import (
	"context"

	"github.com/localforge/ragcore/internal/core/domain"
)

// QueryService is the query pipeline's inbound port: expand, retrieve per
// variant, deduplicate, rerank, assemble context, generate.
type QueryService interface {
	// Query answers a natural-language question against the indexed corpus.
	Query(ctx context.Context, question string) (*domain.Answer, error)
}

// IngestService is the ingest inbound port as the CLI sees it: walk a
// folder and extract, chunk and index every supported file, optionally
// resetting first.
type IngestService interface {
	// IngestFolder walks folder, extracts and chunks every supported file,
	// and commits the result via the index writer. If fresh is true, all
	// three stores are reset first. Progress is reported on progress,
	// which IngestFolder closes when done; callers drain it to render it.
	IngestFolder(ctx context.Context, folder string, fresh bool, progress chan<- IngestEvent) error
}

// IngestEvent reports per-file ingest progress, including recoverable
// per-file errors that do not abort the session.
type IngestEvent struct {
	// SessionID correlates every event in one IngestFolder call with each
	// other and with that call's log lines.
	SessionID string

	// Path is the file the event concerns.
	Path string

	// ChunksAdded is the number of chunks produced from Path, if successful.
	ChunksAdded int

	// Err is non-nil for a per-file failure; the session continues regardless.
	Err error

	// Done is true on the final event, after all files have been processed
	// and the session has been committed.
	Done bool

	// TotalChunks is the chunk-store size after commit; only set when Done.
	TotalChunks int
}
