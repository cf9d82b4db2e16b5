package domain

import "time"

// ChunkID is the monotonic, dense, never-reused identifier that joins a
// chunk's record across the chunk store, the vector index, and the
// lexical index.
type ChunkID int64

// NoID is the sentinel identifier returned by vector search when fewer
// than top_k records exist in the index.
const NoID ChunkID = -1

// ChunkRecord is the authoritative representation of one chunk: the
// content plus the provenance needed to cite it back to the user.
type ChunkRecord struct {
	// ID is assigned by the chunk store on insert; never mutated.
	ID ChunkID

	// Content is the chunk's text.
	Content string

	// SourceURI is the original location the chunk was extracted from.
	SourceURI string

	// SourceType is the source file's lower-cased extension without the dot (e.g. "txt", "md").
	SourceType string

	// ChunkIndex is the ordinal position of this chunk within its source document.
	ChunkIndex int

	// TotalChunks is the total number of chunks the source document produced.
	TotalChunks int

	// CreatedAt is when the chunk was written.
	CreatedAt time.Time

	// VectorDigest is an optional content hash of the embedding, used to
	// detect a vector/content mismatch without comparing full vectors.
	VectorDigest string
}

// Embedding is a fixed-dimension, unit-L2-normalised dense vector.
type Embedding []float32

// SourceDocument is extracted, pre-chunk text from an extractor plus the
// provenance fields a chunker needs to stamp onto each produced chunk.
// It exists only within a single ingest call; it has no identifier of its
// own and is never persisted.
type SourceDocument struct {
	// URI is the original file path the text was extracted from.
	URI string

	// Type is the source file's lower-cased extension without the dot (e.g. "txt", "md").
	Type string

	// Content is the full extracted text.
	Content string
}
