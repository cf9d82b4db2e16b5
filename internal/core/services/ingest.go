package services

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io/fs"
	"math"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/localforge/ragcore/internal/core/domain"
	"github.com/localforge/ragcore/internal/core/ports/driven"
	"github.com/localforge/ragcore/internal/core/ports/driving"
	"github.com/localforge/ragcore/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// Extractor pulls plain text out of a single file on disk; satisfied by
// *extraction.Registry without services depending on that package's
// concrete type.
type Extractor interface {
	Extract(path string) (string, error)
}

// IngestService is the driving-side collaborator behind `ragcore ingest`:
// walk a folder, extract and chunk each file, embed the chunks, and commit
// the result through the index writer.
type IngestService struct {
	extractors Extractor
	pipeline   driven.PostProcessorPipeline
	embedder   driven.Embedder
	writer     *IndexWriter
}

// NewIngestService wires the extraction registry, chunking pipeline,
// embedder and index writer into a single ingest operation.
func NewIngestService(extractors Extractor, pipeline driven.PostProcessorPipeline, embedder driven.Embedder, writer *IndexWriter) *IngestService {
	return &IngestService{
		extractors: extractors,
		pipeline:   pipeline,
		embedder:   embedder,
		writer:     writer,
	}
}

// IngestFolder walks folder, extracts and chunks every supported file, and
// commits the result via the index writer. A per-file extraction or
// chunking failure is reported on progress and does not abort the walk.
func (s *IngestService) IngestFolder(ctx context.Context, folder string, fresh bool, progress chan<- driving.IngestEvent) error {
	defer close(progress)

	sessionID := uuid.New().String()
	logger.Info("ingest session %s: starting %s (fresh=%v)", sessionID, folder, fresh)

	if fresh {
		if err := s.writer.Reset(ctx); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}

	var files []string
	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", folder, err)
	}

	for _, path := range files {
		added, ingestErr := s.ingestFile(ctx, path)
		if ingestErr != nil {
			logger.Debug("ingest session %s: %s failed: %v", sessionID, path, ingestErr)
		}
		select {
		case progress <- driving.IngestEvent{SessionID: sessionID, Path: path, ChunksAdded: added, Err: ingestErr}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := s.writer.SaveVectorIndex(); err != nil {
		return fmt.Errorf("save vector index: %w", err)
	}

	total, err := s.writer.Size(ctx)
	if err != nil {
		return fmt.Errorf("chunk store size: %w", err)
	}
	logger.Info("ingest session %s: done, %d chunks total", sessionID, total)

	select {
	case progress <- driving.IngestEvent{SessionID: sessionID, Done: true, TotalChunks: total}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// ingestFile extracts, chunks, embeds and indexes a single file, returning
// the number of chunks added. Extraction failures are domain.ErrUserContent
// errors; IngestFolder reports any per-file error without aborting.
func (s *IngestService) ingestFile(ctx context.Context, path string) (int, error) {
	text, err := s.extractors.Extract(path)
	if err != nil {
		return 0, err
	}

	src := &domain.SourceDocument{
		URI:     path,
		Type:    strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		Content: text,
	}

	records, err := s.pipeline.Process(ctx, src)
	if err != nil {
		return 0, fmt.Errorf("chunk %s: %w", path, err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", path, err)
	}

	pending := make([]PendingChunk, len(records))
	for i, r := range records {
		r.VectorDigest = vectorDigest(vectors[i])
		pending[i] = PendingChunk{Record: r, Vector: vectors[i]}
	}

	if _, err := s.writer.AddBatch(ctx, pending); err != nil {
		return 0, fmt.Errorf("index %s: %w", path, err)
	}
	return len(records), nil
}

// vectorDigest hashes a float32 vector's raw bytes so a later run can spot
// a vector/content mismatch (a chunk record whose stored digest no longer
// matches its vector) without comparing full vectors.
func vectorDigest(vector domain.Embedding) string {
	h := sha256.New()
	buf := make([]byte, 4)
	for _, f := range vector {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))
}
