package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/localforge/ragcore/internal/core/domain"
	"github.com/localforge/ragcore/internal/core/ports/driven"
	"github.com/localforge/ragcore/internal/core/ports/driving"
	"github.com/localforge/ragcore/internal/logger"
)

// Ensure QueryPipeline implements the interface.
var _ driving.QueryService = (*QueryPipeline)(nil)

// QueryPipelineConfig holds the pipeline's tunables.
type QueryPipelineConfig struct {
	// ExpansionVariants is N, the total number of phrasings searched
	// including the original (default 4).
	ExpansionVariants int

	// RerankTopK is the top_k of each variant's retrieval (default 20).
	// The reranker receives the deduplicated union of all variants, up to
	// ExpansionVariants x RerankTopK records.
	RerankTopK int

	// UserTopK is the number of chunks kept for generation (default 7).
	UserTopK int

	// Hybrid and Alpha configure the retriever's search mode.
	Hybrid bool
	Alpha  float64
}

// QueryPipeline expands a question into several phrasings, retrieves per
// variant, deduplicates, reranks, assembles context, and generates an
// answer.
type QueryPipeline struct {
	embedder  driven.Embedder
	retriever *Retriever
	reranker  driven.Reranker
	llm       driven.LLMService
	cfg       QueryPipelineConfig
}

// NewQueryPipeline builds a QueryPipeline over its collaborators.
func NewQueryPipeline(embedder driven.Embedder, retriever *Retriever, reranker driven.Reranker, llm driven.LLMService, cfg QueryPipelineConfig) *QueryPipeline {
	return &QueryPipeline{embedder: embedder, retriever: retriever, reranker: reranker, llm: llm, cfg: cfg}
}

// Query runs the full pipeline: expand, retrieve per variant, dedupe,
// rerank, slice, assemble context, generate.
func (p *QueryPipeline) Query(ctx context.Context, question string) (*domain.Answer, error) {
	variants := p.expand(ctx, question)
	logger.Debug("query pipeline: %d variants for %q", len(variants), question)

	candidates, err := p.retrieveVariants(ctx, variants)
	if err != nil {
		return nil, fmt.Errorf("retrieve variants: %w", err)
	}

	unioned := dedupeByID(candidates)
	logger.Debug("query pipeline: %d candidates after dedup", len(unioned))

	reranked, err := p.reranker.Rerank(ctx, question, unioned)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	topK := p.cfg.UserTopK
	if topK <= 0 {
		topK = 7
	}
	if len(reranked) > topK {
		reranked = reranked[:topK]
	}

	contextText, sources := assembleContext(reranked)

	answerText, err := p.llm.Generate(ctx, buildPrompt(question, contextText), driven.GenerateOptions{})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Question: question,
		Text:     answerText,
		Sources:  sources,
		Variants: variants,
	}, nil
}

// expand asks the LLM collaborator for additional phrasings. On failure it
// falls through with just the original question.
func (p *QueryPipeline) expand(ctx context.Context, question string) []string {
	n := p.cfg.ExpansionVariants
	if n <= 0 {
		n = 4
	}
	if n <= 1 || p.llm == nil {
		return []string{question}
	}

	extra, err := p.llm.ExpandQuery(ctx, question, n)
	if err != nil {
		logger.Warn("query pipeline: expansion failed, using original question only: %v", err)
		return []string{question}
	}

	variants := make([]string, 0, 1+len(extra))
	variants = append(variants, question)
	seen := map[string]bool{question: true}
	for _, v := range extra {
		if seen[v] {
			continue
		}
		seen[v] = true
		variants = append(variants, v)
	}
	return variants
}

// retrieveVariants embeds and retrieves every variant concurrently,
// returning the concatenation of all per-variant result sets.
func (p *QueryPipeline) retrieveVariants(ctx context.Context, variants []string) ([]driven.ScoredRecord, error) {
	results := make([][]driven.ScoredRecord, len(variants))
	errs := make([]error, len(variants))

	var wg sync.WaitGroup
	wg.Add(len(variants))
	for i, variant := range variants {
		i, variant := i, variant
		go func() {
			defer wg.Done()
			results[i], errs[i] = p.retrieveOne(ctx, variant)
		}()
	}
	wg.Wait()

	var out []driven.ScoredRecord
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("variant %q: %w", variants[i], err)
		}
		out = append(out, results[i]...)
	}
	return out, nil
}

func (p *QueryPipeline) retrieveOne(ctx context.Context, variant string) ([]driven.ScoredRecord, error) {
	topK := p.cfg.RerankTopK
	if topK <= 0 {
		topK = 20
	}

	vector, err := p.embedder.Embed(ctx, variant)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	chunks, err := p.retriever.Search(ctx, vector, variant, domain.SearchOptions{
		TopK:   topK,
		Hybrid: p.cfg.Hybrid,
		Alpha:  p.cfg.Alpha,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]driven.ScoredRecord, len(chunks))
	for i, c := range chunks {
		out[i] = driven.ScoredRecord{
			ID:        int64(c.Record.ID),
			Content:   c.Record.Content,
			Score:     c.Score,
			SourceURI: c.Record.SourceURI,
		}
	}
	return out, nil
}

// dedupeByID unions candidates by identifier, first occurrence wins.
func dedupeByID(candidates []driven.ScoredRecord) []driven.ScoredRecord {
	seen := make(map[int64]bool, len(candidates))
	out := make([]driven.ScoredRecord, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

// assembleContext renders the kept chunks into the LLM prompt's context
// block and returns the corresponding source records in the order used.
func assembleContext(records []driven.ScoredRecord) (string, []domain.ChunkRecord) {
	var b strings.Builder
	sources := make([]domain.ChunkRecord, len(records))
	for i, rec := range records {
		sources[i] = domain.ChunkRecord{ID: domain.ChunkID(rec.ID), Content: rec.Content, SourceURI: rec.SourceURI}
		fmt.Fprintf(&b, "[Document %d]\n%s\nSource: %s\n\n", i+1, rec.Content, filepath.Base(rec.SourceURI))
	}
	return b.String(), sources
}

func buildPrompt(question, contextText string) string {
	return fmt.Sprintf("Context:\n%s\nQuestion: %s", contextText, question)
}
