package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/localforge/ragcore/internal/core/domain"
	"github.com/localforge/ragcore/internal/core/ports/driven"
	"github.com/localforge/ragcore/internal/logger"
)

// kRRF is the fixed Reciprocal Rank Fusion constant.
const kRRF = 60

// Retriever performs vector-only or hybrid vector+lexical search over the
// chunk store, keyed by the identifiers the index writer assigned.
type Retriever struct {
	chunkStore  driven.ChunkStore
	vectorIndex driven.VectorIndex
	searchIndex driven.SearchEngine
}

// NewRetriever builds a Retriever over the three index/store collaborators.
func NewRetriever(chunkStore driven.ChunkStore, vectorIndex driven.VectorIndex, searchIndex driven.SearchEngine) *Retriever {
	return &Retriever{chunkStore: chunkStore, vectorIndex: vectorIndex, searchIndex: searchIndex}
}

// Search returns up to opts.TopK chunk records for queryVector/queryText.
// When opts.Hybrid is false, it performs vector-only search.
func (r *Retriever) Search(ctx context.Context, queryVector []float32, queryText string, opts domain.SearchOptions) ([]domain.ScoredChunk, error) {
	if opts.TopK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive", domain.ErrInvalidInput)
	}

	if !opts.Hybrid {
		return r.vectorOnlySearch(ctx, queryVector, opts.TopK)
	}
	return r.hybridSearch(ctx, queryVector, queryText, opts)
}

func (r *Retriever) vectorOnlySearch(ctx context.Context, queryVector []float32, topK int) ([]domain.ScoredChunk, error) {
	hits, err := r.vectorIndex.Search(ctx, queryVector, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return r.materialize(ctx, vectorRanks(hits), topK)
}

func (r *Retriever) hybridSearch(ctx context.Context, queryVector []float32, queryText string, opts domain.SearchOptions) ([]domain.ScoredChunk, error) {
	candidateK := 2 * opts.TopK

	var vectorHits []driven.VectorHit
	var lexicalHits []driven.SearchHit
	var vectorErr, lexicalErr error

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		vectorHits, vectorErr = r.vectorIndex.Search(ctx, queryVector, candidateK)
	}()
	go func() {
		defer wg.Done()
		lexicalHits, lexicalErr = r.searchIndex.Search(ctx, queryText, candidateK)
	}()
	wg.Wait()

	if vectorErr != nil {
		return nil, fmt.Errorf("vector search: %w", vectorErr)
	}
	if lexicalErr != nil {
		return nil, fmt.Errorf("lexical search: %w", lexicalErr)
	}

	vRanks := vectorRanks(vectorHits)
	lRanks := lexicalRanks(lexicalHits)

	fused := r.reciprocalRankFusion(vRanks, lRanks, opts.Alpha)
	return r.materializeFused(ctx, fused, opts.TopK)
}

type rankedID struct {
	id   domain.ChunkID
	rank int
}

func vectorRanks(hits []driven.VectorHit) []rankedID {
	ranks := make([]rankedID, 0, len(hits))
	for rank, hit := range hits {
		if hit.ID == int64(domain.NoID) {
			continue
		}
		ranks = append(ranks, rankedID{id: domain.ChunkID(hit.ID), rank: rank})
	}
	return ranks
}

func lexicalRanks(hits []driven.SearchHit) []rankedID {
	ranks := make([]rankedID, 0, len(hits))
	for rank, hit := range hits {
		ranks = append(ranks, rankedID{id: domain.ChunkID(hit.ID), rank: rank})
	}
	return ranks
}

// fusedChunk is one identifier's outcome after RRF: its fused score. Ties
// keep first-occurrence order through the stable sort.
type fusedChunk struct {
	id    domain.ChunkID
	score float64
}

// reciprocalRankFusion implements the weighted RRF formula: for each
// identifier, s(i) = alpha/(k+rank_v+1) + (1-alpha)/(k+rank_l+1), summing
// only the terms for lists the identifier actually appears in. The union
// is ordered by first occurrence, then sorted descending by score.
func (r *Retriever) reciprocalRankFusion(vector, lexical []rankedID, alpha float64) []fusedChunk {
	scores := make(map[domain.ChunkID]float64)
	order := make([]domain.ChunkID, 0, len(vector)+len(lexical))
	seen := make(map[domain.ChunkID]bool)

	for _, rk := range vector {
		scores[rk.id] += alpha / float64(kRRF+rk.rank+1)
		if !seen[rk.id] {
			seen[rk.id] = true
			order = append(order, rk.id)
		}
	}
	for _, rk := range lexical {
		scores[rk.id] += (1 - alpha) / float64(kRRF+rk.rank+1)
		if !seen[rk.id] {
			seen[rk.id] = true
			order = append(order, rk.id)
		}
	}

	fused := make([]fusedChunk, len(order))
	for i, id := range order {
		fused[i] = fusedChunk{id: id, score: scores[id]}
	}
	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].score > fused[j].score
	})
	return fused
}

// materialize resolves ranked ids through the chunk store, skipping
// identifiers deleted between retrieval and materialization, and returns
// at most topK results in rank order with a 1/(rank+1) placeholder score.
func (r *Retriever) materialize(ctx context.Context, ranked []rankedID, topK int) ([]domain.ScoredChunk, error) {
	ids := make([]int64, len(ranked))
	for i, rk := range ranked {
		ids[i] = int64(rk.id)
	}
	records, err := r.chunkStore.GetBatch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("materialize chunks: %w", err)
	}
	byID := make(map[domain.ChunkID]domain.ChunkRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}

	out := make([]domain.ScoredChunk, 0, topK)
	for _, rk := range ranked {
		rec, ok := byID[rk.id]
		if !ok {
			logger.Debug("retriever: skipping identifier %d absent from chunk store", rk.id)
			continue
		}
		out = append(out, domain.ScoredChunk{Record: rec, Score: 1.0 / float64(rk.rank+1)})
		if len(out) == topK {
			break
		}
	}
	return out, nil
}

func (r *Retriever) materializeFused(ctx context.Context, fused []fusedChunk, topK int) ([]domain.ScoredChunk, error) {
	ids := make([]int64, len(fused))
	for i, fc := range fused {
		ids[i] = int64(fc.id)
	}

	records, err := r.chunkStore.GetBatch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("materialize chunks: %w", err)
	}
	byID := make(map[domain.ChunkID]domain.ChunkRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}

	out := make([]domain.ScoredChunk, 0, topK)
	for _, fc := range fused {
		rec, ok := byID[fc.id]
		if !ok {
			logger.Debug("retriever: skipping identifier %d absent from chunk store", fc.id)
			continue
		}
		out = append(out, domain.ScoredChunk{Record: rec, Score: fc.score})
		if len(out) == topK {
			break
		}
	}
	return out, nil
}
