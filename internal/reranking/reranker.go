// Package reranking implements cross-encoder pair scoring over candidate
// (query, chunk) pairs.
package reranking

import (
	"context"
	"sort"

	"golang.org/x/time/rate"

	"github.com/localforge/ragcore/internal/core/ports/driven"
	"github.com/localforge/ragcore/internal/tokenizer"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// Reranker scores candidate records against a query with a cross-encoder
// inference session. When disabled or its model is absent, Rerank returns
// the input ordering unchanged.
type Reranker struct {
	tok     *tokenizer.Tokenizer
	session driven.InferenceSession
	enabled bool
	limiter *rate.Limiter
}

// New builds a Reranker. enabled mirrors the enable_reranking setting; when
// false, Rerank is a pass-through regardless of session. limiter may be
// nil (unlimited); pass policy.NewInferenceLimiter's result to pace calls
// into a shared inference session.
func New(tok *tokenizer.Tokenizer, session driven.InferenceSession, enabled bool, limiter *rate.Limiter) *Reranker {
	return &Reranker{tok: tok, session: session, enabled: enabled, limiter: limiter}
}

// Rerank tokenizes each (query, chunk.content) pair, scores it through the
// reranker session, and returns records sorted by descending score. If
// reranking is disabled or the session reports its model is absent, the
// input ordering is returned unchanged.
func (r *Reranker) Rerank(ctx context.Context, query string, records []driven.ScoredRecord) ([]driven.ScoredRecord, error) {
	if !r.enabled || r.session == nil || len(records) == 0 {
		return records, nil
	}

	scored := make([]driven.ScoredRecord, len(records))
	copy(scored, records)

	for i, rec := range scored {
		enc, err := r.tok.EncodePair(query, rec.Content)
		if err != nil {
			return records, nil
		}

		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return records, nil
			}
		}

		logit, err := r.session.RunReranker(ctx,
			[][]int64{enc.InputIDs},
			[][]int64{enc.AttentionMask},
			[][]int64{enc.TokenTypeIDs},
		)
		if err != nil {
			return records, nil
		}
		scored[i].Score = float64(logit)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})
	return scored, nil
}
