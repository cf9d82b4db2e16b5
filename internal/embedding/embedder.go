// Package embedding tokenizes text, runs the inference session, masked
// mean pools the output, and L2 normalizes the result.
package embedding

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/time/rate"

	"github.com/localforge/ragcore/internal/core/domain"
	"github.com/localforge/ragcore/internal/core/ports/driven"
	"github.com/localforge/ragcore/internal/policy"
	"github.com/localforge/ragcore/internal/tokenizer"
)

// Ensure Embedder implements the interface.
var _ driven.Embedder = (*Embedder)(nil)

// Embedder composes a Tokenizer and an InferenceSession into a single
// text-to-vector call.
type Embedder struct {
	tok        *tokenizer.Tokenizer
	session    driven.InferenceSession
	batchSize  int
	dimensions int
	limiter    *rate.Limiter
}

// New builds an Embedder. dimensions is the configured output embedding
// dimension (the hidden size after pooling, identical to the model's
// hidden size for these encoder models). limiter may be nil (unlimited);
// pass policy.NewInferenceLimiter's result to pace calls into a shared
// inference session.
func New(tok *tokenizer.Tokenizer, session driven.InferenceSession, batchSize, dimensions int, limiter *rate.Limiter) (*Embedder, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: embedding_batch_size must be positive", domain.ErrConfiguration)
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: embedding_dimension must be positive", domain.ErrConfiguration)
	}
	return &Embedder{tok: tok, session: session, batchSize: batchSize, dimensions: dimensions, limiter: limiter}, nil
}

// Dimensions returns the output embedding dimension.
func (e *Embedder) Dimensions() int { return e.dimensions }

// Close releases the underlying inference session.
func (e *Embedder) Close() error { return e.session.Close() }

// Embed returns the unit-L2-normalized embedding for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds multiple texts, internally divided into fixed-size
// batches, each run under the internal-transient retry policy.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch := texts[start:end]
		var vectors [][]float32
		err := policy.Do(ctx, policy.InternalBackoff, nil, func(ctx context.Context) error {
			v, err := e.runBatch(ctx, batch)
			if err != nil {
				return err
			}
			vectors = v
			return nil
		})
		if err != nil {
			return nil, err
		}
		copy(out[start:end], vectors)
	}
	return out, nil
}

func (e *Embedder) runBatch(ctx context.Context, texts []string) ([][]float32, error) {
	inputIDs := make([][]int64, len(texts))
	attentionMasks := make([][]int64, len(texts))
	tokenTypeIDs := make([][]int64, len(texts))

	for i, text := range texts {
		enc, err := e.tok.Encode(text)
		if err != nil {
			return nil, err
		}
		inputIDs[i] = enc.InputIDs
		attentionMasks[i] = enc.AttentionMask
		tokenTypeIDs[i] = enc.TokenTypeIDs
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	hidden, err := e.session.RunEmbedding(ctx, inputIDs, attentionMasks, tokenTypeIDs)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = maskedMeanPoolAndNormalize(hidden[i], attentionMasks[i])
	}
	return vectors, nil
}

const epsilon = 1e-9

// maskedMeanPoolAndNormalize pools the per-token hidden states with the
// attention mask and L2-normalizes the result. An entirely zero mask
// returns the zero vector, avoiding division by zero.
func maskedMeanPoolAndNormalize(hidden [][]float32, mask []int64) []float32 {
	if len(hidden) == 0 {
		return nil
	}
	dim := len(hidden[0])
	pooled := make([]float32, dim)

	var maskSum float32
	for t, m := range mask {
		if m == 0 {
			continue
		}
		maskSum++
		for d := 0; d < dim; d++ {
			pooled[d] += hidden[t][d]
		}
	}
	if maskSum == 0 {
		return pooled
	}
	for d := 0; d < dim; d++ {
		pooled[d] /= maskSum
	}

	var normSq float64
	for _, v := range pooled {
		normSq += float64(v) * float64(v)
	}
	norm := math.Sqrt(normSq)
	if norm < epsilon {
		norm = epsilon
	}
	for d := 0; d < dim; d++ {
		pooled[d] = float32(float64(pooled[d]) / norm)
	}
	return pooled
}
