package driven

import "context"

// InferenceSession is the ONNX inference runtime collaborator, named
// concretely here so the Embedder and Reranker have something to call.
// Inputs are three named tensors: input_ids, attention_mask,
// token_type_ids, each shape [batch, max_seq_len], 64-bit integer.
// Sessions are shared read-only; the underlying runtime is expected to
// serialize internally.
type InferenceSession interface {
	// RunEmbedding executes a batch and returns the last-hidden-state
	// tensor as [batch][seq][hidden].
	RunEmbedding(ctx context.Context, inputIDs, attentionMask, tokenTypeIDs [][]int64) ([][][]float32, error)

	// RunReranker executes a single-example batch and returns the scalar
	// relevance logit at position [0,0].
	RunReranker(ctx context.Context, inputIDs, attentionMask, tokenTypeIDs [][]int64) (float32, error)

	// HiddenSize returns the model's hidden dimension (the embedder's
	// output dimension before pooling).
	HiddenSize() int

	// Close releases resources.
	Close() error
}
