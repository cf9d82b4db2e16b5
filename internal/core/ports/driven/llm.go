// Package driven defines interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService is the out-of-process LLM collaborator: the query pipeline's
// Expand and Assemble-context steps call it, but its implementation
// (which model, which endpoint) is an adapter concern.
type LLMService interface {
	// Generate produces a text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ExpandQuery asks the collaborator for up to n-1 additional
	// phrasings of query. Implementations accept lines containing a
	// question mark and deduplicate against the original.
	ExpandQuery(ctx context.Context, query string, n int) ([]string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable via a lightweight health check.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour: temperature,
// top_p, and num_predict.
type GenerateOptions struct {
	// MaxTokens is num_predict: the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// TopP is the nucleus-sampling cutoff.
	TopP float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
