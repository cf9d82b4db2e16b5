// Package ollama implements an HTTP adapter over Ollama's generate API,
// used by the query pipeline's expand and assemble-context steps.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/localforge/ragcore/internal/core/domain"
	"github.com/localforge/ragcore/internal/core/ports/driven"
	"github.com/localforge/ragcore/internal/policy"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 180 * time.Second
)

// Config holds the tunables for the Ollama LLM client.
type Config struct {
	// BaseURL is the LLM collaborator's endpoint (default: http://localhost:11434).
	BaseURL string

	// Model is the model name sent in every request (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 180s).
	Timeout time.Duration

	// Temperature and TopP are the default generation options, overridable per-call.
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// LLMService is an HTTP adapter over Ollama's generate API.
type LLMService struct {
	client *http.Client
	cfg    Config
}

// generateRequest is the {endpoint}/api/generate request body.
type generateRequest struct {
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	Stream  bool             `json:"stream"`
	Options *generateOptions `json:"options,omitempty"`
}

type generateOptions struct {
	Temperature float64  `json:"temperature,omitempty"`
	TopP        float64  `json:"top_p,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// generateResponse is the {endpoint}/api/generate response body.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// New builds an LLMService, filling in defaults for any zero-valued field.
func New(cfg Config) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.1
	}
	if cfg.TopP == 0 {
		cfg.TopP = 0.9
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 500
	}

	return &LLMService{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

// Generate posts to {endpoint}/api/generate and returns the response text.
// Transient HTTP failures (request errors, 5xx) are retried per the
// longer remote backoff schedule.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	body := generateRequest{
		Model:  s.cfg.Model,
		Prompt: prompt,
		Stream: false,
		Options: &generateOptions{
			Temperature: coalesce(opts.Temperature, s.cfg.Temperature),
			TopP:        coalesce(opts.TopP, s.cfg.TopP),
			NumPredict:  coalesceInt(opts.MaxTokens, s.cfg.MaxTokens),
			Stop:        opts.StopWords,
		},
	}

	var result string
	err := policy.Do(ctx, policy.RemoteBackoff, nil, func(ctx context.Context) error {
		resp, err := s.post(ctx, "/api/generate", body)
		if err != nil {
			return err
		}
		result = resp.Response
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

// ExpandQuery asks for n-1 additional phrasings of query, one per line,
// each ending in a question mark, and returns the accepted lines
// deduplicated against the original by exact string equality.
func (s *LLMService) ExpandQuery(ctx context.Context, query string, n int) ([]string, error) {
	if n <= 1 {
		return nil, nil
	}

	prompt := fmt.Sprintf(expandQueryPrompt, n-1, query)
	raw, err := s.Generate(ctx, prompt, driven.GenerateOptions{Temperature: 0.3, MaxTokens: 256})
	if err != nil {
		return nil, fmt.Errorf("expand query: %w", err)
	}

	var variants []string
	seen := map[string]bool{query: true}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "?") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		variants = append(variants, line)
		if len(variants) == n-1 {
			break
		}
	}
	return variants, nil
}

const expandQueryPrompt = `Write %d alternative phrasings of the following question, one per line, each ending in a question mark. Do not number them or add commentary.

Question: %s`

// ModelName returns the configured model name.
func (s *LLMService) ModelName() string { return s.cfg.Model }

// Ping GETs {endpoint}/api/tags and treats any 2xx as healthy.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: build ping request: %v", domain.ErrLLMUnavailable, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ping failed: %v", domain.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: ping returned status %d", domain.ErrLLMUnavailable, resp.StatusCode)
	}
	return nil
}

// Close releases resources. The HTTP client needs no explicit cleanup.
func (s *LLMService) Close() error { return nil }

func (s *LLMService) post(ctx context.Context, path string, body generateRequest) (generateResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return generateResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return generateResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return generateResponse{}, fmt.Errorf("%w: %v", domain.ErrTransientRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return generateResponse{}, fmt.Errorf("%w: status %d", domain.ErrTransientRemote, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return generateResponse{}, fmt.Errorf("llm collaborator error (status %d): %s", resp.StatusCode, string(b))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return generateResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func coalesce(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}

func coalesceInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
