package file

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/localforge/ragcore/internal/core/domain"
)

// Config is the typed configuration for ragcore. Every field is optional
// in the TOML file; Load fills unset fields with the documented defaults
// and validates the result.
type Config struct {
	EmbeddingModelPath string `toml:"embedding_model_path"`
	RerankerModelPath  string `toml:"reranker_model_path"`

	ChunkStorePath   string `toml:"chunk_store_path"`
	VectorIndexPath  string `toml:"vector_index_path"`
	LexicalIndexPath string `toml:"lexical_index_path"`

	LLMEndpoint           string  `toml:"llm_endpoint"`
	LLMModel              string  `toml:"llm_model"`
	Temperature           float64 `toml:"temperature"`
	TopP                  float64 `toml:"top_p"`
	MaxTokens             int     `toml:"max_tokens"`
	RequestTimeoutSeconds int     `toml:"request_timeout_seconds"`

	EnableSemanticChunking bool `toml:"enable_semantic_chunking"`
	ChunkSize              int  `toml:"chunk_size"`
	ChunkOverlap           int  `toml:"chunk_overlap"`

	EmbeddingBatchSize int `toml:"embedding_batch_size"`
	EmbeddingDimension int `toml:"embedding_dimension"`

	EnableQueryExpansion bool `toml:"enable_query_expansion"`
	QueryExpansionCount  int  `toml:"query_expansion_count"`

	EnableHybridSearch bool    `toml:"enable_hybrid_search"`
	HybridAlpha        float64 `toml:"hybrid_alpha"`

	EnableReranking bool `toml:"enable_reranking"`
	RerankTopK      int  `toml:"rerank_top_k"`
	DefaultTopK     int  `toml:"default_top_k"`

	ExecutionProviderPreference string `toml:"execution_provider_preference"`
	GPUDeviceID                 int    `toml:"gpu_device_id"`
}

// defaults returns a Config populated with every documented default value.
func defaults() Config {
	return Config{
		Temperature:                 0.1,
		TopP:                        0.9,
		MaxTokens:                   500,
		RequestTimeoutSeconds:       180,
		ChunkSize:                   1600,
		ChunkOverlap:                200,
		EmbeddingBatchSize:          16,
		EmbeddingDimension:          384,
		QueryExpansionCount:         3,
		HybridAlpha:                 0.7,
		RerankTopK:                  20,
		DefaultTopK:                 7,
		ExecutionProviderPreference: "auto",
		GPUDeviceID:                 0,
	}
}

// Load reads a TOML file at path, merges it over the documented defaults,
// and validates the result. A missing file is not an error: Load returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, validate(cfg)
		}
		return Config{}, fmt.Errorf("%w: read config file: %v", domain.ErrConfiguration, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse config file: %v", domain.ErrConfiguration, err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate checks the cross-field and range invariants the configuration
// documents: chunk_overlap < chunk_size, hybrid_alpha in [0,1], and every
// "must be positive" field.
func validate(cfg Config) error {
	if cfg.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be > 0, got %d", domain.ErrConfiguration, cfg.ChunkSize)
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap (%d) must be < chunk_size (%d)", domain.ErrConfiguration, cfg.ChunkOverlap, cfg.ChunkSize)
	}
	if cfg.EmbeddingBatchSize <= 0 {
		return fmt.Errorf("%w: embedding_batch_size must be positive, got %d", domain.ErrConfiguration, cfg.EmbeddingBatchSize)
	}
	if cfg.EmbeddingDimension <= 0 {
		return fmt.Errorf("%w: embedding_dimension must be positive, got %d", domain.ErrConfiguration, cfg.EmbeddingDimension)
	}
	if cfg.QueryExpansionCount < 1 {
		return fmt.Errorf("%w: query_expansion_count must be >= 1, got %d", domain.ErrConfiguration, cfg.QueryExpansionCount)
	}
	if cfg.HybridAlpha < 0 || cfg.HybridAlpha > 1 {
		return fmt.Errorf("%w: hybrid_alpha must be in [0,1], got %f", domain.ErrConfiguration, cfg.HybridAlpha)
	}
	if cfg.DefaultTopK <= 0 {
		return fmt.Errorf("%w: default_top_k must be > 0, got %d", domain.ErrConfiguration, cfg.DefaultTopK)
	}
	switch cfg.ExecutionProviderPreference {
	case "", "auto", "cpu", "gpu":
	default:
		return fmt.Errorf("%w: execution_provider_preference must be one of auto/cpu/gpu, got %q", domain.ErrConfiguration, cfg.ExecutionProviderPreference)
	}
	return nil
}
