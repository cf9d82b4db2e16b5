// Command ragcore loads configuration, wires the embedder, reranker,
// indexes and services together, and hands off to the Cobra command tree.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/localforge/ragcore/internal/adapters/driven/config/file"
	"github.com/localforge/ragcore/internal/adapters/driven/llm/ollama"
	"github.com/localforge/ragcore/internal/adapters/driven/storage/sqlite"
	"github.com/localforge/ragcore/internal/adapters/driving/cli"
	"github.com/localforge/ragcore/internal/core/ports/driven"
	"github.com/localforge/ragcore/internal/core/services"
	"github.com/localforge/ragcore/internal/embedding"
	"github.com/localforge/ragcore/internal/extraction"
	"github.com/localforge/ragcore/internal/index/lexical"
	"github.com/localforge/ragcore/internal/index/vector"
	"github.com/localforge/ragcore/internal/inference"
	"github.com/localforge/ragcore/internal/policy"
	"github.com/localforge/ragcore/internal/postprocessors"
	"github.com/localforge/ragcore/internal/reranking"
	"github.com/localforge/ragcore/internal/tokenizer"
)

// version is overwritten at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfgPath := configPathFromArgs()

	cfg, err := file.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	provider, err := policy.ResolveExecutionProvider(
		policy.Preference(cfg.ExecutionProviderPreference),
		cfg.GPUDeviceID,
		probeAccelerator,
	)
	if err != nil {
		log.Fatalf("resolve execution provider: %v", err)
	}
	if provider.FallbackToCPU {
		log.Printf("no accelerator detected at device %d, falling back to CPU", cfg.GPUDeviceID)
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		log.Fatalf("build embedder: %v", err)
	}
	defer embedder.Close()

	reranker, err := buildReranker(cfg)
	if err != nil {
		log.Fatalf("build reranker: %v", err)
	}

	chunkStore, err := sqlite.NewStore(cfg.ChunkStorePath)
	if err != nil {
		log.Fatalf("open chunk store: %v", err)
	}
	defer chunkStore.Close()

	vectorIndex, err := vector.Open(cfg.VectorIndexPath, cfg.EmbeddingDimension)
	if err != nil {
		log.Fatalf("open vector index: %v", err)
	}

	searchIndex, err := lexical.Open(cfg.LexicalIndexPath)
	if err != nil {
		log.Fatalf("open lexical index: %v", err)
	}

	writer := services.NewIndexWriter(
		chunkStore, vectorIndex, searchIndex,
		cfg.VectorIndexPath, cfg.LexicalIndexPath,
		func() (driven.VectorIndex, error) { return vector.Open(cfg.VectorIndexPath, cfg.EmbeddingDimension) },
		func() (driven.SearchEngine, error) { return lexical.Open(cfg.LexicalIndexPath) },
	)

	retriever := services.NewRetriever(chunkStore, vectorIndex, searchIndex)

	llmClient := ollama.New(ollama.Config{
		BaseURL:     cfg.LLMEndpoint,
		Model:       cfg.LLMModel,
		Timeout:     time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		MaxTokens:   cfg.MaxTokens,
	})
	defer llmClient.Close()

	// cfg.QueryExpansionCount counts additional phrasings beyond the
	// original question; ExpansionVariants wants the total including it.
	expansionVariants := cfg.QueryExpansionCount + 1
	if !cfg.EnableQueryExpansion {
		expansionVariants = 1
	}
	queryPipeline := services.NewQueryPipeline(embedder, retriever, reranker, llmClient, services.QueryPipelineConfig{
		ExpansionVariants: expansionVariants,
		RerankTopK:        cfg.RerankTopK,
		UserTopK:          cfg.DefaultTopK,
		Hybrid:            cfg.EnableHybridSearch,
		Alpha:             cfg.HybridAlpha,
	})

	extractors := extraction.NewRegistry()
	extraction.RegisterDefaults(extractors)

	processors := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(processors)
	chunkProcessor, err := processors.Build("chunker", map[string]any{
		"chunk_size": cfg.ChunkSize,
		"overlap":    cfg.ChunkOverlap,
	})
	if err != nil {
		log.Fatalf("build chunker: %v", err)
	}
	pipeline := postprocessors.NewPipeline(chunkProcessor)

	ingestService := services.NewIngestService(extractors, pipeline, embedder, writer)

	cli.SetQueryService(queryPipeline)
	cli.SetIngestService(ingestService)
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configPathFromArgs() string {
	for i, a := range os.Args {
		if a == "--config" && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
	}
	return filepath.Join(os.Getenv("HOME"), ".ragcore", "config.toml")
}

func buildEmbedder(cfg file.Config) (*embedding.Embedder, error) {
	tok, err := tokenizer.New(
		filepath.Join(cfg.EmbeddingModelPath, "vocab.txt"),
		filepath.Join(cfg.EmbeddingModelPath, "settings.json"),
		filepath.Join(cfg.EmbeddingModelPath, "model.json"),
	)
	if err != nil {
		return nil, fmt.Errorf("embedding tokenizer: %w", err)
	}

	session, err := inference.Open(filepath.Join(cfg.EmbeddingModelPath, "model.onnx"), cfg.EmbeddingDimension)
	if err != nil {
		return nil, fmt.Errorf("embedding session: %w", err)
	}

	limiter := policy.NewInferenceLimiter(0, 1)
	return embedding.New(tok, session, cfg.EmbeddingBatchSize, cfg.EmbeddingDimension, limiter)
}

func buildReranker(cfg file.Config) (*reranking.Reranker, error) {
	if !cfg.EnableReranking || cfg.RerankerModelPath == "" {
		return reranking.New(nil, nil, false, nil), nil
	}

	tok, err := tokenizer.New(
		filepath.Join(cfg.RerankerModelPath, "vocab.txt"),
		filepath.Join(cfg.RerankerModelPath, "settings.json"),
		filepath.Join(cfg.RerankerModelPath, "model.json"),
	)
	if err != nil {
		return nil, fmt.Errorf("reranker tokenizer: %w", err)
	}

	session, err := inference.Open(filepath.Join(cfg.RerankerModelPath, "model.onnx"), cfg.EmbeddingDimension)
	if err != nil {
		return nil, fmt.Errorf("reranker session: %w", err)
	}

	limiter := policy.NewInferenceLimiter(0, 1)
	return reranking.New(tok, session, true, limiter), nil
}

// probeAccelerator reports whether an NVIDIA device node is present.
// It is a heuristic, not a real CUDA capability check: a definitive answer
// would require loading the CUDA execution provider inside the inference
// session itself, which ResolveExecutionProvider's memoized result lets us
// avoid doing more than once per process.
func probeAccelerator(deviceID int) bool {
	_, err := os.Stat(fmt.Sprintf("/dev/nvidia%d", deviceID))
	return err == nil
}
