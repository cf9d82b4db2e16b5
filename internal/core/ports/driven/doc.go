// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - ChunkStore: authoritative chunk-record persistence
//   - VectorIndex: dense inner-product search and persistence
//   - SearchEngine: BM25 lexical search
//   - InferenceSession: the ONNX runtime collaborator backing the
//     embedder and reranker
//   - Embedder: tokenize + infer + pool + normalize
//   - Reranker: cross-encoder pair scoring
//   - LLMService: query expansion and answer generation (external collaborator)
//   - PostProcessor / PostProcessorPipeline: chunk production at ingest
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
