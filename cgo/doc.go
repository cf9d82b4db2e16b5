// Package cgo provides CGO bindings for native libraries.
// This package isolates all CGO code from the pure Go core.
//
// Sub-packages:
//   - hnsw: HNSWlib bindings for vector similarity search
//   - xapian: Xapian bindings for full-text BM25 search
//   - onnxruntime: ONNX Runtime bindings for the embedder and reranker's
//     inference sessions
//
// Every sub-package ships a //go:build !cgo stub so the module builds with
// cgo disabled (CGO_ENABLED=0, or no C toolchain found); the stub returns
// domain.ErrResource rather than reimplementing the native library in Go.
// A cgo-enabled build compiles the bindings and needs the native libraries.
package cgo
