// Package inference resolves the ONNX InferenceSession used by the
// embedder and reranker to its native cgo binding. There is no portable
// fallback: no pure-Go ONNX runtime is available, so both build
// configurations load the same cgo/onnxruntime package, which carries its
// own //go:build !cgo stub returning domain.ErrResource.
package inference

import "github.com/localforge/ragcore/internal/core/ports/driven"

// Open loads an ONNX model from modelPath for a model with the given
// hidden dimension.
func Open(modelPath string, hiddenSize int) (driven.InferenceSession, error) {
	return newSession(modelPath, hiddenSize)
}
