// Package onnxruntime provides CGO bindings to the ONNX Runtime C API for
// running the embedding and reranker models behind driven.InferenceSession.
// It implements the driven.InferenceSession interface.
//
// Build requires:
//   - ONNX Runtime shared library and headers
//   - Install via: the onnxruntime release archive for the target platform
package onnxruntime
