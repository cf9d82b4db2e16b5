//go:build !cgo

package inference

import (
	"github.com/localforge/ragcore/cgo/onnxruntime"
	"github.com/localforge/ragcore/internal/core/ports/driven"
)

// newSession still delegates to the onnxruntime package's own !cgo stub:
// no pure-Go ONNX runtime is available to fall back to, so there is no
// portable variant here, unlike the vector and lexical indexes.
func newSession(modelPath string, hiddenSize int) (driven.InferenceSession, error) {
	return onnxruntime.New(modelPath, hiddenSize)
}
