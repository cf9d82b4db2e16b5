//go:build cgo

package inference

import (
	"github.com/localforge/ragcore/cgo/onnxruntime"
	"github.com/localforge/ragcore/internal/core/ports/driven"
)

func newSession(modelPath string, hiddenSize int) (driven.InferenceSession, error) {
	return onnxruntime.New(modelPath, hiddenSize)
}
