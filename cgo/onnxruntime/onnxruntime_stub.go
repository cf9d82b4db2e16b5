//go:build !cgo

package onnxruntime

import (
	"context"

	"github.com/localforge/ragcore/internal/core/domain"
	"github.com/localforge/ragcore/internal/core/ports/driven"
)

// Ensure Session implements the interface.
var _ driven.InferenceSession = (*Session)(nil)

// Session is a stub for builds without CGO. No pure-Go ONNX Runtime exists
// to fall back to; every operation reports domain.ErrResource.
type Session struct {
	hiddenSize int
}

// New returns a stub session; all operations report domain.ErrResource.
func New(_ string, hiddenSize int) (*Session, error) {
	return &Session{hiddenSize: hiddenSize}, nil
}

func (s *Session) HiddenSize() int { return s.hiddenSize }

func (s *Session) RunEmbedding(_ context.Context, _, _, _ [][]int64) ([][][]float32, error) {
	return nil, domain.ErrResource
}

func (s *Session) RunReranker(_ context.Context, _, _, _ [][]int64) (float32, error) {
	return 0, domain.ErrResource
}

func (s *Session) Close() error { return nil }
