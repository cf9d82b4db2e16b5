//go:build cgo

package onnxruntime

/*
#cgo LDFLAGS: -lonnxruntime
#cgo CXXFLAGS: -std=c++17

#include "onnxruntime_wrapper.h"
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"errors"
	"sync"
	"unsafe"

	"github.com/localforge/ragcore/internal/core/ports/driven"
)

// Ensure Session implements the interface.
var _ driven.InferenceSession = (*Session)(nil)

// Session wraps a single ONNX Runtime model: either the embedding model
// (last-hidden-state output) or the reranker model (classification logits).
type Session struct {
	mu         sync.RWMutex
	sess       *C.OrtSessionHandle
	hiddenSize int
}

// New loads an ONNX model from modelPath. hiddenSize is the model's hidden
// dimension, needed up front to shape the output tensor on read-back.
func New(modelPath string, hiddenSize int) (*Session, error) {
	cpath := C.CString(modelPath)
	defer C.free(unsafe.Pointer(cpath))

	sess := C.ort_create_session(cpath)
	if sess == nil {
		errMsg := C.GoString(C.ort_get_error())
		return nil, errors.New("onnxruntime: failed to load model: " + errMsg)
	}

	return &Session{sess: sess, hiddenSize: hiddenSize}, nil
}

// HiddenSize returns the model's hidden dimension.
func (s *Session) HiddenSize() int { return s.hiddenSize }

// RunEmbedding runs the embedding model, returning the last-hidden-state
// tensor as [batch][max_seq_len][hidden].
func (s *Session) RunEmbedding(_ context.Context, inputIDs, attentionMask, tokenTypeIDs [][]int64) ([][][]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.sess == nil {
		return nil, errors.New("onnxruntime: session is closed")
	}

	batch := len(inputIDs)
	if batch == 0 {
		return nil, nil
	}
	seqLen := len(inputIDs[0])

	flatIDs := flatten(inputIDs)
	flatMask := flatten(attentionMask)
	flatTypes := flatten(tokenTypeIDs)

	var out *C.float
	result := C.ort_run_embedding(
		s.sess,
		(*C.int64_t)(unsafe.Pointer(&flatIDs[0])),
		(*C.int64_t)(unsafe.Pointer(&flatMask[0])),
		(*C.int64_t)(unsafe.Pointer(&flatTypes[0])),
		C.int(batch), C.int(seqLen), C.int(s.hiddenSize),
		&out,
	)
	if result != 0 {
		errMsg := C.GoString(C.ort_get_error())
		return nil, errors.New("onnxruntime: embedding inference failed: " + errMsg)
	}
	defer C.ort_free_floats(out)

	flatOut := unsafe.Slice((*float32)(unsafe.Pointer(out)), batch*seqLen*s.hiddenSize)
	hidden := make([][][]float32, batch)
	for b := 0; b < batch; b++ {
		hidden[b] = make([][]float32, seqLen)
		for t := 0; t < seqLen; t++ {
			start := (b*seqLen + t) * s.hiddenSize
			vec := make([]float32, s.hiddenSize)
			copy(vec, flatOut[start:start+s.hiddenSize])
			hidden[b][t] = vec
		}
	}
	return hidden, nil
}

// RunReranker runs the reranker model for a single-example batch
// (query, content) and returns the scalar relevance logit at [0,0].
func (s *Session) RunReranker(_ context.Context, inputIDs, attentionMask, tokenTypeIDs [][]int64) (float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.sess == nil {
		return 0, errors.New("onnxruntime: session is closed")
	}
	if len(inputIDs) == 0 {
		return 0, errors.New("onnxruntime: empty reranker batch")
	}

	seqLen := len(inputIDs[0])
	ids, mask, types := inputIDs[0], attentionMask[0], tokenTypeIDs[0]

	var out *C.float
	result := C.ort_run_reranker(
		s.sess,
		(*C.int64_t)(unsafe.Pointer(&ids[0])),
		(*C.int64_t)(unsafe.Pointer(&mask[0])),
		(*C.int64_t)(unsafe.Pointer(&types[0])),
		C.int(seqLen),
		&out,
	)
	if result != 0 {
		errMsg := C.GoString(C.ort_get_error())
		return 0, errors.New("onnxruntime: reranker inference failed: " + errMsg)
	}
	defer C.ort_free_floats(out)

	return float32(*out), nil
}

// Close releases the underlying ONNX Runtime session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess != nil {
		C.ort_close_session(s.sess)
		s.sess = nil
	}
	return nil
}

func flatten(rows [][]int64) []int64 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]int64, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}
