//go:build cgo

package hnsw

/*
#cgo CXXFLAGS: -std=c++17 -O3 -I${SRCDIR}/../../clib/build/_deps/hnswlib-src
#cgo LDFLAGS: -lstdc++

#include "hnsw_wrapper.h"
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

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// DefaultMaxElements bounds the initial HNSWlib graph allocation; it grows
// automatically beyond this on insert.
const DefaultMaxElements = 100000

// Precision defines the storage precision for vectors.
// Runtime operations always use float32; this only affects disk storage.
type Precision int

const (
	// PrecisionFloat32 stores vectors at full precision (no compression).
	PrecisionFloat32 Precision = 0
	// PrecisionFloat16 stores vectors at half precision (50% storage savings).
	PrecisionFloat16 Precision = 1
	// PrecisionInt8 stores vectors at 8-bit precision (75% storage savings).
	PrecisionInt8 Precision = 2
)

// Index is the cgo-backed vector index: inner-product ANN search over
// HNSWlib, with arbitrary int64-ID association and a platform-native
// binary format.
type Index struct {
	mu        sync.RWMutex
	idx       *C.HnswIndex
	dimension int
	precision Precision
	count     int
}

// New creates an empty HNSW index for the given dimension and storage precision.
// The precision parameter only affects disk storage; runtime always uses float32.
func New(dimension int, precision Precision) (*Index, error) {
	if dimension <= 0 {
		return nil, errors.New("hnsw: dimension must be positive")
	}

	idx := C.hnsw_create(C.int(dimension), C.int(DefaultMaxElements), C.HnswPrecision(precision))
	if idx == nil {
		return nil, errors.New("hnsw: failed to create index")
	}

	return &Index{idx: idx, dimension: dimension, precision: precision}, nil
}

// Dimension returns the configured vector dimension.
func (idx *Index) Dimension() int { return idx.dimension }

// Count returns the number of vectors currently held.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.count
}

// AddWithIDs inserts vectors under caller-supplied identifiers.
func (idx *Index) AddWithIDs(_ context.Context, ids []int64, vectors [][]float32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.idx == nil {
		return errors.New("hnsw: index is closed")
	}
	if len(ids) != len(vectors) {
		return errors.New("hnsw: ids/vectors length mismatch")
	}

	for i, v := range vectors {
		if len(v) != idx.dimension {
			return errors.New("hnsw: embedding dimension mismatch")
		}
		result := C.hnsw_add(idx.idx, C.int64_t(ids[i]), (*C.float)(unsafe.Pointer(&v[0])), C.int(idx.dimension))
		if result != 0 {
			return errors.New("hnsw: failed to add vector")
		}
		idx.count++
	}
	return nil
}

// Search finds the top_k nearest neighbours to the query vector.
func (idx *Index) Search(ctx context.Context, query []float32, topK int) ([]driven.VectorHit, error) {
	hits, err := idx.SearchBatch(ctx, [][]float32{query}, topK)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}
	return hits[0], nil
}

// SearchBatch runs Search over multiple query vectors.
func (idx *Index) SearchBatch(_ context.Context, queries [][]float32, topK int) ([][]driven.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.idx == nil {
		return nil, errors.New("hnsw: index is closed")
	}
	if topK <= 0 {
		return make([][]driven.VectorHit, len(queries)), nil
	}

	out := make([][]driven.VectorHit, len(queries))
	for qi, query := range queries {
		if len(query) != idx.dimension {
			return nil, errors.New("hnsw: query dimension mismatch")
		}

		var results *C.HnswSearchResult
		count := C.hnsw_search(idx.idx, (*C.float)(unsafe.Pointer(&query[0])), C.int(idx.dimension), C.int(topK), &results)
		if count < 0 {
			return nil, errors.New("hnsw: search failed")
		}
		if count == 0 || results == nil {
			out[qi] = nil
			continue
		}
		defer C.hnsw_free_results(results, count)

		hits := make([]driven.VectorHit, int(count))
		cResults := unsafe.Slice(results, int(count))
		for i := 0; i < int(count); i++ {
			hits[i] = driven.VectorHit{ID: int64(cResults[i].id), Score: float32(cResults[i].similarity)}
		}
		out[qi] = hits
	}
	return out, nil
}

// Save persists the index to path as a total replacement.
func (idx *Index) Save(path string) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.idx == nil {
		return errors.New("hnsw: index is closed")
	}
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	if C.hnsw_save(idx.idx, cpath) != 0 {
		return errors.New("hnsw: failed to save index")
	}
	return nil
}

// Load replaces in-memory state with the contents of path.
func (idx *Index) Load(path string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	loaded := C.hnsw_open(cpath, C.int(idx.dimension))
	if loaded == nil {
		return errors.New("hnsw: failed to load index")
	}
	if idx.idx != nil {
		C.hnsw_close(idx.idx)
	}
	idx.idx = loaded
	idx.count = int(C.hnsw_count(loaded))
	return nil
}

// Close releases resources.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.idx != nil {
		C.hnsw_close(idx.idx)
		idx.idx = nil
	}
	return nil
}
