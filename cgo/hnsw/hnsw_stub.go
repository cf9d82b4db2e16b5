//go:build !cgo

package hnsw

import (
	"context"

	"github.com/localforge/ragcore/internal/core/domain"
	"github.com/localforge/ragcore/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Precision defines the storage precision for vectors.
type Precision int

const (
	PrecisionFloat32 Precision = 0
	PrecisionFloat16 Precision = 1
	PrecisionInt8    Precision = 2
)

// Index is a stub for builds without CGO. The platform resolver falls
// back to the portable variant instead of constructing this type.
type Index struct {
	dimension int
	precision Precision
}

// New returns a stub index; all operations report domain.ErrResource.
func New(dimension int, precision Precision) (*Index, error) {
	return &Index{dimension: dimension, precision: precision}, nil
}

func (idx *Index) Dimension() int { return idx.dimension }
func (idx *Index) Count() int     { return 0 }

func (idx *Index) AddWithIDs(_ context.Context, _ []int64, _ [][]float32) error {
	return domain.ErrResource
}

func (idx *Index) Search(_ context.Context, _ []float32, _ int) ([]driven.VectorHit, error) {
	return nil, domain.ErrResource
}

func (idx *Index) SearchBatch(_ context.Context, _ [][]float32, _ int) ([][]driven.VectorHit, error) {
	return nil, domain.ErrResource
}

func (idx *Index) Save(_ string) error { return domain.ErrResource }
func (idx *Index) Load(_ string) error { return domain.ErrResource }
func (idx *Index) Close() error        { return nil }
