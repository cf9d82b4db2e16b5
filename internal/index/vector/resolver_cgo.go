//go:build cgo

package vector

import (
	"github.com/localforge/ragcore/cgo/hnsw"
	"github.com/localforge/ragcore/internal/core/ports/driven"
)

func newIndex(dimension int) (driven.VectorIndex, error) {
	return hnsw.New(dimension, hnsw.PrecisionFloat32)
}
