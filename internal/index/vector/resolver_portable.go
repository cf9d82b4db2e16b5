//go:build !cgo

package vector

import (
	"github.com/localforge/ragcore/internal/core/ports/driven"
	"github.com/localforge/ragcore/internal/index/vector/portable"
)

func newIndex(dimension int) (driven.VectorIndex, error) {
	return portable.New(dimension)
}
