// Package vector resolves the vector index to its native (cgo, HNSWlib)
// or portable (pure Go, exhaustive search) variant at build time, the same
// way cgo/hnsw pairs with a !cgo stub, except here the fallback is a real
// alternative implementation rather than a stub.
package vector

import (
	"os"

	"github.com/localforge/ragcore/internal/core/ports/driven"
)

// Open builds a fresh, empty index for dimension and loads path's
// on-disk contents into it if path exists. Switching between the native
// and portable variant requires deleting path first; the two formats are
// incompatible.
func Open(path string, dimension int) (driven.VectorIndex, error) {
	idx, err := newIndex(dimension)
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(path); statErr == nil {
		if err := idx.Load(path); err != nil {
			idx.Close()
			return nil, err
		}
	}
	return idx, nil
}
