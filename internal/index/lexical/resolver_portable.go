//go:build !cgo

package lexical

import (
	"github.com/localforge/ragcore/internal/core/ports/driven"
	"github.com/localforge/ragcore/internal/index/lexical/portable"
)

// newEngine ignores path: the portable BM25 engine is in-memory only and
// is not persisted. Each process starts with an empty engine that holds
// only the chunks indexed during that process; nothing repopulates it
// from the chunk store.
func newEngine(_ string) (driven.SearchEngine, error) {
	return portable.New(), nil
}
