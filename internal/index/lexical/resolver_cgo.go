//go:build cgo

package lexical

import (
	"github.com/localforge/ragcore/cgo/xapian"
	"github.com/localforge/ragcore/internal/core/ports/driven"
)

func newEngine(path string) (driven.SearchEngine, error) {
	return xapian.New(path)
}
