// Package lexical resolves the lexical index to its native (cgo, Xapian)
// or portable (pure Go, hand-rolled BM25) variant at build time.
package lexical

import (
	"github.com/localforge/ragcore/internal/core/ports/driven"
)

// Open builds the lexical index rooted at path (a directory for the
// native Xapian variant; ignored by the portable variant).
func Open(path string) (driven.SearchEngine, error) {
	return newEngine(path)
}
