// Package portable implements the pure-Go lexical-index variant: a
// hand-rolled inverted index with BM25 scoring. No pure-Go BM25 library
// fits this role (the native variant wraps a real C BM25 library via cgo
// instead); this package follows the same precedent as the vector index's
// portable fallback — a portable variant is hand-implemented, not
// library-backed — and applies it to the lexical index's non-cgo path.
package portable

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/localforge/ragcore/internal/core/domain"
	"github.com/localforge/ragcore/internal/core/ports/driven"
)

const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "he": {}, "in": {}, "is": {},
	"it": {}, "its": {}, "of": {}, "on": {}, "that": {}, "the": {}, "to": {},
	"was": {}, "were": {}, "will": {}, "with": {},
}

type posting struct {
	id   int64
	freq int
}

// Ensure Engine implements the interface.
var _ driven.SearchEngine = (*Engine)(nil)

// Engine is the pure-Go fallback lexical index.
type Engine struct {
	mu sync.RWMutex

	postings   map[string][]posting
	docLength  map[int64]int
	docExists  map[int64]bool
	totalTerms int

	pending map[int64][]string // id -> analyzed terms, staged until Commit
}

// New creates an empty portable lexical index.
func New() *Engine {
	return &Engine{
		postings:  make(map[string][]posting),
		docLength: make(map[int64]int),
		docExists: make(map[int64]bool),
		pending:   make(map[int64][]string),
	}
}

// analyze performs standard Unicode tokenization with lowercasing and
// typical stopword handling.
func analyze(text string) []string {
	var terms []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		term := strings.ToLower(cur.String())
		cur.Reset()
		if _, stop := stopwords[term]; stop {
			return
		}
		terms = append(terms, term)
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return terms
}

// Index stages a chunk document; it becomes searchable only after Commit.
func (e *Engine) Index(_ context.Context, record domain.ChunkRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending[int64(record.ID)] = analyze(record.Content)
	return nil
}

// Delete removes a document from the lexical index by identifier.
func (e *Engine) Delete(_ context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.pending, id)
	if !e.docExists[id] {
		return nil
	}
	for term, list := range e.postings {
		filtered := list[:0]
		for _, p := range list {
			if p.id != id {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) == 0 {
			delete(e.postings, term)
		} else {
			e.postings[term] = filtered
		}
	}
	e.totalTerms -= e.docLength[id]
	delete(e.docLength, id)
	delete(e.docExists, id)
	return nil
}

// Commit makes every staged document since the last commit visible to Search.
func (e *Engine) Commit(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, terms := range e.pending {
		counts := make(map[string]int)
		for _, t := range terms {
			counts[t]++
		}
		for term, freq := range counts {
			e.postings[term] = append(e.postings[term], posting{id: id, freq: freq})
		}
		e.docLength[id] = len(terms)
		e.docExists[id] = true
		e.totalTerms += len(terms)
	}
	e.pending = make(map[int64][]string)
	return nil
}

// Search performs a BM25 keyword search and returns the top_k hits.
func (e *Engine) Search(_ context.Context, query string, topK int) ([]driven.SearchHit, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if topK <= 0 || len(e.docExists) == 0 {
		return nil, nil
	}

	n := float64(len(e.docExists))
	avgdl := 0.0
	if n > 0 {
		avgdl = float64(e.totalTerms) / n
	}

	scores := make(map[int64]float64)
	seen := make(map[string]bool)
	for _, term := range analyze(query) {
		if seen[term] {
			continue
		}
		seen[term] = true

		list := e.postings[term]
		if len(list) == 0 {
			continue
		}
		idf := math.Log((n-float64(len(list))+0.5)/(float64(len(list))+0.5) + 1)

		for _, p := range list {
			dl := float64(e.docLength[p.id])
			tf := float64(p.freq)
			denom := tf + bm25K1*(1-bm25B+bm25B*dl/avgdl)
			scores[p.id] += idf * (tf * (bm25K1 + 1) / denom)
		}
	}

	hits := make([]driven.SearchHit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, driven.SearchHit{ID: id, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Close releases resources; the portable variant holds none.
func (e *Engine) Close() error { return nil }
