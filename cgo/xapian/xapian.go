//go:build cgo

package xapian

/*
#cgo pkg-config: xapian-core
#cgo CXXFLAGS: -std=c++17

#include "xapian_wrapper.h"
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"errors"
	"sync"
	"unsafe"

	"github.com/localforge/ragcore/internal/core/domain"
	"github.com/localforge/ragcore/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.SearchEngine = (*Engine)(nil)

// Engine provides BM25 full-text search over chunk records using Xapian.
type Engine struct {
	mu   sync.RWMutex
	db   C.xapian_db
	path string
}

// New opens (creating if absent) a Xapian database rooted at path.
func New(path string) (*Engine, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	db := C.xapian_open(cpath)
	if db == nil {
		errMsg := C.GoString(C.xapian_get_error())
		return nil, errors.New("xapian: failed to open database: " + errMsg)
	}

	return &Engine{db: db, path: path}, nil
}

// Index stages a chunk document for BM25 retrieval under its identifier.
// It becomes searchable only once Commit flushes the write batch.
func (e *Engine) Index(_ context.Context, record domain.ChunkRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil {
		return errors.New("xapian: database is closed")
	}

	cContent := C.CString(record.Content)
	defer C.free(unsafe.Pointer(cContent))

	result := C.xapian_index(e.db, C.int64_t(record.ID), cContent)
	if result != 0 {
		errMsg := C.GoString(C.xapian_get_error())
		return errors.New("xapian: failed to index chunk: " + errMsg)
	}
	return nil
}

// Delete removes a chunk document from the index by identifier.
func (e *Engine) Delete(_ context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil {
		return errors.New("xapian: database is closed")
	}

	result := C.xapian_delete(e.db, C.int64_t(id))
	if result != 0 {
		errMsg := C.GoString(C.xapian_get_error())
		return errors.New("xapian: failed to delete chunk: " + errMsg)
	}
	return nil
}

// Commit flushes staged writes so they become visible to Search.
func (e *Engine) Commit(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil {
		return errors.New("xapian: database is closed")
	}
	if C.xapian_commit(e.db) != 0 {
		errMsg := C.GoString(C.xapian_get_error())
		return errors.New("xapian: failed to commit: " + errMsg)
	}
	return nil
}

// Search performs a BM25 keyword search and returns matching ids with scores.
func (e *Engine) Search(_ context.Context, query string, limit int) ([]driven.SearchHit, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.db == nil {
		return nil, errors.New("xapian: database is closed")
	}

	cQuery := C.CString(query)
	defer C.free(unsafe.Pointer(cQuery))

	results := C.xapian_search(e.db, cQuery, C.int(limit))
	defer C.xapian_free_results(results)

	if results.results == nil {
		errMsg := C.GoString(C.xapian_get_error())
		if errMsg != "" {
			return nil, errors.New("xapian: search failed: " + errMsg)
		}
		return nil, nil
	}

	cResults := unsafe.Slice(results.results, int(results.count))
	hits := make([]driven.SearchHit, int(results.count))
	for i := 0; i < int(results.count); i++ {
		hits[i] = driven.SearchHit{
			ID:    int64(cResults[i].chunk_id),
			Score: float64(cResults[i].score),
		}
	}
	return hits, nil
}

// Close releases resources.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db != nil {
		C.xapian_close(e.db)
		e.db = nil
	}
	return nil
}
