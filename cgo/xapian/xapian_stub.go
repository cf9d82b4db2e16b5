//go:build !cgo

package xapian

import (
	"context"

	"github.com/localforge/ragcore/internal/core/domain"
	"github.com/localforge/ragcore/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.SearchEngine = (*Engine)(nil)

// Engine is a stub for builds without CGO. The platform resolver falls
// back to the portable variant instead of constructing this type.
type Engine struct {
	path string
}

// New returns a stub engine; all operations report domain.ErrResource.
func New(path string) (*Engine, error) {
	return &Engine{path: path}, nil
}

func (e *Engine) Index(_ context.Context, _ domain.ChunkRecord) error {
	return domain.ErrResource
}

func (e *Engine) Delete(_ context.Context, _ int64) error {
	return domain.ErrResource
}

func (e *Engine) Commit(_ context.Context) error {
	return domain.ErrResource
}

func (e *Engine) Search(_ context.Context, _ string, _ int) ([]driven.SearchHit, error) {
	return nil, domain.ErrResource
}

func (e *Engine) Close() error {
	return nil
}
