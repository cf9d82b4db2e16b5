// Package extraction implements per-file-extension text extraction feeding
// the chunker. Richer PDF/HTML/OCR extraction stays out of scope; this
// package covers plain text and markdown, plus a registry other
// extractors can join.
package extraction

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/localforge/ragcore/internal/core/domain"
)

// Extractor pulls plain text out of a single file on disk.
type Extractor interface {
	// Extract reads path and returns its text content.
	Extract(path string) (string, error)
}

// Registry dispatches extraction by lowercased file extension, the same
// name-to-builder shape the postprocessor registry uses, specialised to
// stateless extractors keyed by extension instead of config-built
// processors keyed by name.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry creates an empty extension registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]Extractor)}
}

// Register associates an extension (e.g. ".md") with an extractor.
// Extensions are matched case-insensitively.
func (r *Registry) Register(ext string, e Extractor) {
	r.extractors[strings.ToLower(ext)] = e
}

// Has returns true if ext has a registered extractor.
func (r *Registry) Has(ext string) bool {
	_, ok := r.extractors[strings.ToLower(ext)]
	return ok
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	return exts
}

// Extract dispatches path to the extractor registered for its extension.
// An unsupported extension or empty extracted text is a
// domain.ErrUserContent error: reported per file, ingest continues.
func (r *Registry) Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.extractors[ext]
	if !ok {
		return "", fmt.Errorf("%w: unsupported file extension %q", domain.ErrUserContent, ext)
	}

	text, err := e.Extract(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUserContent, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no extractable text in %s", domain.ErrUserContent, path)
	}
	return text, nil
}

// RegisterDefaults registers the built-in plain-text and markdown
// extractors under the extensions they handle.
func RegisterDefaults(r *Registry) {
	pt := NewPlainText()
	for _, ext := range []string{
		".txt", ".go", ".py", ".rs", ".java", ".c", ".h", ".cpp", ".hpp",
		".rb", ".sh", ".sql", ".csv", ".yaml", ".yml", ".toml", ".js",
		".jsx", ".ts", ".tsx", ".css", ".html", ".json", ".xml",
	} {
		r.Register(ext, pt)
	}

	md := NewMarkdown()
	r.Register(".md", md)
	r.Register(".markdown", md)
}
