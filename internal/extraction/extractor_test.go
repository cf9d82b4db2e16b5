package extraction

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/localforge/ragcore/internal/core/domain"
)

func writeFile(t *testing.T, name, content string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtract_PlainText(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	path := writeFile(t, "notes.txt", "hello world")
	text, err := r.Extract(path)
	require.NoError(t, err)
	require.Equal(t, "hello world", text)
}

func TestExtract_MarkdownStripsFormatting(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	path := writeFile(t, "doc.md", "# Title\n\nSome **bold** text and a [link](http://example.com).")
	text, err := r.Extract(path)
	require.NoError(t, err)
	require.Contains(t, text, "Title")
	require.Contains(t, text, "bold")
	require.Contains(t, text, "link")
	require.NotContains(t, text, "**")
	require.NotContains(t, text, "[link]")
}

func TestExtract_UnsupportedExtensionIsUserContentError(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	path := writeFile(t, "image.png", "not text")
	_, err := r.Extract(path)
	require.ErrorIs(t, err, domain.ErrUserContent)
}

func TestExtract_EmptyTextIsUserContentError(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	path := writeFile(t, "empty.txt", "   \n\n  ")
	_, err := r.Extract(path)
	require.ErrorIs(t, err, domain.ErrUserContent)
}

func TestRegisterDefaults_CoversCommonExtensions(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	require.True(t, r.Has(".txt"))
	require.True(t, r.Has(".md"))
	require.True(t, r.Has(".MARKDOWN"))
	require.True(t, r.Has(".go"))
	require.False(t, r.Has(".pdf"))
}
