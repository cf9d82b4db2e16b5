package portable

import (
	"context"
	"testing"

	"github.com/localforge/ragcore/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestSearchRanksByBM25(t *testing.T) {
	ctx := context.Background()
	e := New()

	require.NoError(t, e.Index(ctx, domain.ChunkRecord{ID: 1, Content: "the quick brown fox jumps over the lazy dog"}))
	require.NoError(t, e.Index(ctx, domain.ChunkRecord{ID: 2, Content: "foxes are quick quick quick animals"}))
	require.NoError(t, e.Index(ctx, domain.ChunkRecord{ID: 3, Content: "completely unrelated text about baking bread"}))
	require.NoError(t, e.Commit(ctx))

	hits, err := e.Search(ctx, "quick fox", 3)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	// Only doc 1 contains the exact term "fox" (the analyzer does not stem
	// "foxes"), and that rarer term outweighs doc 2's repeated "quick".
	require.Equal(t, int64(1), hits[0].ID)
}

func TestUncommittedDocumentsAreInvisible(t *testing.T) {
	ctx := context.Background()
	e := New()
	require.NoError(t, e.Index(ctx, domain.ChunkRecord{ID: 1, Content: "hybrid retrieval augmented generation"}))

	hits, err := e.Search(ctx, "hybrid", 5)
	require.NoError(t, err)
	require.Empty(t, hits)

	require.NoError(t, e.Commit(ctx))
	hits, err = e.Search(ctx, "hybrid", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestDeleteRemovesDocumentFromResults(t *testing.T) {
	ctx := context.Background()
	e := New()
	require.NoError(t, e.Index(ctx, domain.ChunkRecord{ID: 1, Content: "alpha beta gamma"}))
	require.NoError(t, e.Index(ctx, domain.ChunkRecord{ID: 2, Content: "alpha beta delta"}))
	require.NoError(t, e.Commit(ctx))

	require.NoError(t, e.Delete(ctx, 1))

	hits, err := e.Search(ctx, "alpha", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, int64(2), hits[0].ID)
}

func TestSearchWithNoIndexedDocumentsReturnsEmpty(t *testing.T) {
	ctx := context.Background()
	e := New()
	hits, err := e.Search(ctx, "anything", 5)
	require.NoError(t, err)
	require.Empty(t, hits)
}
