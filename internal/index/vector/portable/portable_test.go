package portable

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	idx, err := New(4)
	require.NoError(t, err)

	ids := []int64{1, 2, 3}
	vectors := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}
	require.NoError(t, idx.AddWithIDs(ctx, ids, vectors))

	path := filepath.Join(t.TempDir(), "vectors.bin")
	require.NoError(t, idx.Save(path))

	loaded, err := New(4)
	require.NoError(t, err)
	require.NoError(t, loaded.Load(path))

	require.Equal(t, idx.Count(), loaded.Count())
	require.Equal(t, idx.Dimension(), loaded.Dimension())

	hits, err := loaded.Search(ctx, []float32{1, 0, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, int64(1), hits[0].ID)
}

func TestSearchSentinelWhenFewerThanTopK(t *testing.T) {
	ctx := context.Background()
	idx, err := New(2)
	require.NoError(t, err)
	require.NoError(t, idx.AddWithIDs(ctx, []int64{1}, [][]float32{{1, 0}}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	require.Equal(t, int64(1), hits[0].ID)
	require.Equal(t, int64(-1), hits[1].ID)
	require.Equal(t, float32(0), hits[1].Score)
	require.Equal(t, int64(-1), hits[2].ID)
}

func TestDimensionMismatchIsFatal(t *testing.T) {
	ctx := context.Background()
	idx, err := New(3)
	require.NoError(t, err)
	err = idx.AddWithIDs(ctx, []int64{1}, [][]float32{{1, 0}})
	require.Error(t, err)
}
