package vector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_BuildsEmptyIndexWhenFileAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")

	idx, err := Open(path, 4)
	require.NoError(t, err)
	defer idx.Close()

	assert.Equal(t, 4, idx.Dimension())
	assert.Equal(t, 0, idx.Count())
}

func TestOpen_LoadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")

	first, err := Open(path, 3)
	require.NoError(t, err)
	require.NoError(t, first.AddWithIDs(context.Background(), []int64{1, 2}, [][]float32{
		{1, 0, 0},
		{0, 1, 0},
	}))
	require.NoError(t, first.Save(path))
	require.NoError(t, first.Close())

	_, statErr := os.Stat(path)
	require.NoError(t, statErr)

	second, err := Open(path, 3)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, 2, second.Count())
}
