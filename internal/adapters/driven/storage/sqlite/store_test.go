package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localforge/ragcore/internal/core/domain"
)

// setupTestStore creates a temporary SQLite chunk store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "ragcore-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

func sampleRecord(sourceURI string, index, total int) domain.ChunkRecord {
	return domain.ChunkRecord{
		Content:      "chunk content",
		SourceURI:    sourceURI,
		SourceType:   "plaintext",
		ChunkIndex:   index,
		TotalChunks:  total,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		VectorDigest: "digest",
	}
}

func TestNewStore_Success(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "ragcore-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "chunks.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_DefaultDirectory(t *testing.T) {
	store, err := NewStore("")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	assert.Contains(t, store.Path(), ".ragcore")
	assert.Contains(t, store.Path(), "chunks.db")

	dataDir := filepath.Dir(store.Path())
	defer os.RemoveAll(filepath.Dir(dataDir))
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "ragcore-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	nestedDir := filepath.Join(tempDir, "nested", "path", "to", "db")
	store, err := NewStore(nestedDir)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, nestedDir)
}

func TestNewStore_ErrorOpeningDatabase(t *testing.T) {
	tempFile, err := os.CreateTemp("", "not-a-dir-*")
	require.NoError(t, err)
	tempFile.Close()
	defer os.Remove(tempFile.Name())

	_, err = NewStore(tempFile.Name())
	assert.Error(t, err)
}

func TestNewStore_Migrations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Greater(t, count, 0)

	var tableExists int
	err = store.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='chunks'",
	).Scan(&tableExists)
	require.NoError(t, err)
	assert.Equal(t, 1, tableExists)
}

func TestStore_ForeignKeysEnabled(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var enabled int
	err := store.db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	assert.Equal(t, 1, enabled)
}

func TestStore_WALMode(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var journalMode string
	err := store.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	require.NoError(t, err)
	assert.Equal(t, "wal", journalMode)
}

func TestStore_Close(t *testing.T) {
	store, _ := setupTestStore(t)

	require.NoError(t, store.Close())
	assert.Error(t, store.db.Ping())
}

func TestInsertBatch_AssignsMonotonicIDs(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	records := []domain.ChunkRecord{
		sampleRecord("file:///a.txt", 0, 2),
		sampleRecord("file:///a.txt", 1, 2),
	}

	ids, err := store.InsertBatch(ctx, records)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, int64(1), ids[0])
	assert.Equal(t, int64(2), ids[1])
}

func TestInsertBatch_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	ids, err := store.InsertBatch(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestInsertBatch_ErrorOnClosedStore(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.db.Close())

	_, err := store.InsertBatch(ctx, []domain.ChunkRecord{sampleRecord("file:///a.txt", 0, 1)})
	assert.Error(t, err)
}

func TestGet_RoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	record := sampleRecord("file:///a.txt", 0, 1)
	ids, err := store.InsertBatch(ctx, []domain.ChunkRecord{record})
	require.NoError(t, err)

	got, err := store.Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, domain.ChunkID(ids[0]), got.ID)
	assert.Equal(t, record.Content, got.Content)
	assert.Equal(t, record.SourceURI, got.SourceURI)
	assert.Equal(t, record.VectorDigest, got.VectorDigest)
}

func TestGet_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.Get(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetBatch_SkipsMissingIDs(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	ids, err := store.InsertBatch(ctx, []domain.ChunkRecord{
		sampleRecord("file:///a.txt", 0, 2),
		sampleRecord("file:///a.txt", 1, 2),
	})
	require.NoError(t, err)

	got, err := store.GetBatch(ctx, append(ids, 9999))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestGetBatch_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	got, err := store.GetBatch(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListBySourceURI_OrderedByChunkIndex(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.InsertBatch(ctx, []domain.ChunkRecord{
		sampleRecord("file:///a.txt", 2, 3),
		sampleRecord("file:///a.txt", 0, 3),
		sampleRecord("file:///a.txt", 1, 3),
		sampleRecord("file:///b.txt", 0, 1),
	})
	require.NoError(t, err)

	records, err := store.ListBySourceURI(ctx, "file:///a.txt")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 0, records[0].ChunkIndex)
	assert.Equal(t, 1, records[1].ChunkIndex)
	assert.Equal(t, 2, records[2].ChunkIndex)
}

func TestListBySourceURI_UnknownSourceReturnsEmpty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	records, err := store.ListBySourceURI(ctx, "file:///missing.txt")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSize(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	size, err := store.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size)

	_, err = store.InsertBatch(ctx, []domain.ChunkRecord{
		sampleRecord("file:///a.txt", 0, 1),
	})
	require.NoError(t, err)

	size, err = store.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestReset_ClearsRecordsAndRestartsIDsAtOne(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.InsertBatch(ctx, []domain.ChunkRecord{
		sampleRecord("file:///a.txt", 0, 1),
		sampleRecord("file:///a.txt", 1, 1),
	})
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx))

	size, err := store.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size)

	ids, err := store.InsertBatch(ctx, []domain.ChunkRecord{
		sampleRecord("file:///b.txt", 0, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), ids[0])
}

func TestStore_MigrationIdempotency(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "ragcore-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store1, err := NewStore(tempDir)
	require.NoError(t, err)

	var count1 int
	require.NoError(t, store1.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count1))
	require.NoError(t, store1.Close())

	store2, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store2.Close()

	var count2 int
	require.NoError(t, store2.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count2))
	assert.Equal(t, count1, count2)
}
