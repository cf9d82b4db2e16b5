package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/localforge/ragcore/internal/core/domain"
	"github.com/localforge/ragcore/internal/core/ports/driven"
)

// mutableChunkStore is a writable test double tracking an id counter so
// IndexWriter's ordering discipline can be observed end-to-end.
type mutableChunkStore struct {
	nextID  int64
	records map[int64]domain.ChunkRecord
	resets  int
}

func newMutableChunkStore() *mutableChunkStore {
	return &mutableChunkStore{nextID: 1, records: map[int64]domain.ChunkRecord{}}
}

func (s *mutableChunkStore) InsertBatch(_ context.Context, records []domain.ChunkRecord) ([]int64, error) {
	ids := make([]int64, len(records))
	for i, rec := range records {
		id := s.nextID
		s.nextID++
		rec.ID = domain.ChunkID(id)
		s.records[id] = rec
		ids[i] = id
	}
	return ids, nil
}
func (s *mutableChunkStore) Get(_ context.Context, id int64) (*domain.ChunkRecord, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}
func (s *mutableChunkStore) GetBatch(_ context.Context, ids []int64) ([]domain.ChunkRecord, error) {
	out := make([]domain.ChunkRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.records[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}
func (s *mutableChunkStore) ListBySourceURI(_ context.Context, _ string) ([]domain.ChunkRecord, error) {
	return nil, nil
}
func (s *mutableChunkStore) Size(_ context.Context) (int, error) { return len(s.records), nil }
func (s *mutableChunkStore) Reset(_ context.Context) error {
	s.resets++
	s.records = map[int64]domain.ChunkRecord{}
	s.nextID = 1
	return nil
}
func (s *mutableChunkStore) Close() error { return nil }

type mutableVectorIndex struct {
	ids     []int64
	vectors [][]float32
	saved   string
	loaded  string
	closed  bool
}

func (v *mutableVectorIndex) Dimension() int { return 4 }
func (v *mutableVectorIndex) Count() int     { return len(v.ids) }
func (v *mutableVectorIndex) AddWithIDs(_ context.Context, ids []int64, vectors [][]float32) error {
	v.ids = append(v.ids, ids...)
	v.vectors = append(v.vectors, vectors...)
	return nil
}
func (v *mutableVectorIndex) Search(_ context.Context, _ []float32, _ int) ([]driven.VectorHit, error) {
	return nil, nil
}
func (v *mutableVectorIndex) SearchBatch(_ context.Context, _ [][]float32, _ int) ([][]driven.VectorHit, error) {
	return nil, nil
}
func (v *mutableVectorIndex) Save(path string) error { v.saved = path; return nil }
func (v *mutableVectorIndex) Load(path string) error { v.loaded = path; return nil }
func (v *mutableVectorIndex) Close() error            { v.closed = true; return nil }

type mutableSearchEngine struct {
	indexed   []domain.ChunkRecord
	committed int
	closed    bool
}

func (e *mutableSearchEngine) Index(_ context.Context, record domain.ChunkRecord) error {
	e.indexed = append(e.indexed, record)
	return nil
}
func (e *mutableSearchEngine) Delete(_ context.Context, _ int64) error { return nil }
func (e *mutableSearchEngine) Commit(_ context.Context) error         { e.committed++; return nil }
func (e *mutableSearchEngine) Search(_ context.Context, _ string, _ int) ([]driven.SearchHit, error) {
	return nil, nil
}
func (e *mutableSearchEngine) Close() error { e.closed = true; return nil }

func TestAddBatch_AssignsIdentifiersInInsertionOrderAndIndexesEverything(t *testing.T) {
	chunkStore := newMutableChunkStore()
	vectors := &mutableVectorIndex{}
	lexical := &mutableSearchEngine{}
	w := NewIndexWriter(chunkStore, vectors, lexical, "", "", nil, nil)

	chunks := []PendingChunk{
		{Record: domain.ChunkRecord{Content: "a"}, Vector: []float32{1, 0, 0, 0}},
		{Record: domain.ChunkRecord{Content: "b"}, Vector: []float32{0, 1, 0, 0}},
	}

	ids, err := w.AddBatch(context.Background(), chunks)
	require.NoError(t, err)
	require.Equal(t, []domain.ChunkID{1, 2}, ids)

	require.Equal(t, []int64{1, 2}, vectors.ids)
	require.Len(t, lexical.indexed, 2)
	require.Equal(t, domain.ChunkID(1), lexical.indexed[0].ID)
	require.Equal(t, domain.ChunkID(2), lexical.indexed[1].ID)
	require.Equal(t, 1, lexical.committed)
}

func TestAddBatch_Empty(t *testing.T) {
	w := NewIndexWriter(newMutableChunkStore(), &mutableVectorIndex{}, &mutableSearchEngine{}, "", "", nil, nil)
	ids, err := w.AddBatch(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, ids)
}

func TestSaveAndLoadVectorIndex(t *testing.T) {
	vectors := &mutableVectorIndex{}
	w := NewIndexWriter(newMutableChunkStore(), vectors, &mutableSearchEngine{}, "/tmp/vectors.bin", "", nil, nil)

	require.NoError(t, w.SaveVectorIndex())
	require.Equal(t, "/tmp/vectors.bin", vectors.saved)

	require.NoError(t, w.LoadVectorIndex())
	require.Equal(t, "/tmp/vectors.bin", vectors.loaded)
}

func TestReset_RecreatesStoresViaFactories(t *testing.T) {
	chunkStore := newMutableChunkStore()
	vectors := &mutableVectorIndex{}
	lexical := &mutableSearchEngine{}

	freshVector := &mutableVectorIndex{}
	freshSearch := &mutableSearchEngine{}

	w := NewIndexWriter(chunkStore, vectors, lexical, "", "",
		func() (driven.VectorIndex, error) { return freshVector, nil },
		func() (driven.SearchEngine, error) { return freshSearch, nil },
	)

	_, err := w.AddBatch(context.Background(), []PendingChunk{
		{Record: domain.ChunkRecord{Content: "a"}, Vector: []float32{1, 0, 0, 0}},
	})
	require.NoError(t, err)

	require.NoError(t, w.Reset(context.Background()))

	require.Equal(t, 1, chunkStore.resets)
	require.True(t, vectors.closed)
	require.True(t, lexical.closed)

	size, err := w.Size(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, size)
}

func TestSize(t *testing.T) {
	chunkStore := newMutableChunkStore()
	w := NewIndexWriter(chunkStore, &mutableVectorIndex{}, &mutableSearchEngine{}, "", "", nil, nil)

	_, err := w.AddBatch(context.Background(), []PendingChunk{
		{Record: domain.ChunkRecord{Content: "a"}, Vector: []float32{1, 0, 0, 0}},
		{Record: domain.ChunkRecord{Content: "b"}, Vector: []float32{0, 1, 0, 0}},
	})
	require.NoError(t, err)

	size, err := w.Size(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, size)
}
