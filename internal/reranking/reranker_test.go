package reranking

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/localforge/ragcore/internal/core/domain"
	"github.com/localforge/ragcore/internal/core/ports/driven"
	"github.com/localforge/ragcore/internal/tokenizer"
)

type fakeRerankSession struct {
	scoreByID map[int64]float32
	failAll   bool
	calls     int
}

func (f *fakeRerankSession) HiddenSize() int { return 4 }

func (f *fakeRerankSession) RunEmbedding(_ context.Context, _, _, _ [][]int64) ([][][]float32, error) {
	return nil, domain.ErrResource
}

func (f *fakeRerankSession) RunReranker(_ context.Context, inputIDs, _, _ [][]int64) (float32, error) {
	f.calls++
	if f.failAll {
		return 0, domain.ErrResource
	}
	// Use the id just before the closing [SEP] (after skipping trailing
	// [PAD]=0) as a stand-in key into scoreByID, set up by the test per
	// fixed short vocabularies.
	ids := inputIDs[0]
	end := len(ids) - 1
	for end > 0 && ids[end] == 0 {
		end--
	}
	return f.scoreByID[ids[end-1]], nil
}

func (f *fakeRerankSession) Close() error { return nil }

func newTestTokenizer(t *testing.T) *tokenizer.Tokenizer {
	dir := t.TempDir()
	vocabPath := filepath.Join(dir, "vocab.txt")
	settingsPath := filepath.Join(dir, "settings.json")
	modelPath := filepath.Join(dir, "model.json")

	vocab := "[PAD]\n[UNK]\n[CLS]\n[SEP]\nalpha\nbeta\ngamma\n"
	require.NoError(t, os.WriteFile(vocabPath, []byte(vocab), 0o644))
	require.NoError(t, os.WriteFile(settingsPath, []byte(`{"max_seq_len":16}`), 0o644))
	require.NoError(t, os.WriteFile(modelPath, []byte(`{}`), 0o644))

	tok, err := tokenizer.New(vocabPath, settingsPath, modelPath)
	require.NoError(t, err)
	return tok
}

func TestRerank_SortsByDescendingScore(t *testing.T) {
	tok := newTestTokenizer(t)
	session := &fakeRerankSession{scoreByID: map[int64]float32{4: 0.1, 5: 0.9, 6: 0.5}}
	r := New(tok, session, true, nil)

	records := []driven.ScoredRecord{
		{ID: 1, Content: "alpha"},
		{ID: 2, Content: "beta"},
		{ID: 3, Content: "gamma"},
	}

	out, err := r.Rerank(context.Background(), "q", records)
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.Equal(t, int64(2), out[0].ID) // beta -> id 5 -> score 0.9
	require.Equal(t, int64(3), out[1].ID) // gamma -> id 6 -> score 0.5
	require.Equal(t, int64(1), out[2].ID) // alpha -> id 4 -> score 0.1
}

func TestRerank_DisabledReturnsInputOrderingUnchanged(t *testing.T) {
	tok := newTestTokenizer(t)
	session := &fakeRerankSession{}
	r := New(tok, session, false, nil)

	records := []driven.ScoredRecord{{ID: 9, Content: "z"}, {ID: 1, Content: "a"}}
	out, err := r.Rerank(context.Background(), "q", records)
	require.NoError(t, err)
	require.Equal(t, records, out)
	require.Equal(t, 0, session.calls)
}

func TestRerank_NilSessionReturnsInputOrderingUnchanged(t *testing.T) {
	tok := newTestTokenizer(t)
	r := New(tok, nil, true, nil)

	records := []driven.ScoredRecord{{ID: 9}, {ID: 1}}
	out, err := r.Rerank(context.Background(), "q", records)
	require.NoError(t, err)
	require.Equal(t, records, out)
}

func TestRerank_EmptyRecords(t *testing.T) {
	tok := newTestTokenizer(t)
	session := &fakeRerankSession{}
	r := New(tok, session, true, nil)

	out, err := r.Rerank(context.Background(), "q", nil)
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestRerank_SessionErrorFallsBackToInputOrdering(t *testing.T) {
	tok := newTestTokenizer(t)
	session := &fakeRerankSession{failAll: true}
	r := New(tok, session, true, nil)

	records := []driven.ScoredRecord{{ID: 9, Content: "z"}, {ID: 1, Content: "a"}}
	out, err := r.Rerank(context.Background(), "q", records)
	require.NoError(t, err)
	require.Equal(t, records, out)
}
