package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localforge/ragcore/internal/core/domain"
)

type fakeQueryService struct {
	answer *domain.Answer
	err    error
	gotQ   string
}

func (f *fakeQueryService) Query(_ context.Context, question string) (*domain.Answer, error) {
	f.gotQ = question
	return f.answer, f.err
}

func TestQueryCmd_RunsPipelineAndPrintsAnswerAndSources(t *testing.T) {
	fake := &fakeQueryService{answer: &domain.Answer{
		Text: "the answer",
		Sources: []domain.ChunkRecord{
			{SourceURI: "/docs/a.md"},
			{SourceURI: "/docs/b.txt"},
		},
	}}
	originalService := queryService
	SetQueryService(fake)
	defer func() { queryService = originalService }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "what", "is", "this?"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "what is this?", fake.gotQ)
	assert.Contains(t, buf.String(), "the answer")
	assert.Contains(t, buf.String(), "a.md")
	assert.Contains(t, buf.String(), "b.txt")
}

func TestQueryCmd_NoServiceConfigured(t *testing.T) {
	originalService := queryService
	SetQueryService(nil)
	defer func() { queryService = originalService }()

	rootCmd.SetArgs([]string{"query", "anything?"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query service not configured")
}

func TestQueryCmd_PropagatesPipelineError(t *testing.T) {
	fake := &fakeQueryService{err: errors.New("boom")}
	originalService := queryService
	SetQueryService(fake)
	defer func() { queryService = originalService }()

	rootCmd.SetArgs([]string{"query", "anything?"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestQueryCmd_RequiresAtLeastOneArg(t *testing.T) {
	rootCmd.SetArgs([]string{"query"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.Error(t, err)
}
