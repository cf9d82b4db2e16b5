package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localforge/ragcore/internal/core/ports/driving"
)

type fakeIngestService struct {
	events   []driving.IngestEvent
	err      error
	gotFresh bool
	gotDir   string
}

func (f *fakeIngestService) IngestFolder(_ context.Context, folder string, fresh bool, progress chan<- driving.IngestEvent) error {
	defer close(progress)
	f.gotDir = folder
	f.gotFresh = fresh
	for _, ev := range f.events {
		progress <- ev
	}
	return f.err
}

func TestIngestCmd_ReportsFilesChunksAndErrors(t *testing.T) {
	fake := &fakeIngestService{events: []driving.IngestEvent{
		{Path: "/docs/a.md", ChunksAdded: 3},
		{Path: "/docs/bad.bin", Err: errors.New("unsupported")},
		{Done: true, TotalChunks: 3},
	}}
	original := ingestService
	SetIngestService(fake)
	defer func() { ingestService = original }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", "/docs"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "/docs", fake.gotDir)
	assert.False(t, fake.gotFresh)
}

func TestIngestCmd_FreshFlagPropagates(t *testing.T) {
	fake := &fakeIngestService{events: []driving.IngestEvent{{Done: true}}}
	original := ingestService
	SetIngestService(fake)
	defer func() { ingestService = original }()

	rootCmd.SetArgs([]string{"ingest", "--fresh", "/docs"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.True(t, fake.gotFresh)
}

func TestIngestCmd_NoServiceConfigured(t *testing.T) {
	original := ingestService
	SetIngestService(nil)
	defer func() { ingestService = original }()

	rootCmd.SetArgs([]string{"ingest", "/docs"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}

func TestIngestCmd_PropagatesIngestError(t *testing.T) {
	fake := &fakeIngestService{events: []driving.IngestEvent{{Done: true}}, err: errors.New("disk full")}
	original := ingestService
	SetIngestService(fake)
	defer func() { ingestService = original }()

	rootCmd.SetArgs([]string{"ingest", "/docs"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestIngestCmd_RequiresExactlyOneArg(t *testing.T) {
	rootCmd.SetArgs([]string{"ingest"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.Error(t, err)
}
