package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/localforge/ragcore/internal/core/ports/driving"
)

var ingestFresh bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <folder>",
	Short: "Index a folder of documents",
	Long: `Walks folder, extracts text per supported extension, chunks it,
embeds the chunks and writes them into the vector and lexical indexes.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestFresh, "fresh", false, "reset all indexes before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	folder := args[0]
	progress := make(chan driving.IngestEvent)

	errCh := make(chan error, 1)
	go func() {
		errCh <- ingestService.IngestFolder(cmd.Context(), folder, ingestFresh, progress)
	}()

	model := newIngestModel(progress)
	finalModel, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("ingest progress view: %w", err)
	}

	if err := <-errCh; err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	m := finalModel.(ingestModel)
	cmd.Printf("Ingested %d files, %d chunks indexed (%d errors).\n", m.filesSeen, m.totalChunks, m.errorCount)
	return nil
}
