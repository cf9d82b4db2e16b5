package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query [question...]",
	Short: "Answer a question against the indexed corpus",
	Long: `Runs the full query pipeline: expands the question into alternate
phrasings, retrieves and fuses hybrid search results per phrasing, reranks
the union, assembles context, and asks the LLM collaborator for an answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	question := strings.Join(args, " ")

	answer, err := queryService.Query(cmd.Context(), question)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	cmd.Println(answer.Text)

	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, src := range answer.Sources {
			cmd.Printf("  [%d] %s\n", i+1, filepath.Base(src.SourceURI))
		}
	}

	return nil
}
