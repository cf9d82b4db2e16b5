// Package cli implements the ragcore command-line surface: ragcore
// ingest and ragcore query, both Cobra subcommands of a single root
// command.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/localforge/ragcore/internal/core/ports/driving"
	"github.com/localforge/ragcore/internal/logger"
)

// version is set by the build (see cmd/ragcore/main.go); left as a
// placeholder default for unreleased builds.
var version = "dev"

var (
	configPath string
	verbose    bool

	queryService  driving.QueryService
	ingestService driving.IngestService
)

var rootCmd = &cobra.Command{
	Use:   "ragcore",
	Short: "A local-first retrieval-augmented generation engine",
	Long: `ragcore indexes a folder of documents into a local hybrid
vector/lexical index and answers questions against it, with no data
leaving the machine except the configured LLM collaborator.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml (default: $HOME/.ragcore/config.toml; built-in defaults when the file is absent)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
}

// SetQueryService wires the query pipeline into the query command.
func SetQueryService(s driving.QueryService) {
	queryService = s
}

// SetIngestService wires the ingest service into the ingest command.
func SetIngestService(s driving.IngestService) {
	ingestService = s
}

// SetVersion sets the version string printed by `ragcore version`.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
