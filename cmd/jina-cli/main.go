package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

// errOperationFailed signals a normalized failure that was already printed.
var errOperationFailed = errors.New("operation failed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errOperationFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jina-cli",
		Short: "Jina CLI - web search and page reading from the terminal",
		Long: `jina-cli calls the Jina AI search and reader APIs and prints the normalized result.

The API key is read from JINA_API_KEY on every call.

Examples:
  jina-cli search "golang generics" --max-results 3
  jina-cli read https://go.dev/doc --no-metadata -o yaml
  jina-cli schema read`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newReadCmd())
	rootCmd.AddCommand(newSchemaCmd())

	rootCmd.PersistentFlags().StringP("output", "o", "json", "Output format: json, yaml")
	rootCmd.PersistentFlags().String("log-level", "error", "Log level written to stderr")
	return rootCmd
}
