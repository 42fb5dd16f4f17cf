package main

import (
	"strings"

	"github.com/spf13/cobra"

	"jan-server/services/jina-tools/internal/domain/jina"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the web",
		Long:  `Run a Jina web search. Multiple arguments are joined with spaces.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}
	cmd.Flags().IntP("max-results", "n", jina.DefaultMaxResults, "Maximum number of results")
	cmd.Flags().Bool("include-content", false, "Include page content in each result")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	svc, err := newService(cmd)
	if err != nil {
		return err
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")
	includeContent, _ := cmd.Flags().GetBool("include-content")

	resp := svc.Search(cmd.Context(), jina.SearchQuery{
		Query:          strings.Join(args, " "),
		MaxResults:     maxResults,
		IncludeContent: includeContent,
	})
	return printResult(cmd, resp, resp.Failure)
}
