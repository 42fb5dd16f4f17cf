package main

import (
	"github.com/spf13/cobra"

	"jan-server/services/jina-tools/internal/domain/jina"
)

func newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <url>",
		Short: "Read a web page",
		Long:  `Extract the main content of a web page with the Jina reader.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runRead,
	}
	cmd.Flags().Bool("no-metadata", false, "Omit page metadata")
	return cmd
}

func runRead(cmd *cobra.Command, args []string) error {
	svc, err := newService(cmd)
	if err != nil {
		return err
	}
	noMetadata, _ := cmd.Flags().GetBool("no-metadata")

	resp := svc.ReadURL(cmd.Context(), jina.ReadRequest{
		URL:             args[0],
		IncludeMetadata: !noMetadata,
	})
	return printResult(cmd, resp, resp.Failure)
}
