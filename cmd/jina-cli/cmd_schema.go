package main

import (
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"jan-server/services/jina-tools/internal/domain/jina"
)

var schemaTypes = map[string]any{
	"search":  &jina.SearchResponse{},
	"read":    &jina.ReadResponse{},
	"failure": &jina.Failure{},
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema <search|read|failure>",
		Short:     "Print the JSON Schema of a result type",
		Long:      `Print the JSON Schema describing the success result of search or read, or the failure shape shared by both.`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"search", "read", "failure"},
		RunE:      runSchema,
	}
}

func runSchema(cmd *cobra.Command, args []string) error {
	target, ok := schemaTypes[args[0]]
	if !ok {
		return fmt.Errorf("unknown schema %q", args[0])
	}

	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
	}
	schema := reflector.Reflect(target)
	schema.Title = fmt.Sprintf("Jina %s result", args[0])

	data, err := schema.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	return writeOutput(cmd, data)
}
