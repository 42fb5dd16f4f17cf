package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"jan-server/services/jina-tools/internal/domain/jina"
	"jan-server/services/jina-tools/internal/infrastructure"
	"jan-server/services/jina-tools/internal/infrastructure/config"
	"jan-server/services/jina-tools/internal/infrastructure/logger"
)

// newService wires the domain service the same way the server does, minus metrics.
func newService(cmd *cobra.Command) (*jina.JinaService, error) {
	level, _ := cmd.Flags().GetString("log-level")
	l, err := logger.New(os.Stderr, level, "console")
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	log.Logger = l

	config.LoadEnvFiles()
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return jina.NewJinaService(
		infrastructure.NewJinaClient(cfg),
		config.APIKeyFromEnv,
		nil,
		infrastructure.NewSanitizer(cfg).Redact,
	), nil
}

// printResult writes the normalized result and turns a failure into a non-zero exit.
func printResult(cmd *cobra.Command, result any, failure *jina.Failure) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := writeOutput(cmd, data); err != nil {
		return err
	}
	if failure != nil {
		return errOperationFailed
	}
	return nil
}

// writeOutput renders JSON bytes in the format chosen with --output.
func writeOutput(cmd *cobra.Command, data []byte) error {
	format, _ := cmd.Flags().GetString("output")
	out := cmd.OutOrStdout()

	switch strings.ToLower(format) {
	case "json":
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return fmt.Errorf("format json: %w", err)
		}
		buf.WriteByte('\n')
		_, err := out.Write(buf.Bytes())
		return err
	case "yaml", "yml":
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("format yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
