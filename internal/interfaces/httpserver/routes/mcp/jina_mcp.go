package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"math"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"jan-server/services/jina-tools/internal/domain/jina"
)

const (
	ToolKeyJinaSearch  = "jina_search"
	ToolKeyJinaReadURL = "jina_read_url"
)

// SearchArgs defines the arguments for the jina_search tool. Values stay raw so
// that malformed arguments reach the service and come back as normalized results.
type SearchArgs struct {
	Query          json.RawMessage `json:"query,omitempty"`
	MaxResults     json.RawMessage `json:"max_results,omitempty"`
	IncludeContent json.RawMessage `json:"include_content,omitempty"`
}

// ReadURLArgs defines the arguments for the jina_read_url tool
type ReadURLArgs struct {
	URL             json.RawMessage `json:"url,omitempty"`
	IncludeMetadata json.RawMessage `json:"include_metadata,omitempty"`
}

// The input schemas only document the arguments. Type checks happen in the
// service so that every bad argument yields an error_code.
var (
	searchInputSchema = &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query":           {Description: "Search query text (string, required)"},
			"max_results":     {Description: "Maximum number of results to return (integer greater than 0, default 10)"},
			"include_content": {Description: "Include the page content of each result (boolean, default false)"},
		},
	}
	readURLInputSchema = &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"url":              {Description: "Page to read, must start with http:// or https:// (string, required)"},
			"include_metadata": {Description: "Include page metadata (boolean, default true)"},
		},
	}
)

// JinaMCP registers the Jina search and reader tools.
type JinaMCP struct {
	service *jina.JinaService
}

func NewJinaMCP(service *jina.JinaService) *JinaMCP {
	return &JinaMCP{service: service}
}

// RegisterTools registers the Jina tools with the MCP server
func (j *JinaMCP) RegisterTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolKeyJinaSearch,
		Description: "Search the web with Jina AI. Returns titles, URLs and descriptions of matching pages, optionally with page content.",
		InputSchema: searchInputSchema,
	}, func(ctx context.Context, req *mcp.CallToolRequest, input SearchArgs) (*mcp.CallToolResult, any, error) {
		query := jina.NewSearchQuery(stringArg(input.Query))
		if present(input.MaxResults) {
			query.MaxResults = intArg(input.MaxResults)
		}
		if present(input.IncludeContent) {
			query.IncludeContent = truthy(input.IncludeContent)
		}

		resp := j.service.Search(ctx, query)
		return toolResult(ToolKeyJinaSearch, resp, resp.Failure)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolKeyJinaReadURL,
		Description: "Read a web page with the Jina reader. Returns the page title, description and main content as markdown.",
		InputSchema: readURLInputSchema,
	}, func(ctx context.Context, req *mcp.CallToolRequest, input ReadURLArgs) (*mcp.CallToolResult, any, error) {
		readReq := jina.NewReadRequest(stringArg(input.URL))
		if present(input.IncludeMetadata) {
			readReq.IncludeMetadata = truthy(input.IncludeMetadata)
		}

		resp := j.service.ReadURL(ctx, readReq)
		return toolResult(ToolKeyJinaReadURL, resp, resp.Failure)
	})
}

// toolResult carries the normalized JSON as text and structured content.
// Failures are tool-level errors so the calling model can see the message.
func toolResult(tool string, payload any, failure *jina.Failure) (*mcp.CallToolResult, any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("tool", tool).Msg("failed to encode tool result")
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
		IsError: failure != nil,
	}, json.RawMessage(body), nil
}

// present reports whether an argument was sent with a non-null value.
func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// stringArg returns the argument if it is a JSON string. Anything else becomes
// empty, which the service rejects as invalid.
func stringArg(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// intArg returns the argument if it is an integral JSON number, clamping values
// beyond the int range. Anything else becomes 0, which the service rejects.
func intArg(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	if v, err := n.Int64(); err == nil && v >= math.MinInt && v <= math.MaxInt {
		return int(v)
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		return 0
	}
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

// truthy treats false, null, 0, "" and empty arrays or objects as false.
func truthy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}
