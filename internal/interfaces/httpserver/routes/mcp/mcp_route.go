package mcp

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"jan-server/services/jina-tools/internal/infrastructure/metrics"
	"jan-server/services/jina-tools/internal/interfaces/httpserver/responses"
	"jan-server/services/jina-tools/internal/utils/platformerrors"
)

var allowedMCPMethods = map[string]bool{
	// Initialization / handshake
	"initialize":                true,
	"notifications/initialized": true,
	"ping":                      true,

	// Tools
	"tools/list": true,
	"tools/call": true,
}

type MCPRoute struct {
	jinaMCP     *JinaMCP
	mcpServer   *mcp.Server
	httpHandler http.Handler
}

func NewMCPRoute(jinaMCP *JinaMCP) *MCPRoute {
	impl := &mcp.Implementation{
		Name:    "jina-tools",
		Version: "1.0.0",
	}
	server := mcp.NewServer(impl, nil)
	jinaMCP.RegisterTools(server)

	return &MCPRoute{
		jinaMCP:   jinaMCP,
		mcpServer: server,
		httpHandler: mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
			return server
		}, &mcp.StreamableHTTPOptions{Stateless: true}),
	}
}

// Server returns the underlying MCP server.
func (route *MCPRoute) Server() *mcp.Server {
	return route.mcpServer
}

func (route *MCPRoute) RegisterRouter(router *gin.RouterGroup) {
	router.POST("/mcp",
		MCPMethodGuard(allowedMCPMethods),
		route.serveMCP,
	)
}

// serveMCP streams Model Context Protocol responses using the underlying MCP server.
// @Summary MCP endpoint for Jina tools
// @Description Handles Model Context Protocol (MCP) requests over HTTP. Supports MCP methods: initialize, ping, tools/list, tools/call.
// @Description
// @Description **Available Tools:**
// @Description - `jina_search`: Web search via Jina (params: query, max_results, include_content). Returns results, total_results and total_tokens.
// @Description - `jina_read_url`: Page extraction via the Jina reader (params: url, include_metadata). Returns title, description, content, published_time, tokens, metadata and warning.
// @Description
// @Description **MCP Protocol:**
// @Description - Request format: JSON-RPC 2.0 with method and params
// @Description - Response format: Server-Sent Events (SSE) stream
// @Description - Stateless mode (no session management)
// @Tags MCP API
// @Accept json
// @Produce text/event-stream
// @Param request body object true "MCP JSON-RPC request payload (e.g., {\"jsonrpc\":\"2.0\",\"method\":\"tools/list\",\"id\":1})"
// @Success 200 {string} string "Streamed MCP response in SSE format"
// @Failure 400 {object} responses.ErrorResponse "Invalid MCP request payload or unsupported method"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /v1/mcp [post]
func (route *MCPRoute) serveMCP(reqCtx *gin.Context) {
	// Force acceptable content types for go-sdk streamable handler even if client omits Accept.
	reqCtx.Request.Header.Set("Accept", "application/json, text/event-stream")
	route.httpHandler.ServeHTTP(reqCtx.Writer, reqCtx.Request)
}

func MCPMethodGuard(allowedMethods map[string]bool) gin.HandlerFunc {
	return func(reqCtx *gin.Context) {
		bodyBytes, err := io.ReadAll(reqCtx.Request.Body)
		if err != nil {
			metrics.RecordMCPRequest("unknown", "rejected")
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeInternal, "failed to read MCP request body", "f10df80f-1651-4faa-8a75-3d91814d7990")
			return
		}
		_ = reqCtx.Request.Body.Close()

		if len(bodyBytes) == 0 {
			metrics.RecordMCPRequest("unknown", "rejected")
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "empty MCP request body", "abf862e2-f2a8-4bd7-b1b7-56fc16647759")
			return
		}

		reqCtx.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		var payload struct {
			Method string `json:"method"`
		}

		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			metrics.RecordMCPRequest("unknown", "rejected")
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid MCP request payload", "81f2eaae-8aa1-4569-95ec-c7a611fda0d0")
			return
		}

		if payload.Method == "" {
			metrics.RecordMCPRequest("unknown", "rejected")
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "missing method field in MCP request", "7b3c9e5a-2f4d-4a1e-9c8b-1d5f3e7a9b2c")
			return
		}

		if !allowedMethods[payload.Method] {
			metrics.RecordMCPRequest("unsupported", "rejected")
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "unsupported MCP method: "+payload.Method, "6e5f62bb-a0fb-4146-969b-7d6dd1bbe8d6")
			return
		}

		metrics.RecordMCPRequest(payload.Method, "accepted")
		reqCtx.Next()
	}
}
