package routes

import (
	"github.com/google/wire"

	"jan-server/services/jina-tools/internal/interfaces/httpserver/routes/mcp"
	v1 "jan-server/services/jina-tools/internal/interfaces/httpserver/routes/v1"
)

// RoutesProvider provides all route dependencies
var RoutesProvider = wire.NewSet(
	mcp.NewJinaMCP,
	mcp.NewMCPRoute,
	v1.NewJinaRoute,
)
