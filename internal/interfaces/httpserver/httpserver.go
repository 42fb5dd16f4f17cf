package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"jan-server/services/jina-tools/internal/infrastructure/config"
	"jan-server/services/jina-tools/internal/infrastructure/observability"
	"jan-server/services/jina-tools/internal/interfaces/httpserver/middlewares"
	"jan-server/services/jina-tools/internal/interfaces/httpserver/routes/mcp"
	v1 "jan-server/services/jina-tools/internal/interfaces/httpserver/routes/v1"
)

const shutdownTimeout = 10 * time.Second

type HTTPServer struct {
	router    *gin.Engine
	config    *config.Config
	mcpRoute  *mcp.MCPRoute
	jinaRoute *v1.JinaRoute
}

func NewHTTPServer(
	cfg *config.Config,
	mcpRoute *mcp.MCPRoute,
	jinaRoute *v1.JinaRoute,
) *HTTPServer {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestID())
	router.Use(middlewares.TracingMiddleware(observability.ServiceName))
	router.Use(middlewares.RequestLogger())
	router.Use(middlewares.MetricsRecorder())
	router.Use(middlewares.CORS())

	s := &HTTPServer{
		router:    router,
		config:    cfg,
		mcpRoute:  mcpRoute,
		jinaRoute: jinaRoute,
	}
	s.setupRoutes()
	return s
}

func (s *HTTPServer) setupRoutes() {
	// Health check endpoints
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": observability.ServiceName})
	})

	s.router.GET("/readyz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready", "service": observability.ServiceName})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1Group := s.router.Group("/v1")
	s.jinaRoute.RegisterRouter(v1Group)
	s.mcpRoute.RegisterRouter(v1Group)
}

// Handler exposes the configured router.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.config.HTTPPort),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", srv.Addr).Msg("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
