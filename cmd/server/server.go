package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"jan-server/services/jina-tools/internal/infrastructure/config"
	"jan-server/services/jina-tools/internal/infrastructure/logger"
	"jan-server/services/jina-tools/internal/infrastructure/observability"
	"jan-server/services/jina-tools/internal/interfaces/httpserver"
)

type Application struct {
	httpServer *httpserver.HTTPServer
	config     *config.Config
}

func init() {
	// Initialize logger with default settings
	_ = logger.Init("info", "json")
}

// @title Jan Server Jina Tools Service
// @version 1.0
// @description Web search and page reading backed by Jina AI, exposed as JSON endpoints and MCP tools.
// @contact.name Jan Server Team
// @contact.url https://github.com/janhq/jan-server
// @BasePath /
func (app *Application) Start(ctx context.Context) error {
	shutdownTracing, err := observability.Setup(ctx, app.config)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize tracing")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown tracing")
			}
		}()
	}

	return app.httpServer.Run(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	config.LoadEnvFiles()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Re-initialize logger with config settings
	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if config.APIKeyFromEnv() == "" {
		log.Warn().Msg("JINA_API_KEY is not set, calls will fail with MISSING_API_KEY until it is")
	}
	log.Info().
		Str("http_port", cfg.HTTPPort).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Jina Tools service")

	// Create application with dependency injection
	application, err := CreateApplication()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create application")
	}

	if err := application.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
	log.Info().Msg("Jina Tools service stopped")
}
