package infrastructure

import (
	"github.com/google/uuid"
	"github.com/google/wire"

	domainjina "jan-server/services/jina-tools/internal/domain/jina"
	"jan-server/services/jina-tools/internal/infrastructure/config"
	jinaclient "jan-server/services/jina-tools/internal/infrastructure/jina"
	"jan-server/services/jina-tools/internal/infrastructure/metrics"
	"jan-server/services/jina-tools/internal/infrastructure/telemetry"
)

// InfrastructureProvider provides all infrastructure dependencies
var InfrastructureProvider = wire.NewSet(
	// Config
	ProvideConfig,

	// Jina client and per-call credential lookup
	ProvideJinaClient,
	ProvideCredentialSource,

	// Observability
	ProvideObserver,
	ProvideRedactor,
)

// ProvideConfig loads and provides the application configuration
func ProvideConfig() (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideJinaClient provides the Jina HTTP client
func ProvideJinaClient(cfg *config.Config) domainjina.JinaClient {
	return NewJinaClient(cfg)
}

// NewJinaClient builds the Jina HTTP client from configuration.
func NewJinaClient(cfg *config.Config) *jinaclient.Client {
	return jinaclient.NewClient(jinaclient.ClientConfig{
		SearchEndpoint:  cfg.SearchEndpoint,
		ReaderEndpoint:  cfg.ReaderEndpoint,
		HTTPTimeout:     cfg.HTTPTimeoutDuration(),
		MaxConnsPerHost: cfg.MaxConnsPerHost,
		MaxIdleConns:    cfg.MaxIdleConns,
		IdleConnTimeout: cfg.IdleConnTimeoutDuration(),
	})
}

// ProvideCredentialSource reads JINA_API_KEY on every call
func ProvideCredentialSource() domainjina.CredentialSource {
	return config.APIKeyFromEnv
}

// ProvideObserver provides the Prometheus observer
func ProvideObserver() domainjina.Observer {
	return metrics.NewObserver()
}

// ProvideRedactor provides the PII sanitizer used for queries and URLs in logs
func ProvideRedactor(cfg *config.Config) domainjina.Redactor {
	return NewSanitizer(cfg).Redact
}

// NewSanitizer builds the log sanitizer from configuration. Without a
// configured salt, hashes are only comparable within one process.
func NewSanitizer(cfg *config.Config) *telemetry.Sanitizer {
	salt := cfg.LogPIISalt
	if salt == "" {
		salt = uuid.NewString()
	}
	return telemetry.NewSanitizer(telemetry.PIILevel(cfg.LogPIILevel), salt)
}
