package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// APIKeyEnv names the variable holding the Jina bearer token.
// It is read on every call and never stored in Config.
const APIKeyEnv = "JINA_API_KEY"

// Config holds all configuration for the Jina Tools service
type Config struct {
	// HTTP Server - using JINA_TOOLS_ prefix to avoid collisions
	HTTPPort  string `env:"JINA_TOOLS_HTTP_PORT" envDefault:"8092"`
	LogLevel  string `env:"JINA_TOOLS_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"JINA_TOOLS_LOG_FORMAT" envDefault:"json"` // json or console

	// Upstream endpoints
	SearchEndpoint string `env:"JINA_SEARCH_ENDPOINT" envDefault:"https://s.jina.ai/"`
	ReaderEndpoint string `env:"JINA_READER_ENDPOINT" envDefault:"https://r.jina.ai/"`

	// HTTP Client Performance
	HTTPTimeout     int `env:"JINA_HTTP_TIMEOUT" envDefault:"30"`
	MaxConnsPerHost int `env:"JINA_MAX_CONNS_PER_HOST" envDefault:"50"`
	MaxIdleConns    int `env:"JINA_MAX_IDLE_CONNS" envDefault:"100"`
	IdleConnTimeout int `env:"JINA_IDLE_CONN_TIMEOUT" envDefault:"90"`

	// How queries and URLs appear in logs: none, hashed or full
	LogPIILevel string `env:"JINA_TOOLS_LOG_PII_LEVEL" envDefault:"hashed"`
	// Salt for hashed PII. Empty means a random salt per process.
	LogPIISalt string `env:"JINA_TOOLS_LOG_PII_SALT"`

	// Tracing
	OTELEnabled      bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"http://otel-collector:4318"`
	OTELSamplingRate float64 `env:"OTEL_SAMPLING_RATE" envDefault:"1.0"`
	Environment      string  `env:"ENVIRONMENT" envDefault:"development"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(os.Getenv("JINA_TOOLS_LOG_LEVEL")) == "" {
		if global := strings.TrimSpace(os.Getenv("LOG_LEVEL")); global != "" {
			cfg.LogLevel = global
		}
	}
	if strings.TrimSpace(os.Getenv("JINA_TOOLS_LOG_FORMAT")) == "" {
		if global := strings.TrimSpace(os.Getenv("LOG_FORMAT")); global != "" {
			cfg.LogFormat = global
		}
	}
	return cfg, nil
}

// HTTPTimeoutDuration returns the upstream request timeout.
func (c *Config) HTTPTimeoutDuration() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// IdleConnTimeoutDuration returns the idle connection timeout of the transport pool.
func (c *Config) IdleConnTimeoutDuration() time.Duration {
	return time.Duration(c.IdleConnTimeout) * time.Second
}

// APIKeyFromEnv reads the Jina credential from the process environment.
func APIKeyFromEnv() string {
	return os.Getenv(APIKeyEnv)
}

// LoadEnvFiles loads the first-found dotenv files into the process environment.
// Variables already set in the environment win over file values.
func LoadEnvFiles(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env", "../.env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
