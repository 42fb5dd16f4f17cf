package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"JINA_TOOLS_HTTP_PORT", "JINA_TOOLS_LOG_LEVEL", "JINA_TOOLS_LOG_FORMAT",
		"LOG_LEVEL", "LOG_FORMAT", "JINA_SEARCH_ENDPOINT", "JINA_READER_ENDPOINT",
		"JINA_HTTP_TIMEOUT", "OTEL_ENABLED", "JINA_TOOLS_LOG_PII_LEVEL",
		"JINA_TOOLS_LOG_PII_SALT",
	} {
		unsetEnv(t, key)
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8092", cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "https://s.jina.ai/", cfg.SearchEndpoint)
	assert.Equal(t, "https://r.jina.ai/", cfg.ReaderEndpoint)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeoutDuration())
	assert.Equal(t, 90*time.Second, cfg.IdleConnTimeoutDuration())
	assert.Equal(t, "hashed", cfg.LogPIILevel)
	assert.Empty(t, cfg.LogPIISalt)
	assert.False(t, cfg.OTELEnabled)
}

func TestLoadConfigGlobalLogFallback(t *testing.T) {
	unsetEnv(t, "JINA_TOOLS_LOG_LEVEL")
	unsetEnv(t, "JINA_TOOLS_LOG_FORMAT")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)

	t.Setenv("JINA_TOOLS_LOG_LEVEL", "warn")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigPIISalt(t *testing.T) {
	t.Setenv("JINA_TOOLS_LOG_PII_SALT", "tenant-a")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", cfg.LogPIISalt)
}

func TestAPIKeyFromEnvIsReadEachTime(t *testing.T) {
	t.Setenv(APIKeyEnv, "first")
	assert.Equal(t, "first", APIKeyFromEnv())

	t.Setenv(APIKeyEnv, "second")
	assert.Equal(t, "second", APIKeyFromEnv())
}

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadEnvFilesKeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JINA_TOOLS_HTTP_PORT=9100\nJINA_API_KEY=from-file\n"), 0o600))

	unsetEnv(t, "JINA_TOOLS_HTTP_PORT")
	t.Setenv(APIKeyEnv, "from-env")

	LoadEnvFiles(path, filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "9100", os.Getenv("JINA_TOOLS_HTTP_PORT"))
	assert.Equal(t, "from-env", APIKeyFromEnv())
}
