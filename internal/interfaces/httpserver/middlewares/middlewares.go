package middlewares

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"jan-server/services/jina-tools/internal/infrastructure/metrics"
	"jan-server/services/jina-tools/internal/utils/platformerrors"
)

// jinaErrorCodeKey holds the error code of a failed operation in the gin context.
const jinaErrorCodeKey = "jina_error_code"

// SetErrorCode records the error code of the operation served by this request.
func SetErrorCode(c *gin.Context, code string) {
	c.Set(jinaErrorCodeKey, code)
}

// RequestLogger logs HTTP requests
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("client_ip", c.ClientIP()).
			Str("request_id", RequestIDFromContext(c)).
			Msg("incoming request")

		c.Next()

		for _, e := range c.Errors {
			// Rejected input is the caller's fault and logs below error level.
			if platformerrors.IsErrorType(e.Err, platformerrors.ErrorTypeValidation) {
				log.Warn().
					Str("path", c.Request.URL.Path).
					Str("request_id", RequestIDFromContext(c)).
					Err(e.Err).
					Msg("request rejected")
				continue
			}
			var platformErr *platformerrors.PlatformError
			if errors.As(e.Err, &platformErr) {
				platformerrors.LogError(log.Logger, platformErr)
				continue
			}
			log.Error().
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Int("status", c.Writer.Status()).
				Err(e.Err).
				Msg("request error")
		}

		logEvent := log.Info()
		if c.Writer.Status() >= 400 {
			logEvent = log.Warn()
		}
		logEvent = logEvent.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Str("request_id", RequestIDFromContext(c))
		if code := c.GetString(jinaErrorCodeKey); code != "" {
			logEvent = logEvent.Str("error_code", code)
		}
		logEvent.Msg("request completed")
	}
}

// CORS adds CORS headers
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-Id, Mcp-Session-Id, mcp-protocol-version")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-Id")
		c.Writer.Header().Set("Access-Control-Max-Age", "3600")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// MetricsRecorder records HTTP request metrics for Prometheus
func MetricsRecorder() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Skip metrics for health/readiness/metrics endpoints
		path := c.Request.URL.Path
		if path == "/healthz" || path == "/readyz" || path == "/metrics" {
			return
		}

		metrics.RecordRequest(c.Request.Method, c.FullPath(), strconv.Itoa(c.Writer.Status()))
	}
}
