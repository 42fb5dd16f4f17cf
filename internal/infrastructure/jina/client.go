package jina

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	domainjina "jan-server/services/jina-tools/internal/domain/jina"
	"jan-server/services/jina-tools/internal/infrastructure/metrics"
)

const (
	searchEndpointDefault = "https://s.jina.ai/"
	readerEndpointDefault = "https://r.jina.ai/"
	userAgent             = "Jan-Jina-Tools/1.0"

	// respondWithHeader asks the search endpoint to omit page bodies.
	respondWithHeader    = "X-Respond-With"
	respondWithNoContent = "no-content"
)

// ClientConfig captures the knobs exposed to operators for the Jina client.
type ClientConfig struct {
	SearchEndpoint string
	ReaderEndpoint string

	// HTTP Client Settings
	HTTPTimeout     time.Duration
	MaxConnsPerHost int
	MaxIdleConns    int
	IdleConnTimeout time.Duration
}

// Client implements domainjina.JinaClient over resty.
type Client struct {
	cfg    ClientConfig
	http   *resty.Client
	tracer trace.Tracer
}

var _ domainjina.JinaClient = (*Client)(nil)

// NewClient wires a pooled HTTP client for both Jina endpoints.
func NewClient(cfg ClientConfig) *Client {
	if strings.TrimSpace(cfg.SearchEndpoint) == "" {
		cfg.SearchEndpoint = searchEndpointDefault
	}
	if strings.TrimSpace(cfg.ReaderEndpoint) == "" {
		cfg.ReaderEndpoint = readerEndpointDefault
	}
	if !strings.HasSuffix(cfg.ReaderEndpoint, "/") {
		cfg.ReaderEndpoint += "/"
	}

	httpTimeout := 30 * time.Second
	if cfg.HTTPTimeout > 0 {
		httpTimeout = cfg.HTTPTimeout
	}

	// Configure HTTP transport with connection pooling
	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns == 0 {
		maxIdleConns = 100
	}
	maxConnsPerHost := cfg.MaxConnsPerHost
	if maxConnsPerHost == 0 {
		maxConnsPerHost = 50
	}
	idleConnTimeout := cfg.IdleConnTimeout
	if idleConnTimeout == 0 {
		idleConnTimeout = 90 * time.Second
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     maxConnsPerHost,
		IdleConnTimeout:     idleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	httpClient := resty.New().
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetTimeout(httpTimeout).
		SetRetryCount(0).
		SetTransport(transport)

	return &Client{
		cfg:    cfg,
		http:   httpClient,
		tracer: otel.Tracer("jina-tools/jina-client"),
	}
}

// Search issues GET <search endpoint>?q=<query>.
func (c *Client) Search(ctx context.Context, apiKey, query string, includeContent bool) (*domainjina.UpstreamResponse, error) {
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(apiKey).
		SetQueryParam("q", query)
	if !includeContent {
		req.SetHeader(respondWithHeader, respondWithNoContent)
	}
	return c.do(ctx, domainjina.OperationSearch, c.cfg.SearchEndpoint, req)
}

// Read issues GET <reader endpoint><targetURL>. The target is appended verbatim.
func (c *Client) Read(ctx context.Context, apiKey, targetURL string) (*domainjina.UpstreamResponse, error) {
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(apiKey)
	return c.do(ctx, domainjina.OperationRead, c.cfg.ReaderEndpoint+targetURL, req)
}

func (c *Client) do(ctx context.Context, operation, endpoint string, req *resty.Request) (*domainjina.UpstreamResponse, error) {
	ctx, span := c.tracer.Start(ctx, "jina."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(http.MethodGet),
			attribute.String("jina.operation", operation),
		),
	)
	defer span.End()
	req.SetContext(ctx)

	// Both endpoints answer JSON; forcing the type makes resty decode every 2xx body.
	var envelope domainjina.Envelope
	req.SetResult(&envelope).ForceContentType("application/json")

	start := time.Now()
	resp, err := req.Get(endpoint)
	elapsed := time.Since(start).Seconds()

	var decodeErr error
	if err != nil && isDecodeError(err) && resp != nil && resp.RawResponse != nil {
		decodeErr, err = err, nil
	}

	if err != nil {
		classified := classifyTransportError(err)
		metrics.RecordUpstreamLatency(operation, "error", elapsed)
		span.RecordError(classified)
		span.SetStatus(codes.Error, classified.Error())
		log.Error().Err(err).Str("service", "jina").Str("operation", operation).Msg("jina request failed")
		return nil, classified
	}

	status := resp.StatusCode()
	metrics.RecordUpstreamLatency(operation, strconv.Itoa(status), elapsed)
	span.SetAttributes(semconv.HTTPResponseStatusCode(status))
	if status >= http.StatusBadRequest {
		span.SetStatus(codes.Error, http.StatusText(status))
		log.Warn().Int("status", status).Str("service", "jina").Str("operation", operation).Msg("jina API returned error status")
	}
	if decodeErr != nil {
		span.RecordError(decodeErr)
		log.Warn().Err(decodeErr).Int("status", status).Str("service", "jina").Str("operation", operation).Msg("failed to decode jina response")
	}

	return &domainjina.UpstreamResponse{StatusCode: status, Envelope: envelope, DecodeErr: decodeErr}, nil
}

// isDecodeError reports whether resty failed while unmarshalling the body.
func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// classifyTransportError wraps err with the domain sentinel it maps to.
func classifyTransportError(err error) error {
	switch {
	case isTimeout(err):
		return fmt.Errorf("%w: %w", domainjina.ErrTimeout, err)
	case isConnectionFailure(err):
		return fmt.Errorf("%w: %w", domainjina.ErrConnection, err)
	default:
		return fmt.Errorf("jina request: %w", err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionFailure(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}
