package jina

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// UpstreamResponse is an upstream reply with its envelope decoded.
// Envelope is only meaningful for 2xx statuses.
type UpstreamResponse struct {
	StatusCode int
	Envelope   Envelope
	// DecodeErr is the encoding/json error hit while decoding a 2xx body.
	DecodeErr error
}

// JinaClient defines the upstream HTTP calls required by the domain layer.
// Transport failures should wrap ErrTimeout or ErrConnection where they apply.
// A body that cannot be decoded is reported through DecodeErr, not the error.
type JinaClient interface {
	Search(ctx context.Context, apiKey, query string, includeContent bool) (*UpstreamResponse, error)
	Read(ctx context.Context, apiKey, targetURL string) (*UpstreamResponse, error)
}

// CredentialSource returns the bearer token for one call. It is invoked on every call.
type CredentialSource func() string

// Redactor prepares user-supplied text for logging.
type Redactor func(string) string

// Observer receives per-call measurements.
type Observer interface {
	ObserveOperation(operation, outcome string, duration time.Duration)
	ObserveTokens(operation string, tokens int)
}

// JinaService validates requests, calls the upstream service and normalizes every outcome.
// It holds no per-call state and is safe for concurrent use.
type JinaService struct {
	client      JinaClient
	credentials CredentialSource
	observer    Observer
	redact      Redactor
}

// NewJinaService creates a new Jina service. observer and redact may be nil.
func NewJinaService(client JinaClient, credentials CredentialSource, observer Observer, redact Redactor) *JinaService {
	if redact == nil {
		redact = func(s string) string { return s }
	}
	return &JinaService{
		client:      client,
		credentials: credentials,
		observer:    observer,
		redact:      redact,
	}
}

// Search runs a web search. The returned response is never nil and carries a
// Failure instead of an error value.
func (s *JinaService) Search(ctx context.Context, query SearchQuery) (resp *SearchResponse) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			resp = &SearchResponse{Failure: newFailuref(ErrorCodeUnexpected, "%v", r)}
		}
		s.finish(OperationSearch, start, resp.Failure, resp.TotalTokens)
	}()

	log.Debug().
		Str("operation", OperationSearch).
		Str("query", s.redact(query.Query)).
		Int("max_results", query.MaxResults).
		Bool("include_content", query.IncludeContent).
		Msg("jina call starting")

	return s.search(ctx, query)
}

func (s *JinaService) search(ctx context.Context, query SearchQuery) *SearchResponse {
	fail := func(f *Failure) *SearchResponse { return &SearchResponse{Failure: f} }

	apiKey := s.apiKey()
	if apiKey == "" {
		return fail(newFailure(ErrorCodeMissingAPIKey))
	}
	q := strings.TrimSpace(query.Query)
	if q == "" {
		return fail(newFailure(ErrorCodeInvalidQuery))
	}
	if query.MaxResults <= 0 {
		return fail(newFailure(ErrorCodeInvalidMaxResults))
	}

	raw, err := s.client.Search(ctx, apiKey, q, query.IncludeContent)
	if err != nil {
		return fail(transportFailure(err))
	}
	switch raw.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return fail(newFailure(ErrorCodeInvalidAPIKey))
	case http.StatusTooManyRequests:
		return fail(newFailure(ErrorCodeRateLimitExceeded))
	default:
		return fail(statusFailure(raw.StatusCode))
	}

	env, f := checkEnvelope(raw)
	if f != nil {
		return fail(f)
	}

	var results []SearchResult
	if hasData(env.Data) {
		if err := json.Unmarshal(env.Data, &results); err != nil {
			return fail(newFailuref(ErrorCodeUnexpected, "unexpected search data: %v", err))
		}
	}
	if len(results) > query.MaxResults {
		results = results[:query.MaxResults]
	}
	if results == nil {
		results = []SearchResult{}
	}

	return &SearchResponse{
		Success:      true,
		Query:        q,
		Results:      results,
		TotalResults: len(results),
		TotalTokens:  int(env.Meta.Usage.Tokens),
	}
}

// ReadURL extracts the content of a web page. The returned response is never
// nil and carries a Failure instead of an error value.
func (s *JinaService) ReadURL(ctx context.Context, req ReadRequest) (resp *ReadResponse) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			resp = &ReadResponse{Failure: newFailuref(ErrorCodeUnexpected, "%v", r)}
		}
		s.finish(OperationRead, start, resp.Failure, resp.Tokens)
	}()

	log.Debug().
		Str("operation", OperationRead).
		Str("url", s.redact(req.URL)).
		Bool("include_metadata", req.IncludeMetadata).
		Msg("jina call starting")

	return s.read(ctx, req)
}

func (s *JinaService) read(ctx context.Context, req ReadRequest) *ReadResponse {
	fail := func(f *Failure) *ReadResponse { return &ReadResponse{Failure: f} }

	apiKey := s.apiKey()
	if apiKey == "" {
		return fail(newFailure(ErrorCodeMissingAPIKey))
	}
	target := strings.TrimSpace(req.URL)
	if target == "" {
		return fail(newFailure(ErrorCodeInvalidURL))
	}
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return fail(newFailure(ErrorCodeInvalidURLFormat))
	}

	raw, err := s.client.Read(ctx, apiKey, target)
	if err != nil {
		return fail(transportFailure(err))
	}
	switch raw.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return fail(newFailure(ErrorCodeInvalidAPIKey))
	case http.StatusTooManyRequests:
		return fail(newFailure(ErrorCodeRateLimitExceeded))
	case http.StatusNotFound:
		return fail(newFailure(ErrorCodeURLNotFound))
	default:
		return fail(statusFailure(raw.StatusCode))
	}

	env, f := checkEnvelope(raw)
	if f != nil {
		return fail(f)
	}

	var page upstreamPage
	if hasData(env.Data) {
		if err := json.Unmarshal(env.Data, &page); err != nil {
			return fail(newFailuref(ErrorCodeUnexpected, "unexpected reader data: %v", err))
		}
	}

	resp := &ReadResponse{
		Success:       true,
		URL:           target,
		Title:         page.Title,
		Description:   page.Description,
		Content:       page.Content,
		PublishedTime: page.PublishedTime,
		Tokens:        int(page.Usage.Tokens),
	}
	if page.URL != nil {
		resp.URL = *page.URL
	}
	if req.IncludeMetadata {
		resp.Metadata = page.Metadata
		if resp.Metadata == nil {
			resp.Metadata = map[string]any{}
		}
	}
	if len(page.Warning) > 0 {
		resp.Warning = page.Warning
		if text, ok := resp.WarningText(); ok {
			log.Debug().Str("operation", OperationRead).Str("warning", text).Msg("jina reader warning")
		}
	}
	return resp
}

func (s *JinaService) apiKey() string {
	if s.credentials == nil {
		return ""
	}
	return s.credentials()
}

func (s *JinaService) finish(operation string, start time.Time, failure *Failure, tokens int) {
	duration := time.Since(start)
	outcome := "success"
	event := log.Info()
	if failure != nil {
		outcome = string(failure.Code)
		event = log.Warn()
		if failure.Code.IsValidation() || failure.Code == ErrorCodeMissingAPIKey {
			event = log.Debug()
		}
		event = event.Str("error_code", outcome).Str("error", failure.Message)
		if failure.StatusCode != 0 {
			event = event.Int("status_code", failure.StatusCode)
		}
	} else {
		event = event.Int("tokens", tokens)
	}
	event.Str("operation", operation).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("jina call completed")

	if s.observer != nil {
		s.observer.ObserveOperation(operation, outcome, duration)
		if failure == nil {
			s.observer.ObserveTokens(operation, tokens)
		}
	}
}

// checkEnvelope turns a decode error or a non-200 envelope code into a failure.
func checkEnvelope(raw *UpstreamResponse) (*Envelope, *Failure) {
	if raw.DecodeErr != nil {
		return nil, decodeFailure(raw.DecodeErr)
	}
	if code, ok := raw.Envelope.Code.(float64); !ok || code != http.StatusOK {
		return nil, apiErrorFailure(raw.Envelope.Status)
	}
	return &raw.Envelope, nil
}

// decodeFailure separates bodies that are not JSON from JSON of the wrong shape.
func decodeFailure(err error) *Failure {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return newFailuref(ErrorCodeUnexpected, "unexpected response shape: %v", err)
	}
	return newFailuref(ErrorCodeRequestFailed, "request failed: invalid JSON response: %v", err)
}

func hasData(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
