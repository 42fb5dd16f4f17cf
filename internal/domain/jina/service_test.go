package jina

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is a JinaClient whose behaviour is set per test.
type fakeClient struct {
	SearchFunc func(ctx context.Context, apiKey, query string, includeContent bool) (*UpstreamResponse, error)
	ReadFunc   func(ctx context.Context, apiKey, targetURL string) (*UpstreamResponse, error)

	calls int
}

func (f *fakeClient) Search(ctx context.Context, apiKey, query string, includeContent bool) (*UpstreamResponse, error) {
	f.calls++
	if f.SearchFunc == nil {
		return nil, errors.New("unexpected search call")
	}
	return f.SearchFunc(ctx, apiKey, query, includeContent)
}

func (f *fakeClient) Read(ctx context.Context, apiKey, targetURL string) (*UpstreamResponse, error) {
	f.calls++
	if f.ReadFunc == nil {
		return nil, errors.New("unexpected read call")
	}
	return f.ReadFunc(ctx, apiKey, targetURL)
}

type recordingObserver struct {
	outcomes []string
	tokens   int
}

func (o *recordingObserver) ObserveOperation(operation, outcome string, _ time.Duration) {
	o.outcomes = append(o.outcomes, operation+":"+outcome)
}

func (o *recordingObserver) ObserveTokens(_ string, tokens int) {
	o.tokens += tokens
}

func staticKey(key string) CredentialSource {
	return func() string { return key }
}

// upstream decodes body the way the resty client does: only 2xx bodies are decoded.
func upstream(status int, body string) *UpstreamResponse {
	resp := &UpstreamResponse{StatusCode: status}
	if status >= 200 && status < 300 {
		resp.DecodeErr = json.Unmarshal([]byte(body), &resp.Envelope)
	}
	return resp
}

func respond(status int, body string) func() (*UpstreamResponse, error) {
	return func() (*UpstreamResponse, error) {
		return upstream(status, body), nil
	}
}

func searchReturning(status int, body string) *fakeClient {
	r := respond(status, body)
	return &fakeClient{SearchFunc: func(context.Context, string, string, bool) (*UpstreamResponse, error) { return r() }}
}

func readReturning(status int, body string) *fakeClient {
	r := respond(status, body)
	return &fakeClient{ReadFunc: func(context.Context, string, string) (*UpstreamResponse, error) { return r() }}
}

func toMap(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestMissingAPIKeyWinsOverEverything(t *testing.T) {
	client := &fakeClient{}
	svc := NewJinaService(client, staticKey(""), nil, nil)

	search := svc.Search(context.Background(), SearchQuery{Query: "   ", MaxResults: -1})
	require.NotNil(t, search.Failure)
	assert.Equal(t, ErrorCodeMissingAPIKey, search.Failure.Code)

	read := svc.ReadURL(context.Background(), ReadRequest{URL: "example.com"})
	require.NotNil(t, read.Failure)
	assert.Equal(t, ErrorCodeMissingAPIKey, read.Failure.Code)

	assert.Zero(t, client.calls)
}

func TestNilCredentialSourceIsMissing(t *testing.T) {
	svc := NewJinaService(&fakeClient{}, nil, nil, nil)
	resp := svc.Search(context.Background(), NewSearchQuery("golang"))
	require.NotNil(t, resp.Failure)
	assert.Equal(t, ErrorCodeMissingAPIKey, resp.Failure.Code)
}

func TestCredentialIsReadPerCall(t *testing.T) {
	key := ""
	client := searchReturning(http.StatusOK, `{"code":200,"data":[]}`)
	svc := NewJinaService(client, func() string { return key }, nil, nil)

	first := svc.Search(context.Background(), NewSearchQuery("golang"))
	require.NotNil(t, first.Failure)

	key = "now-set"
	second := svc.Search(context.Background(), NewSearchQuery("golang"))
	assert.Nil(t, second.Failure)
	assert.Equal(t, 1, client.calls)
}

func TestSearchValidationOrder(t *testing.T) {
	cases := []struct {
		name  string
		query SearchQuery
		want  ErrorCode
	}{
		{"empty query", SearchQuery{Query: "", MaxResults: 10}, ErrorCodeInvalidQuery},
		{"whitespace query", SearchQuery{Query: " \t\n ", MaxResults: 10}, ErrorCodeInvalidQuery},
		{"bad query beats bad max", SearchQuery{Query: " ", MaxResults: 0}, ErrorCodeInvalidQuery},
		{"zero max", SearchQuery{Query: "go", MaxResults: 0}, ErrorCodeInvalidMaxResults},
		{"negative max", SearchQuery{Query: "go", MaxResults: -1}, ErrorCodeInvalidMaxResults},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeClient{}
			svc := NewJinaService(client, staticKey("k"), nil, nil)

			resp := svc.Search(context.Background(), tc.query)
			require.NotNil(t, resp.Failure)
			assert.Equal(t, tc.want, resp.Failure.Code)
			assert.Zero(t, client.calls, "no request may be issued on validation failure")
		})
	}
}

func TestReadValidationOrder(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want ErrorCode
	}{
		{"empty url", "", ErrorCodeInvalidURL},
		{"whitespace url", "   ", ErrorCodeInvalidURL},
		{"missing scheme", "example.com", ErrorCodeInvalidURLFormat},
		{"ftp scheme", "ftp://example.com", ErrorCodeInvalidURLFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeClient{}
			svc := NewJinaService(client, staticKey("k"), nil, nil)

			resp := svc.ReadURL(context.Background(), NewReadRequest(tc.url))
			require.NotNil(t, resp.Failure)
			assert.Equal(t, tc.want, resp.Failure.Code)
			assert.Zero(t, client.calls)
		})
	}
}

func TestSearchSuccess(t *testing.T) {
	var gotKey, gotQuery string
	var gotContent bool
	client := &fakeClient{SearchFunc: func(_ context.Context, apiKey, query string, includeContent bool) (*UpstreamResponse, error) {
		gotKey, gotQuery, gotContent = apiKey, query, includeContent
		return upstream(http.StatusOK, `{
			"code": 200, "status": 20000,
			"data": [{"title": "Test Title", "url": "https://example.com", "description": "Test description"}],
			"meta": {"usage": {"tokens": 100}}
		}`), nil
	}}
	observer := &recordingObserver{}
	svc := NewJinaService(client, staticKey("secret"), observer, nil)

	resp := svc.Search(context.Background(), NewSearchQuery("  test query  "))

	require.Nil(t, resp.Failure)
	assert.True(t, resp.Success)
	assert.Equal(t, "test query", resp.Query)
	assert.Equal(t, 100, resp.TotalTokens)
	assert.Equal(t, 1, resp.TotalResults)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Test Title", resp.Results[0].Title)

	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "test query", gotQuery)
	assert.False(t, gotContent)

	assert.Equal(t, []string{"search:success"}, observer.outcomes)
	assert.Equal(t, 100, observer.tokens)
}

func TestSearchTruncatesResults(t *testing.T) {
	items := make([]string, 8)
	for i := range items {
		items[i] = fmt.Sprintf(`{"title":"r%d","url":"https://example.com/%d","description":""}`, i, i)
	}
	body := `{"code":200,"data":[` + strings.Join(items, ",") + `]}`
	svc := NewJinaService(searchReturning(http.StatusOK, body), staticKey("k"), nil, nil)

	resp := svc.Search(context.Background(), SearchQuery{Query: "q", MaxResults: 5})

	require.Nil(t, resp.Failure)
	require.Len(t, resp.Results, 5)
	assert.Equal(t, 5, resp.TotalResults)
	assert.Equal(t, "r4", resp.Results[4].Title)
	assert.Zero(t, resp.TotalTokens, "missing usage defaults to zero")
}

func TestSearchEmptyDataRendersEmptyList(t *testing.T) {
	svc := NewJinaService(searchReturning(http.StatusOK, `{"code":200,"data":null}`), staticKey("k"), nil, nil)

	resp := svc.Search(context.Background(), NewSearchQuery("q"))
	require.Nil(t, resp.Failure)

	out := toMap(t, resp)
	assert.Equal(t, []any{}, out["results"])
	assert.Equal(t, float64(0), out["total_results"])
}

func TestSearchStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorCode
	}{
		{http.StatusUnauthorized, ErrorCodeInvalidAPIKey},
		{http.StatusTooManyRequests, ErrorCodeRateLimitExceeded},
		{http.StatusNotFound, ErrorCodeAPIRequestFailed},
		{http.StatusInternalServerError, ErrorCodeAPIRequestFailed},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			svc := NewJinaService(searchReturning(tc.status, `not json`), staticKey("k"), nil, nil)
			resp := svc.Search(context.Background(), NewSearchQuery("q"))
			require.NotNil(t, resp.Failure)
			assert.Equal(t, tc.want, resp.Failure.Code)
			if tc.want == ErrorCodeAPIRequestFailed {
				assert.Equal(t, tc.status, resp.Failure.StatusCode)
			} else {
				assert.Zero(t, resp.Failure.StatusCode)
			}
		})
	}
}

func TestReadStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorCode
	}{
		{http.StatusUnauthorized, ErrorCodeInvalidAPIKey},
		{http.StatusTooManyRequests, ErrorCodeRateLimitExceeded},
		{http.StatusNotFound, ErrorCodeURLNotFound},
		{http.StatusBadGateway, ErrorCodeAPIRequestFailed},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			svc := NewJinaService(readReturning(tc.status, ``), staticKey("k"), nil, nil)
			resp := svc.ReadURL(context.Background(), NewReadRequest("https://example.com"))
			require.NotNil(t, resp.Failure)
			assert.Equal(t, tc.want, resp.Failure.Code)
		})
	}
}

func TestAPIRequestFailedShape(t *testing.T) {
	svc := NewJinaService(searchReturning(http.StatusServiceUnavailable, ``), staticKey("k"), nil, nil)
	out := toMap(t, svc.Search(context.Background(), NewSearchQuery("q")))

	assert.Equal(t, false, out["success"])
	assert.Equal(t, "API_REQUEST_FAILED", out["error_code"])
	assert.Equal(t, float64(503), out["status_code"])
	assert.Equal(t, "API request failed with status code 503", out["error"])
	assert.NotContains(t, out, "results")
}

func TestEmbeddedAPIError(t *testing.T) {
	svc := NewJinaService(searchReturning(http.StatusOK, `{"code":422,"status":"quota exhausted"}`), staticKey("k"), nil, nil)
	resp := svc.Search(context.Background(), NewSearchQuery("q"))
	require.NotNil(t, resp.Failure)
	assert.Equal(t, ErrorCodeAPIError, resp.Failure.Code)
	assert.Equal(t, "API returned error: quota exhausted", resp.Failure.Message)

	svc = NewJinaService(readReturning(http.StatusOK, `{"data":{}}`), staticKey("k"), nil, nil)
	read := svc.ReadURL(context.Background(), NewReadRequest("https://example.com"))
	require.NotNil(t, read.Failure)
	assert.Equal(t, ErrorCodeAPIError, read.Failure.Code)
	assert.Equal(t, "API returned error: Unknown error", read.Failure.Message)
}

func TestInvalidJSONBody(t *testing.T) {
	svc := NewJinaService(searchReturning(http.StatusOK, `<html>`), staticKey("k"), nil, nil)
	resp := svc.Search(context.Background(), NewSearchQuery("q"))
	require.NotNil(t, resp.Failure)
	assert.Equal(t, ErrorCodeRequestFailed, resp.Failure.Code)
}

func TestWrongDataShapeIsUnexpected(t *testing.T) {
	svc := NewJinaService(searchReturning(http.StatusOK, `{"code":200,"data":{"title":"x"}}`), staticKey("k"), nil, nil)
	resp := svc.Search(context.Background(), NewSearchQuery("q"))
	require.NotNil(t, resp.Failure)
	assert.Equal(t, ErrorCodeUnexpected, resp.Failure.Code)
}

func TestWrongEnvelopeShapeIsUnexpected(t *testing.T) {
	for _, body := range []string{`{"code":200,"meta":"none"}`, `[1,2]`} {
		svc := NewJinaService(searchReturning(http.StatusOK, body), staticKey("k"), nil, nil)
		resp := svc.Search(context.Background(), NewSearchQuery("q"))
		require.NotNil(t, resp.Failure, body)
		assert.Equal(t, ErrorCodeUnexpected, resp.Failure.Code, body)
	}
}

func TestFractionalTokensKeepSuccess(t *testing.T) {
	body := `{"code":200,"data":[{"title":"a"}],"meta":{"usage":{"tokens":1.5}}}`
	svc := NewJinaService(searchReturning(http.StatusOK, body), staticKey("k"), nil, nil)

	resp := svc.Search(context.Background(), NewSearchQuery("q"))
	require.Nil(t, resp.Failure)
	assert.Equal(t, 1, resp.TotalTokens)
	assert.Equal(t, 1, resp.TotalResults)

	read := NewJinaService(readReturning(http.StatusOK, `{"code":200,"data":{"usage":{"tokens":"12"}}}`), staticKey("k"), nil, nil).
		ReadURL(context.Background(), NewReadRequest("https://example.com"))
	require.Nil(t, read.Failure)
	assert.Equal(t, 12, read.Tokens)
}

func TestTransportErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"timeout", fmt.Errorf("%w: deadline", ErrTimeout), ErrorCodeRequestTimeout},
		{"connection", fmt.Errorf("%w: refused", ErrConnection), ErrorCodeConnectionError},
		{"other", errors.New("tls handshake failure"), ErrorCodeRequestFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeClient{ReadFunc: func(context.Context, string, string) (*UpstreamResponse, error) { return nil, tc.err }}
			svc := NewJinaService(client, staticKey("k"), nil, nil)
			resp := svc.ReadURL(context.Background(), NewReadRequest("https://example.com"))
			require.NotNil(t, resp.Failure)
			assert.Equal(t, tc.want, resp.Failure.Code)
		})
	}

	client := &fakeClient{SearchFunc: func(context.Context, string, string, bool) (*UpstreamResponse, error) {
		return nil, errors.New("tls handshake failure")
	}}
	resp := NewJinaService(client, staticKey("k"), nil, nil).Search(context.Background(), NewSearchQuery("q"))
	require.NotNil(t, resp.Failure)
	assert.Equal(t, "request failed: tls handshake failure", resp.Failure.Message)
}

func TestPanicBecomesUnexpectedError(t *testing.T) {
	client := &fakeClient{SearchFunc: func(context.Context, string, string, bool) (*UpstreamResponse, error) {
		panic("boom")
	}}
	observer := &recordingObserver{}
	svc := NewJinaService(client, staticKey("k"), observer, nil)

	var resp *SearchResponse
	require.NotPanics(t, func() { resp = svc.Search(context.Background(), NewSearchQuery("q")) })
	require.NotNil(t, resp.Failure)
	assert.Equal(t, ErrorCodeUnexpected, resp.Failure.Code)
	assert.Equal(t, "boom", resp.Failure.Message)
	assert.Equal(t, []string{"search:UNEXPECTED_ERROR"}, observer.outcomes)

	readClient := &fakeClient{ReadFunc: func(context.Context, string, string) (*UpstreamResponse, error) {
		return nil, nil
	}}
	read := NewJinaService(readClient, staticKey("k"), nil, nil).ReadURL(context.Background(), NewReadRequest("https://example.com"))
	require.NotNil(t, read.Failure)
	assert.Equal(t, ErrorCodeUnexpected, read.Failure.Code)
}

const readBody = `{
	"code": 200, "status": 20000,
	"data": {
		"title": "Example", "description": "An example page",
		"url": "https://example.com/canonical",
		"content": "# Example",
		"publishedTime": "2024-01-02T03:04:05Z",
		"metadata": {"lang": "en"},
		"usage": {"tokens": 42}
	}
}`

func TestReadSuccess(t *testing.T) {
	var gotTarget string
	client := &fakeClient{ReadFunc: func(_ context.Context, _ string, targetURL string) (*UpstreamResponse, error) {
		gotTarget = targetURL
		return upstream(http.StatusOK, readBody), nil
	}}
	svc := NewJinaService(client, staticKey("k"), nil, nil)

	resp := svc.ReadURL(context.Background(), NewReadRequest("  https://example.com  "))

	require.Nil(t, resp.Failure)
	assert.Equal(t, "https://example.com", gotTarget)
	assert.Equal(t, "https://example.com/canonical", resp.URL)
	assert.Equal(t, "Example", resp.Title)
	assert.Equal(t, "An example page", resp.Description)
	assert.Equal(t, "# Example", resp.Content)
	assert.Equal(t, "2024-01-02T03:04:05Z", resp.PublishedTime)
	assert.Equal(t, 42, resp.Tokens)
	assert.Equal(t, map[string]any{"lang": "en"}, resp.Metadata)
	assert.Nil(t, resp.Warning)

	out := toMap(t, resp)
	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "warning")
	assert.NotContains(t, out, "error_code")
}

func TestReadURLFallsBackToRequestedURL(t *testing.T) {
	svc := NewJinaService(readReturning(http.StatusOK, `{"code":200,"data":{"title":"t"}}`), staticKey("k"), nil, nil)
	resp := svc.ReadURL(context.Background(), NewReadRequest("https://example.com/a"))
	require.Nil(t, resp.Failure)
	assert.Equal(t, "https://example.com/a", resp.URL)
	assert.Zero(t, resp.Tokens)
}

func TestReadMetadataPresence(t *testing.T) {
	svc := NewJinaService(readReturning(http.StatusOK, readBody), staticKey("k"), nil, nil)

	without := toMap(t, svc.ReadURL(context.Background(), ReadRequest{URL: "https://example.com", IncludeMetadata: false}))
	assert.NotContains(t, without, "metadata")

	with := toMap(t, svc.ReadURL(context.Background(), NewReadRequest("https://example.com")))
	assert.Equal(t, map[string]any{"lang": "en"}, with["metadata"])

	bare := NewJinaService(readReturning(http.StatusOK, `{"code":200,"data":{}}`), staticKey("k"), nil, nil)
	empty := toMap(t, bare.ReadURL(context.Background(), NewReadRequest("https://example.com")))
	assert.Equal(t, map[string]any{}, empty["metadata"])
}

func TestReadWarningIndependentOfMetadata(t *testing.T) {
	body := `{"code":200,"data":{"title":"t","warning":"Target URL returned error 403"}}`
	svc := NewJinaService(readReturning(http.StatusOK, body), staticKey("k"), nil, nil)

	for _, includeMetadata := range []bool{true, false} {
		resp := svc.ReadURL(context.Background(), ReadRequest{URL: "https://example.com", IncludeMetadata: includeMetadata})
		require.Nil(t, resp.Failure)
		text, ok := resp.WarningText()
		require.True(t, ok)
		assert.Equal(t, "Target URL returned error 403", text)
		assert.Equal(t, "Target URL returned error 403", toMap(t, resp)["warning"])
	}
}

func TestReadNullWarningIsKept(t *testing.T) {
	svc := NewJinaService(readReturning(http.StatusOK, `{"code":200,"data":{"title":"t","warning":null}}`), staticKey("k"), nil, nil)

	resp := svc.ReadURL(context.Background(), NewReadRequest("https://example.com"))
	require.Nil(t, resp.Failure)

	out := toMap(t, resp)
	require.Contains(t, out, "warning")
	assert.Nil(t, out["warning"])
}

func TestRedactorIsApplied(t *testing.T) {
	var seen []string
	redact := func(s string) string {
		seen = append(seen, s)
		return "[x]"
	}
	svc := NewJinaService(readReturning(http.StatusOK, readBody), staticKey("k"), nil, redact)
	svc.ReadURL(context.Background(), NewReadRequest("https://example.com"))
	assert.Equal(t, []string{"https://example.com"}, seen)
}
