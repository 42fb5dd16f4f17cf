package jina

import (
	"encoding/json"
	"math"
)

const (
	// DefaultMaxResults is applied when a search request does not set max_results.
	DefaultMaxResults = 10
	// OperationSearch and OperationRead label the two public operations in logs and metrics.
	OperationSearch = "search"
	OperationRead   = "read"
)

// SearchQuery represents a web search request.
type SearchQuery struct {
	Query          string `json:"query"`
	MaxResults     int    `json:"max_results"`
	IncludeContent bool   `json:"include_content"`
}

// NewSearchQuery returns a query with the default options applied.
func NewSearchQuery(query string) SearchQuery {
	return SearchQuery{Query: query, MaxResults: DefaultMaxResults}
}

// ReadRequest represents a URL extraction request.
type ReadRequest struct {
	URL             string `json:"url"`
	IncludeMetadata bool   `json:"include_metadata"`
}

// NewReadRequest returns a read request with metadata enabled.
func NewReadRequest(url string) ReadRequest {
	return ReadRequest{URL: url, IncludeMetadata: true}
}

// SearchResult is a single upstream search hit, passed through unvalidated.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Content     string `json:"content,omitempty"`
}

// SearchResponse is the normalized outcome of a search call.
// Exactly one of the success fields or Failure is meaningful.
type SearchResponse struct {
	Success      bool           `json:"success"`
	Query        string         `json:"query"`
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
	TotalTokens  int            `json:"total_tokens"`
	Failure      *Failure       `json:"-"`
}

// MarshalJSON renders either the success shape or the failure shape, never both.
func (r SearchResponse) MarshalJSON() ([]byte, error) {
	if r.Failure != nil {
		return json.Marshal(failureEnvelope{Failure: r.Failure})
	}
	type plain SearchResponse
	out := plain(r)
	out.Success = true
	if out.Results == nil {
		out.Results = []SearchResult{}
	}
	return json.Marshal(out)
}

// ReadResponse is the normalized outcome of a read call.
// Metadata is present iff metadata was requested. Warning holds the upstream
// warning verbatim and is present iff upstream sent the key, even as null.
type ReadResponse struct {
	Success       bool            `json:"success"`
	URL           string          `json:"url"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Content       string          `json:"content"`
	PublishedTime string          `json:"published_time"`
	Tokens        int             `json:"tokens"`
	Metadata      map[string]any  `json:"metadata,omitzero"`
	Warning       json.RawMessage `json:"warning,omitempty"`
	Failure       *Failure        `json:"-"`
}

// WarningText returns the upstream warning as text. Non-string warnings are
// returned as their JSON encoding.
func (r *ReadResponse) WarningText() (string, bool) {
	if len(r.Warning) == 0 {
		return "", false
	}
	var text string
	if err := json.Unmarshal(r.Warning, &text); err == nil {
		return text, true
	}
	return string(r.Warning), true
}

// MarshalJSON renders either the success shape or the failure shape, never both.
func (r ReadResponse) MarshalJSON() ([]byte, error) {
	if r.Failure != nil {
		return json.Marshal(failureEnvelope{Failure: r.Failure})
	}
	type plain ReadResponse
	out := plain(r)
	out.Success = true
	return json.Marshal(out)
}

type failureEnvelope struct {
	Success bool `json:"success"`
	*Failure
}

// Envelope is the top-level shape shared by both Jina endpoints. Data stays
// raw so each operation decodes its own payload.
type Envelope struct {
	Code   any             `json:"code"`
	Status any             `json:"status"`
	Data   json.RawMessage `json:"data"`
	Meta   struct {
		Usage Usage `json:"usage"`
	} `json:"meta"`
}

type Usage struct {
	Tokens TokenCount `json:"tokens"`
}

// TokenCount decodes any JSON number, truncating fractions. Other values
// count as zero.
type TokenCount int

func (t *TokenCount) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil || n == "" {
		*t = 0
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		*t = 0
		return nil
	}
	switch {
	case f >= math.MaxInt:
		*t = TokenCount(math.MaxInt)
	case f <= math.MinInt:
		*t = TokenCount(math.MinInt)
	default:
		*t = TokenCount(int(f))
	}
	return nil
}

// upstreamPage is the reader endpoint's data object.
type upstreamPage struct {
	URL           *string         `json:"url"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Content       string          `json:"content"`
	PublishedTime string          `json:"publishedTime"`
	Usage         Usage           `json:"usage"`
	Metadata      map[string]any  `json:"metadata"`
	Warning       json.RawMessage `json:"warning"`
}
