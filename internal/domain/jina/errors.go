package jina

import (
	"errors"
	"fmt"
)

// ErrorCode tags a failed call so callers can branch without parsing messages.
type ErrorCode string

const (
	ErrorCodeMissingAPIKey     ErrorCode = "MISSING_API_KEY"
	ErrorCodeInvalidQuery      ErrorCode = "INVALID_QUERY"
	ErrorCodeInvalidMaxResults ErrorCode = "INVALID_MAX_RESULTS"
	ErrorCodeInvalidURL        ErrorCode = "INVALID_URL"
	ErrorCodeInvalidURLFormat  ErrorCode = "INVALID_URL_FORMAT"
	ErrorCodeInvalidAPIKey     ErrorCode = "INVALID_API_KEY"
	ErrorCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrorCodeURLNotFound       ErrorCode = "URL_NOT_FOUND"
	ErrorCodeAPIRequestFailed  ErrorCode = "API_REQUEST_FAILED"
	ErrorCodeAPIError          ErrorCode = "API_ERROR"
	ErrorCodeRequestTimeout    ErrorCode = "REQUEST_TIMEOUT"
	ErrorCodeConnectionError   ErrorCode = "CONNECTION_ERROR"
	ErrorCodeRequestFailed     ErrorCode = "REQUEST_FAILED"
	ErrorCodeUnexpected        ErrorCode = "UNEXPECTED_ERROR"
)

// IsValidation reports whether the code comes from local input checks.
func (c ErrorCode) IsValidation() bool {
	switch c {
	case ErrorCodeInvalidQuery, ErrorCodeInvalidMaxResults, ErrorCodeInvalidURL, ErrorCodeInvalidURLFormat:
		return true
	}
	return false
}

// Transport errors are wrapped with these sentinels by the HTTP client so the
// service can classify them with errors.Is.
var (
	ErrTimeout    = errors.New("request timed out")
	ErrConnection = errors.New("connection failed")
)

// Failure is the normalized error carried by a response.
type Failure struct {
	Message    string    `json:"error"`
	Code       ErrorCode `json:"error_code"`
	StatusCode int       `json:"status_code,omitempty"`
}

func (f *Failure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("%s (%d): %s", f.Code, f.StatusCode, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

var defaultMessages = map[ErrorCode]string{
	ErrorCodeMissingAPIKey:     "JINA_API_KEY is not configured",
	ErrorCodeInvalidQuery:      "query must be a non-empty string",
	ErrorCodeInvalidMaxResults: "max_results must be an integer greater than 0",
	ErrorCodeInvalidURL:        "url must be a non-empty string",
	ErrorCodeInvalidURLFormat:  "url must start with http:// or https://",
	ErrorCodeInvalidAPIKey:     "JINA_API_KEY is invalid or expired",
	ErrorCodeRateLimitExceeded: "API rate limit exceeded, please retry later",
	ErrorCodeURLNotFound:       "target URL does not exist or is not reachable",
	ErrorCodeRequestTimeout:    "request timed out, check the network connection or retry later",
	ErrorCodeConnectionError:   "network connection failed, check the network connection",
}

func newFailure(code ErrorCode) *Failure {
	return &Failure{Code: code, Message: defaultMessages[code]}
}

func newFailuref(code ErrorCode, format string, args ...any) *Failure {
	return &Failure{Code: code, Message: fmt.Sprintf(format, args...)}
}

func statusFailure(statusCode int) *Failure {
	return &Failure{
		Code:       ErrorCodeAPIRequestFailed,
		Message:    fmt.Sprintf("API request failed with status code %d", statusCode),
		StatusCode: statusCode,
	}
}

func apiErrorFailure(status any) *Failure {
	if status == nil {
		status = "Unknown error"
	}
	return newFailuref(ErrorCodeAPIError, "API returned error: %v", status)
}

// transportFailure maps an error returned by the upstream client.
func transportFailure(err error) *Failure {
	switch {
	case errors.Is(err, ErrTimeout):
		return newFailure(ErrorCodeRequestTimeout)
	case errors.Is(err, ErrConnection):
		return newFailure(ErrorCodeConnectionError)
	default:
		return newFailuref(ErrorCodeRequestFailed, "request failed: %v", err)
	}
}
