package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jan-server/services/jina-tools/internal/domain/jina"
	"jan-server/services/jina-tools/internal/utils/platformerrors"
)

type ErrorResponse struct {
	Code          string `json:"code"` // UUID from PlatformError
	Error         string `json:"error"`
	ErrorInstance error  `json:"-"`
	RequestID     string `json:"request_id,omitempty"`
}

// HandleNewError creates a new typed error at the route layer and handles it
// The uuid parameter should be provided from the route for error tracking
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, uuid string) {
	err := platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerRoute, errorType, message, nil, uuid)
	_ = reqCtx.Error(err)

	reqCtx.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(err.Type), ErrorResponse{
		Code:          err.UUID,
		Error:         message,
		ErrorInstance: err,
		RequestID:     err.RequestID,
	})
}

// ErrorTypeForCode groups Jina error codes into platform error types.
func ErrorTypeForCode(code jina.ErrorCode) platformerrors.ErrorType {
	switch code {
	case jina.ErrorCodeInvalidQuery, jina.ErrorCodeInvalidMaxResults,
		jina.ErrorCodeInvalidURL, jina.ErrorCodeInvalidURLFormat:
		return platformerrors.ErrorTypeValidation
	case jina.ErrorCodeMissingAPIKey:
		return platformerrors.ErrorTypeUnavailable
	case jina.ErrorCodeRateLimitExceeded:
		return platformerrors.ErrorTypeTooManyRequests
	case jina.ErrorCodeURLNotFound:
		return platformerrors.ErrorTypeNotFound
	case jina.ErrorCodeInvalidAPIKey, jina.ErrorCodeAPIRequestFailed, jina.ErrorCodeAPIError,
		jina.ErrorCodeConnectionError, jina.ErrorCodeRequestFailed:
		return platformerrors.ErrorTypeExternal
	case jina.ErrorCodeRequestTimeout:
		return platformerrors.ErrorTypeTimeout
	default:
		return platformerrors.ErrorTypeInternal
	}
}

// StatusForFailure returns the HTTP status used to deliver a normalized result.
func StatusForFailure(failure *jina.Failure) int {
	if failure == nil {
		return http.StatusOK
	}
	return platformerrors.ErrorTypeToHTTPStatus(ErrorTypeForCode(failure.Code))
}
