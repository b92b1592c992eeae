package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/gcbaptista/course-search-engine/internal/errors"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeCatalogNotFound  ErrorCode = "CATALOG_NOT_FOUND"
	ErrorCodeCourseNotFound   ErrorCode = "COURSE_NOT_FOUND"
	ErrorCodeJobNotFound      ErrorCode = "JOB_NOT_FOUND"
	ErrorCodeCatalogExists    ErrorCode = "CATALOG_ALREADY_EXISTS"
	ErrorCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrorCodeRequestTimeout   ErrorCode = "REQUEST_TIMEOUT"

	// Server Error Codes (5xx)
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrorCodeSearchFailed       ErrorCode = "SEARCH_FAILED"
	ErrorCodeJobExecutionFailed ErrorCode = "JOB_EXECUTION_FAILED"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIErrorResponse creates a standardized error response
func APIErrorResponse(code ErrorCode, message string, details ...ErrorDetail) *APIError {
	return &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	errorResponse := APIErrorResponse(code, message, details...)
	errorResponse.RequestID = requestID(c)
	c.AbortWithStatusJSON(statusCode, errorResponse)
}

// SendStructuredValidationError sends a validation error with one detail per problem
func SendStructuredValidationError(c *gin.Context, result *ValidationResult) {
	details := make([]ErrorDetail, len(result.Errors))
	for i, err := range result.Errors {
		details[i] = ErrorDetail{
			Field:   err.Field,
			Message: err.Message,
			Code:    "VALIDATION_ERROR",
		}
	}

	SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed", details...)
}

// SendInvalidJSONError sends a standardized invalid JSON error
func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
		"Invalid JSON in request body: "+err.Error())
}

// SendInternalError sends a standardized internal server error
func SendInternalError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
		"Internal error during "+operation+": "+err.Error())
}

// SendEngineError maps an error returned by the engine to its HTTP status and
// error code. Errors the engine does not classify become fallback (a 5xx code).
func SendEngineError(c *gin.Context, operation string, fallback ErrorCode, err error) {
	var validationErr *internalErrors.ValidationError

	switch {
	case stderrors.Is(err, internalErrors.ErrCatalogNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeCatalogNotFound, err.Error())
	case stderrors.Is(err, internalErrors.ErrCourseNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeCourseNotFound, err.Error())
	case stderrors.Is(err, internalErrors.ErrJobNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeJobNotFound, err.Error())
	case stderrors.Is(err, internalErrors.ErrCatalogAlreadyExists):
		SendError(c, http.StatusConflict, ErrorCodeCatalogExists, err.Error())
	case stderrors.As(err, &validationErr):
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error(), ErrorDetail{
			Field:   validationErr.Field,
			Message: validationErr.Message,
			Code:    "VALIDATION_ERROR",
		})
	case stderrors.Is(err, internalErrors.ErrInvalidInput):
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		SendError(c, http.StatusRequestTimeout, ErrorCodeRequestTimeout, operation+" did not finish: "+err.Error())
	default:
		SendError(c, http.StatusInternalServerError, fallback, operation+" failed: "+err.Error())
	}
}

func requestID(c *gin.Context) string {
	if id, exists := c.Get(requestIDKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
