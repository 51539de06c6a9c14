package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/gcbaptista/promo-search-engine/internal/errors"
	"github.com/gcbaptista/promo-search-engine/internal/logging"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrorCodeInvalidJSON        ErrorCode = "INVALID_JSON"
	ErrorCodePromotionNotFound  ErrorCode = "PROMOTION_NOT_FOUND"
	ErrorCodeJobNotFound        ErrorCode = "JOB_NOT_FOUND"
	ErrorCodeNoActiveSession    ErrorCode = "NO_ACTIVE_SESSION"
	ErrorCodePageOutOfRange     ErrorCode = "PAGE_OUT_OF_RANGE"
	ErrorCodeReloadNotSupported ErrorCode = "RELOAD_NOT_SUPPORTED"

	// Server Error Codes (5xx)
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrorCodeSearchFailed       ErrorCode = "SEARCH_FAILED"
	ErrorCodeDataUnavailable    ErrorCode = "DATA_UNAVAILABLE"
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
		Timestamp: time.Now(),
	}
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	errorResponse := APIErrorResponse(code, message, details...)
	errorResponse.RequestID = logging.RequestID(c)
	c.JSON(statusCode, errorResponse)
}

// SendStructuredValidationError sends a validation error with structured details
func SendStructuredValidationError(c *gin.Context, result *ValidationResult) {
	SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed", validationDetails(result)...)
}

func validationDetails(result *ValidationResult) []ErrorDetail {
	details := make([]ErrorDetail, len(result.Errors))
	for i, err := range result.Errors {
		details[i] = ErrorDetail{
			Field:   err.Field,
			Message: err.Message,
			Code:    "VALIDATION_ERROR",
		}
	}
	return details
}

// SendPromotionNotFoundError sends a standardized promotion not found error
func SendPromotionNotFoundError(c *gin.Context, id int) {
	SendError(c, http.StatusNotFound, ErrorCodePromotionNotFound,
		"Promotion '"+strconv.Itoa(id)+"' not found")
}

// SendJobNotFoundError sends a standardized job not found error
func SendJobNotFoundError(c *gin.Context, jobID string) {
	SendError(c, http.StatusNotFound, ErrorCodeJobNotFound,
		"Job '"+jobID+"' not found")
}

// SendInvalidJSONError sends a standardized invalid JSON error
func SendInvalidJSONError(c *gin.Context, result *ValidationResult) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
		"Invalid JSON in request body", validationDetails(result)...)
}

// SendInternalError sends a standardized internal server error
func SendInternalError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
		"Internal error during "+operation+": "+err.Error())
}

// SendJobExecutionError sends a standardized job execution error
func SendJobExecutionError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeJobExecutionFailed,
		"Failed to start "+operation+" job: "+err.Error())
}

// SendSearchError maps a session search error to its HTTP status.
func SendSearchError(c *gin.Context, err error) {
	var rangeErr *internalErrors.PageOutOfRangeError
	switch {
	case errors.Is(err, internalErrors.ErrNoActiveSession):
		SendError(c, http.StatusNotFound, ErrorCodeNoActiveSession, err.Error())
	case errors.As(err, &rangeErr):
		SendError(c, http.StatusRequestedRangeNotSatisfiable, ErrorCodePageOutOfRange, err.Error(),
			ErrorDetail{Field: "page", Message: "total pages: " + strconv.Itoa(rangeErr.TotalPages)})
	case errors.Is(err, internalErrors.ErrInvalidInput):
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
	default:
		SendError(c, http.StatusInternalServerError, ErrorCodeSearchFailed, "Search failed: "+err.Error())
	}
}

// SendReloadError reports a failed inline reload. A source with no usable
// records is a 503 so callers can retry once the data is back.
func SendReloadError(c *gin.Context, err error) {
	if errors.Is(err, internalErrors.ErrDataUnavailable) {
		SendError(c, http.StatusServiceUnavailable, ErrorCodeDataUnavailable, err.Error())
		return
	}
	SendInternalError(c, "reload", err)
}
