// Package api provides validation utilities for API request handling.
package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxQueryLength bounds the raw query accepted by the search endpoints
const MaxQueryLength = 200

// MaxPageLimit bounds the catalogue page size
const MaxPageLimit = 100

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateUserID validates the user ID path parameter
func ValidateUserID(userID string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if userID == "" {
		result.AddError("userID", "User ID is required")
		return result
	}

	if strings.TrimSpace(userID) != userID {
		result.AddError("userID", "User ID cannot have leading or trailing whitespace")
	}

	return result
}

// ValidateQuery validates a raw search query. Empty queries are allowed.
func ValidateQuery(query string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len([]rune(query)) > MaxQueryLength {
		result.AddError("query", "Query cannot be longer than "+strconv.Itoa(MaxQueryLength)+" characters")
	}

	return result
}

// ValidatePromotionID parses a promotion ID path parameter
func ValidatePromotionID(raw string) (int, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	if raw == "" {
		result.AddError("id", "Promotion ID is required")
		return 0, result
	}

	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		result.AddError("id", "Promotion ID must be a non-negative integer")
		return 0, result
	}

	return id, result
}

// ValidatePagination validates pagination parameters. Zero values fall back
// to page 1 and defaultLimit; limits above MaxPageLimit are capped.
func ValidatePagination(page, limit, defaultLimit int) (int, int, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	if page < 0 {
		result.AddError("page", "Page number cannot be negative")
	}
	if limit < 0 {
		result.AddError("limit", "Limit cannot be negative")
	}

	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	return page, limit, result
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}

// ValidateJSONBinding validates JSON binding and returns a standardized error
func ValidateJSONBinding(c *gin.Context, target interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if err := c.ShouldBindJSON(target); err != nil {
		result.AddError("request_body", "Invalid request body: "+err.Error())
	}

	return result
}

// ValidateQueryBinding validates query parameter binding
func ValidateQueryBinding(c *gin.Context, target interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if err := c.ShouldBindQuery(target); err != nil {
		result.AddError("query_parameters", "Invalid query parameters: "+err.Error())
	}

	return result
}
