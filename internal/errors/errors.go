package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrNoActiveSession is returned when a page directive arrives without a prior search
	ErrNoActiveSession = errors.New("no active search session")

	// ErrPageOutOfRange is returned when a requested page does not exist for the stored results
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrDataUnavailable is returned when a load is attempted with no usable records
	ErrDataUnavailable = errors.New("promotion data unavailable")

	// ErrPromotionNotFound is returned when a promotion ID is not in the collection
	ErrPromotionNotFound = errors.New("promotion not found")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// NoActiveSessionError represents a pagination request for a user with no session
type NoActiveSessionError struct {
	UserID string
}

func (e *NoActiveSessionError) Error() string {
	return fmt.Sprintf("no active search session for user '%s'", e.UserID)
}

func (e *NoActiveSessionError) Is(target error) bool {
	return target == ErrNoActiveSession
}

// NewNoActiveSessionError creates a new NoActiveSessionError
func NewNoActiveSessionError(userID string) *NoActiveSessionError {
	return &NoActiveSessionError{UserID: userID}
}

// PageOutOfRangeError represents a request for a page past the end of the results
type PageOutOfRangeError struct {
	Page       int
	TotalPages int
}

func (e *PageOutOfRangeError) Error() string {
	return fmt.Sprintf("page %d is out of range (total pages: %d)", e.Page, e.TotalPages)
}

func (e *PageOutOfRangeError) Is(target error) bool {
	return target == ErrPageOutOfRange
}

// NewPageOutOfRangeError creates a new PageOutOfRangeError
func NewPageOutOfRangeError(page, totalPages int) *PageOutOfRangeError {
	return &PageOutOfRangeError{Page: page, TotalPages: totalPages}
}

// DataUnavailableError represents a rejected load with the reason it was rejected
type DataUnavailableError struct {
	Reason string
}

func (e *DataUnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("promotion data unavailable: %s", e.Reason)
	}
	return "promotion data unavailable"
}

func (e *DataUnavailableError) Is(target error) bool {
	return target == ErrDataUnavailable
}

// NewDataUnavailableError creates a new DataUnavailableError
func NewDataUnavailableError(reason string) *DataUnavailableError {
	return &DataUnavailableError{Reason: reason}
}

// PromotionNotFoundError represents a lookup of an unknown promotion ID
type PromotionNotFoundError struct {
	ID int
}

func (e *PromotionNotFoundError) Error() string {
	return fmt.Sprintf("promotion with ID '%d' not found", e.ID)
}

func (e *PromotionNotFoundError) Is(target error) bool {
	return target == ErrPromotionNotFound
}

// NewPromotionNotFoundError creates a new PromotionNotFoundError
func NewPromotionNotFoundError(id int) *PromotionNotFoundError {
	return &PromotionNotFoundError{ID: id}
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
