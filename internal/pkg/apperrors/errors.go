package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Store errors
	ErrStoreUnavailable = errors.New("backing store unavailable")
)

// Identity errors
var (
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Faculty errors
var (
	ErrFacultyNotFound    = errors.New("faculty profile not found")
	ErrFacultyInactive    = errors.New("faculty profile is not active")
	ErrDepartmentMismatch = errors.New("faculty belongs to a different department")
)

// Assignment errors
var (
	ErrAssignmentNotFound     = errors.New("class assignment not found")
	ErrAssignmentInactive     = errors.New("class assignment is already inactive")
	ErrActiveAssignmentExists = errors.New("an active assignment already exists for this class")
)

// Student errors
var (
	ErrStudentNotFound         = errors.New("student record not found")
	ErrRollNumberAlreadyExists = errors.New("roll number already exists")
	ErrDuplicateEnrollment     = errors.New("enrollment already exists for this class and faculty")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with an underlying sentinel
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// NewConflictError creates a conflict error with a message
func NewConflictError(message string) error {
	return &CustomError{Err: ErrConflict, Message: message}
}

// NewResourceNotFoundError creates a not-found error with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{Err: ErrResourceNotFound, Message: message}
}

// NewForbiddenError creates a permission-denied error with a message
func NewForbiddenError(message string) error {
	return &CustomError{Err: ErrPermissionDenied, Message: message}
}

// FieldViolation describes a single field-level validation failure
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the full list of field violations for one request.
// Callers must be able to surface every violation at once, not just the first.
type ValidationError struct {
	Violations []FieldViolation
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return ErrValidationFailed.Error()
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap makes errors.Is(err, ErrValidationFailed) work
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// Add appends a field violation
func (e *ValidationError) Add(field, message string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Message: message})
}

// HasViolations reports whether any violation was recorded
func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}
