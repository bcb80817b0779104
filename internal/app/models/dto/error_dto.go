package dto

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrorCode represents standardized error codes
type ErrorCode string

// Standard error codes for the application
const (
	// Authentication errors
	ErrorCodeInvalidCredentials ErrorCode = "AUTH_001"
	ErrorCodeInvalidToken       ErrorCode = "AUTH_002"
	ErrorCodeExpiredToken       ErrorCode = "AUTH_003"
	ErrorCodeUnauthorized       ErrorCode = "AUTH_004"
	ErrorCodeForbidden          ErrorCode = "AUTH_005"

	// Resource errors
	ErrorCodeResourceNotFound      ErrorCode = "RES_001"
	ErrorCodeResourceAlreadyExists ErrorCode = "RES_002"
	ErrorCodeConflict              ErrorCode = "RES_003"

	// Validation errors
	ErrorCodeValidationFailed ErrorCode = "VAL_001"

	// Server errors
	ErrorCodeInternalServer ErrorCode = "SRV_001"
	ErrorCodeStoreError     ErrorCode = "SRV_002"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

// Severity levels
const (
	ErrorSeverityInfo     ErrorSeverity = "INFO"
	ErrorSeverityWarning  ErrorSeverity = "WARNING"
	ErrorSeverityError    ErrorSeverity = "ERROR"
	ErrorSeverityCritical ErrorSeverity = "CRITICAL"
)

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Code     ErrorCode     `json:"code" example:"VAL_001"`
	Message  string        `json:"message" example:"Validation failed"`
	Field    string        `json:"field,omitempty" example:"email"`
	Severity ErrorSeverity `json:"severity" example:"ERROR"`
	Details  interface{}   `json:"details,omitempty"`
}

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success   bool         `json:"success" example:"false"`
	Error     *ErrorDetail `json:"error"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewErrorDetail creates a new error detail
func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{
		Code:     code,
		Message:  message,
		Severity: ErrorSeverityError,
	}
}

// WithField adds a field name to the error detail
func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.Field = field
	return e
}

// WithSeverity sets the severity level of the error
func (e *ErrorDetail) WithSeverity(severity ErrorSeverity) *ErrorDetail {
	e.Severity = severity
	return e
}

// WithDetails adds additional details to the error
func (e *ErrorDetail) WithDetails(details interface{}) *ErrorDetail {
	e.Details = details
	return e
}

// NewErrorResponse creates a standard error response
func NewErrorResponse(errorDetail *ErrorDetail) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     errorDetail,
		Timestamp: time.Now(),
	}
}

// FieldError is a single field-level violation surfaced to clients
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// HandleValidationError converts validator errors into an ErrorDetail that
// carries every field-level violation, not just the first.
func HandleValidationError(err error) *ErrorDetail {
	detail := NewErrorDetail(ErrorCodeValidationFailed, "Validation failed")

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return detail.WithDetails(err.Error())
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   fe.Field(),
			Message: formatFieldError(fe),
		})
	}
	return detail.WithDetails(fieldErrors)
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
