package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oguzk/acadcore/internal/app/models/dto"
	"github.com/oguzk/acadcore/internal/pkg/apperrors"
)

// HandleAPIError maps core errors to client-facing responses. Validation
// failures surface the full list of field-level violations.
func HandleAPIError(c *gin.Context, err error) {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")
		errorDetail = errorDetail.WithDetails(validationErr.Violations)
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrValidationFailed),
		errors.Is(err, apperrors.ErrBadRequest),
		errors.Is(err, apperrors.ErrDepartmentMismatch):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())))

	case errors.Is(err, apperrors.ErrResourceNotFound),
		errors.Is(err, apperrors.ErrIdentityNotFound),
		errors.Is(err, apperrors.ErrFacultyNotFound),
		errors.Is(err, apperrors.ErrAssignmentNotFound),
		errors.Is(err, apperrors.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, err.Error())))

	case errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrActiveAssignmentExists),
		errors.Is(err, apperrors.ErrAssignmentInactive),
		errors.Is(err, apperrors.ErrFacultyInactive),
		errors.Is(err, apperrors.ErrEmailAlreadyExists),
		errors.Is(err, apperrors.ErrRollNumberAlreadyExists),
		errors.Is(err, apperrors.ErrDuplicateEnrollment):
		c.JSON(http.StatusConflict, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeConflict, err.Error())))

	case errors.Is(err, apperrors.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied")))

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")))

	case errors.Is(err, apperrors.ErrAccountDisabled):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Account is disabled")))

	case errors.Is(err, apperrors.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")))

	case errors.Is(err, apperrors.ErrTokenInvalid):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")))

	case errors.Is(err, apperrors.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeStoreError, "Backing store unavailable")))

	default:
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
	}
}
