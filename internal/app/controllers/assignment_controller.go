package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/oguzk/acadcore/internal/app/models"
	"github.com/oguzk/acadcore/internal/app/models/dto"
	"github.com/oguzk/acadcore/internal/app/services"
	"github.com/oguzk/acadcore/internal/middleware"
	"github.com/oguzk/acadcore/internal/pkg/apperrors"
)

// AssignmentController handles class advisor assignment operations
type AssignmentController struct {
	ledgerService services.LedgerService
	repairService services.RepairService
	logger        zerolog.Logger
}

// NewAssignmentController creates a new AssignmentController
func NewAssignmentController(ledgerService services.LedgerService, repairService services.RepairService, logger zerolog.Logger) *AssignmentController {
	return &AssignmentController{
		ledgerService: ledgerService,
		repairService: repairService,
		logger:        logger,
	}
}

// AssignAdvisor assigns a faculty member as class advisor
// @Summary Assign a class advisor
// @Description Makes the given faculty member the sole active advisor for the class, superseding any previous holder and releasing the faculty member's previous class.
// @Tags assignments
// @Accept json
// @Produce json
// @Param request body dto.AssignAdvisorRequest true "Assignment request"
// @Success 201 {object} dto.APIResponse{data=dto.AssignAdvisorResult} "Advisor assigned"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or department mismatch"
// @Failure 404 {object} dto.ErrorResponse "Faculty member not found"
// @Failure 409 {object} dto.ErrorResponse "Concurrent assignment conflict"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /assignments [post]
func (c *AssignmentController) AssignAdvisor(ctx *gin.Context) {
	var req dto.AssignAdvisorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	result, err := c.ledgerService.AssignAdvisor(ctx.Request.Context(), req, middleware.ActorID(ctx))
	if err != nil {
		c.logger.Warn().Err(err).Msg("Advisor assignment failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int64("assignmentID", result.Assignment.ID).
		Int64("facultyID", result.Assignment.FacultyID).
		Str("classKey", result.Assignment.ClassKey).
		Int("deactivated", len(result.Deactivated)).
		Msg("Class advisor assigned")
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(result, "Advisor assigned"))
}

// GetAssignment returns a single ledger entry
// @Summary Get an assignment
// @Tags assignments
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse{data=models.ClassAssignment}
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Security BearerAuth
// @Router /assignments/{id} [get]
func (c *AssignmentController) GetAssignment(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	assignment, err := c.ledgerService.GetAssignment(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(assignment, ""))
}

// ListAssignments lists ledger entries for a department
// @Summary List assignments in a department
// @Tags assignments
// @Produce json
// @Param department query string true "Department name"
// @Param status query string false "Filter by status (ACTIVE or INACTIVE)"
// @Success 200 {object} dto.APIResponse{data=[]models.ClassAssignment}
// @Failure 400 {object} dto.ErrorResponse "Missing department"
// @Security BearerAuth
// @Router /assignments [get]
func (c *AssignmentController) ListAssignments(ctx *gin.Context) {
	department := ctx.Query("department")

	var status *models.AssignmentStatus
	if raw := ctx.Query("status"); raw != "" {
		s := models.AssignmentStatus(raw)
		if s != models.AssignmentActive && s != models.AssignmentInactive {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "status must be ACTIVE or INACTIVE")))
			return
		}
		status = &s
	}

	assignments, err := c.ledgerService.ListAssignments(ctx.Request.Context(), department, status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(assignments, ""))
}

// DeactivateAssignment retires an active ledger entry
// @Summary Deactivate an assignment
// @Description Marks an active assignment Inactive without touching the advisor's profile summary. Run the repair pass to reconcile summaries.
// @Tags assignments
// @Accept json
// @Produce json
// @Param id path int true "Assignment ID"
// @Param request body dto.DeactivateAssignmentRequest false "Optional reason"
// @Success 200 {object} dto.APIResponse{data=models.ClassAssignment} "Assignment deactivated"
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Failure 409 {object} dto.ErrorResponse "Assignment already inactive"
// @Security BearerAuth
// @Router /assignments/{id}/deactivate [post]
func (c *AssignmentController) DeactivateAssignment(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.DeactivateAssignmentRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
			return
		}
	}

	assignment, err := c.ledgerService.Deactivate(ctx.Request.Context(), id, middleware.ActorID(ctx), req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("assignmentID", id).Msg("Assignment deactivated")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(assignment, "Assignment deactivated"))
}

// RemoveAssignment permanently deletes a ledger entry
// @Summary Remove an assignment completely
// @Description Hard-deletes the ledger entry and clears the advisor's profile summary if the entry was active. Enrollment records are never touched.
// @Tags assignments
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse "Assignment removed"
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Security BearerAuth
// @Router /assignments/{id} [delete]
func (c *AssignmentController) RemoveAssignment(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.ledgerService.RemoveCompletely(ctx.Request.Context(), id, middleware.ActorID(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("assignmentID", id).Msg("Assignment removed completely")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Assignment removed"))
}

// ListAdvisors lists the current class advisors
// @Summary List class advisors
// @Description Returns every faculty profile currently flagged as a class advisor with its summary label.
// @Tags assignments
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.FacultyProfile}
// @Security BearerAuth
// @Router /assignments/advisors [get]
func (c *AssignmentController) ListAdvisors(ctx *gin.Context) {
	advisors, err := c.ledgerService.ListAdvisors(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(advisors, ""))
}

// RepairSummaries rebuilds advisor profile summaries from the ledger
// @Summary Rebuild advisor summaries
// @Description Scans all active ledger entries, converges any invariant violations and rewrites every profile summary. Idempotent.
// @Tags assignments
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.RepairSummariesResult} "Repair pass finished"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /admin/repair/advisor-summaries [post]
func (c *AssignmentController) RepairSummaries(ctx *gin.Context) {
	result, err := c.repairService.RebuildAdvisorSummaries(ctx.Request.Context(), middleware.ActorID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result, "Repair pass finished"))
}

// parseIDParam parses a positive int64 path parameter.
func parseIDParam(ctx *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewCustomError(apperrors.ErrBadRequest, "invalid "+name+" parameter")
	}
	return id, nil
}
