package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/oguzk/acadcore/internal/app/models/dto"
	"github.com/oguzk/acadcore/internal/app/services"
	"github.com/oguzk/acadcore/internal/middleware"
)

// StudentController handles student reconciliation and read operations
type StudentController struct {
	reconcileService services.ReconcileService
	logger           zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(reconcileService services.ReconcileService, logger zerolog.Logger) *StudentController {
	return &StudentController{
		reconcileService: reconcileService,
		logger:           logger,
	}
}

// Reconcile creates or advances a single student enrollment
// @Summary Reconcile a student enrollment
// @Description Single entry point for student intake: creates the student on first sight, appends the enrollment on progression, skips exact duplicates and rejects cohort mismatches.
// @Tags students
// @Accept json
// @Produce json
// @Param request body dto.ReconcileRequest true "Reconciliation input"
// @Success 200 {object} dto.APIResponse{data=dto.ReconcileResult} "Reconciliation outcome"
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Faculty member not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /students/reconcile [post]
func (c *StudentController) Reconcile(ctx *gin.Context) {
	var req dto.ReconcileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	result, err := c.reconcileService.Reconcile(ctx.Request.Context(), req, middleware.ActorID(ctx))
	if err != nil {
		c.logger.Warn().Err(err).Str("rollNumber", req.Student.RollNumber).Msg("Reconciliation failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Str("action", string(result.Action)).
		Str("rollNumber", req.Student.RollNumber).
		Msg("Student reconciled")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result, ""))
}

// ReconcileMany processes a batch of reconciliation inputs
// @Summary Reconcile a batch of student enrollments
// @Description Processes every item independently; one failure never aborts the batch. The response reports a per-index outcome for every input.
// @Tags students
// @Accept json
// @Produce json
// @Param request body dto.ReconcileManyRequest true "Batch of reconciliation inputs"
// @Success 200 {object} dto.APIResponse{data=dto.ReconcileManyResult} "Per-item outcomes and summary"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Security BearerAuth
// @Router /students/reconcile-batch [post]
func (c *StudentController) ReconcileMany(ctx *gin.Context) {
	var req dto.ReconcileManyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	result := c.reconcileService.ReconcileMany(ctx.Request.Context(), req.Items, middleware.ActorID(ctx))
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result, ""))
}

// ClassRoster returns the students enrolled under a faculty member for a class
// @Summary List a class roster
// @Description Returns active students with an enrollment matching the given faculty member and class context. Each student carries only the matching enrollment.
// @Tags students
// @Accept json
// @Produce json
// @Param request body dto.ClassRosterRequest true "Faculty reference and class context"
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentWithEnrollment}
// @Failure 404 {object} dto.ErrorResponse "Faculty member not found"
// @Security BearerAuth
// @Router /students/roster [post]
func (c *StudentController) ClassRoster(ctx *gin.Context) {
	var req dto.ClassRosterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	students, err := c.reconcileService.EnrollmentsForFaculty(ctx.Request.Context(), req.Faculty.ToRef(), req.Class)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(students, ""))
}

// AcademicHistory returns a student's enrollments in chronological order
// @Summary Get a student's academic history
// @Description Returns every semester enrollment for the student ordered by academic year and semester, earliest first.
// @Tags students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]models.SemesterEnrollment}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Security BearerAuth
// @Router /students/{id}/history [get]
func (c *StudentController) AcademicHistory(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	history, err := c.reconcileService.AcademicHistory(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(history, ""))
}
