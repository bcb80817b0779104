package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oguzk/acadcore/internal/app/controllers"
	"github.com/oguzk/acadcore/internal/app/models"
	"github.com/oguzk/acadcore/internal/app/models/dto"
	"github.com/oguzk/acadcore/internal/middleware"
	"github.com/oguzk/acadcore/internal/pkg/auth"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	assignmentController *controllers.AssignmentController,
	studentController *controllers.StudentController,
	jwtService *auth.JWTService,
) {
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", authController.Login)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(middleware.JWTAuth(jwtService))
	{
		authenticated.GET("/auth/profile", authController.Profile)

		// Assignment ledger. Writes are restricted to administrative roles;
		// reads are open to any authenticated identity.
		assignments := authenticated.Group("/assignments")
		{
			assignments.GET("", assignmentController.ListAssignments)
			assignments.GET("/advisors", assignmentController.ListAdvisors)
			assignments.GET("/:id", assignmentController.GetAssignment)

			assignmentsAdmin := assignments.Group("")
			assignmentsAdmin.Use(middleware.RoleRequired(models.RoleAdmin, models.RolePrincipal, models.RoleHOD))
			{
				assignmentsAdmin.POST("", assignmentController.AssignAdvisor)
				assignmentsAdmin.POST("/:id/deactivate", assignmentController.DeactivateAssignment)
				assignmentsAdmin.DELETE("/:id", assignmentController.RemoveAssignment)
			}
		}

		// Maintenance surface, admin roles only.
		admin := authenticated.Group("/admin")
		admin.Use(middleware.RoleRequired(models.RoleAdmin, models.RolePrincipal))
		{
			admin.POST("/repair/advisor-summaries", assignmentController.RepairSummaries)
		}

		// Student reconciliation and reads.
		students := authenticated.Group("/students")
		{
			students.POST("/roster", studentController.ClassRoster)
			students.GET("/:id/history", studentController.AcademicHistory)

			studentsAdmin := students.Group("")
			studentsAdmin.Use(middleware.RoleRequired(models.RoleAdmin, models.RolePrincipal, models.RoleHOD, models.RoleFaculty))
			{
				studentsAdmin.POST("/reconcile", studentController.Reconcile)
				studentsAdmin.POST("/reconcile-batch", studentController.ReconcileMany)
			}
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"status": "ok"}, ""))
	})
}
