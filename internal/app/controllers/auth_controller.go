// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/oguzk/acadcore/internal/app/models/dto"
	"github.com/oguzk/acadcore/internal/app/services"
	"github.com/oguzk/acadcore/internal/middleware"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Login authenticates an identity and returns an access token
// @Summary Log in
// @Description Verifies credentials and issues a JWT access token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials or disabled account"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid login request payload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("identityID", resp.ID).Str("role", resp.Role).Msg("Identity logged in")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp, "Login successful"))
}

// Profile returns the authenticated identity
// @Summary Get own profile
// @Tags auth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=models.Identity}
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Security BearerAuth
// @Router /auth/profile [get]
func (c *AuthController) Profile(ctx *gin.Context) {
	identity, err := c.authService.GetIdentity(ctx.Request.Context(), middleware.ActorID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(identity, ""))
}
