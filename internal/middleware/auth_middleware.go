package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oguzk/acadcore/internal/app/models"
	"github.com/oguzk/acadcore/internal/app/models/dto"
	"github.com/oguzk/acadcore/internal/pkg/auth"
)

// Context keys set by JWTAuth for downstream handlers.
const (
	ContextIdentityID = "identityID"
	ContextRole       = "role"
	ContextDepartment = "department"
)

// JWTAuth validates the bearer token and stores the actor's claims on the
// request context.
func JWTAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authorization header missing or malformed")))
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			code := dto.ErrorCodeInvalidToken
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrorCodeExpiredToken
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				dto.NewErrorDetail(code, "Invalid or expired token")))
			return
		}

		c.Set(ContextIdentityID, claims.IdentityID)
		c.Set(ContextRole, claims.Role)
		if claims.Department != nil {
			c.Set(ContextDepartment, *claims.Department)
		}
		c.Next()
	}
}

// RoleRequired allows the request through only when the actor holds one of
// the given roles.
func RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorRole, exists := c.Get(ContextRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
			return
		}

		role, ok := actorRole.(string)
		if ok {
			for _, allowed := range roles {
				if role == string(allowed) {
					c.Next()
					return
				}
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeForbidden, "Insufficient role for this operation")))
	}
}

// ActorID returns the authenticated identity id stored by JWTAuth.
func ActorID(c *gin.Context) int64 {
	if v, exists := c.Get(ContextIdentityID); exists {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
