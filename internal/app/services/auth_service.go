package services

import (
	"context"
	"errors"
	"time"

	"github.com/oguzk/acadcore/internal/app/models"
	"github.com/oguzk/acadcore/internal/app/models/dto"
	"github.com/oguzk/acadcore/internal/app/repositories"
	"github.com/oguzk/acadcore/internal/pkg/apperrors"
	"github.com/oguzk/acadcore/internal/pkg/auth"
	"github.com/oguzk/acadcore/internal/pkg/logger"
)

// AuthService handles authentication. Authorization itself lives at the
// caller layer; the core only resolves and trusts the actor.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	GetIdentity(ctx context.Context, identityID int64) (*models.Identity, error)
}

// authServiceImpl implements the AuthService interface
type authServiceImpl struct {
	identityRepo repositories.IdentityRepository
	jwtService   *auth.JWTService
}

// NewAuthService creates a new auth service instance
func NewAuthService(identityRepo repositories.IdentityRepository, jwtService *auth.JWTService) AuthService {
	return &authServiceImpl{
		identityRepo: identityRepo,
		jwtService:   jwtService,
	}
}

// Login verifies credentials and issues an access token
func (s *authServiceImpl) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	identity, err := s.identityRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrIdentityNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(identity.Password, req.Password) {
		logger.Warn().Str("email", req.Email).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !identity.IsActive() {
		return nil, apperrors.ErrAccountDisabled
	}
	if identity.Role == models.RoleHOD && identity.ExpiryDate != nil && identity.ExpiryDate.Before(time.Now()) {
		return nil, apperrors.ErrAccountDisabled
	}

	token, err := s.jwtService.GenerateToken(identity)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token:      token,
		ID:         identity.ID,
		Email:      identity.Email,
		FullName:   identity.FullName,
		Role:       string(identity.Role),
		Department: identity.Department,
	}, nil
}

// GetIdentity retrieves an identity by id
func (s *authServiceImpl) GetIdentity(ctx context.Context, identityID int64) (*models.Identity, error) {
	return s.identityRepo.GetByID(ctx, identityID)
}
