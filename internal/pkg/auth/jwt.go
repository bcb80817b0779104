package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/oguzk/acadcore/internal/app/models"
)

// JWT errors
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrInvalidFormat = errors.New("invalid token format")
)

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey      string
	AccessTokenExp time.Duration
	TokenIssuer    string
}

// JWTService handles JWT operations
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config}
}

// Claims defines JWT token content. Department travels with the token so the
// caller layer can enforce department scoping without a second lookup.
type Claims struct {
	IdentityID int64   `json:"identityId"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	Department *string `json:"department,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken creates an access token for an identity
func (s *JWTService) GenerateToken(identity *models.Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		IdentityID: identity.ID,
		Email:      identity.Email,
		Role:       string(identity.Role),
		Department: identity.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenExp)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   fmt.Sprintf("%d", identity.ID),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to create access token: %w", err)
	}

	return signed, nil
}

// ValidateToken validates a token and returns its claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// ExtractBearerToken extracts the token from the Authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidFormat
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidFormat
	}

	return parts[1], nil
}
