package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/oguzk/acadcore/internal/app/models"
)

func testJWTService(exp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: exp,
		TokenIssuer:    "acadcore-test",
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := testJWTService(time.Hour)
	department := "CSE"
	identity := &models.Identity{
		ID:         42,
		Email:      "hod@school.edu",
		Role:       models.RoleHOD,
		Department: &department,
	}

	token, err := svc.GenerateToken(identity)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.IdentityID != 42 || claims.Email != "hod@school.edu" || claims.Role != string(models.RoleHOD) {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.Department == nil || *claims.Department != "CSE" {
		t.Error("department should travel with the token")
	}
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := testJWTService(-time.Minute)
	token, err := svc.GenerateToken(&models.Identity{ID: 1, Email: "a@b.edu", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestJWTService_WrongSecret(t *testing.T) {
	token, err := testJWTService(time.Hour).GenerateToken(&models.Identity{ID: 1, Email: "a@b.edu", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	other := NewJWTService(JWTConfig{SecretKey: "different", AccessTokenExp: time.Hour, TokenIssuer: "acadcore-test"})
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("a token signed with a different secret must not validate")
	}
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	if err != nil || token != "abc.def.ghi" {
		t.Errorf("expected token extraction to succeed, got %q, %v", token, err)
	}

	for _, header := range []string{"", "abc.def.ghi", "Basic abc"} {
		if _, err := ExtractBearerToken(header); err == nil {
			t.Errorf("header %q should be rejected", header)
		}
	}
}
