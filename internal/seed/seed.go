// Package seed creates the default identities a fresh installation needs.
package seed

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/oguzk/acadcore/internal/app/models"
	appRepos "github.com/oguzk/acadcore/internal/app/repositories"
	"github.com/oguzk/acadcore/internal/pkg/apperrors"
	"github.com/oguzk/acadcore/internal/pkg/auth"
)

// CreateDefaultData seeds the administrator and principal accounts if they
// do not exist. Generated passwords are logged once at creation; operators
// are expected to rotate them immediately.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	identityRepo := appRepos.NewIdentityRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default identities...")
	var finalErr error

	defaults := []struct {
		email    string
		fullName string
		role     appModels.RoleType
	}{
		{"admin@acadcore.local", "System Administrator", appModels.RoleAdmin},
		{"principal@acadcore.local", "Principal", appModels.RolePrincipal},
	}

	for _, d := range defaults {
		exists, err := identityRepo.EmailExists(ctx, d.email)
		if err != nil {
			lgr.Error().Err(err).Str("email", d.email).Msg("Error checking default identity")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if exists {
			continue
		}

		password := uuid.New().String()
		hashed, err := auth.HashPassword(password)
		if err != nil {
			finalErr = errors.Join(finalErr, err)
			continue
		}

		id, err := identityRepo.Create(ctx, &appModels.Identity{
			Email:    d.email,
			Password: hashed,
			FullName: d.fullName,
			Role:     d.role,
			Status:   appModels.IdentityActive,
		})
		if err != nil {
			if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
				continue
			}
			lgr.Error().Err(err).Str("email", d.email).Msg("Error creating default identity")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		lgr.Warn().
			Int64("identityID", id).
			Str("email", d.email).
			Str("initialPassword", password).
			Msg("Default identity created; rotate this password")
	}

	return finalErr
}
