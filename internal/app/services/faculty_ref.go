package services

import (
	"context"

	"github.com/oguzk/acadcore/internal/app/models"
	"github.com/oguzk/acadcore/internal/app/repositories"
)

// resolveFacultyRef normalizes a tagged faculty reference to its canonical
// profile. Callers may hold either an identity id or a profile id; every
// invariant check runs against the resolved profile.
func resolveFacultyRef(ctx context.Context, facultyRepo repositories.FacultyRepository, ref models.FacultyRef) (*models.FacultyProfile, error) {
	if ref.Kind == models.RefIdentity {
		return facultyRepo.GetByIdentityID(ctx, ref.ID)
	}
	return facultyRepo.GetByID(ctx, ref.ID)
}
