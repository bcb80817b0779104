package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oguzk/acadcore/internal/app/models"
	"github.com/oguzk/acadcore/internal/pkg/apperrors"
	"github.com/oguzk/acadcore/internal/pkg/logger"
)

const facultyColumns = "id, identity_id, position, department, status, current_assignment_summary, is_class_advisor, created_at, updated_at"

// facultyRepository is the pgx-backed FacultyRepository
type facultyRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFacultyRepository creates a new FacultyRepository
func NewFacultyRepository(db *pgxpool.Pool) FacultyRepository {
	return &facultyRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new faculty profile
func (r *facultyRepository) Create(ctx context.Context, profile *models.FacultyProfile) (int64, error) {
	sql, args, err := r.sb.Insert("faculty_profiles").
		Columns("identity_id", "position", "department", "status").
		Values(profile.IdentityID, profile.Position, profile.Department, profile.Status).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create faculty profile query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Int64("identityID", profile.IdentityID).Msg("Error creating faculty profile")
		return 0, fmt.Errorf("error creating faculty profile: %w", err)
	}

	return id, nil
}

// GetByID retrieves a faculty profile by profile id
func (r *facultyRepository) GetByID(ctx context.Context, id int64) (*models.FacultyProfile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+facultyColumns+` FROM faculty_profiles WHERE id = $1`, id)
	return scanFacultyProfile(row)
}

// GetByIdentityID retrieves a faculty profile by its owning identity id
func (r *facultyRepository) GetByIdentityID(ctx context.Context, identityID int64) (*models.FacultyProfile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+facultyColumns+` FROM faculty_profiles WHERE identity_id = $1`, identityID)
	return scanFacultyProfile(row)
}

// UpdateAssignmentSummary updates the denormalized current-assignment fields.
// The ledger is the source of truth; this is a best-effort cache write.
func (r *facultyRepository) UpdateAssignmentSummary(ctx context.Context, profileID int64, summary *string, isClassAdvisor bool) error {
	sql, args, err := r.sb.Update("faculty_profiles").
		Set("current_assignment_summary", summary).
		Set("is_class_advisor", isClassAdvisor).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": profileID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update summary query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("profileID", profileID).Msg("Error updating assignment summary")
		return fmt.Errorf("error updating assignment summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrFacultyNotFound
	}

	return nil
}

// ListByDepartment retrieves all faculty profiles in a department
func (r *facultyRepository) ListByDepartment(ctx context.Context, department string) ([]models.FacultyProfile, error) {
	sql, args, err := r.sb.Select(facultyColumns).
		From("faculty_profiles").
		Where(squirrel.Eq{"department": department}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list faculty query: %w", err)
	}

	return r.queryProfiles(ctx, sql, args...)
}

// ListAdvisors retrieves every profile currently flagged as a class advisor
// or still carrying an assignment summary. Input for the repair pass.
func (r *facultyRepository) ListAdvisors(ctx context.Context) ([]models.FacultyProfile, error) {
	sql, args, err := r.sb.Select(facultyColumns).
		From("faculty_profiles").
		Where(squirrel.Or{
			squirrel.Eq{"is_class_advisor": true},
			squirrel.NotEq{"current_assignment_summary": nil},
		}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list advisors query: %w", err)
	}

	return r.queryProfiles(ctx, sql, args...)
}

func (r *facultyRepository) queryProfiles(ctx context.Context, sql string, args ...interface{}) ([]models.FacultyProfile, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying faculty profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.FacultyProfile
	for rows.Next() {
		var p models.FacultyProfile
		if err := rows.Scan(
			&p.ID, &p.IdentityID, &p.Position, &p.Department, &p.Status,
			&p.CurrentAssignmentSummary, &p.IsClassAdvisor, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning faculty profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

func scanFacultyProfile(row pgx.Row) (*models.FacultyProfile, error) {
	profile := &models.FacultyProfile{}
	err := row.Scan(
		&profile.ID, &profile.IdentityID, &profile.Position, &profile.Department, &profile.Status,
		&profile.CurrentAssignmentSummary, &profile.IsClassAdvisor, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFacultyNotFound
		}
		return nil, fmt.Errorf("error retrieving faculty profile: %w", err)
	}
	return profile, nil
}
