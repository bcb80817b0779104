package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oguzk/acadcore/internal/app/models"
	"github.com/oguzk/acadcore/internal/pkg/apperrors"
	"github.com/oguzk/acadcore/internal/pkg/dberrors"
	"github.com/oguzk/acadcore/internal/pkg/logger"
)

const identityColumns = "id, email, password, full_name, role, department, status, expiry_date, created_at, updated_at"

// identityRepository is the pgx-backed IdentityRepository
type identityRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewIdentityRepository creates a new IdentityRepository
func NewIdentityRepository(db *pgxpool.Pool) IdentityRepository {
	return &identityRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new identity. Email uniqueness is enforced by the store;
// a duplicate maps to ErrEmailAlreadyExists.
func (r *identityRepository) Create(ctx context.Context, identity *models.Identity) (int64, error) {
	sql, args, err := r.sb.Insert("identities").
		Columns("email", "password", "full_name", "role", "department", "status", "expiry_date").
		Values(strings.ToLower(identity.Email), identity.Password, identity.FullName,
			identity.Role, identity.Department, identity.Status, identity.ExpiryDate).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create identity query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "identities_email_key") {
			logger.Warn().Str("email", identity.Email).Msg("Attempted to create identity with duplicate email")
			return 0, apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", identity.Email).Msg("Error creating identity")
		return 0, fmt.Errorf("error creating identity: %w", err)
	}

	return id, nil
}

// GetByID retrieves an identity by id
func (r *identityRepository) GetByID(ctx context.Context, id int64) (*models.Identity, error) {
	row := r.db.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE id = $1`, id)
	return scanIdentity(row)
}

// GetByEmail retrieves an identity by email, case-insensitively
func (r *identityRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	row := r.db.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE LOWER(email) = LOWER($1)`, email)
	return scanIdentity(row)
}

// EmailExists checks if an email is already registered
func (r *identityRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM identities WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

func scanIdentity(row pgx.Row) (*models.Identity, error) {
	identity := &models.Identity{}
	err := row.Scan(
		&identity.ID, &identity.Email, &identity.Password, &identity.FullName,
		&identity.Role, &identity.Department, &identity.Status, &identity.ExpiryDate,
		&identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("error retrieving identity: %w", err)
	}
	return identity, nil
}
