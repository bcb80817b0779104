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
	"github.com/oguzk/acadcore/internal/pkg/dberrors"
	"github.com/oguzk/acadcore/internal/pkg/logger"
)

const assignmentColumns = `id, faculty_id, department, batch, year, semester, section, role, status,
	assigned_by, assigned_at, deactivated_at, deactivated_by, deactivation_reason, notes, class_key, class_display`

// assignmentRepository is the pgx-backed AssignmentRepository
type assignmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new ledger entry. The partial unique indexes on ACTIVE
// entries are the backstop for the query-then-insert race: when a concurrent
// reassignment won, this insert fails and the whole operation must be
// retried by the caller.
func (r *assignmentRepository) Create(ctx context.Context, assignment *models.ClassAssignment) (int64, error) {
	sql, args, err := r.sb.Insert("class_assignments").
		Columns("faculty_id", "department", "batch", "year", "semester", "section", "role",
			"status", "assigned_by", "assigned_at", "notes", "class_key", "class_display").
		Values(assignment.FacultyID, assignment.Department, assignment.Batch, assignment.Year,
			assignment.Semester, assignment.Section, assignment.Role, assignment.Status,
			assignment.AssignedBy, assignment.AssignedAt, assignment.Notes,
			assignment.ClassKey, assignment.ClassDisplay).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create assignment query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "class_assignments_active_class_key") ||
			dberrors.IsDuplicateConstraintError(err, "class_assignments_active_faculty_key") {
			logger.Warn().
				Str("classKey", assignment.ClassKey).
				Int64("facultyID", assignment.FacultyID).
				Msg("Concurrent active assignment detected on insert")
			return 0, apperrors.ErrActiveAssignmentExists
		}
		logger.Error().Err(err).Str("classKey", assignment.ClassKey).Msg("Error creating class assignment")
		return 0, fmt.Errorf("error creating class assignment: %w", err)
	}

	return id, nil
}

// GetByID retrieves a ledger entry by id
func (r *assignmentRepository) GetByID(ctx context.Context, id int64) (*models.ClassAssignment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM class_assignments WHERE id = $1`, id)
	assignment, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAssignmentNotFound
		}
		return nil, err
	}
	return assignment, nil
}

// FindActiveByClass returns every ACTIVE entry for (department, classKey).
// Invariant A promises at most one; more than one means detected corruption
// and the caller decides how to converge.
func (r *assignmentRepository) FindActiveByClass(ctx context.Context, department, classKey string) ([]models.ClassAssignment, error) {
	sql, args, err := r.sb.Select(assignmentColumns).
		From("class_assignments").
		Where(squirrel.Eq{
			"department": department,
			"class_key":  classKey,
			"status":     models.AssignmentActive,
		}).
		OrderBy("assigned_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build active-by-class query: %w", err)
	}

	return r.queryAssignments(ctx, sql, args...)
}

// FindActiveByFaculty returns every ACTIVE entry for (faculty, role)
func (r *assignmentRepository) FindActiveByFaculty(ctx context.Context, facultyID int64, role models.AssignmentRole) ([]models.ClassAssignment, error) {
	sql, args, err := r.sb.Select(assignmentColumns).
		From("class_assignments").
		Where(squirrel.Eq{
			"faculty_id": facultyID,
			"role":       role,
			"status":     models.AssignmentActive,
		}).
		OrderBy("assigned_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build active-by-faculty query: %w", err)
	}

	return r.queryAssignments(ctx, sql, args...)
}

// Deactivate transitions an entry ACTIVE -> INACTIVE and stamps the actor,
// date and reason. Returns false when the entry was not ACTIVE; transition
// is single-direction, no resurrection.
func (r *assignmentRepository) Deactivate(ctx context.Context, id, actorID int64, reason string, at time.Time) (bool, error) {
	sql, args, err := r.sb.Update("class_assignments").
		Set("status", models.AssignmentInactive).
		Set("deactivated_at", at).
		Set("deactivated_by", actorID).
		Set("deactivation_reason", reason).
		Where(squirrel.Eq{"id": id, "status": models.AssignmentActive}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build deactivate query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("assignmentID", id).Msg("Error deactivating class assignment")
		return false, fmt.Errorf("error deactivating class assignment: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete hard-removes a ledger entry. Removal is terminal.
func (r *assignmentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM class_assignments WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("assignmentID", id).Msg("Error deleting class assignment")
		return fmt.Errorf("error deleting class assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAssignmentNotFound
	}
	return nil
}

// ListByDepartment retrieves ledger entries for a department, optionally
// filtered by status
func (r *assignmentRepository) ListByDepartment(ctx context.Context, department string, status *models.AssignmentStatus) ([]models.ClassAssignment, error) {
	builder := r.sb.Select(assignmentColumns).
		From("class_assignments").
		Where(squirrel.Eq{"department": department})
	if status != nil {
		builder = builder.Where(squirrel.Eq{"status": *status})
	}

	sql, args, err := builder.OrderBy("assigned_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list assignments query: %w", err)
	}

	return r.queryAssignments(ctx, sql, args...)
}

// ListAllActive retrieves every ACTIVE ledger entry. Input for the repair pass.
func (r *assignmentRepository) ListAllActive(ctx context.Context) ([]models.ClassAssignment, error) {
	sql, args, err := r.sb.Select(assignmentColumns).
		From("class_assignments").
		Where(squirrel.Eq{"status": models.AssignmentActive}).
		OrderBy("faculty_id", "assigned_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list active query: %w", err)
	}

	return r.queryAssignments(ctx, sql, args...)
}

func (r *assignmentRepository) queryAssignments(ctx context.Context, sql string, args ...interface{}) ([]models.ClassAssignment, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying class assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.ClassAssignment
	for rows.Next() {
		var a models.ClassAssignment
		if err := rows.Scan(
			&a.ID, &a.FacultyID, &a.Department, &a.Batch, &a.Year, &a.Semester, &a.Section,
			&a.Role, &a.Status, &a.AssignedBy, &a.AssignedAt, &a.DeactivatedAt, &a.DeactivatedBy,
			&a.DeactivationReason, &a.Notes, &a.ClassKey, &a.ClassDisplay); err != nil {
			return nil, fmt.Errorf("error scanning class assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

func scanAssignment(row pgx.Row) (*models.ClassAssignment, error) {
	a := &models.ClassAssignment{}
	err := row.Scan(
		&a.ID, &a.FacultyID, &a.Department, &a.Batch, &a.Year, &a.Semester, &a.Section,
		&a.Role, &a.Status, &a.AssignedBy, &a.AssignedAt, &a.DeactivatedAt, &a.DeactivatedBy,
		&a.DeactivationReason, &a.Notes, &a.ClassKey, &a.ClassDisplay)
	if err != nil {
		return nil, err
	}
	return a, nil
}
