package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oguzk/acadcore/internal/app/models"
	"github.com/oguzk/acadcore/internal/pkg/apperrors"
	"github.com/oguzk/acadcore/internal/pkg/dberrors"
	"github.com/oguzk/acadcore/internal/pkg/logger"
)

const studentColumns = "id, identity_id, roll_number, department, batch_year, section, status, created_at, updated_at"

const enrollmentColumns = "id, student_id, semester_name, year, class_id, faculty_id, status, enrolled_at"

// studentRepository is the pgx-backed StudentRepository
type studentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) StudentRepository {
	return &studentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new student record. Roll number uniqueness is enforced by
// the store.
func (r *studentRepository) Create(ctx context.Context, record *models.StudentRecord) (int64, error) {
	sql, args, err := r.sb.Insert("student_records").
		Columns("identity_id", "roll_number", "department", "batch_year", "section", "status").
		Values(record.IdentityID, record.RollNumber, record.Department,
			record.BatchYear, record.Section, record.Status).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create student query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "student_records_roll_number_key") {
			logger.Warn().Str("rollNumber", record.RollNumber).Msg("Attempted to create student with duplicate roll number")
			return 0, apperrors.ErrRollNumberAlreadyExists
		}
		logger.Error().Err(err).Str("rollNumber", record.RollNumber).Msg("Error creating student record")
		return 0, fmt.Errorf("error creating student record: %w", err)
	}

	logger.Info().Int64("studentID", id).Str("rollNumber", record.RollNumber).Msg("Student record created")
	return id, nil
}

// GetByID retrieves a student record with its identity attached
func (r *studentRepository) GetByID(ctx context.Context, id int64) (*models.StudentRecord, error) {
	row := r.db.QueryRow(ctx, `
		SELECT s.id, s.identity_id, s.roll_number, s.department, s.batch_year, s.section, s.status,
		       s.created_at, s.updated_at, i.email, i.full_name
		FROM student_records s
		JOIN identities i ON i.id = s.identity_id
		WHERE s.id = $1`, id)
	return scanStudentWithIdentity(row)
}

// FindByEmailOrRoll looks a student up by email OR roll number; either match
// is considered "the same student". Returns the record with identity attached.
func (r *studentRepository) FindByEmailOrRoll(ctx context.Context, email, rollNumber string) (*models.StudentRecord, error) {
	row := r.db.QueryRow(ctx, `
		SELECT s.id, s.identity_id, s.roll_number, s.department, s.batch_year, s.section, s.status,
		       s.created_at, s.updated_at, i.email, i.full_name
		FROM student_records s
		JOIN identities i ON i.id = s.identity_id
		WHERE LOWER(i.email) = LOWER($1) OR s.roll_number = $2
		ORDER BY s.id
		LIMIT 1`, email, rollNumber)
	return scanStudentWithIdentity(row)
}

// GetEnrollments retrieves all enrollments of a student in insertion order
func (r *studentRepository) GetEnrollments(ctx context.Context, studentID int64) ([]models.SemesterEnrollment, error) {
	sql, args, err := r.sb.Select(enrollmentColumns).
		From("semester_enrollments").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build enrollments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []models.SemesterEnrollment
	for rows.Next() {
		var e models.SemesterEnrollment
		if err := rows.Scan(&e.ID, &e.StudentID, &e.SemesterName, &e.Year, &e.ClassID,
			&e.FacultyID, &e.Status, &e.EnrolledAt); err != nil {
			return nil, fmt.Errorf("error scanning enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}

	return enrollments, rows.Err()
}

// AddEnrollment appends a semester enrollment. The store-level uniqueness on
// (student, classId, facultyId) is the duplicate-enrollment guard.
func (r *studentRepository) AddEnrollment(ctx context.Context, enrollment *models.SemesterEnrollment) (int64, error) {
	sql, args, err := r.sb.Insert("semester_enrollments").
		Columns("student_id", "semester_name", "year", "class_id", "faculty_id", "status", "enrolled_at").
		Values(enrollment.StudentID, enrollment.SemesterName, enrollment.Year, enrollment.ClassID,
			enrollment.FacultyID, enrollment.Status, enrollment.EnrolledAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build add enrollment query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "semester_enrollments_student_class_faculty_key") {
			return 0, apperrors.ErrDuplicateEnrollment
		}
		logger.Error().Err(err).Int64("studentID", enrollment.StudentID).Msg("Error adding enrollment")
		return 0, fmt.Errorf("error adding enrollment: %w", err)
	}

	return id, nil
}

// HasEnrollment checks whether the student already holds an enrollment for
// (classId, facultyId)
func (r *studentRepository) HasEnrollment(ctx context.Context, studentID int64, classID string, facultyID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM semester_enrollments
			WHERE student_id = $1 AND class_id = $2 AND faculty_id = $3
		)`, studentID, classID, facultyID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking enrollment existence: %w", err)
	}
	return exists, nil
}

// FindByClassAndFaculty returns active students of a class with only the
// matching active enrollment attached. A projection, not a filter on the
// full history.
func (r *studentRepository) FindByClassAndFaculty(ctx context.Context, query ClassRosterQuery) ([]models.StudentRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.identity_id, s.roll_number, s.department, s.batch_year, s.section, s.status,
		       s.created_at, s.updated_at, i.email, i.full_name,
		       e.id, e.student_id, e.semester_name, e.year, e.class_id, e.faculty_id, e.status, e.enrolled_at
		FROM student_records s
		JOIN identities i ON i.id = s.identity_id
		JOIN semester_enrollments e ON e.student_id = s.id
		WHERE s.status = 'ACTIVE'
		  AND s.department = $1 AND s.batch_year = $2 AND s.section = $3
		  AND e.year = $4 AND e.semester_name = $5
		  AND e.faculty_id = $6 AND e.class_id = $7 AND e.status = 'ACTIVE'
		ORDER BY s.roll_number`,
		query.Department, query.BatchYear, query.Section,
		query.Year, query.SemesterName, query.FacultyID, query.ClassID)
	if err != nil {
		return nil, fmt.Errorf("error querying class roster: %w", err)
	}
	defer rows.Close()

	var students []models.StudentRecord
	for rows.Next() {
		var s models.StudentRecord
		var identity models.Identity
		var e models.SemesterEnrollment
		if err := rows.Scan(
			&s.ID, &s.IdentityID, &s.RollNumber, &s.Department, &s.BatchYear, &s.Section, &s.Status,
			&s.CreatedAt, &s.UpdatedAt, &identity.Email, &identity.FullName,
			&e.ID, &e.StudentID, &e.SemesterName, &e.Year, &e.ClassID, &e.FacultyID, &e.Status, &e.EnrolledAt); err != nil {
			return nil, fmt.Errorf("error scanning class roster row: %w", err)
		}
		identity.ID = s.IdentityID
		identity.Role = models.RoleStudent
		s.Identity = &identity
		s.Semesters = []models.SemesterEnrollment{e}
		students = append(students, s)
	}

	return students, rows.Err()
}

func scanStudentWithIdentity(row pgx.Row) (*models.StudentRecord, error) {
	s := &models.StudentRecord{}
	identity := &models.Identity{}
	err := row.Scan(
		&s.ID, &s.IdentityID, &s.RollNumber, &s.Department, &s.BatchYear, &s.Section, &s.Status,
		&s.CreatedAt, &s.UpdatedAt, &identity.Email, &identity.FullName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student record: %w", err)
	}
	identity.ID = s.IdentityID
	identity.Role = models.RoleStudent
	s.Identity = identity
	return s, nil
}
