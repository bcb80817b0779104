package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oguzk/acadcore/internal/app/models"
)

// IdentityRepository handles account records
type IdentityRepository interface {
	Create(ctx context.Context, identity *models.Identity) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Identity, error)
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// FacultyRepository handles faculty profiles and their denormalized
// assignment summary
type FacultyRepository interface {
	Create(ctx context.Context, profile *models.FacultyProfile) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.FacultyProfile, error)
	GetByIdentityID(ctx context.Context, identityID int64) (*models.FacultyProfile, error)
	UpdateAssignmentSummary(ctx context.Context, profileID int64, summary *string, isClassAdvisor bool) error
	ListByDepartment(ctx context.Context, department string) ([]models.FacultyProfile, error)
	ListAdvisors(ctx context.Context) ([]models.FacultyProfile, error)
}

// AssignmentRepository is the authoritative ledger of advisor-to-class bindings
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.ClassAssignment) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ClassAssignment, error)
	FindActiveByClass(ctx context.Context, department, classKey string) ([]models.ClassAssignment, error)
	FindActiveByFaculty(ctx context.Context, facultyID int64, role models.AssignmentRole) ([]models.ClassAssignment, error)
	Deactivate(ctx context.Context, id, actorID int64, reason string, at time.Time) (bool, error)
	Delete(ctx context.Context, id int64) error
	ListByDepartment(ctx context.Context, department string, status *models.AssignmentStatus) ([]models.ClassAssignment, error)
	ListAllActive(ctx context.Context) ([]models.ClassAssignment, error)
}

// ClassRosterQuery scopes the students-of-a-class projection
type ClassRosterQuery struct {
	Department   string
	BatchYear    string
	Section      string
	Year         string
	SemesterName string
	ClassID      string
	FacultyID    int64
}

// StudentRepository handles student records and their embedded enrollments
type StudentRepository interface {
	Create(ctx context.Context, record *models.StudentRecord) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.StudentRecord, error)
	FindByEmailOrRoll(ctx context.Context, email, rollNumber string) (*models.StudentRecord, error)
	GetEnrollments(ctx context.Context, studentID int64) ([]models.SemesterEnrollment, error)
	AddEnrollment(ctx context.Context, enrollment *models.SemesterEnrollment) (int64, error)
	HasEnrollment(ctx context.Context, studentID int64, classID string, facultyID int64) (bool, error)
	FindByClassAndFaculty(ctx context.Context, query ClassRosterQuery) ([]models.StudentRecord, error)
}

// Repositories is the repository container handed to the services layer
type Repositories struct {
	Identity   IdentityRepository
	Faculty    FacultyRepository
	Assignment AssignmentRepository
	Student    StudentRepository
}

// NewRepositories creates the pgx-backed repository container
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		Identity:   NewIdentityRepository(db),
		Faculty:    NewFacultyRepository(db),
		Assignment: NewAssignmentRepository(db),
		Student:    NewStudentRepository(db),
	}
}
