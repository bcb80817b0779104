package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oguzk/acadcore/internal/app/models"
	"github.com/oguzk/acadcore/internal/app/models/dto"
	"github.com/oguzk/acadcore/internal/app/repositories"
	"github.com/oguzk/acadcore/internal/pkg/apperrors"
	"github.com/oguzk/acadcore/internal/pkg/auth"
	"github.com/oguzk/acadcore/internal/pkg/logger"
	"github.com/oguzk/acadcore/internal/pkg/validation"
)

// ReconcileService is the single entry point for creating or advancing a
// student's enrollment. It keeps Identity, StudentRecord and the enrollment
// list consistent without cross-document transactions: identity creation is
// idempotent on email and runs first, so a failed second step leaves nothing
// behind that a retry cannot reuse.
type ReconcileService interface {
	Reconcile(ctx context.Context, req dto.ReconcileRequest, createdBy int64) (*dto.ReconcileResult, error)
	ReconcileMany(ctx context.Context, reqs []dto.ReconcileRequest, createdBy int64) *dto.ReconcileManyResult
	EnrollmentsForFaculty(ctx context.Context, facultyRef models.FacultyRef, class dto.ClassContext) ([]dto.StudentWithEnrollment, error)
	AcademicHistory(ctx context.Context, studentID int64) ([]models.SemesterEnrollment, error)
}

// reconcileServiceImpl implements the ReconcileService interface
type reconcileServiceImpl struct {
	identityRepo repositories.IdentityRepository
	facultyRepo  repositories.FacultyRepository
	studentRepo  repositories.StudentRepository
}

// NewReconcileService creates a new reconciliation service instance
func NewReconcileService(identityRepo repositories.IdentityRepository, facultyRepo repositories.FacultyRepository, studentRepo repositories.StudentRepository) ReconcileService {
	return &reconcileServiceImpl{
		identityRepo: identityRepo,
		facultyRepo:  facultyRepo,
		studentRepo:  studentRepo,
	}
}

// validateReconcileRequest collects every field-level violation of one
// reconciliation input.
func (s *reconcileServiceImpl) validateReconcileRequest(req dto.ReconcileRequest) error {
	verr := &apperrors.ValidationError{}

	name := strings.TrimSpace(req.Student.Name)
	if len(name) < validation.NameMinLength {
		verr.Add("student.name", fmt.Sprintf("must be at least %d characters", validation.NameMinLength))
	}
	if !validation.IsValidEmail(req.Student.Email) {
		verr.Add("student.email", "must be a valid email address")
	}
	if !validation.IsValidRollNumber(req.Student.RollNumber) {
		verr.Add("student.rollNumber", "is required")
	}
	if req.Class.Department == "" {
		verr.Add("class.department", "is required")
	}
	if !validation.IsValidBatch(req.Class.BatchYear) {
		verr.Add("class.batchYear", "must match the YYYY-YYYY format")
	}
	if !validation.IsValidSection(req.Class.Section) {
		verr.Add("class.section", "must be one of A, B, C")
	}
	if !models.IsValidYearLabel(req.Class.Year) {
		verr.Add("class.year", "must be one of 1st Year, 2nd Year, 3rd Year, 4th Year")
	}
	if models.SemesterOrdinal(req.Class.SemesterName) == 0 {
		verr.Add("class.semesterName", "must be one of Sem 1 .. Sem 8")
	}

	if verr.HasViolations() {
		return verr
	}
	return nil
}

// Reconcile creates or advances a student's enrollment. Outcomes:
// CREATED (no prior record), UPDATED (new semester appended), DUPLICATE
// (enrollment already present, no-op), REJECTED (cohort mismatch, returned
// with the conflicting snapshot for operator review).
func (s *reconcileServiceImpl) Reconcile(ctx context.Context, req dto.ReconcileRequest, createdBy int64) (*dto.ReconcileResult, error) {
	if err := s.validateReconcileRequest(req); err != nil {
		return nil, err
	}

	profile, err := resolveFacultyRef(ctx, s.facultyRepo, req.Faculty.ToRef())
	if err != nil {
		return nil, err
	}

	classID := req.Class.ClassID()

	existing, err := s.studentRepo.FindByEmailOrRoll(ctx, req.Student.Email, req.Student.RollNumber)
	if err != nil && !errors.Is(err, apperrors.ErrStudentNotFound) {
		return nil, err
	}

	if existing == nil || errors.Is(err, apperrors.ErrStudentNotFound) {
		return s.createStudent(ctx, req, profile.ID, classID)
	}

	if existing.BatchYear != req.Class.BatchYear ||
		existing.Section != req.Class.Section ||
		existing.Department != req.Class.Department {
		// Same identity, different cohort: never merged silently.
		conflict := &dto.CohortConflict{
			RollNumber: existing.RollNumber,
			Email:      existing.Identity.Email,
			Existing: dto.CohortTriple{
				BatchYear:  existing.BatchYear,
				Section:    existing.Section,
				Department: existing.Department,
			},
			Requested: dto.CohortTriple{
				BatchYear:  req.Class.BatchYear,
				Section:    req.Class.Section,
				Department: req.Class.Department,
			},
		}
		logger.Warn().
			Str("rollNumber", req.Student.RollNumber).
			Str("requestedBatch", req.Class.BatchYear).
			Str("existingBatch", existing.BatchYear).
			Msg("Student reconciliation rejected on cohort mismatch")
		return &dto.ReconcileResult{Action: dto.ActionRejected, Student: existing, Conflict: conflict}, nil
	}

	hasEnrollment, err := s.studentRepo.HasEnrollment(ctx, existing.ID, classID, profile.ID)
	if err != nil {
		return nil, err
	}
	if hasEnrollment {
		return &dto.ReconcileResult{Action: dto.ActionDuplicate, Student: existing}, nil
	}

	enrollment := &models.SemesterEnrollment{
		StudentID:    existing.ID,
		SemesterName: req.Class.SemesterName,
		Year:         req.Class.Year,
		ClassID:      classID,
		FacultyID:    profile.ID,
		Status:       models.EnrollmentActive,
		EnrolledAt:   time.Now(),
	}
	if _, err := s.studentRepo.AddEnrollment(ctx, enrollment); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEnrollment) {
			// Raced with an identical append; same outcome as the pre-check.
			return &dto.ReconcileResult{Action: dto.ActionDuplicate, Student: existing}, nil
		}
		return nil, err
	}

	logger.Info().
		Int64("studentID", existing.ID).
		Str("classID", classID).
		Msg("Semester enrollment appended")
	return &dto.ReconcileResult{Action: dto.ActionUpdated, Student: existing}, nil
}

// createStudent resolves or creates the backing identity, then creates the
// record with its first enrollment. Writes run in that fixed order; a failure
// after identity creation leaves an orphan that the next retry reuses.
func (s *reconcileServiceImpl) createStudent(ctx context.Context, req dto.ReconcileRequest, facultyID int64, classID string) (*dto.ReconcileResult, error) {
	identity, err := s.identityRepo.GetByEmail(ctx, req.Student.Email)
	if err != nil && !errors.Is(err, apperrors.ErrIdentityNotFound) {
		return nil, err
	}

	if identity == nil || errors.Is(err, apperrors.ErrIdentityNotFound) {
		hashed, err := auth.HashPassword(uuid.New().String())
		if err != nil {
			return nil, fmt.Errorf("failed to generate initial password: %w", err)
		}
		department := req.Class.Department
		identity = &models.Identity{
			Email:      req.Student.Email,
			Password:   hashed,
			FullName:   strings.TrimSpace(req.Student.Name),
			Role:       models.RoleStudent,
			Department: &department,
			Status:     models.IdentityActive,
		}
		id, err := s.identityRepo.Create(ctx, identity)
		if err != nil {
			if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
				// Lost a race with a concurrent create; reuse the winner.
				identity, err = s.identityRepo.GetByEmail(ctx, req.Student.Email)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		} else {
			identity.ID = id
		}
	}

	record := &models.StudentRecord{
		IdentityID: identity.ID,
		RollNumber: req.Student.RollNumber,
		Department: req.Class.Department,
		BatchYear:  req.Class.BatchYear,
		Section:    req.Class.Section,
		Status:     models.IdentityActive,
	}
	recordID, err := s.studentRepo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	record.ID = recordID
	record.Identity = identity

	enrollment := &models.SemesterEnrollment{
		StudentID:    recordID,
		SemesterName: req.Class.SemesterName,
		Year:         req.Class.Year,
		ClassID:      classID,
		FacultyID:    facultyID,
		Status:       models.EnrollmentActive,
		EnrolledAt:   time.Now(),
	}
	enrollmentID, err := s.studentRepo.AddEnrollment(ctx, enrollment)
	if err != nil {
		return nil, err
	}
	enrollment.ID = enrollmentID
	record.Semesters = []models.SemesterEnrollment{*enrollment}

	logger.Info().
		Int64("studentID", recordID).
		Str("rollNumber", record.RollNumber).
		Str("classID", classID).
		Msg("Student record created")
	return &dto.ReconcileResult{Action: dto.ActionCreated, Student: record}, nil
}

// ReconcileMany applies Reconcile sequentially so duplicate detection stays
// consistent against earlier items of the same batch. One item's failure
// never aborts the rest; every input index appears in the report.
func (s *reconcileServiceImpl) ReconcileMany(ctx context.Context, reqs []dto.ReconcileRequest, createdBy int64) *dto.ReconcileManyResult {
	result := &dto.ReconcileManyResult{
		Results: make([]dto.ReconcileItemResult, 0, len(reqs)),
	}

	for i, req := range reqs {
		outcome, err := s.Reconcile(ctx, req, createdBy)
		if err != nil {
			result.Results = append(result.Results, dto.ReconcileItemResult{
				Index: i,
				Error: err.Error(),
			})
			result.Summary.Failed++
			continue
		}

		item := dto.ReconcileItemResult{
			Index:    i,
			Action:   outcome.Action,
			Student:  outcome.Student,
			Conflict: outcome.Conflict,
		}
		result.Results = append(result.Results, item)

		switch outcome.Action {
		case dto.ActionCreated:
			result.Summary.Created++
		case dto.ActionUpdated:
			result.Summary.Updated++
		case dto.ActionDuplicate:
			result.Summary.Skipped++
		case dto.ActionRejected:
			result.Summary.Rejected++
		}
	}

	logger.Info().
		Int("total", len(reqs)).
		Int("created", result.Summary.Created).
		Int("updated", result.Summary.Updated).
		Int("skipped", result.Summary.Skipped).
		Int("rejected", result.Summary.Rejected).
		Int("failed", result.Summary.Failed).
		Msg("Bulk reconciliation finished")
	return result
}

// EnrollmentsForFaculty returns the active students of one class enriched
// with only the matching enrollment.
func (s *reconcileServiceImpl) EnrollmentsForFaculty(ctx context.Context, facultyRef models.FacultyRef, class dto.ClassContext) ([]dto.StudentWithEnrollment, error) {
	profile, err := resolveFacultyRef(ctx, s.facultyRepo, facultyRef)
	if err != nil {
		return nil, err
	}

	students, err := s.studentRepo.FindByClassAndFaculty(ctx, repositories.ClassRosterQuery{
		Department:   class.Department,
		BatchYear:    class.BatchYear,
		Section:      class.Section,
		Year:         class.Year,
		SemesterName: class.SemesterName,
		ClassID:      class.ClassID(),
		FacultyID:    profile.ID,
	})
	if err != nil {
		return nil, err
	}

	roster := make([]dto.StudentWithEnrollment, 0, len(students))
	for _, student := range students {
		if len(student.Semesters) == 0 {
			continue
		}
		enrollment := student.Semesters[0]
		student.Semesters = nil
		roster = append(roster, dto.StudentWithEnrollment{
			Student:    student,
			Enrollment: enrollment,
		})
	}

	return roster, nil
}

// AcademicHistory returns all enrollments of a student ordered by the fixed
// (year, semester) label-to-ordinal mapping.
func (s *reconcileServiceImpl) AcademicHistory(ctx context.Context, studentID int64) ([]models.SemesterEnrollment, error) {
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		return nil, err
	}

	enrollments, err := s.studentRepo.GetEnrollments(ctx, studentID)
	if err != nil {
		return nil, err
	}

	models.SortEnrollments(enrollments)
	return enrollments, nil
}
