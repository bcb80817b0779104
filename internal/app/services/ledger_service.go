package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oguzk/acadcore/internal/app/models"
	"github.com/oguzk/acadcore/internal/app/models/dto"
	"github.com/oguzk/acadcore/internal/app/repositories"
	"github.com/oguzk/acadcore/internal/pkg/apperrors"
	"github.com/oguzk/acadcore/internal/pkg/logger"
	"github.com/oguzk/acadcore/internal/pkg/validation"
)

// LedgerService owns the class-assignment ledger and its reassignment state
// machine. States: Active, Inactive, Removed (document absence). Transitions
// are Active->Inactive (deactivate or supersede) and ->Removed (explicit
// removal); no transition re-enters Active.
type LedgerService interface {
	AssignAdvisor(ctx context.Context, req dto.AssignAdvisorRequest, assignedBy int64) (*dto.AssignAdvisorResult, error)
	Deactivate(ctx context.Context, assignmentID, actorID int64, reason string) (*models.ClassAssignment, error)
	RemoveCompletely(ctx context.Context, assignmentID, actorID int64) error
	GetAssignment(ctx context.Context, assignmentID int64) (*models.ClassAssignment, error)
	ListAssignments(ctx context.Context, department string, status *models.AssignmentStatus) ([]models.ClassAssignment, error)
	ListAdvisors(ctx context.Context) ([]models.FacultyProfile, error)
}

// ledgerServiceImpl implements the LedgerService interface
type ledgerServiceImpl struct {
	assignmentRepo repositories.AssignmentRepository
	facultyRepo    repositories.FacultyRepository
	notifier       Notifier
}

// NewLedgerService creates a new ledger service instance
func NewLedgerService(assignmentRepo repositories.AssignmentRepository, facultyRepo repositories.FacultyRepository, notifier Notifier) LedgerService {
	return &ledgerServiceImpl{
		assignmentRepo: assignmentRepo,
		facultyRepo:    facultyRepo,
		notifier:       notifier,
	}
}

// validateAssignRequest checks the static input constraints, collecting
// every violation rather than stopping at the first.
func (s *ledgerServiceImpl) validateAssignRequest(req dto.AssignAdvisorRequest) error {
	verr := &apperrors.ValidationError{}

	if !validation.IsValidBatch(req.Batch) {
		verr.Add("batch", "must match the YYYY-YYYY format")
	}
	if !models.IsValidYearLabel(req.Year) {
		verr.Add("year", "must be one of 1st Year, 2nd Year, 3rd Year, 4th Year")
	}
	if !validation.IsValidSemester(req.Semester) {
		verr.Add("semester", "must be between 1 and 8")
	}
	if !validation.IsValidSection(req.Section) {
		verr.Add("section", "must be one of A, B, C")
	}
	if req.Department == "" {
		verr.Add("department", "is required")
	}

	if verr.HasViolations() {
		return verr
	}
	return nil
}

// AssignAdvisor runs the reassignment state machine:
// resolve faculty -> query conflicting Active entries -> deactivate them ->
// insert the new Active entry -> refresh the denormalized profile summaries.
// The store-level uniqueness on Active entries backstops the window between
// the conflict query and the insert; a Conflict error means the caller must
// retry the whole reassignment.
func (s *ledgerServiceImpl) AssignAdvisor(ctx context.Context, req dto.AssignAdvisorRequest, assignedBy int64) (*dto.AssignAdvisorResult, error) {
	if err := s.validateAssignRequest(req); err != nil {
		return nil, err
	}

	profile, err := resolveFacultyRef(ctx, s.facultyRepo, req.Faculty.ToRef())
	if err != nil {
		return nil, err
	}
	if !profile.IsActive() {
		return nil, apperrors.ErrFacultyInactive
	}
	if profile.Department != req.Department {
		return nil, apperrors.ErrDepartmentMismatch
	}

	classKey := models.BuildClassKey(req.Batch, req.Year, req.Semester, req.Section)
	classDisplay := models.BuildClassDisplay(req.Department, req.Batch, req.Year, req.Semester, req.Section)
	now := time.Now()

	priorClassHolders, err := s.assignmentRepo.FindActiveByClass(ctx, req.Department, classKey)
	if err != nil {
		return nil, fmt.Errorf("error querying active class holders: %w", err)
	}
	if len(priorClassHolders) > 1 {
		// Invariant A promises at most one; converge anyway and leave a trace.
		logger.Warn().
			Str("classKey", classKey).
			Int("count", len(priorClassHolders)).
			Msg("Multiple active assignments found for one class")
	}

	// A self-reassignment to the class the faculty already holds is a no-op.
	for i := range priorClassHolders {
		if priorClassHolders[i].FacultyID == profile.ID {
			existing := priorClassHolders[i]
			logger.Info().
				Int64("assignmentID", existing.ID).
				Str("classKey", classKey).
				Msg("Faculty already holds this class, nothing to reassign")
			return &dto.AssignAdvisorResult{Assignment: &existing}, nil
		}
	}

	priorFacultyAssignments, err := s.assignmentRepo.FindActiveByFaculty(ctx, profile.ID, models.RoleClassAdvisor)
	if err != nil {
		return nil, fmt.Errorf("error querying active faculty assignments: %w", err)
	}

	var deactivated []models.ClassAssignment
	deactivatedIDs := make(map[int64]bool)

	deactivate := func(entry models.ClassAssignment, reason string) error {
		if deactivatedIDs[entry.ID] {
			return nil
		}
		ok, err := s.assignmentRepo.Deactivate(ctx, entry.ID, assignedBy, reason, now)
		if err != nil {
			return err
		}
		if !ok {
			// Another worker got there first; the entry is no longer Active.
			logger.Warn().Int64("assignmentID", entry.ID).Msg("Assignment was already inactive during supersession")
			return nil
		}
		entry.Status = models.AssignmentInactive
		entry.DeactivatedAt = &now
		entry.DeactivatedBy = &assignedBy
		entry.DeactivationReason = &reason
		deactivated = append(deactivated, entry)
		deactivatedIDs[entry.ID] = true
		return nil
	}

	var replacedFacultyID *int64
	for _, holder := range priorClassHolders {
		if err := deactivate(holder, models.ReasonSuperseded); err != nil {
			return nil, err
		}
		if replacedFacultyID == nil {
			id := holder.FacultyID
			replacedFacultyID = &id
		}
	}
	for _, prior := range priorFacultyAssignments {
		if err := deactivate(prior, models.ReasonFacultyReassigned); err != nil {
			return nil, err
		}
	}

	notes := optionalString(req.Notes)
	assignment := &models.ClassAssignment{
		FacultyID:    profile.ID,
		Department:   req.Department,
		Batch:        req.Batch,
		Year:         req.Year,
		Semester:     req.Semester,
		Section:      req.Section,
		Role:         models.RoleClassAdvisor,
		Status:       models.AssignmentActive,
		AssignedBy:   assignedBy,
		AssignedAt:   now,
		Notes:        notes,
		ClassKey:     classKey,
		ClassDisplay: classDisplay,
	}

	id, err := s.assignmentRepo.Create(ctx, assignment)
	if err != nil {
		return nil, err
	}
	assignment.ID = id

	// Denormalized summary refresh: the new holder gains the class label,
	// the replaced advisor loses theirs. Best-effort cache over the ledger.
	if err := s.facultyRepo.UpdateAssignmentSummary(ctx, profile.ID, &classDisplay, true); err != nil {
		logger.Error().Err(err).Int64("profileID", profile.ID).Msg("Failed to update advisor summary")
	}
	if replacedFacultyID != nil && *replacedFacultyID != profile.ID {
		if err := s.facultyRepo.UpdateAssignmentSummary(ctx, *replacedFacultyID, nil, false); err != nil {
			logger.Error().Err(err).Int64("profileID", *replacedFacultyID).Msg("Failed to clear replaced advisor summary")
		}
	}

	s.emitAssignmentNotices(ctx, assignment, assignedBy, replacedFacultyID)

	logger.Info().
		Int64("assignmentID", assignment.ID).
		Int64("facultyID", profile.ID).
		Str("classKey", classKey).
		Int("deactivated", len(deactivated)).
		Msg("Class advisor assigned")

	return &dto.AssignAdvisorResult{
		Assignment:               assignment,
		Deactivated:              deactivated,
		ReplacedAdvisorFacultyID: replacedFacultyID,
	}, nil
}

// emitAssignmentNotices emits the three logical notices once per successful
// reassignment: assigned, confirmation, and reassigned (when a prior holder
// was replaced).
func (s *ledgerServiceImpl) emitAssignmentNotices(ctx context.Context, assignment *models.ClassAssignment, assignedBy int64, replacedFacultyID *int64) {
	s.notifier.Notify(ctx, Notice{
		ID:           uuid.New().String(),
		Kind:         NoticeAssigned,
		RecipientID:  assignment.FacultyID,
		Message:      fmt.Sprintf("You have been assigned as class advisor for %s", assignment.ClassDisplay),
		ClassDisplay: assignment.ClassDisplay,
		Priority:     PriorityHigh,
	})
	s.notifier.Notify(ctx, Notice{
		ID:           uuid.New().String(),
		Kind:         NoticeConfirmation,
		RecipientID:  assignedBy,
		Message:      fmt.Sprintf("Class advisor assignment for %s is in effect", assignment.ClassDisplay),
		ClassDisplay: assignment.ClassDisplay,
		Priority:     PriorityNormal,
	})
	if replacedFacultyID != nil && *replacedFacultyID != assignment.FacultyID {
		s.notifier.Notify(ctx, Notice{
			ID:           uuid.New().String(),
			Kind:         NoticeReassigned,
			RecipientID:  *replacedFacultyID,
			Message:      fmt.Sprintf("You are no longer class advisor for %s", assignment.ClassDisplay),
			ClassDisplay: assignment.ClassDisplay,
			Priority:     PriorityHigh,
		})
	}
}

// Deactivate explicitly transitions an assignment to Inactive. It does not
// touch the profile summary; the repair pass is the authoritative fix for
// summaries left behind by plain deactivations.
func (s *ledgerServiceImpl) Deactivate(ctx context.Context, assignmentID, actorID int64, reason string) (*models.ClassAssignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if !assignment.IsActive() {
		return nil, apperrors.ErrAssignmentInactive
	}

	if reason == "" {
		reason = "deactivated by administrator"
	}

	now := time.Now()
	ok, err := s.assignmentRepo.Deactivate(ctx, assignmentID, actorID, reason, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrAssignmentInactive
	}

	assignment.Status = models.AssignmentInactive
	assignment.DeactivatedAt = &now
	assignment.DeactivatedBy = &actorID
	assignment.DeactivationReason = &reason

	logger.Info().Int64("assignmentID", assignmentID).Int64("actorID", actorID).Msg("Class assignment deactivated")
	return assignment, nil
}

// RemoveCompletely deletes the ledger entry and clears the profile's
// denormalized assignment fields when the removed entry was the active one.
// Historical student enrollments are immutable and stay untouched.
func (s *ledgerServiceImpl) RemoveCompletely(ctx context.Context, assignmentID, actorID int64) error {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return err
	}

	if err := s.assignmentRepo.Delete(ctx, assignmentID); err != nil {
		return err
	}

	if assignment.IsActive() {
		if err := s.facultyRepo.UpdateAssignmentSummary(ctx, assignment.FacultyID, nil, false); err != nil {
			logger.Error().Err(err).Int64("profileID", assignment.FacultyID).Msg("Failed to clear summary after removal")
		}
	}

	logger.Info().
		Int64("assignmentID", assignmentID).
		Int64("actorID", actorID).
		Str("classKey", assignment.ClassKey).
		Msg("Class assignment removed")
	return nil
}

// GetAssignment retrieves a ledger entry by id
func (s *ledgerServiceImpl) GetAssignment(ctx context.Context, assignmentID int64) (*models.ClassAssignment, error) {
	return s.assignmentRepo.GetByID(ctx, assignmentID)
}

// ListAssignments retrieves ledger entries for a department
func (s *ledgerServiceImpl) ListAssignments(ctx context.Context, department string, status *models.AssignmentStatus) ([]models.ClassAssignment, error) {
	if department == "" {
		verr := &apperrors.ValidationError{}
		verr.Add("department", "is required")
		return nil, verr
	}
	return s.assignmentRepo.ListByDepartment(ctx, department, status)
}

// ListAdvisors retrieves the faculty profiles currently flagged as class
// advisors, with their denormalized class summaries
func (s *ledgerServiceImpl) ListAdvisors(ctx context.Context) ([]models.FacultyProfile, error) {
	return s.facultyRepo.ListAdvisors(ctx)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
