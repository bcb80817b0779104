package services

import (
	"context"
	"fmt"
	"time"

	"github.com/oguzk/acadcore/internal/app/models"
	"github.com/oguzk/acadcore/internal/app/models/dto"
	"github.com/oguzk/acadcore/internal/app/repositories"
	"github.com/oguzk/acadcore/internal/pkg/logger"
)

// RepairService rebuilds the denormalized advisor summaries from the ledger.
// The ledger is the single source of truth; the profile summary is a
// best-effort cache that can drift (plain deactivations do not clear it).
// The rebuild is idempotent: running it twice changes nothing the second time.
type RepairService interface {
	RebuildAdvisorSummaries(ctx context.Context, actorID int64) (*dto.RepairSummariesResult, error)
}

// repairServiceImpl implements the RepairService interface
type repairServiceImpl struct {
	assignmentRepo repositories.AssignmentRepository
	facultyRepo    repositories.FacultyRepository
}

// NewRepairService creates a new repair service instance
func NewRepairService(assignmentRepo repositories.AssignmentRepository, facultyRepo repositories.FacultyRepository) RepairService {
	return &repairServiceImpl{
		assignmentRepo: assignmentRepo,
		facultyRepo:    facultyRepo,
	}
}

// RebuildAdvisorSummaries scans all Active ledger entries, converges any
// multi-Active corruption (keeping the most recent entry per faculty and per
// class), and rewrites every profile summary to match the ledger.
func (s *repairServiceImpl) RebuildAdvisorSummaries(ctx context.Context, actorID int64) (*dto.RepairSummariesResult, error) {
	active, err := s.assignmentRepo.ListAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing active assignments: %w", err)
	}

	result := &dto.RepairSummariesResult{ActiveAssignments: len(active)}
	now := time.Now()

	// Converge invariant violations: keep the newest Active entry per
	// faculty and per class, deactivate the rest.
	survivors := s.deactivateExtras(ctx, active, actorID, now, result)

	// Desired summary per faculty profile, from the surviving entries.
	desired := make(map[int64]string, len(survivors))
	for _, a := range survivors {
		desired[a.FacultyID] = a.ClassDisplay
	}

	// Clear stale summaries on profiles the ledger no longer backs.
	flagged, err := s.facultyRepo.ListAdvisors(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing advisor profiles: %w", err)
	}
	for _, profile := range flagged {
		if _, stillAdvisor := desired[profile.ID]; stillAdvisor {
			continue
		}
		if err := s.facultyRepo.UpdateAssignmentSummary(ctx, profile.ID, nil, false); err != nil {
			return nil, err
		}
		result.ProfilesCleared++
	}

	// Rewrite summaries for current advisors.
	for profileID, summary := range desired {
		label := summary
		if err := s.facultyRepo.UpdateAssignmentSummary(ctx, profileID, &label, true); err != nil {
			return nil, err
		}
		result.ProfilesUpdated++
	}

	logger.Info().
		Int("activeAssignments", result.ActiveAssignments).
		Int("profilesUpdated", result.ProfilesUpdated).
		Int("profilesCleared", result.ProfilesCleared).
		Int("corruptionDetected", result.CorruptionDetected).
		Msg("Advisor summary repair pass finished")
	return result, nil
}

// deactivateExtras enforces the at-most-one-Active invariants over a ledger
// snapshot, returning the entries that survive.
func (s *repairServiceImpl) deactivateExtras(ctx context.Context, active []models.ClassAssignment, actorID int64, now time.Time, result *dto.RepairSummariesResult) []models.ClassAssignment {
	newestByFaculty := make(map[int64]models.ClassAssignment)
	newestByClass := make(map[string]models.ClassAssignment)
	for _, a := range active {
		if cur, ok := newestByFaculty[a.FacultyID]; !ok || a.AssignedAt.After(cur.AssignedAt) {
			newestByFaculty[a.FacultyID] = a
		}
		classScope := a.Department + "|" + a.ClassKey
		if cur, ok := newestByClass[classScope]; !ok || a.AssignedAt.After(cur.AssignedAt) {
			newestByClass[classScope] = a
		}
	}

	var survivors []models.ClassAssignment
	for _, a := range active {
		classScope := a.Department + "|" + a.ClassKey
		if newestByFaculty[a.FacultyID].ID == a.ID && newestByClass[classScope].ID == a.ID {
			survivors = append(survivors, a)
			continue
		}

		result.CorruptionDetected++
		logger.Warn().
			Int64("assignmentID", a.ID).
			Int64("facultyID", a.FacultyID).
			Str("classKey", a.ClassKey).
			Msg("Deactivating extra active assignment during repair")
		if _, err := s.assignmentRepo.Deactivate(ctx, a.ID, actorID, models.ReasonSuperseded, now); err != nil {
			// Repair keeps going; the next run picks up what this one missed.
			logger.Error().Err(err).Int64("assignmentID", a.ID).Msg("Failed to deactivate during repair")
		}
	}

	return survivors
}
