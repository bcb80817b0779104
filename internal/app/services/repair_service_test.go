package services

import (
	"context"
	"testing"
	"time"

	"github.com/oguzk/acadcore/internal/app/models"
)

func setupTestRepairService() (RepairService, *mockAssignmentRepo, *mockFacultyRepo) {
	assignmentRepo := newMockAssignmentRepo()
	facultyRepo := newMockFacultyRepo()
	svc := NewRepairService(assignmentRepo, facultyRepo)
	return svc, assignmentRepo, facultyRepo
}

func seedActiveAssignment(t *testing.T, repo *mockAssignmentRepo, facultyID int64, batch string, semester int, section string, assignedAt time.Time) int64 {
	t.Helper()
	classKey := models.BuildClassKey(batch, "2nd Year", semester, section)
	id, err := repo.Create(context.Background(), &models.ClassAssignment{
		FacultyID:    facultyID,
		Department:   "CSE",
		Batch:        batch,
		Year:         "2nd Year",
		Semester:     semester,
		Section:      section,
		Role:         models.RoleClassAdvisor,
		Status:       models.AssignmentActive,
		AssignedBy:   99,
		AssignedAt:   assignedAt,
		ClassKey:     classKey,
		ClassDisplay: models.BuildClassDisplay("CSE", batch, "2nd Year", semester, section),
	})
	if err != nil {
		t.Fatalf("seeding assignment: %v", err)
	}
	return id
}

// --- RebuildAdvisorSummaries ---

func TestRepairService_Rebuild_ClearsStaleAndRewritesCurrent(t *testing.T) {
	svc, assignmentRepo, facultyRepo := setupTestRepairService()

	// f1 carries a stale summary with no backing ledger entry; f2 holds an
	// active entry but an empty profile. Plain deactivations produce exactly
	// this drift.
	stale := "CSE 2nd Year Sem 3 Section A (2022-2026)"
	f1 := seedFaculty(t, facultyRepo, "CSE", models.IdentityActive)
	facultyRepo.UpdateAssignmentSummary(context.Background(), f1, &stale, true)
	f2 := seedFaculty(t, facultyRepo, "CSE", models.IdentityActive)
	seedActiveAssignment(t, assignmentRepo, f2, "2023-2027", 3, "A", time.Now())

	result, err := svc.RebuildAdvisorSummaries(context.Background(), 99)
	if err != nil {
		t.Fatalf("repair should succeed: %v", err)
	}
	if result.ActiveAssignments != 1 {
		t.Errorf("expected 1 active assignment, got %d", result.ActiveAssignments)
	}
	if result.ProfilesCleared != 1 || result.ProfilesUpdated != 1 {
		t.Errorf("expected cleared=1 updated=1, got %+v", result)
	}
	if result.CorruptionDetected != 0 {
		t.Errorf("a healthy ledger should report no corruption, got %d", result.CorruptionDetected)
	}

	p1, _ := facultyRepo.GetByID(context.Background(), f1)
	if p1.CurrentAssignmentSummary != nil || p1.IsClassAdvisor {
		t.Error("stale summary should be cleared")
	}
	p2, _ := facultyRepo.GetByID(context.Background(), f2)
	if p2.CurrentAssignmentSummary == nil || !p2.IsClassAdvisor {
		t.Error("the ledger-backed advisor should get the summary")
	}
}

func TestRepairService_Rebuild_Idempotent(t *testing.T) {
	svc, assignmentRepo, facultyRepo := setupTestRepairService()

	f1 := seedFaculty(t, facultyRepo, "CSE", models.IdentityActive)
	seedActiveAssignment(t, assignmentRepo, f1, "2023-2027", 3, "A", time.Now())

	if _, err := svc.RebuildAdvisorSummaries(context.Background(), 99); err != nil {
		t.Fatalf("first pass should succeed: %v", err)
	}
	second, err := svc.RebuildAdvisorSummaries(context.Background(), 99)
	if err != nil {
		t.Fatalf("second pass should succeed: %v", err)
	}
	if second.ProfilesCleared != 0 || second.CorruptionDetected != 0 {
		t.Errorf("a second pass over a converged state must change nothing, got %+v", second)
	}
	if assignmentRepo.activeCount() != 1 {
		t.Errorf("active count must stay 1, got %d", assignmentRepo.activeCount())
	}
}

func TestRepairService_Rebuild_ConvergesDuplicateActivePerFaculty(t *testing.T) {
	svc, assignmentRepo, facultyRepo := setupTestRepairService()

	f1 := seedFaculty(t, facultyRepo, "CSE", models.IdentityActive)
	older := seedActiveAssignment(t, assignmentRepo, f1, "2023-2027", 3, "A", time.Now().Add(-time.Hour))
	newer := seedActiveAssignment(t, assignmentRepo, f1, "2024-2028", 1, "B", time.Now())

	result, err := svc.RebuildAdvisorSummaries(context.Background(), 99)
	if err != nil {
		t.Fatalf("repair should succeed: %v", err)
	}
	if result.CorruptionDetected != 1 {
		t.Errorf("expected 1 corruption, got %d", result.CorruptionDetected)
	}
	if assignmentRepo.activeCount() != 1 {
		t.Errorf("expected a single surviving active entry, got %d", assignmentRepo.activeCount())
	}

	survivor, _ := assignmentRepo.GetByID(context.Background(), newer)
	if !survivor.IsActive() {
		t.Error("the newest entry should survive")
	}
	loser, _ := assignmentRepo.GetByID(context.Background(), older)
	if loser.IsActive() {
		t.Error("the older duplicate should be deactivated")
	}
	if loser.DeactivationReason == nil || *loser.DeactivationReason != models.ReasonSuperseded {
		t.Error("the deactivated duplicate should carry the supersession reason")
	}

	profile, _ := facultyRepo.GetByID(context.Background(), f1)
	if profile.CurrentAssignmentSummary == nil || *profile.CurrentAssignmentSummary != survivor.ClassDisplay {
		t.Error("the summary should point at the surviving entry")
	}
}

func TestRepairService_Rebuild_ConvergesDuplicateActivePerClass(t *testing.T) {
	svc, assignmentRepo, facultyRepo := setupTestRepairService()

	f1 := seedFaculty(t, facultyRepo, "CSE", models.IdentityActive)
	f2 := seedFaculty(t, facultyRepo, "CSE", models.IdentityActive)
	older := seedActiveAssignment(t, assignmentRepo, f1, "2023-2027", 3, "A", time.Now().Add(-time.Hour))
	seedActiveAssignment(t, assignmentRepo, f2, "2023-2027", 3, "A", time.Now())

	result, err := svc.RebuildAdvisorSummaries(context.Background(), 99)
	if err != nil {
		t.Fatalf("repair should succeed: %v", err)
	}
	if result.CorruptionDetected != 1 {
		t.Errorf("expected 1 corruption, got %d", result.CorruptionDetected)
	}
	if assignmentRepo.activeCount() != 1 {
		t.Errorf("one class must keep one active holder, got %d", assignmentRepo.activeCount())
	}
	loser, _ := assignmentRepo.GetByID(context.Background(), older)
	if loser.IsActive() {
		t.Error("the older holder should be deactivated")
	}
}
