package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/oguzk/acadcore/internal/app/models"
	"github.com/oguzk/acadcore/internal/app/models/dto"
	"github.com/oguzk/acadcore/internal/pkg/apperrors"
)

func setupTestReconcileService() (ReconcileService, *mockIdentityRepo, *mockFacultyRepo, *mockStudentRepo) {
	identityRepo := newMockIdentityRepo()
	facultyRepo := newMockFacultyRepo()
	studentRepo := newMockStudentRepo(identityRepo)
	svc := NewReconcileService(identityRepo, facultyRepo, studentRepo)
	return svc, identityRepo, facultyRepo, studentRepo
}

func reconcileRequest(facultyID int64, roll, email, year, semesterName string) dto.ReconcileRequest {
	return dto.ReconcileRequest{
		Student: dto.StudentData{
			Name:       "Jane Doe",
			Email:      email,
			RollNumber: roll,
		},
		Class: dto.ClassContext{
			Department:   "CSE",
			BatchYear:    "2023-2027",
			Section:      "A",
			Year:         year,
			SemesterName: semesterName,
		},
		Faculty: dto.FacultyRefRequest{ID: facultyID},
	}
}

// --- Reconcile ---

func TestReconcileService_Reconcile_CreatesStudent(t *testing.T) {
	svc, identityRepo, facultyRepo, studentRepo := setupTestReconcileService()
	f1 := seedFaculty(t, facultyRepo, "CSE", models.IdentityActive)

	result, err := svc.Reconcile(context.Background(), reconcileRequest(f1, "S001", "jane@school.edu", "1st Year", "Sem 1"), 99)
	if err != nil {
		t.Fatalf("Reconcile should succeed: %v", err)
	}
	if result.Action != dto.ActionCreated {
		t.Fatalf("expected CREATED, got %s", result.Action)
	}
	if result.Student == nil || result.Student.RollNumber != "S001" {
		t.Fatalf("expected the created record back, got %+v", result.Student)
	}
	if len(result.Student.Semesters) != 1 {
		t.Errorf("expected the first enrollment embedded, got %d", len(result.Student.Semesters))
	}

	identity, err := identityRepo.GetByEmail(context.Background(), "jane@school.edu")
	if err != nil {
		t.Fatalf("backing identity should exist: %v", err)
	}
	if identity.Role != models.RoleStudent {
		t.Errorf("expected STUDENT role, got %s", identity.Role)
	}
	if identity.Password == "" {
		t.Error("a generated password hash should be stored")
	}

	enrollments, _ := studentRepo.GetEnrollments(context.Background(), result.Student.ID)
	if len(enrollments) != 1 {
		t.Errorf("expected 1 enrollment, got %d", len(enrollments))
	}
}

func TestReconcileService_Reconcile_DuplicateIsNoOp(t *testing.T) {
	svc, _, facultyRepo, studentRepo := setupTestReconcileService()
	f1 := seedFaculty(t, facultyRepo, "CSE", models.IdentityActive)
	req := reconcileRequest(f1, "S001", "jane@school.edu", "1st Year", "Sem 1")

	first, err := svc.Reconcile(context.Background(), req, 99)
	if err != nil {
		t.Fatalf("first call should succeed: %v", err)
	}

	second, err := svc.Reconcile(context.Background(), req, 99)
	if err != nil {
		t.Fatalf("second call should succeed: %v", err)
	}
	if second.Action != dto.ActionDuplicate {
		t.Errorf("replaying the same input must report DUPLICATE, got %s", second.Action)
	}

	enrollments, _ := studentRepo.GetEnrollments(context.Background(), first.Student.ID)
	if len(enrollments) != 1 {
		t.Errorf("the duplicate must not append, got %d enrollments", len(enrollments))
	}
}

func TestReconcileService_Reconcile_ProgressionAppends(t *testing.T) {
	svc, _, facultyRepo, studentRepo := setupTestReconcileService()
	f1 := seedFaculty(t, facultyRepo, "CSE", models.IdentityActive)

	first, err := svc.Reconcile(context.Background(), reconcileRequest(f1, "S001", "jane@school.edu", "1st Year", "Sem 1"), 99)
	if err != nil {
		t.Fatalf("first call should succeed: %v", err)
	}

	result, err := svc.Reconcile(context.Background(), reconcileRequest(f1, "S001", "jane@school.edu", "1st Year", "Sem 2"), 99)
	if err != nil {
		t.Fatalf("progression should succeed: %v", err)
	}
	if result.Action != dto.ActionUpdated {
		t.Errorf("expected UPDATED, got %s", result.Action)
	}

	enrollments, _ := studentRepo.GetEnrollments(context.Background(), first.Student.ID)
	if len(enrollments) != 2 {
		t.Errorf("expected 2 enrollments after progression, got %d", len(enrollments))
	}
}

func TestReconcileService_Reconcile_CohortMismatchRejected(t *testing.T) {
	svc, _, facultyRepo, studentRepo := setupTestReconcileService()
	f1 := seedFaculty(t, facultyRepo, "CSE", models.IdentityActive)

	first, err := svc.Reconcile(context.Background(), reconcileRequest(f1, "S001", "jane@school.edu", "1st Year", "Sem 1"), 99)
	if err != nil {
		t.Fatalf("creation should succeed: %v", err)
	}

	// Same roll number, different batch: an operator problem, not an error.
	req := reconcileRequest(f1, "S001", "jane@school.edu", "1st Year", "Sem 1")
	req.Class.BatchYear = "2024-2028"

	result, err := svc.Reconcile(context.Background(), req, 99)
	if err != nil {
		t.Fatalf("a cohort mismatch is a normal outcome, got error: %v", err)
	}
	if result.Action != dto.ActionRejected {
		t.Fatalf("expected REJECTED, got %s", result.Action)
	}
	if result.Conflict == nil {
		t.Fatal("a rejection must carry the conflicting snapshot")
	}
	if result.Conflict.Existing.BatchYear != "2023-2027" || result.Conflict.Requested.BatchYear != "2024-2028" {
		t.Errorf("conflict snapshot should name both cohorts, got %+v", result.Conflict)
	}

	// Nothing may have been mutated.
	record, _ := studentRepo.GetByID(context.Background(), first.Student.ID)
	if record.BatchYear != "2023-2027" {
		t.Error("the existing record must stay untouched")
	}
	enrollments, _ := studentRepo.GetEnrollments(context.Background(), first.Student.ID)
	if len(enrollments) != 1 {
		t.Errorf("a rejection must not append enrollments, got %d", len(enrollments))
	}
}

func TestReconcileService_Reconcile_ReusesExistingIdentity(t *testing.T) {
	svc, identityRepo, facultyRepo, _ := setupTestReconcileService()
	f1 := seedFaculty(t, facultyRepo, "CSE", models.IdentityActive)

	existingID, err := identityRepo.Create(context.Background(), &models.Identity{
		Email:    "jane@school.edu",
		Password: "hash",
		FullName: "Jane Doe",
		Role:     models.RoleStudent,
		Status:   models.IdentityActive,
	})
	if err != nil {
		t.Fatalf("seeding identity: %v", err)
	}

	result, err := svc.Reconcile(context.Background(), reconcileRequest(f1, "S001", "jane@school.edu", "1st Year", "Sem 1"), 99)
	if err != nil {
		t.Fatalf("Reconcile should succeed: %v", err)
	}
	if result.Action != dto.ActionCreated {
		t.Fatalf("expected CREATED, got %s", result.Action)
	}
	if result.Student.IdentityID != existingID {
		t.Errorf("the pre-existing identity %d should be reused, got %d", existingID, result.Student.IdentityID)
	}
}

func TestReconcileService_Reconcile_ValidationAggregates(t *testing.T) {
	svc, _, facultyRepo, _ := setupTestReconcileService()
	f1 := seedFaculty(t, facultyRepo, "CSE", models.IdentityActive)

	req := reconcileRequest(f1, "S001", "not-an-email", "1st Year", "Sem 1")
	req.Student.Name = "J"
	req.Class.Section = "Z"

	_, err := svc.Reconcile(context.Background(), req, 99)
	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Violations) != 3 {
		t.Errorf("expected all 3 violations reported, got %d: %v", len(verr.Violations), verr.Violations)
	}
}

func TestReconcileService_Reconcile_UnknownFaculty(t *testing.T) {
	svc, _, _, _ := setupTestReconcileService()

	_, err := svc.Reconcile(context.Background(), reconcileRequest(42, "S001", "jane@school.edu", "1st Year", "Sem 1"), 99)
	if !errors.Is(err, apperrors.ErrFacultyNotFound) {
		t.Errorf("expected ErrFacultyNotFound, got %v", err)
	}
}

// --- ReconcileMany ---

func TestReconcileService_ReconcileMany_ReportsEveryIndex(t *testing.T) {
	svc, _, facultyRepo, _ := setupTestReconcileService()
	f1 := seedFaculty(t, facultyRepo, "CSE", models.IdentityActive)

	reqs := make([]dto.ReconcileRequest, 0, 5)
	for i := 1; i <= 5; i++ {
		reqs = append(reqs, reconcileRequest(f1,
			fmt.Sprintf("S%03d", i),
			fmt.Sprintf("student%d@school.edu", i),
			"1st Year", "Sem 1"))
	}
	// The third input carries a broken email; the batch must keep going.
	reqs[2].Student.Email = "broken"

	result := svc.ReconcileMany(context.Background(), reqs, 99)

	if len(result.Results) != 5 {
		t.Fatalf("every input index must appear in the report, got %d", len(result.Results))
	}
	if result.Summary.Created != 4 || result.Summary.Failed != 1 {
		t.Errorf("expected created=4 failed=1, got %+v", result.Summary)
	}
	for i, item := range result.Results {
		if item.Index != i {
			t.Errorf("result %d carries index %d", i, item.Index)
		}
	}
	if result.Results[2].Error == "" {
		t.Error("the failed item must carry its error")
	}
	if result.Results[3].Action != dto.ActionCreated {
		t.Error("items after a failure must still be processed")
	}
}

func TestReconcileService_ReconcileMany_CountsOutcomes(t *testing.T) {
	svc, _, facultyRepo, _ := setupTestReconcileService()
	f1 := seedFaculty(t, facultyRepo, "CSE", models.IdentityActive)

	create := reconcileRequest(f1, "S001", "jane@school.edu", "1st Year", "Sem 1")
	progress := reconcileRequest(f1, "S001", "jane@school.edu", "1st Year", "Sem 2")
	duplicate := reconcileRequest(f1, "S001", "jane@school.edu", "1st Year", "Sem 1")
	mismatch := reconcileRequest(f1, "S001", "jane@school.edu", "1st Year", "Sem 3")
	mismatch.Class.BatchYear = "2024-2028"

	result := svc.ReconcileMany(context.Background(), []dto.ReconcileRequest{create, progress, duplicate, mismatch}, 99)

	want := dto.ReconcileSummary{Created: 1, Updated: 1, Skipped: 1, Rejected: 1}
	if result.Summary != want {
		t.Errorf("expected summary %+v, got %+v", want, result.Summary)
	}
}

// --- EnrollmentsForFaculty ---

func TestReconcileService_EnrollmentsForFaculty(t *testing.T) {
	svc, _, facultyRepo, _ := setupTestReconcileService()
	f1 := seedFaculty(t, facultyRepo, "CSE", models.IdentityActive)
	f2 := seedFaculty(t, facultyRepo, "CSE", models.IdentityActive)

	svc.Reconcile(context.Background(), reconcileRequest(f1, "S001", "jane@school.edu", "1st Year", "Sem 1"), 99)
	svc.Reconcile(context.Background(), reconcileRequest(f1, "S002", "john@school.edu", "1st Year", "Sem 1"), 99)
	// A third student enrolled under a different faculty member.
	svc.Reconcile(context.Background(), reconcileRequest(f2, "S003", "mary@school.edu", "1st Year", "Sem 1"), 99)

	class := dto.ClassContext{
		Department:   "CSE",
		BatchYear:    "2023-2027",
		Section:      "A",
		Year:         "1st Year",
		SemesterName: "Sem 1",
	}
	roster, err := svc.EnrollmentsForFaculty(context.Background(), models.ProfileRef(f1), class)
	if err != nil {
		t.Fatalf("EnrollmentsForFaculty should succeed: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("expected 2 students for faculty %d, got %d", f1, len(roster))
	}
	for _, entry := range roster {
		if entry.Enrollment.FacultyID != f1 {
			t.Errorf("roster leaked an enrollment of faculty %d", entry.Enrollment.FacultyID)
		}
		if len(entry.Student.Semesters) != 0 {
			t.Error("the student projection must not carry the full enrollment list")
		}
	}
}

// --- AcademicHistory ---

func TestReconcileService_AcademicHistory_Ordering(t *testing.T) {
	svc, _, facultyRepo, studentRepo := setupTestReconcileService()
	f1 := seedFaculty(t, facultyRepo, "CSE", models.IdentityActive)

	created, err := svc.Reconcile(context.Background(), reconcileRequest(f1, "S001", "jane@school.edu", "2nd Year", "Sem 3"), 99)
	if err != nil {
		t.Fatalf("creation should succeed: %v", err)
	}
	studentID := created.Student.ID

	// Backfill earlier periods out of order.
	for _, period := range []struct {
		year, semester string
	}{
		{"1st Year", "Sem 2"},
		{"2nd Year", "Sem 4"},
		{"1st Year", "Sem 1"},
	} {
		_, err := studentRepo.AddEnrollment(context.Background(), &models.SemesterEnrollment{
			StudentID:    studentID,
			SemesterName: period.semester,
			Year:         period.year,
			ClassID:      models.BuildClassID("2023-2027", period.year, period.semester, "A"),
			FacultyID:    f1,
			Status:       models.EnrollmentActive,
			EnrolledAt:   time.Now(),
		})
		if err != nil {
			t.Fatalf("backfilling enrollment: %v", err)
		}
	}

	history, err := svc.AcademicHistory(context.Background(), studentID)
	if err != nil {
		t.Fatalf("AcademicHistory should succeed: %v", err)
	}

	wantOrder := []string{"Sem 1", "Sem 2", "Sem 3", "Sem 4"}
	if len(history) != len(wantOrder) {
		t.Fatalf("expected %d enrollments, got %d", len(wantOrder), len(history))
	}
	for i, want := range wantOrder {
		if history[i].SemesterName != want {
			t.Errorf("position %d: expected %s, got %s", i, want, history[i].SemesterName)
		}
	}
}

func TestReconcileService_AcademicHistory_NotFound(t *testing.T) {
	svc, _, _, _ := setupTestReconcileService()

	_, err := svc.AcademicHistory(context.Background(), 12345)
	if !errors.Is(err, apperrors.ErrStudentNotFound) {
		t.Errorf("expected ErrStudentNotFound, got %v", err)
	}
}
