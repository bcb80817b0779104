package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oguzk/acadcore/internal/app/models"
	"github.com/oguzk/acadcore/internal/app/repositories"
	"github.com/oguzk/acadcore/internal/pkg/apperrors"
)

// --- Mock IdentityRepository ---

type mockIdentityRepo struct {
	mu         sync.Mutex
	identities map[int64]*models.Identity
	nextID     int64
}

func newMockIdentityRepo() *mockIdentityRepo {
	return &mockIdentityRepo{identities: make(map[int64]*models.Identity), nextID: 1}
}

func (m *mockIdentityRepo) Create(_ context.Context, identity *models.Identity) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(identity.Email)
	for _, existing := range m.identities {
		if strings.ToLower(existing.Email) == email {
			return 0, apperrors.ErrEmailAlreadyExists
		}
	}
	id := m.nextID
	m.nextID++
	stored := *identity
	stored.ID = id
	stored.Email = email
	m.identities[id] = &stored
	return id, nil
}

func (m *mockIdentityRepo) GetByID(_ context.Context, id int64) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if identity, ok := m.identities[id]; ok {
		cp := *identity
		return &cp, nil
	}
	return nil, apperrors.ErrIdentityNotFound
}

func (m *mockIdentityRepo) GetByEmail(_ context.Context, email string) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, identity := range m.identities {
		if strings.EqualFold(identity.Email, email) {
			cp := *identity
			return &cp, nil
		}
	}
	return nil, apperrors.ErrIdentityNotFound
}

func (m *mockIdentityRepo) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, identity := range m.identities {
		if strings.EqualFold(identity.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// --- Mock FacultyRepository ---

type mockFacultyRepo struct {
	mu       sync.Mutex
	profiles map[int64]*models.FacultyProfile
	nextID   int64
}

func newMockFacultyRepo() *mockFacultyRepo {
	return &mockFacultyRepo{profiles: make(map[int64]*models.FacultyProfile), nextID: 1}
}

func (m *mockFacultyRepo) Create(_ context.Context, profile *models.FacultyProfile) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	stored := *profile
	stored.ID = id
	m.profiles[id] = &stored
	return id, nil
}

func (m *mockFacultyRepo) GetByID(_ context.Context, id int64) (*models.FacultyProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if profile, ok := m.profiles[id]; ok {
		cp := *profile
		return &cp, nil
	}
	return nil, apperrors.ErrFacultyNotFound
}

func (m *mockFacultyRepo) GetByIdentityID(_ context.Context, identityID int64) (*models.FacultyProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, profile := range m.profiles {
		if profile.IdentityID == identityID {
			cp := *profile
			return &cp, nil
		}
	}
	return nil, apperrors.ErrFacultyNotFound
}

func (m *mockFacultyRepo) UpdateAssignmentSummary(_ context.Context, profileID int64, summary *string, isClassAdvisor bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile, ok := m.profiles[profileID]
	if !ok {
		return apperrors.ErrFacultyNotFound
	}
	profile.CurrentAssignmentSummary = summary
	profile.IsClassAdvisor = isClassAdvisor
	return nil
}

func (m *mockFacultyRepo) ListByDepartment(_ context.Context, department string) ([]models.FacultyProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.FacultyProfile
	for _, profile := range m.profiles {
		if profile.Department == department {
			result = append(result, *profile)
		}
	}
	return result, nil
}

func (m *mockFacultyRepo) ListAdvisors(_ context.Context) ([]models.FacultyProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.FacultyProfile
	for _, profile := range m.profiles {
		if profile.IsClassAdvisor || profile.CurrentAssignmentSummary != nil {
			result = append(result, *profile)
		}
	}
	return result, nil
}

// --- Mock AssignmentRepository ---

type mockAssignmentRepo struct {
	mu      sync.Mutex
	entries map[int64]*models.ClassAssignment
	nextID  int64

	// createErr, when set, is returned by the next Create call to simulate a
	// store-level conflict on the Active partial indexes.
	createErr error
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{entries: make(map[int64]*models.ClassAssignment), nextID: 1}
}

func (m *mockAssignmentRepo) Create(_ context.Context, assignment *models.ClassAssignment) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		err := m.createErr
		m.createErr = nil
		return 0, err
	}
	id := m.nextID
	m.nextID++
	stored := *assignment
	stored.ID = id
	m.entries[id] = &stored
	return id, nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id int64) (*models.ClassAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[id]; ok {
		cp := *entry
		return &cp, nil
	}
	return nil, apperrors.ErrAssignmentNotFound
}

func (m *mockAssignmentRepo) FindActiveByClass(_ context.Context, department, classKey string) ([]models.ClassAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.ClassAssignment
	for _, entry := range m.entries {
		if entry.Status == models.AssignmentActive && entry.Department == department && entry.ClassKey == classKey {
			result = append(result, *entry)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) FindActiveByFaculty(_ context.Context, facultyID int64, role models.AssignmentRole) ([]models.ClassAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.ClassAssignment
	for _, entry := range m.entries {
		if entry.Status == models.AssignmentActive && entry.FacultyID == facultyID && entry.Role == role {
			result = append(result, *entry)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) Deactivate(_ context.Context, id, actorID int64, reason string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok || entry.Status != models.AssignmentActive {
		return false, nil
	}
	entry.Status = models.AssignmentInactive
	entry.DeactivatedAt = &at
	entry.DeactivatedBy = &actorID
	entry.DeactivationReason = &reason
	return true, nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return apperrors.ErrAssignmentNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *mockAssignmentRepo) ListByDepartment(_ context.Context, department string, status *models.AssignmentStatus) ([]models.ClassAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.ClassAssignment
	for _, entry := range m.entries {
		if entry.Department != department {
			continue
		}
		if status != nil && entry.Status != *status {
			continue
		}
		result = append(result, *entry)
	}
	return result, nil
}

func (m *mockAssignmentRepo) ListAllActive(_ context.Context) ([]models.ClassAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.ClassAssignment
	for _, entry := range m.entries {
		if entry.Status == models.AssignmentActive {
			result = append(result, *entry)
		}
	}
	return result, nil
}

// activeCount reports how many Active entries the ledger holds.
func (m *mockAssignmentRepo) activeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, entry := range m.entries {
		if entry.Status == models.AssignmentActive {
			count++
		}
	}
	return count
}

// --- Mock StudentRepository ---

type mockStudentRepo struct {
	mu               sync.Mutex
	identityRepo     *mockIdentityRepo
	students         map[int64]*models.StudentRecord
	enrollments      []models.SemesterEnrollment
	nextID           int64
	nextEnrollmentID int64
}

func newMockStudentRepo(identityRepo *mockIdentityRepo) *mockStudentRepo {
	return &mockStudentRepo{
		identityRepo: identityRepo,
		students:     make(map[int64]*models.StudentRecord),
		nextID:       1, nextEnrollmentID: 1,
	}
}

// attachIdentity mirrors the identities join of the real repository.
func (m *mockStudentRepo) attachIdentity(record models.StudentRecord) models.StudentRecord {
	if m.identityRepo != nil {
		if identity, err := m.identityRepo.GetByID(context.Background(), record.IdentityID); err == nil {
			record.Identity = identity
		}
	}
	return record
}

func (m *mockStudentRepo) Create(_ context.Context, record *models.StudentRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.students {
		if existing.RollNumber == record.RollNumber {
			return 0, apperrors.ErrRollNumberAlreadyExists
		}
	}
	id := m.nextID
	m.nextID++
	stored := *record
	stored.ID = id
	m.students[id] = &stored
	return id, nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id int64) (*models.StudentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record, ok := m.students[id]; ok {
		cp := m.attachIdentity(*record)
		return &cp, nil
	}
	return nil, apperrors.ErrStudentNotFound
}

func (m *mockStudentRepo) FindByEmailOrRoll(_ context.Context, email, rollNumber string) (*models.StudentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.students {
		cp := m.attachIdentity(*record)
		if cp.RollNumber == rollNumber ||
			(cp.Identity != nil && strings.EqualFold(cp.Identity.Email, email)) {
			return &cp, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (m *mockStudentRepo) GetEnrollments(_ context.Context, studentID int64) ([]models.SemesterEnrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.SemesterEnrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockStudentRepo) AddEnrollment(_ context.Context, enrollment *models.SemesterEnrollment) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.enrollments {
		if e.StudentID == enrollment.StudentID && e.ClassID == enrollment.ClassID && e.FacultyID == enrollment.FacultyID {
			return 0, apperrors.ErrDuplicateEnrollment
		}
	}
	id := m.nextEnrollmentID
	m.nextEnrollmentID++
	stored := *enrollment
	stored.ID = id
	m.enrollments = append(m.enrollments, stored)
	return id, nil
}

func (m *mockStudentRepo) HasEnrollment(_ context.Context, studentID int64, classID string, facultyID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.ClassID == classID && e.FacultyID == facultyID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) FindByClassAndFaculty(_ context.Context, query repositories.ClassRosterQuery) ([]models.StudentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.StudentRecord
	for _, record := range m.students {
		if record.Department != query.Department || record.BatchYear != query.BatchYear || record.Section != query.Section {
			continue
		}
		if record.Status != models.IdentityActive {
			continue
		}
		for _, e := range m.enrollments {
			if e.StudentID == record.ID && e.ClassID == query.ClassID && e.FacultyID == query.FacultyID && e.Status == models.EnrollmentActive {
				cp := m.attachIdentity(*record)
				cp.Semesters = []models.SemesterEnrollment{e}
				result = append(result, cp)
				break
			}
		}
	}
	return result, nil
}

// --- Recording Notifier ---

type mockNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *mockNotifier) Notify(_ context.Context, notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *mockNotifier) byKind(kind NoticeKind) []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	var result []Notice
	for _, notice := range n.notices {
		if notice.Kind == kind {
			result = append(result, notice)
		}
	}
	return result
}
