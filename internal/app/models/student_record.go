package models

import (
	"fmt"
	"sort"
	"time"
)

// EnrollmentStatus is the lifecycle status of a semester enrollment.
// Enrollments are never deleted, only archived, to preserve academic history.
type EnrollmentStatus string

const (
	EnrollmentActive   EnrollmentStatus = "ACTIVE"
	EnrollmentArchived EnrollmentStatus = "ARCHIVED"
)

// StudentRecord holds identity-independent academic data plus the ordered
// collection of semester enrollments. The (batch, section, department) triple
// is fixed at creation; later enrollments must match it.
type StudentRecord struct {
	ID         int64          `json:"id" db:"id"`
	IdentityID int64          `json:"identityId" db:"identity_id"`
	RollNumber string         `json:"rollNumber" db:"roll_number"`
	Department string         `json:"department" db:"department"`
	BatchYear  string         `json:"batchYear" db:"batch_year"` // YYYY-YYYY
	Section    string         `json:"section" db:"section"`
	Status     IdentityStatus `json:"status" db:"status"`
	CreatedAt  time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time      `json:"updatedAt" db:"updated_at"`

	Identity  *Identity            `json:"identity,omitempty"`  // relation, no db tag
	Semesters []SemesterEnrollment `json:"semesters,omitempty"` // relation, no db tag
}

// SemesterEnrollment binds a student to one class/faculty/period.
// No two enrollments of the same student may share (classId, facultyId).
type SemesterEnrollment struct {
	ID           int64            `json:"id" db:"id"`
	StudentID    int64            `json:"studentId" db:"student_id"`
	SemesterName string           `json:"semesterName" db:"semester_name"` // "Sem 1".."Sem 8"
	Year         string           `json:"year" db:"year"`                  // "1st Year".."4th Year"
	ClassID      string           `json:"classId" db:"class_id"`
	FacultyID    int64            `json:"facultyId" db:"faculty_id"` // faculty profile id
	Status       EnrollmentStatus `json:"status" db:"status"`
	EnrolledAt   time.Time        `json:"enrolledAt" db:"enrolled_at"`
}

// BuildClassID derives the per-enrollment class key
func BuildClassID(batch, year, semesterName, section string) string {
	return fmt.Sprintf("%s|%s|%s|%s", batch, year, semesterName, section)
}

// yearOrdinals maps year labels to their academic order
var yearOrdinals = map[string]int{
	"1st Year": 1,
	"2nd Year": 2,
	"3rd Year": 3,
	"4th Year": 4,
}

// semesterOrdinals maps semester labels to their academic order
var semesterOrdinals = map[string]int{
	"Sem 1": 1, "Sem 2": 2, "Sem 3": 3, "Sem 4": 4,
	"Sem 5": 5, "Sem 6": 6, "Sem 7": 7, "Sem 8": 8,
}

// YearOrdinal returns the order of a year label, 0 for unknown labels
func YearOrdinal(year string) int {
	return yearOrdinals[year]
}

// SemesterOrdinal returns the order of a semester label, 0 for unknown labels
func SemesterOrdinal(semesterName string) int {
	return semesterOrdinals[semesterName]
}

// SemesterName renders the label for a semester number
func SemesterName(semester int) string {
	return fmt.Sprintf("Sem %d", semester)
}

// ValidYearLabels lists the accepted year labels in order
var ValidYearLabels = []string{"1st Year", "2nd Year", "3rd Year", "4th Year"}

// IsValidYearLabel reports whether the label is a known academic year
func IsValidYearLabel(year string) bool {
	_, ok := yearOrdinals[year]
	return ok
}

// SortEnrollments orders enrollments by (year ordinal, semester ordinal).
// Unknown labels sort first so corrupt data stays visible.
func SortEnrollments(enrollments []SemesterEnrollment) {
	sort.SliceStable(enrollments, func(i, j int) bool {
		ki := YearOrdinal(enrollments[i].Year)*10 + SemesterOrdinal(enrollments[i].SemesterName)
		kj := YearOrdinal(enrollments[j].Year)*10 + SemesterOrdinal(enrollments[j].SemesterName)
		return ki < kj
	})
}
