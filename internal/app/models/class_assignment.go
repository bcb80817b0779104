package models

import (
	"fmt"
	"time"
)

// AssignmentStatus is the binary lifecycle status of a ClassAssignment.
// Active entries are the current authoritative bindings; a deactivated entry
// is never resurrected, a re-assignment creates a brand-new entry.
type AssignmentStatus string

const (
	AssignmentActive   AssignmentStatus = "ACTIVE"
	AssignmentInactive AssignmentStatus = "INACTIVE"
)

// AssignmentRole is the role a faculty member holds for a class
type AssignmentRole string

const (
	RoleClassAdvisor AssignmentRole = "CLASS_ADVISOR"
)

// Deactivation reasons stamped by the reassignment state machine
const (
	ReasonSuperseded        = "superseded by new advisor assignment"
	ReasonFacultyReassigned = "faculty reassigned to a different class"
)

// ClassAssignment represents one (faculty, department, batch, year, semester,
// section, role) binding in the ledger.
//
// Invariant A: per (department, classKey) at most one entry is ACTIVE.
// Invariant B: per (faculty, role) at most one entry is ACTIVE.
// Both are backed by partial unique indexes in the store.
type ClassAssignment struct {
	ID                 int64            `json:"id" db:"id"`
	FacultyID          int64            `json:"facultyId" db:"faculty_id"` // faculty profile id
	Department         string           `json:"department" db:"department"`
	Batch              string           `json:"batch" db:"batch"` // YYYY-YYYY
	Year               string           `json:"year" db:"year"`   // "1st Year".."4th Year"
	Semester           int              `json:"semester" db:"semester"`
	Section            string           `json:"section" db:"section"`
	Role               AssignmentRole   `json:"role" db:"role"`
	Status             AssignmentStatus `json:"status" db:"status"`
	AssignedBy         int64            `json:"assignedBy" db:"assigned_by"` // identity id of the assigning actor
	AssignedAt         time.Time        `json:"assignedAt" db:"assigned_at"`
	DeactivatedAt      *time.Time       `json:"deactivatedAt,omitempty" db:"deactivated_at"`
	DeactivatedBy      *int64           `json:"deactivatedBy,omitempty" db:"deactivated_by"`
	DeactivationReason *string          `json:"deactivationReason,omitempty" db:"deactivation_reason"`
	Notes              *string          `json:"notes,omitempty" db:"notes"`
	ClassKey           string           `json:"classKey" db:"class_key"`
	ClassDisplay       string           `json:"classDisplay" db:"class_display"`

	Faculty *FacultyProfile `json:"faculty,omitempty"` // relation, no db tag
}

// IsActive reports whether the assignment is the current binding
func (a *ClassAssignment) IsActive() bool {
	return a.Status == AssignmentActive
}

// BuildClassKey derives the uniqueness key scoping "one class"
func BuildClassKey(batch, year string, semester int, section string) string {
	return fmt.Sprintf("%s|%s|%d|%s", batch, year, semester, section)
}

// BuildClassDisplay derives the human-readable class label
func BuildClassDisplay(department, batch, year string, semester int, section string) string {
	return fmt.Sprintf("%s %s Sem %d Section %s (%s)", department, year, semester, section, batch)
}
