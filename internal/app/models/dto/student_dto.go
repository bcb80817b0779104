package dto

import (
	"github.com/oguzk/acadcore/internal/app/models"
)

// StudentData carries the identity-bearing fields of a reconciliation input
type StudentData struct {
	Name       string `json:"name" example:"Jane Doe"`
	Email      string `json:"email" example:"jane@school.edu"`
	RollNumber string `json:"rollNumber" example:"S001"`
}

// ClassContext carries the class/period a student is being bound to
type ClassContext struct {
	Department   string `json:"department" example:"CSE"`
	BatchYear    string `json:"batchYear" example:"2023-2027"`
	Section      string `json:"section" example:"A"`
	Year         string `json:"year" example:"2nd Year"`
	SemesterName string `json:"semesterName" example:"Sem 3"`
}

// ClassID derives the per-enrollment class key for this context
func (c ClassContext) ClassID() string {
	return models.BuildClassID(c.BatchYear, c.Year, c.SemesterName, c.Section)
}

// ReconcileRequest is the single entry point payload for creating or
// advancing a student's enrollment
type ReconcileRequest struct {
	Student StudentData       `json:"student" binding:"required"`
	Class   ClassContext      `json:"class" binding:"required"`
	Faculty FacultyRefRequest `json:"faculty" binding:"required"`
}

// ReconcileManyRequest carries a batch of reconciliation inputs
type ReconcileManyRequest struct {
	Items []ReconcileRequest `json:"items" binding:"required,min=1"`
}

// ClassRosterRequest identifies a class roster by its advisor and context
type ClassRosterRequest struct {
	Faculty FacultyRefRequest `json:"faculty" binding:"required"`
	Class   ClassContext      `json:"class" binding:"required"`
}

// ReconcileAction classifies the outcome of one reconciliation
type ReconcileAction string

const (
	ActionCreated   ReconcileAction = "CREATED"
	ActionUpdated   ReconcileAction = "UPDATED"
	ActionDuplicate ReconcileAction = "DUPLICATE"
	ActionRejected  ReconcileAction = "REJECTED"
)

// CohortTriple is the (batchYear, section, department) triple fixed at
// student creation
type CohortTriple struct {
	BatchYear  string `json:"batchYear"`
	Section    string `json:"section"`
	Department string `json:"department"`
}

// CohortConflict is the snapshot returned when a matched student belongs to
// a different cohort. A rejection is a normal outcome requiring operator
// review, not an error.
type CohortConflict struct {
	RollNumber string       `json:"rollNumber"`
	Email      string       `json:"email"`
	Existing   CohortTriple `json:"existing"`
	Requested  CohortTriple `json:"requested"`
}

// ReconcileResult reports the outcome of one Reconcile call
type ReconcileResult struct {
	Action   ReconcileAction       `json:"action"`
	Student  *models.StudentRecord `json:"student,omitempty"`
	Conflict *CohortConflict       `json:"conflict,omitempty"`
}

// ReconcileItemResult ties a batch outcome to its original input index
type ReconcileItemResult struct {
	Index    int                   `json:"index"`
	Action   ReconcileAction       `json:"action,omitempty"`
	Student  *models.StudentRecord `json:"student,omitempty"`
	Conflict *CohortConflict       `json:"conflict,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// ReconcileSummary counts batch outcomes per classification
type ReconcileSummary struct {
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Rejected int `json:"rejected"`
	Failed   int `json:"failed"`
}

// ReconcileManyResult is the full batch report: per-index outcomes with no
// silent drops, plus the summary counts
type ReconcileManyResult struct {
	Results []ReconcileItemResult `json:"results"`
	Summary ReconcileSummary      `json:"summary"`
}

// StudentWithEnrollment is the projection returned by the class-roster
// query: the student enriched with only the matching enrollment
type StudentWithEnrollment struct {
	Student    models.StudentRecord      `json:"student"`
	Enrollment models.SemesterEnrollment `json:"enrollment"`
}
