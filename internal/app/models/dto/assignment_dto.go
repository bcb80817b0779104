package dto

import (
	"github.com/oguzk/acadcore/internal/app/models"
)

// FacultyRefRequest identifies a faculty member by either identity or
// profile id. Kind defaults to PROFILE when omitted.
type FacultyRefRequest struct {
	Kind string `json:"kind,omitempty" binding:"omitempty,oneof=IDENTITY PROFILE" example:"PROFILE"`
	ID   int64  `json:"id" binding:"required" example:"12"`
}

// ToRef converts the request into a models.FacultyRef
func (r FacultyRefRequest) ToRef() models.FacultyRef {
	if r.Kind == string(models.RefIdentity) {
		return models.IdentityRef(r.ID)
	}
	return models.ProfileRef(r.ID)
}

// AssignAdvisorRequest carries a class-advisor reassignment
type AssignAdvisorRequest struct {
	Faculty    FacultyRefRequest `json:"faculty" binding:"required"`
	Department string            `json:"department" binding:"required" example:"CSE"`
	Batch      string            `json:"batch" binding:"required" example:"2023-2027"`
	Year       string            `json:"year" binding:"required" example:"2nd Year"`
	Semester   int               `json:"semester" binding:"required" example:"3"`
	Section    string            `json:"section" binding:"required" example:"A"`
	Notes      string            `json:"notes,omitempty" example:"Mid-year reassignment"`
}

// AssignAdvisorResult reports the outcome of a reassignment. The replaced
// advisor (the prior holder of the class) is reported separately from the
// faculty's own prior class so callers can notify the right people.
type AssignAdvisorResult struct {
	Assignment               *models.ClassAssignment  `json:"assignment"`
	Deactivated              []models.ClassAssignment `json:"deactivated"`
	ReplacedAdvisorFacultyID *int64                   `json:"replacedAdvisorFacultyId,omitempty"`
}

// DeactivateAssignmentRequest carries an explicit deactivation
type DeactivateAssignmentRequest struct {
	Reason string `json:"reason,omitempty" example:"advisor on leave"`
}

// RepairSummariesResult reports the advisor-summary rebuild pass
type RepairSummariesResult struct {
	ActiveAssignments  int `json:"activeAssignments"`
	ProfilesUpdated    int `json:"profilesUpdated"`
	ProfilesCleared    int `json:"profilesCleared"`
	CorruptionDetected int `json:"corruptionDetected"`
}
