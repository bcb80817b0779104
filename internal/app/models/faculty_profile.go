package models

import "time"

// FacultyProfile extends an Identity of role FACULTY with position and
// department details plus a denormalized summary of the current class
// assignment used for fast display. The assignment ledger is the source of
// truth for that summary; see the repair pass in the services layer.
type FacultyProfile struct {
	ID                       int64          `json:"id" db:"id"`
	IdentityID               int64          `json:"identityId" db:"identity_id"`
	Position                 string         `json:"position" db:"position"`
	Department               string         `json:"department" db:"department"` // must equal the owning identity's department
	Status                   IdentityStatus `json:"status" db:"status"`
	CurrentAssignmentSummary *string        `json:"currentAssignmentSummary,omitempty" db:"current_assignment_summary"`
	IsClassAdvisor           bool           `json:"isClassAdvisor" db:"is_class_advisor"`
	CreatedAt                time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt                time.Time      `json:"updatedAt" db:"updated_at"`

	Identity *Identity `json:"identity,omitempty"` // relation, no db tag
}

// IsActive reports whether the profile may receive new assignments
func (p *FacultyProfile) IsActive() bool {
	return p.Status == IdentityActive
}
