package models

import (
	"time"
)

// RoleType defines the identity role
type RoleType string

const (
	RoleAdmin     RoleType = "ADMIN"
	RolePrincipal RoleType = "PRINCIPAL"
	RoleHOD       RoleType = "HOD"
	RoleFaculty   RoleType = "FACULTY"
	RoleStudent   RoleType = "STUDENT"
)

// IdentityStatus defines the lifecycle status of an identity
type IdentityStatus string

const (
	IdentityActive    IdentityStatus = "ACTIVE"
	IdentityInactive  IdentityStatus = "INACTIVE"
	IdentitySuspended IdentityStatus = "SUSPENDED"
)

// Identity defines the account model based on the 'identities' table.
// Email is globally unique across all identities regardless of role.
type Identity struct {
	ID         int64          `json:"id" db:"id"`
	Email      string         `json:"email" db:"email"`
	Password   string         `json:"-" db:"password"`
	FullName   string         `json:"fullName" db:"full_name"`
	Role       RoleType       `json:"role" db:"role"`
	Department *string        `json:"department,omitempty" db:"department"` // nil for PRINCIPAL/ADMIN
	Status     IdentityStatus `json:"status" db:"status"`
	ExpiryDate *time.Time     `json:"expiryDate,omitempty" db:"expiry_date"` // meaningful only for HOD
	CreatedAt  time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time      `json:"updatedAt" db:"updated_at"`
}

// IsActive reports whether the identity may act in the system
func (i *Identity) IsActive() bool {
	return i.Status == IdentityActive
}

// FacultyRefKind tags which collection a faculty reference points into
type FacultyRefKind string

const (
	RefIdentity FacultyRefKind = "IDENTITY"
	RefProfile  FacultyRefKind = "PROFILE"
)

// FacultyRef is a tagged reference to a faculty member. Callers may hold
// either an identity id or a profile id; every operation normalizes the
// reference to a canonical profile before running invariant checks.
type FacultyRef struct {
	Kind FacultyRefKind `json:"kind"`
	ID   int64          `json:"id"`
}

// ProfileRef builds a FacultyRef pointing at a faculty profile id
func ProfileRef(id int64) FacultyRef {
	return FacultyRef{Kind: RefProfile, ID: id}
}

// IdentityRef builds a FacultyRef pointing at an identity id
func IdentityRef(id int64) FacultyRef {
	return FacultyRef{Kind: RefIdentity, ID: id}
}
