package domain

import "time"

// Role identifies the kind of account a user holds.
type Role string

const (
	RoleFitnessEnthusiast Role = "fitness-enthusiast"
	RoleTrainer           Role = "trainer"
	RoleLabPartner        Role = "lab-partner"
	RoleAdmin             Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleFitnessEnthusiast, RoleTrainer, RoleLabPartner, RoleAdmin:
		return true
	}
	return false
}

// RequiresApproval reports whether accounts of this role start pending.
func (r Role) RequiresApproval() bool {
	return r == RoleTrainer || r == RoleLabPartner
}

// ApprovalStatus tracks the approval workflow for trainers and lab partners.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// DefaultSuspensionReason is stored when an admin suspends without a reason.
const DefaultSuspensionReason = "Suspended by administrator"

// User is the account aggregate shared by every role.
type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Role           Role
	Phone          string
	Age            *int
	IsActive       bool
	IsApproved     bool
	ApprovalStatus ApprovalStatus
	ApprovedBy     *string
	ApprovedAt     *time.Time

	IsSuspended      bool
	SuspensionReason *string
	SuspendedAt      *time.Time

	// trainer profile
	Specialization    string
	YearsOfExperience *int

	// lab partner profile
	LaboratoryName    string
	LaboratoryAddress string
	OfferedTests      []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Approved reports whether the account passed the approval workflow.
func (u *User) Approved() bool {
	return u.IsApproved && u.ApprovalStatus == ApprovalApproved
}

// AccessDenial returns why the account may not act, or "" when it may.
// Suspension wins over the approval workflow, which wins over deactivation.
func (u *User) AccessDenial() string {
	switch {
	case u.IsSuspended:
		return "account suspended"
	case u.ApprovalStatus == ApprovalRejected:
		return "account registration was rejected"
	case u.ApprovalStatus == ApprovalPending:
		return "account pending approval"
	case !u.IsActive:
		return "account inactive"
	}
	return ""
}

// Offers reports whether testID is in the partner's offered list.
func (u *User) Offers(testID string) bool {
	for _, id := range u.OfferedTests {
		if id == testID {
			return true
		}
	}
	return false
}

// UserSummary is the public slice of a user embedded in booking listings.
type UserSummary struct {
	ID                string
	Name              string
	Email             string
	Phone             string
	Age               *int
	LaboratoryName    string
	LaboratoryAddress string
}
