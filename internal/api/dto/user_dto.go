package dto

import "time"

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Password          string `json:"password"`
	UserType          string `json:"userType"`
	Phone             string `json:"phone"`
	Age               *int   `json:"age"`
	Specialization    string `json:"specialization"`
	YearsOfExperience *int   `json:"yearsOfExperience"`
	LaboratoryName    string `json:"laboratoryName"`
	LaboratoryAddress string `json:"laboratoryAddress"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard token response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserResponse is the public representation of an account. Credentials are never included.
type UserResponse struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	UserType          string     `json:"userType"`
	Phone             string     `json:"phone,omitempty"`
	Age               *int       `json:"age,omitempty"`
	IsActive          bool       `json:"isActive"`
	IsApproved        bool       `json:"isApproved"`
	ApprovalStatus    string     `json:"approvalStatus"`
	ApprovedBy        *string    `json:"approvedBy,omitempty"`
	ApprovedAt        *time.Time `json:"approvedAt,omitempty"`
	IsSuspended       bool       `json:"isSuspended"`
	SuspensionReason  *string    `json:"suspensionReason,omitempty"`
	SuspendedAt       *time.Time `json:"suspendedAt,omitempty"`
	Specialization    string     `json:"specialization,omitempty"`
	YearsOfExperience *int       `json:"yearsOfExperience,omitempty"`
	LaboratoryName    string     `json:"laboratoryName,omitempty"`
	LaboratoryAddress string     `json:"laboratoryAddress,omitempty"`
	OfferedTests      []string   `json:"offeredTests,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// AccountResponse pairs a user with an issued token.
type AccountResponse struct {
	User UserResponse `json:"user"`
	Auth AuthResponse `json:"auth"`
}

// PartyResponse is the counterpart summary embedded in booking listings.
type PartyResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone,omitempty"`
	Age               *int   `json:"age,omitempty"`
	LaboratoryName    string `json:"laboratoryName,omitempty"`
	LaboratoryAddress string `json:"laboratoryAddress,omitempty"`
}
