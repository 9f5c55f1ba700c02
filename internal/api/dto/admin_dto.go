package dto

// AdminLoginRequest payload for the admin login.
type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminResponse describes the authenticated admin.
type AdminResponse struct {
	Email string       `json:"email"`
	Name  string       `json:"name"`
	Role  string       `json:"role"`
	Auth  AuthResponse `json:"auth"`
}

// SuspendRequest toggles suspension on an account.
type SuspendRequest struct {
	Suspend *bool   `json:"suspend"`
	Reason  *string `json:"reason"`
}

// PaginationResponse is the page metadata of user listings.
type PaginationResponse struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalUsers  int  `json:"totalUsers"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// UserPageResponse is one page of users.
type UserPageResponse struct {
	Users      []UserResponse     `json:"users"`
	Pagination PaginationResponse `json:"pagination"`
}

// StatsResponse holds the dashboard counters.
type StatsResponse struct {
	TotalUsers         int `json:"totalUsers"`
	FitnessEnthusiasts int `json:"fitnessEnthusiasts"`
	Trainers           int `json:"trainers"`
	LabPartners        int `json:"labPartners"`
	PendingApprovals   int `json:"pendingApprovals"`
}

// MonthlyGrowthResponse is the signup count of one month.
type MonthlyGrowthResponse struct {
	Month              string `json:"month"`
	Year               int    `json:"year"`
	MonthNumber        int    `json:"monthNumber"`
	Total              int    `json:"total"`
	FitnessEnthusiasts int    `json:"fitnessEnthusiasts"`
	Trainers           int    `json:"trainers"`
	LabPartners        int    `json:"labPartners"`
}

// DistributionResponse is the user count for one role.
type DistributionResponse struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	Role  string `json:"role"`
}
