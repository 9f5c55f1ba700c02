package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fitlab-service/internal/api/dto"
	"github.com/spec-kit/fitlab-service/internal/domain"
	"github.com/spec-kit/fitlab-service/internal/service"
	apperrors "github.com/spec-kit/fitlab-service/pkg/util/errorutil"
)

// AdminHandler exposes the admin console endpoints.
type AdminHandler struct {
	auth      *service.AuthService
	approvals *service.ApprovalService
	reporting *service.ReportingService
	now       func() time.Time
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService, approvals *service.ApprovalService, reporting *service.ReportingService) *AdminHandler {
	return &AdminHandler{auth: authService, approvals: approvals, reporting: reporting, now: time.Now}
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	identity, token, err := h.auth.AdminLogin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return ok(c, dto.AdminResponse{
		Email: identity.Email,
		Name:  identity.Name,
		Role:  string(domain.RoleAdmin),
		Auth:  authResponse(token),
	}, "Admin logged in successfully")
}

// Logout handles POST /api/admin/logout.
func (h *AdminHandler) Logout(c *fiber.Ctx) error {
	principal, err := adminPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.auth.AdminLogout(c.UserContext(), principal.SessionID); err != nil {
		return err
	}
	return ok(c, fiber.Map{}, "Admin logged out successfully")
}

// PendingApprovals handles GET /api/admin/pending-approvals.
func (h *AdminHandler) PendingApprovals(c *fiber.Ctx) error {
	users, err := h.approvals.ListPendingApprovals(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, userResponses(users), "Pending approvals fetched successfully")
}

// Approve handles POST /api/admin/approve/:userId.
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	principal, err := adminPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.approvals.Approve(c.UserContext(), c.Params("userId"), principal.Admin.Email)
	if err != nil {
		return err
	}
	return ok(c, userResponse(user), "User approved successfully")
}

// Reject handles POST /api/admin/reject/:userId.
func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	principal, err := adminPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.approvals.Reject(c.UserContext(), c.Params("userId"), principal.Admin.Email)
	if err != nil {
		return err
	}
	return ok(c, userResponse(user), "User rejected successfully")
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, err := h.approvals.ListUsers(c.UserContext(), service.UserListQuery{
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 10),
		Search: c.Query("search"),
		Role:   c.Query("userType"),
	})
	if err != nil {
		return err
	}
	return ok(c, dto.UserPageResponse{
		Users: userResponses(page.Users),
		Pagination: dto.PaginationResponse{
			CurrentPage: page.Pagination.CurrentPage,
			TotalPages:  page.Pagination.TotalPages,
			TotalUsers:  page.Pagination.TotalUsers,
			HasNextPage: page.Pagination.HasNextPage,
			HasPrevPage: page.Pagination.HasPrevPage,
		},
	}, "Users fetched successfully")
}

// Suspend handles PATCH /api/admin/users/:userId/suspend.
func (h *AdminHandler) Suspend(c *fiber.Ctx) error {
	principal, err := adminPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SuspendRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Suspend == nil {
		return apperrors.NewValidationError("suspend flag required", nil)
	}
	user, err := h.approvals.ToggleSuspension(c.UserContext(), c.Params("userId"), *req.Suspend, req.Reason, principal.Admin.Email)
	if err != nil {
		return err
	}
	message := "User unsuspended successfully"
	if user.IsSuspended {
		message = "User suspended successfully"
	}
	return ok(c, userResponse(user), message)
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.reporting.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, dto.StatsResponse{
		TotalUsers:         stats.TotalUsers,
		FitnessEnthusiasts: stats.FitnessEnthusiasts,
		Trainers:           stats.Trainers,
		LabPartners:        stats.LabPartners,
		PendingApprovals:   stats.PendingApprovals,
	}, "Stats fetched successfully")
}

// MonthlyGrowth handles GET /api/admin/analytics/monthly-growth.
func (h *AdminHandler) MonthlyGrowth(c *fiber.Ctx) error {
	growth, err := h.reporting.MonthlyGrowth(c.UserContext(), h.now())
	if err != nil {
		return err
	}
	items := make([]dto.MonthlyGrowthResponse, 0, len(growth))
	for _, g := range growth {
		items = append(items, dto.MonthlyGrowthResponse{
			Month:              g.Month,
			Year:               g.Year,
			MonthNumber:        g.MonthNumber,
			Total:              g.Total,
			FitnessEnthusiasts: g.FitnessEnthusiasts,
			Trainers:           g.Trainers,
			LabPartners:        g.LabPartners,
		})
	}
	return ok(c, items, "Monthly growth fetched successfully")
}

// UserDistribution handles GET /api/admin/analytics/user-distribution.
func (h *AdminHandler) UserDistribution(c *fiber.Ctx) error {
	dist, err := h.reporting.UserDistribution(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.DistributionResponse, 0, len(dist))
	for _, d := range dist {
		items = append(items, dto.DistributionResponse{Label: d.Label, Count: d.Count, Role: string(d.Role)})
	}
	return ok(c, items, "User distribution fetched successfully")
}
