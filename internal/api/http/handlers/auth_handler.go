package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fitlab-service/internal/api/dto"
	"github.com/spec-kit/fitlab-service/internal/domain"
	"github.com/spec-kit/fitlab-service/internal/service"
	apperrors "github.com/spec-kit/fitlab-service/pkg/util/errorutil"
)

// AuthHandler exposes signup and login for account holders.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, token, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:              req.Name,
		Email:             req.Email,
		Password:          req.Password,
		Role:              domain.Role(req.UserType),
		Phone:             req.Phone,
		Age:               req.Age,
		Specialization:    req.Specialization,
		YearsOfExperience: req.YearsOfExperience,
		LaboratoryName:    req.LaboratoryName,
		LaboratoryAddress: req.LaboratoryAddress,
	})
	if err != nil {
		return err
	}

	message := "Registration successful"
	if user.Role.RequiresApproval() {
		message = "Registration successful, your account is pending admin approval"
	}
	return created(c, dto.AccountResponse{User: userResponse(user), Auth: authResponse(token)}, message)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return ok(c, dto.AccountResponse{User: userResponse(user), Auth: authResponse(token)}, "Login successful")
}
