package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/fitlab-service/internal/auth"
	"github.com/spec-kit/fitlab-service/internal/config"
	"github.com/spec-kit/fitlab-service/internal/domain"
	"github.com/spec-kit/fitlab-service/internal/repository"
	apperrors "github.com/spec-kit/fitlab-service/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	admin      auth.AdminVerifier
	tokenMgr   *auth.TokenManager
	bcryptCost int
	adminCfg   config.AdminConfig
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
	Admin       auth.AdminVerifier
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	admin := deps.Admin
	if admin == nil {
		admin = auth.NewAdminVerifier(cfg.Admin)
	}
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.SessionRepo,
		admin:      admin,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		adminCfg:   cfg.Admin,
		logger:     nopLogger(deps.Logger),
	}
}

// RegisterInput describes a self-service signup.
type RegisterInput struct {
	Name              string
	Email             string
	Password          string
	Role              domain.Role
	Phone             string
	Age               *int
	Specialization    string
	YearsOfExperience *int
	LaboratoryName    string
	LaboratoryAddress string
}

// Register creates an account. Trainers and lab partners start pending approval.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, auth.IssuedToken, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateRegistration(input); err != nil {
		return nil, auth.IssuedToken{}, err
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, auth.IssuedToken{}, apperrors.NewConflict("email already registered", nil)
	} else if !isNoRows(err) {
		return nil, auth.IssuedToken{}, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, auth.IssuedToken{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:              input.Name,
		Email:             input.Email,
		PasswordHash:      hash,
		Role:              input.Role,
		Phone:             strings.TrimSpace(input.Phone),
		Age:               input.Age,
		IsActive:          true,
		IsApproved:        true,
		ApprovalStatus:    domain.ApprovalApproved,
		Specialization:    strings.TrimSpace(input.Specialization),
		YearsOfExperience: input.YearsOfExperience,
		LaboratoryName:    strings.TrimSpace(input.LaboratoryName),
		LaboratoryAddress: strings.TrimSpace(input.LaboratoryAddress),
	}
	if input.Role.RequiresApproval() {
		user.IsApproved = false
		user.ApprovalStatus = domain.ApprovalPending
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, auth.IssuedToken{}, apperrors.NewConflict("email already registered", nil)
		}
		return nil, auth.IssuedToken{}, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	token, err := s.tokenMgr.GenerateToken(user.ID, domain.SubjectTypeUser, user.Role, 0)
	if err != nil {
		return nil, auth.IssuedToken{}, apperrors.NewInternalError(err)
	}
	return user, token, nil
}

func validateRegistration(input RegisterInput) error {
	details := map[string]any{}
	if input.Name == "" {
		details["name"] = "required"
	}
	if _, err := mail.ParseAddress(input.Email); input.Email == "" || err != nil {
		details["email"] = "a valid email is required"
	}
	if len(input.Password) < auth.MinPasswordLength {
		details["password"] = fmt.Sprintf("must be at least %d characters", auth.MinPasswordLength)
	}
	switch input.Role {
	case domain.RoleFitnessEnthusiast, domain.RoleTrainer, domain.RoleLabPartner:
	default:
		details["userType"] = "must be fitness-enthusiast, trainer or lab-partner"
	}
	if input.Role == domain.RoleLabPartner && strings.TrimSpace(input.LaboratoryName) == "" {
		details["laboratoryName"] = "required for lab partners"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid registration", details)
	}
	return nil
}

// Login authenticates an account holder.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, auth.IssuedToken, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if isNoRows(err) {
			return nil, auth.IssuedToken{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, auth.IssuedToken{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, auth.IssuedToken{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, auth.IssuedToken{}, apperrors.NewInternalError(err)
	}

	if reason := user.AccessDenial(); reason != "" {
		return nil, auth.IssuedToken{}, apperrors.NewForbidden(reason)
	}

	token, err := s.tokenMgr.GenerateToken(user.ID, domain.SubjectTypeUser, user.Role, 0)
	if err != nil {
		return nil, auth.IssuedToken{}, apperrors.NewInternalError(err)
	}
	return user, token, nil
}

// AdminLogin authenticates the configured admin and records a revocable session.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*auth.AdminIdentity, auth.IssuedToken, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if key == "" || password == "" {
		return nil, auth.IssuedToken{}, apperrors.NewValidationError("email and password required", nil)
	}

	maxAttempts := int64(s.adminCfg.MaxLoginAttempts)
	if maxAttempts > 0 {
		failures, err := s.sessions.LoginFailures(ctx, key)
		if err != nil {
			return nil, auth.IssuedToken{}, err
		}
		if failures >= maxAttempts {
			return nil, auth.IssuedToken{}, apperrors.NewTooManyRequests("too many failed login attempts, try again later")
		}
	}

	identity, ok := s.admin.Verify(key, password)
	if !ok {
		if _, err := s.sessions.IncrementLoginFailures(ctx, key, s.adminCfg.LoginWindow()); err != nil {
			s.logger.Warn("record admin login failure", zap.Error(err))
		}
		return nil, auth.IssuedToken{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := s.sessions.ResetLoginFailures(ctx, key); err != nil {
		s.logger.Warn("reset admin login failures", zap.Error(err))
	}

	token, err := s.tokenMgr.GenerateToken(identity.Email, domain.SubjectTypeAdmin, domain.RoleAdmin, s.adminCfg.SessionTTL())
	if err != nil {
		return nil, auth.IssuedToken{}, apperrors.NewInternalError(err)
	}
	session := &domain.Session{
		ID:        token.ID,
		SubjectID: identity.Email,
		Subject:   domain.SubjectTypeAdmin,
		IssuedAt:  time.Now(),
		ExpiresAt: token.ExpiresAt,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, auth.IssuedToken{}, err
	}
	s.logger.Info("admin logged in", zap.String("session_id", session.ID))
	return identity, token, nil
}

// AdminLogout revokes the admin session.
func (s *AuthService) AdminLogout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// AdminVerifier exposes the configured admin verifier for middleware usage.
func (s *AuthService) AdminVerifier() auth.AdminVerifier {
	return s.admin
}
