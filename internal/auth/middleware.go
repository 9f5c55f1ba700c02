package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fitlab-service/internal/domain"
	"github.com/spec-kit/fitlab-service/internal/repository"
	apperrors "github.com/spec-kit/fitlab-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	SubjectType domain.SubjectType
	User        *domain.User
	Admin       *AdminIdentity
	SessionID   string
}

// Role returns the effective role of the caller.
func (p *Principal) Role() domain.Role {
	if p == nil {
		return ""
	}
	if p.SubjectType == domain.SubjectTypeAdmin {
		return domain.RoleAdmin
	}
	if p.User != nil {
		return p.User.Role
	}
	return ""
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	users    repository.UserRepository
	sessions repository.SessionRepository
	admin    AdminVerifier
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, sessions repository.SessionRepository, admin AdminVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, sessions: sessions, admin: admin}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	principal := &Principal{SubjectType: claims.Subject, SessionID: claims.ID}

	switch claims.Subject {
	case domain.SubjectTypeUser:
		user, err := m.users.GetByID(c.UserContext(), claims.SubjectID)
		if err != nil {
			if apperrors.ToDomainError(err).Code == "NOT_FOUND" {
				return apperrors.NewUnauthorized("user not found")
			}
			return err
		}
		// tokens outlive state changes; pending registrants hold one before approval
		if reason := user.AccessDenial(); reason != "" {
			return apperrors.NewForbidden(reason)
		}
		principal.User = user
	case domain.SubjectTypeAdmin:
		identity, ok := m.admin.Identity(claims.SubjectID)
		if !ok {
			return apperrors.NewUnauthorized("unknown admin")
		}
		active, err := m.sessions.Exists(c.UserContext(), claims.ID)
		if err != nil {
			return err
		}
		if !active {
			return apperrors.NewUnauthorized("session expired")
		}
		principal.Admin = identity
	default:
		return apperrors.NewUnauthorized("unknown subject")
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
