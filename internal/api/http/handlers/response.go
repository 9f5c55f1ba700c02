package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fitlab-service/internal/auth"
	"github.com/spec-kit/fitlab-service/internal/domain"
	apperrors "github.com/spec-kit/fitlab-service/pkg/util/errorutil"
)

// Envelope wraps every successful response body.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func respond(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < fiber.StatusBadRequest,
	})
}

func ok(c *fiber.Ctx, data any, message string) error {
	return respond(c, fiber.StatusOK, data, message)
}

func created(c *fiber.Ctx, data any, message string) error {
	return respond(c, fiber.StatusCreated, data, message)
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func userPrincipal(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal.User, nil
}

func adminPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return nil, apperrors.NewUnauthorized("admin authentication required")
	}
	return principal, nil
}
