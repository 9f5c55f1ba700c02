package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/fitlab-service/internal/observability"
	apperrors "github.com/spec-kit/fitlab-service/pkg/util/errorutil"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	StatusCode int            `json:"statusCode"`
	Message    string         `json:"message"`
	Success    bool           `json:"success"`
	Code       string         `json:"code"`
	Details    map[string]any `json:"details,omitempty"`
}

// RegisterMiddlewares attaches global middlewares. The request logger is outermost so it sees
// the status written by the error handler.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}
			domainErr := apperrors.ToDomainError(err)
			if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
				logger.Error("request failed",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.Error(domainErr),
				)
			}
			metrics.RecordError(observability.RouteTemplate(c), c.Method(), domainErr.Code)
			err = writeError(c, domainErr)
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, domainErr *apperrors.DomainError) error {
	response := ErrorResponse{
		StatusCode: domainErr.HTTPStatus,
		Message:    domainErr.Message,
		Success:    false,
		Code:       domainErr.Code,
	}
	if len(domainErr.Details) > 0 {
		response.Details = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(response)
}
