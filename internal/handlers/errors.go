package handlers

import (
	"errors"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/miaout11/forum-express-grading/internal/services"
	"github.com/miaout11/forum-express-grading/pkg/logger"
)

type kindResponse struct {
	status int
	name   string
}

var kindStatus = map[error]kindResponse{
	services.ErrValidation:     {fiber.StatusBadRequest, "validation_error"},
	services.ErrAuthentication: {fiber.StatusUnauthorized, "authentication_error"},
	services.ErrAuthorization:  {fiber.StatusForbidden, "authorization_error"},
	services.ErrNotFound:       {fiber.StatusNotFound, "not_found"},
	services.ErrConflict:       {fiber.StatusConflict, "conflict"},
	services.ErrPrecondition:   {fiber.StatusUnprocessableEntity, "precondition_failed"},
}

// ErrorHandler is the fiber error boundary. Typed service errors map to their
// status; anything unexpected is logged, reported and answered with 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if ks, ok := kindStatus[services.KindOf(err)]; ok {
		return c.Status(ks.status).JSON(fiber.Map{"message": err.Error(), "error": ks.name})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message, "error": "request_error"})
	}

	logger.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("method", c.Method())
		scope.SetTag("path", c.Path())
		sentry.CaptureException(err)
	})

	code := fiber.StatusInternalServerError
	if fe != nil {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"message": "Internal Server Error", "error": "internal_error"})
}
