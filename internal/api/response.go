package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"taskflow/internal/logger"
	"taskflow/internal/service"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeUnavailable   = "SERVICE_UNAVAILABLE"
)

func SuccessResponse(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Data:    data,
	})
}

func CreatedResponse(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Data:    data,
	})
}

func ErrorResponse(c *fiber.Ctx, statusCode int, code, message string, details any) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func ValidationErrorResponse(c *fiber.Ctx, details any) error {
	return ErrorResponse(c, fiber.StatusBadRequest, ErrCodeValidation, "Validation failed", details)
}

func BadRequestResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, fiber.StatusBadRequest, ErrCodeBadRequest, message, nil)
}

func NotFoundResponse(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return ErrorResponse(c, fiber.StatusNotFound, ErrCodeNotFound, message, nil)
}

func InternalServerErrorResponse(c *fiber.Ctx) error {
	return ErrorResponse(c, fiber.StatusInternalServerError, ErrCodeInternalError, "Internal server error", nil)
}

// serviceErrorResponse maps a service error to its HTTP reply. Persistence
// failures are logged and reported without detail.
func serviceErrorResponse(c *fiber.Ctx, err error, notFound string) error {
	ctx := c.UserContext()

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		logger.WarnContext(ctx, "Validation failed", "errors", verr.Fields)
		return ValidationErrorResponse(c, verr.Fields)
	case errors.Is(err, service.ErrNotFound):
		return NotFoundResponse(c, notFound)
	default:
		logger.ErrorContext(ctx, "Request failed", "path", c.Path(), "error", err)
		return InternalServerErrorResponse(c)
	}
}
