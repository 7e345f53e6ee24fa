package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"

	"taskflow/internal/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware reuses the caller's request id or assigns a new one and
// puts it on the request context for logging.
func RequestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDHeader, requestID)
		c.SetUserContext(logger.ContextWithRequestID(c.UserContext(), requestID))
		c.Locals("request_id", requestID)

		return c.Next()
	}
}

// LoggerMiddleware logs one line per completed request.
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		if err != nil {
			// let the error handler write the status before it is logged
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		logFunc := logger.InfoContext
		if status >= 500 {
			logFunc = logger.ErrorContext
		} else if status >= 400 {
			logFunc = logger.WarnContext
		}

		logFunc(c.UserContext(), "Request completed",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start).String(),
			"bytes", len(c.Response().Body()),
		)

		return nil
	}
}

// CorsMiddleware allows credentialed requests from the configured origins.
// Credentials cannot be combined with the "*" wildcard.
func CorsMiddleware(origins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS,HEAD",
		AllowHeaders:     "Origin,Content-Type,Accept,X-Request-ID",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: origins != "*",
	})
}

// ErrorHandler turns errors that escaped the handlers into the JSON envelope.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		errCode := ErrCodeInternalError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
			switch code {
			case fiber.StatusBadRequest:
				errCode = ErrCodeBadRequest
			case fiber.StatusNotFound:
				errCode = ErrCodeNotFound
			default:
				if code < 500 {
					errCode = ErrCodeBadRequest
				}
			}
		}

		if code >= 500 {
			logger.ErrorContext(c.UserContext(), "Unhandled error", "error", err)
		}

		return ErrorResponse(c, code, errCode, message, nil)
	}
}
