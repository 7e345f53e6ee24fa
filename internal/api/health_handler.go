package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"taskflow/internal/logger"
)

type HealthHandler struct {
	ping func(ctx context.Context) error
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			logger.ErrorContext(ctx, "Health check failed", "error", err)
			return ErrorResponse(c, fiber.StatusServiceUnavailable, ErrCodeUnavailable, "Database unavailable", nil)
		}
	}
	return SuccessResponse(c, fiber.Map{"status": "ok"})
}
