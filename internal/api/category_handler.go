package api

import (
	"github.com/gofiber/fiber/v2"

	"taskflow/internal/logger"
	"taskflow/internal/model"
	"taskflow/internal/service"
)

type CategoryHandler struct {
	categories *service.CategoryService
}

func (h *CategoryHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.categories.List(c.UserContext())
	if err != nil {
		return serviceErrorResponse(c, err, "")
	}
	return SuccessResponse(c, categories)
}

func (h *CategoryHandler) GetCategory(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return BadRequestResponse(c, "Invalid category ID")
	}

	category, err := h.categories.Get(c.UserContext(), id)
	if err != nil {
		return serviceErrorResponse(c, err, "Category not found")
	}
	return SuccessResponse(c, category)
}

func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req model.NewCategory
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return BadRequestResponse(c, "Invalid request body")
	}

	category, err := h.categories.Create(ctx, req)
	if err != nil {
		return serviceErrorResponse(c, err, "")
	}

	logger.InfoContext(ctx, "Category created", "category_id", category.ID, "name", category.Name)
	return CreatedResponse(c, category)
}

func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := parseID(c)
	if err != nil {
		return BadRequestResponse(c, "Invalid category ID")
	}

	var req model.CategoryUpdate
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return BadRequestResponse(c, "Invalid request body")
	}

	category, err := h.categories.Update(ctx, id, req)
	if err != nil {
		return serviceErrorResponse(c, err, "Category not found")
	}
	return SuccessResponse(c, category)
}

// DeleteCategory keeps the tasks and appointments that referenced the category.
func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := parseID(c)
	if err != nil {
		return BadRequestResponse(c, "Invalid category ID")
	}

	if err := h.categories.Delete(ctx, id); err != nil {
		return serviceErrorResponse(c, err, "Category not found")
	}

	logger.InfoContext(ctx, "Category deleted", "category_id", id)
	return SuccessResponse(c, fiber.Map{"deleted": true})
}
