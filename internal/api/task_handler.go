package api

import (
	"github.com/gofiber/fiber/v2"

	"taskflow/internal/logger"
	"taskflow/internal/model"
	"taskflow/internal/service"
)

type TaskHandler struct {
	tasks *service.TaskService
	today func() string
}

func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	ctx := c.UserContext()

	filter, err := parseTaskFilter(c)
	if err != nil {
		logger.WarnContext(ctx, "Invalid task filter", "error", err)
		return BadRequestResponse(c, err.Error())
	}

	tasks, err := h.tasks.List(ctx, filter)
	if err != nil {
		return serviceErrorResponse(c, err, "")
	}
	return SuccessResponse(c, tasks)
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := parseID(c)
	if err != nil {
		logger.WarnContext(ctx, "Invalid task ID", "task_id", c.Params("id"))
		return BadRequestResponse(c, "Invalid task ID")
	}

	task, err := h.tasks.Get(ctx, id)
	if err != nil {
		return serviceErrorResponse(c, err, "Task not found")
	}
	return SuccessResponse(c, task)
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req model.NewTask
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return BadRequestResponse(c, "Invalid request body")
	}

	task, err := h.tasks.Create(ctx, req)
	if err != nil {
		return serviceErrorResponse(c, err, "")
	}

	logger.InfoContext(ctx, "Task created", "task_id", task.ID)
	return CreatedResponse(c, task)
}

func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := parseID(c)
	if err != nil {
		logger.WarnContext(ctx, "Invalid task ID", "task_id", c.Params("id"))
		return BadRequestResponse(c, "Invalid task ID")
	}

	var req model.TaskUpdate
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return BadRequestResponse(c, "Invalid request body")
	}

	task, err := h.tasks.Update(ctx, id, req)
	if err != nil {
		return serviceErrorResponse(c, err, "Task not found")
	}

	logger.InfoContext(ctx, "Task updated", "task_id", id)
	return SuccessResponse(c, task)
}

func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := parseID(c)
	if err != nil {
		logger.WarnContext(ctx, "Invalid task ID", "task_id", c.Params("id"))
		return BadRequestResponse(c, "Invalid task ID")
	}

	if err := h.tasks.Delete(ctx, id); err != nil {
		return serviceErrorResponse(c, err, "Task not found")
	}

	logger.InfoContext(ctx, "Task deleted", "task_id", id)
	return SuccessResponse(c, fiber.Map{"deleted": true})
}

func (h *TaskHandler) SearchTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return serviceErrorResponse(c, err, "")
	}
	return SuccessResponse(c, tasks)
}

// TodayTasks serves the "today" tab. ?date= overrides the server's calendar day.
func (h *TaskHandler) TodayTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.Today(c.UserContext(), c.Query("date", h.today()))
	if err != nil {
		return serviceErrorResponse(c, err, "")
	}
	return SuccessResponse(c, tasks)
}

func (h *TaskHandler) UpcomingTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.Upcoming(c.UserContext(), c.Query("date", h.today()))
	if err != nil {
		return serviceErrorResponse(c, err, "")
	}
	return SuccessResponse(c, tasks)
}

func (h *TaskHandler) CompletedTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.Completed(c.UserContext())
	if err != nil {
		return serviceErrorResponse(c, err, "")
	}
	return SuccessResponse(c, tasks)
}
