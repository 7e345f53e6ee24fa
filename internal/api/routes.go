package api

import "github.com/gofiber/fiber/v2"

func SetupRoutes(app *fiber.App, h *handlers) {
	api := app.Group("/api")

	api.Get("/health", h.health.Check)

	setupTaskRoutes(api, h.tasks)
	setupAppointmentRoutes(api, h.appointments)
	setupCategoryRoutes(api, h.categories)
}

// fixed paths are registered before /:id so they are not read as ids
func setupTaskRoutes(api fiber.Router, h *TaskHandler) {
	tasks := api.Group("/tasks")
	tasks.Get("/", h.ListTasks)
	tasks.Post("/", h.CreateTask)
	tasks.Get("/search", h.SearchTasks)
	tasks.Get("/today", h.TodayTasks)
	tasks.Get("/upcoming", h.UpcomingTasks)
	tasks.Get("/completed", h.CompletedTasks)
	tasks.Get("/:id", h.GetTask)
	tasks.Patch("/:id", h.UpdateTask)
	tasks.Delete("/:id", h.DeleteTask)
}

func setupAppointmentRoutes(api fiber.Router, h *AppointmentHandler) {
	appointments := api.Group("/appointments")
	appointments.Get("/", h.ListAppointments)
	appointments.Post("/", h.CreateAppointment)
	appointments.Get("/search", h.SearchAppointments)
	appointments.Get("/today", h.TodayAppointments)
	appointments.Get("/:id", h.GetAppointment)
	appointments.Patch("/:id", h.UpdateAppointment)
	appointments.Delete("/:id", h.DeleteAppointment)
}

func setupCategoryRoutes(api fiber.Router, h *CategoryHandler) {
	categories := api.Group("/categories")
	categories.Get("/", h.ListCategories)
	categories.Post("/", h.CreateCategory)
	categories.Get("/:id", h.GetCategory)
	categories.Patch("/:id", h.UpdateCategory)
	categories.Delete("/:id", h.DeleteCategory)
}
