// Package api serves the planner as a JSON REST API under /api.
package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"taskflow/internal/service"
)

// Services are the use cases the handlers call into.
type Services struct {
	Tasks        *service.TaskService
	Appointments *service.AppointmentService
	Categories   *service.CategoryService
}

type Options struct {
	CORSOrigins string
	// Location decides which calendar day "today" is.
	Location *time.Location
	// Now is replaced in tests.
	Now func() time.Time
	// Ping checks the database for /api/health. Optional.
	Ping func(ctx context.Context) error
}

// NewApp builds the fiber app with middleware and routes in place.
func NewApp(svc Services, opts Options) *fiber.App {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CORSOrigins == "" {
		opts.CORSOrigins = "*"
	}

	app := fiber.New(fiber.Config{
		AppName:               "taskflow",
		ErrorHandler:          ErrorHandler(),
		DisableStartupMessage: true,
		Immutable:             true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
	})

	// order matters: the logger needs the request id
	app.Use(RequestIDMiddleware())
	app.Use(LoggerMiddleware())
	app.Use(CorsMiddleware(opts.CORSOrigins))

	SetupRoutes(app, newHandlers(svc, opts))
	return app
}

type handlers struct {
	tasks        *TaskHandler
	appointments *AppointmentHandler
	categories   *CategoryHandler
	health       *HealthHandler
}

func newHandlers(svc Services, opts Options) *handlers {
	today := func() string {
		return opts.Now().In(opts.Location).Format("2006-01-02")
	}
	return &handlers{
		tasks:        &TaskHandler{tasks: svc.Tasks, today: today},
		appointments: &AppointmentHandler{appointments: svc.Appointments, today: today},
		categories:   &CategoryHandler{categories: svc.Categories},
		health:       &HealthHandler{ping: opts.Ping},
	}
}
