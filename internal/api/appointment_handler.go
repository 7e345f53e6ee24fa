package api

import (
	"github.com/gofiber/fiber/v2"

	"taskflow/internal/logger"
	"taskflow/internal/model"
	"taskflow/internal/service"
)

type AppointmentHandler struct {
	appointments *service.AppointmentService
	today        func() string
}

func (h *AppointmentHandler) ListAppointments(c *fiber.Ctx) error {
	ctx := c.UserContext()

	filter, err := parseAppointmentFilter(c)
	if err != nil {
		logger.WarnContext(ctx, "Invalid appointment filter", "error", err)
		return BadRequestResponse(c, err.Error())
	}

	appointments, err := h.appointments.List(ctx, filter)
	if err != nil {
		return serviceErrorResponse(c, err, "")
	}
	return SuccessResponse(c, appointments)
}

func (h *AppointmentHandler) GetAppointment(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := parseID(c)
	if err != nil {
		logger.WarnContext(ctx, "Invalid appointment ID", "appointment_id", c.Params("id"))
		return BadRequestResponse(c, "Invalid appointment ID")
	}

	appointment, err := h.appointments.Get(ctx, id)
	if err != nil {
		return serviceErrorResponse(c, err, "Appointment not found")
	}
	return SuccessResponse(c, appointment)
}

func (h *AppointmentHandler) CreateAppointment(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req model.NewAppointment
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return BadRequestResponse(c, "Invalid request body")
	}

	appointment, err := h.appointments.Create(ctx, req)
	if err != nil {
		return serviceErrorResponse(c, err, "")
	}

	logger.InfoContext(ctx, "Appointment created", "appointment_id", appointment.ID)
	return CreatedResponse(c, appointment)
}

func (h *AppointmentHandler) UpdateAppointment(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := parseID(c)
	if err != nil {
		logger.WarnContext(ctx, "Invalid appointment ID", "appointment_id", c.Params("id"))
		return BadRequestResponse(c, "Invalid appointment ID")
	}

	var req model.AppointmentUpdate
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return BadRequestResponse(c, "Invalid request body")
	}

	appointment, err := h.appointments.Update(ctx, id, req)
	if err != nil {
		return serviceErrorResponse(c, err, "Appointment not found")
	}

	logger.InfoContext(ctx, "Appointment updated", "appointment_id", id)
	return SuccessResponse(c, appointment)
}

func (h *AppointmentHandler) DeleteAppointment(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := parseID(c)
	if err != nil {
		logger.WarnContext(ctx, "Invalid appointment ID", "appointment_id", c.Params("id"))
		return BadRequestResponse(c, "Invalid appointment ID")
	}

	if err := h.appointments.Delete(ctx, id); err != nil {
		return serviceErrorResponse(c, err, "Appointment not found")
	}

	logger.InfoContext(ctx, "Appointment deleted", "appointment_id", id)
	return SuccessResponse(c, fiber.Map{"deleted": true})
}

func (h *AppointmentHandler) SearchAppointments(c *fiber.Ctx) error {
	appointments, err := h.appointments.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return serviceErrorResponse(c, err, "")
	}
	return SuccessResponse(c, appointments)
}

func (h *AppointmentHandler) TodayAppointments(c *fiber.Ctx) error {
	appointments, err := h.appointments.Today(c.UserContext(), c.Query("date", h.today()))
	if err != nil {
		return serviceErrorResponse(c, err, "")
	}
	return SuccessResponse(c, appointments)
}
