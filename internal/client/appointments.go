package client

import (
	"context"
	"net/http"
	"net/url"

	"taskflow/internal/model"
)

const (
	appointmentsPath = "/api/appointments"
	appointmentsTag  = "appointments"
)

func (c *Client) Appointments(ctx context.Context, filter model.AppointmentFilter) ([]model.Appointment, error) {
	return get[[]model.Appointment](ctx, c, appointmentsPath, filter.Query(), appointmentsTag)
}

func (c *Client) Appointment(ctx context.Context, id uint) (*model.Appointment, error) {
	return get[*model.Appointment](ctx, c, idPath(appointmentsPath, id), nil, itemTag(appointmentsTag, id), appointmentsTag)
}

func (c *Client) SearchAppointments(ctx context.Context, text string) ([]model.Appointment, error) {
	return get[[]model.Appointment](ctx, c, appointmentsPath+"/search", url.Values{"q": {text}}, appointmentsTag)
}

func (c *Client) TodayAppointments(ctx context.Context) ([]model.Appointment, error) {
	return get[[]model.Appointment](ctx, c, appointmentsPath+"/today", nil, appointmentsTag)
}

func (c *Client) CreateAppointment(ctx context.Context, appointment model.NewAppointment) (*model.Appointment, error) {
	return mutate[*model.Appointment](ctx, c, http.MethodPost, appointmentsPath, appointment, appointmentsTag)
}

func (c *Client) UpdateAppointment(ctx context.Context, id uint, update model.AppointmentUpdate) (*model.Appointment, error) {
	return mutate[*model.Appointment](ctx, c, http.MethodPatch, idPath(appointmentsPath, id), update, appointmentsTag, itemTag(appointmentsTag, id))
}

func (c *Client) DeleteAppointment(ctx context.Context, id uint) error {
	_, err := mutate[map[string]bool](ctx, c, http.MethodDelete, idPath(appointmentsPath, id), nil, appointmentsTag, itemTag(appointmentsTag, id))
	return err
}
