package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskflow/internal/model"
)

// AppointmentRepository handles CRUD for appointments.
type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) List(ctx context.Context, filter model.AppointmentFilter) ([]model.Appointment, error) {
	query := applyFilter(r.db.WithContext(ctx).Model(&model.Appointment{}), commonFilter{
		category:   filter.Category,
		categoryID: filter.CategoryID,
		priority:   filter.Priority,
		dateFrom:   filter.DateFrom,
		dateTo:     filter.DateTo,
		tags:       filter.Tags,
	})

	appointments := []model.Appointment{}
	if err := applySort(query, filter.SortBy, filter.SortOrder).Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appointments, nil
}

func (r *AppointmentRepository) Search(ctx context.Context, text string) ([]model.Appointment, error) {
	appointments := []model.Appointment{}
	err := applySearch(r.db.WithContext(ctx).Model(&model.Appointment{}), text).
		Order("created_at DESC").Order("id DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("search appointments: %w", err)
	}
	return appointments, nil
}

// FindByID returns nil without error when no appointment has the id.
func (r *AppointmentRepository) FindByID(ctx context.Context, id uint) (*model.Appointment, error) {
	var appointment model.Appointment
	err := r.db.WithContext(ctx).First(&appointment, id).Error
	switch {
	case err == nil:
		return &appointment, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find appointment: %w", err)
	}
}

func (r *AppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	if err := r.db.WithContext(ctx).Create(appointment).Error; err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// Update writes only the fields set in update and returns the stored row,
// or nil when the appointment does not exist.
func (r *AppointmentRepository) Update(ctx context.Context, id uint, update model.AppointmentUpdate) (*model.Appointment, error) {
	cols := update.Columns()
	if len(cols) == 0 {
		return r.FindByID(ctx, id)
	}

	res := r.db.WithContext(ctx).Model(&model.Appointment{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return nil, fmt.Errorf("update appointment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

// Delete removes an appointment and reports whether it existed.
func (r *AppointmentRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Appointment{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("delete appointment: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListWithReminders returns appointments that have a reminder switched on.
func (r *AppointmentRepository) ListWithReminders(ctx context.Context) ([]model.Appointment, error) {
	var appointments []model.Appointment
	if err := r.db.WithContext(ctx).
		Where("reminder_enabled = ?", true).
		Order("date ASC, start_time ASC").
		Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("list reminder appointments: %w", err)
	}
	return appointments, nil
}

// MarkReminderSent records the occurrence a reminder was delivered for without touching updated_at.
func (r *AppointmentRepository) MarkReminderSent(ctx context.Context, id uint, occurrence string) error {
	if err := r.db.WithContext(ctx).Model(&model.Appointment{}).Where("id = ?", id).
		UpdateColumn("reminder_sent_for", occurrence).Error; err != nil {
		return fmt.Errorf("mark appointment reminder: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) ListRecurring(ctx context.Context) ([]model.Appointment, error) {
	var appointments []model.Appointment
	if err := r.db.WithContext(ctx).
		Where("is_recurring = ?", true).
		Order("date ASC, start_time ASC").
		Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("list recurring appointments: %w", err)
	}
	return appointments, nil
}
