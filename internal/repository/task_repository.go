package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskflow/internal/model"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns the tasks matching filter in the requested order.
func (r *TaskRepository) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	query := applyFilter(r.db.WithContext(ctx).Model(&model.Task{}), commonFilter{
		category:   filter.Category,
		categoryID: filter.CategoryID,
		priority:   filter.Priority,
		dateFrom:   filter.DateFrom,
		dateTo:     filter.DateTo,
		tags:       filter.Tags,
	})
	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}

	tasks := []model.Task{}
	if err := applySort(query, filter.SortBy, filter.SortOrder).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Search returns tasks whose title, description or category contains text, newest first.
func (r *TaskRepository) Search(ctx context.Context, text string) ([]model.Task, error) {
	tasks := []model.Task{}
	err := applySearch(r.db.WithContext(ctx).Model(&model.Task{}), text).
		Order("created_at DESC").Order("id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	return tasks, nil
}

// FindByID returns nil without error when no task has the id.
func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, id).Error
	switch {
	case err == nil:
		return &task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find task: %w", err)
	}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Update writes only the fields set in update and returns the stored row,
// or nil when the task does not exist.
func (r *TaskRepository) Update(ctx context.Context, id uint, update model.TaskUpdate) (*model.Task, error) {
	cols := update.Columns()
	if len(cols) == 0 {
		return r.FindByID(ctx, id)
	}

	res := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return nil, fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

// Delete removes a task and reports whether it existed.
func (r *TaskRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("delete task: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListWithReminders returns open tasks that have a reminder switched on.
func (r *TaskRepository) ListWithReminders(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("reminder_enabled = ? AND completed = ?", true, false).
		Order("date ASC, time ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list reminder tasks: %w", err)
	}
	return tasks, nil
}

// MarkReminderSent records the occurrence a reminder was delivered for without touching updated_at.
func (r *TaskRepository) MarkReminderSent(ctx context.Context, id uint, occurrence string) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).
		UpdateColumn("reminder_sent_for", occurrence).Error; err != nil {
		return fmt.Errorf("mark task reminder: %w", err)
	}
	return nil
}

// ListRecurring returns open recurring tasks in date order.
func (r *TaskRepository) ListRecurring(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("is_recurring = ? AND completed = ?", true, false).
		Order("date ASC, time ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list recurring tasks: %w", err)
	}
	return tasks, nil
}
