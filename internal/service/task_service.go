package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"taskflow/internal/cache"
	"taskflow/internal/events"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo   *repository.TaskRepository
	categories *CategoryService
	cache      cache.Cache
	changes    changes
}

// NewTaskService wires the service. A nil cache disables read caching and a
// nil publisher drops change events.
func NewTaskService(taskRepo *repository.TaskRepository, categories *CategoryService, c cache.Cache, pub events.Publisher) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		categories: categories,
		cache:      c,
		changes:    newChanges(c, pub, "task", TasksTag),
	}
}

func (s *TaskService) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	if err := validateStruct(filter); err != nil {
		return nil, err
	}
	key := filterKey(TasksTag, filter.Query())
	return readThrough(ctx, s.cache, key, []string{TasksTag}, func() ([]model.Task, error) {
		return s.taskRepo.List(ctx, filter)
	})
}

func (s *TaskService) Get(ctx context.Context, id uint) (*model.Task, error) {
	return readThrough(ctx, s.cache, s.changes.itemKey(id), s.changes.itemTags(id), func() (*model.Task, error) {
		task, err := s.taskRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if task == nil {
			return nil, ErrNotFound
		}
		return task, nil
	})
}

// Search matches text against title, description and category label, newest first.
func (s *TaskService) Search(ctx context.Context, text string) ([]model.Task, error) {
	text = strings.TrimSpace(text)
	return readThrough(ctx, s.cache, TasksTag+":search:"+strings.ToLower(text), []string{TasksTag}, func() ([]model.Task, error) {
		return s.taskRepo.Search(ctx, text)
	})
}

func (s *TaskService) Create(ctx context.Context, input model.NewTask) (*model.Task, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	task := input.Task()
	if task.ReminderEnabled && task.ReminderTime == nil {
		lead := string(model.Reminder15Min)
		task.ReminderTime = &lead
	}

	name, categoryID, err := s.categories.resolve(ctx, task.Category, task.CategoryID)
	if err != nil {
		return nil, err
	}
	task.Category, task.CategoryID = name, categoryID

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}

	s.changes.record(ctx, events.Created, task.ID)
	return &task, nil
}

// Update applies the field update set and returns ErrNotFound when the task does not exist.
func (s *TaskService) Update(ctx context.Context, id uint, update model.TaskUpdate) (*model.Task, error) {
	if err := validateStruct(update); err != nil {
		return nil, err
	}
	if len(update.Columns()) == 0 {
		return nil, invalidField("", "no fields to update")
	}

	if update.Category != nil || update.CategoryID != nil {
		var label string
		if update.Category != nil {
			label = *update.Category
		}
		name, categoryID, err := s.categories.resolve(ctx, label, update.CategoryID)
		if err != nil {
			return nil, err
		}
		update.Category, update.CategoryID = &name, categoryID
		update.DetachCategory = categoryID == nil
	}

	task, err := s.taskRepo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}

	s.changes.record(ctx, events.Updated, id)
	return task, nil
}

// SetCompleted toggles the completed flag.
func (s *TaskService) SetCompleted(ctx context.Context, id uint, completed bool) (*model.Task, error) {
	return s.Update(ctx, id, model.TaskUpdate{Completed: &completed})
}

func (s *TaskService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.taskRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	s.changes.record(ctx, events.Deleted, id)
	return nil
}

// Today lists the tasks dated today, done or not, in clock order.
func (s *TaskService) Today(ctx context.Context, today string) ([]model.Task, error) {
	if !matchesLayout(today, model.DateLayout) {
		return nil, invalidField("date", "must be a date in YYYY-MM-DD format")
	}
	tasks, err := s.List(ctx, model.TaskFilter{DateFrom: today, DateTo: today, SortBy: model.SortByDate, SortOrder: model.SortAsc})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Time < tasks[j].Time })
	return tasks, nil
}

// Upcoming lists open tasks dated after today, soonest first.
func (s *TaskService) Upcoming(ctx context.Context, today string) ([]model.Task, error) {
	day, err := time.Parse(model.DateLayout, today)
	if err != nil || !matchesLayout(today, model.DateLayout) {
		return nil, invalidField("date", "must be a date in YYYY-MM-DD format")
	}
	open := false
	return s.List(ctx, model.TaskFilter{
		DateFrom:  day.AddDate(0, 0, 1).Format(model.DateLayout),
		Completed: &open,
		SortBy:    model.SortByDate,
		SortOrder: model.SortAsc,
	})
}

// Completed lists finished tasks, most recently created first.
func (s *TaskService) Completed(ctx context.Context) ([]model.Task, error) {
	done := true
	return s.List(ctx, model.TaskFilter{Completed: &done})
}
