package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"taskflow/internal/cache"
	"taskflow/internal/events"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Subject()
	}
	return out
}

type fixture struct {
	tasks        *TaskService
	appointments *AppointmentService
	categories   *CategoryService
	taskRepo     *repository.TaskRepository
	apptRepo     *repository.AppointmentRepository
	cache        *cache.Memory
	events       *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repository.NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{
		taskRepo: repository.NewTaskRepository(db),
		apptRepo: repository.NewAppointmentRepository(db),
		cache:    cache.NewMemory(0),
		events:   &recorder{},
	}
	f.categories = NewCategoryService(repository.NewCategoryRepository(db), f.cache, f.events)
	f.tasks = NewTaskService(f.taskRepo, f.categories, f.cache, f.events)
	f.appointments = NewAppointmentService(f.apptRepo, f.categories, f.cache, f.events)
	return f
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func uintPtr(u uint) *uint { return &u }

func fieldNames(err error) []string {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	out := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		out[i] = f.Field
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func taskTitles(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}
