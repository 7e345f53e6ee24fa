package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"taskflow/internal/cache"
	"taskflow/internal/model"
	"taskflow/internal/repository"
	"taskflow/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string               `json:"code"`
		Message string               `json:"message"`
		Details []service.FieldError `json:"details"`
	} `json:"error"`
}

func newTestApp(t *testing.T, opts Options) *fiber.App {
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

	c := cache.NewMemory(0)
	categories := service.NewCategoryService(repository.NewCategoryRepository(db), c, nil)
	svc := Services{
		Tasks:        service.NewTaskService(repository.NewTaskRepository(db), categories, c, nil),
		Appointments: service.NewAppointmentService(repository.NewAppointmentRepository(db), categories, c, nil),
		Categories:   categories,
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC) }
		opts.Location = time.UTC
	}
	return NewApp(svc, opts)
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return v
}

func titlesOf(tasks []model.Task) string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return strings.Join(out, ",")
}

func TestTaskLifecycle(t *testing.T) {
	app := newTestApp(t, Options{})

	status, env := call(t, app, http.MethodPost, "/api/tasks", `{"title":"Buy milk","category":"Pessoal","date":"2025-01-10","time":"09:00"}`)
	if status != fiber.StatusCreated || !env.Success {
		t.Fatalf("create status = %d, env = %+v", status, env)
	}
	created := decodeData[model.Task](t, env)
	if created.ID == 0 || created.Priority != model.PriorityMedium || created.Completed || created.ReminderEnabled {
		t.Errorf("created = %+v", created)
	}
	if created.Tags == nil {
		t.Error("tags should serialise as an empty array")
	}

	status, env = call(t, app, http.MethodPatch, "/api/tasks/1", `{"completed":true}`)
	if status != fiber.StatusOK {
		t.Fatalf("patch status = %d, env = %+v", status, env)
	}
	updated := decodeData[model.Task](t, env)
	if !updated.Completed || updated.Title != "Buy milk" || updated.Time != "09:00" {
		t.Errorf("updated = %+v", updated)
	}

	status, env = call(t, app, http.MethodGet, "/api/tasks/1", "")
	if status != fiber.StatusOK || !decodeData[model.Task](t, env).Completed {
		t.Errorf("get after patch = %d %s", status, env.Data)
	}

	status, env = call(t, app, http.MethodDelete, "/api/tasks/1", "")
	if status != fiber.StatusOK {
		t.Fatalf("delete status = %d", status)
	}
	if got := decodeData[map[string]bool](t, env); !got["deleted"] {
		t.Errorf("delete body = %s", env.Data)
	}

	status, env = call(t, app, http.MethodGet, "/api/tasks/1", "")
	if status != fiber.StatusNotFound || env.Error == nil || env.Error.Code != ErrCodeNotFound {
		t.Errorf("get after delete = %d %+v", status, env.Error)
	}
}

func TestPatchExplicitNullClearsField(t *testing.T) {
	app := newTestApp(t, Options{})

	status, env := call(t, app, http.MethodPost, "/api/tasks", `{"title":"Dentist","description":"bring x-rays","date":"2025-01-10","time":"09:00","reminderEnabled":true,"reminderTime":"1hour"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("create status = %d, env = %+v", status, env)
	}
	created := decodeData[model.Task](t, env)

	status, env = call(t, app, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", created.ID), `{"description":null}`)
	if status != fiber.StatusOK {
		t.Fatalf("patch status = %d, env = %+v", status, env)
	}
	updated := decodeData[model.Task](t, env)
	if updated.Description != nil {
		t.Errorf("description = %q, want cleared", *updated.Description)
	}
	if updated.ReminderTime == nil || *updated.ReminderTime != "1hour" || updated.Title != "Dentist" {
		t.Errorf("fields not sent were changed: %+v", updated)
	}

	status, env = call(t, app, http.MethodPost, "/api/appointments", `{"title":"Standup","location":"Room 2","date":"2025-01-10","startTime":"10:00","endTime":"10:15"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("create appointment status = %d, env = %+v", status, env)
	}
	appt := decodeData[model.Appointment](t, env)

	status, env = call(t, app, http.MethodPatch, fmt.Sprintf("/api/appointments/%d", appt.ID), `{"location":null}`)
	if status != fiber.StatusOK {
		t.Fatalf("patch appointment status = %d, env = %+v", status, env)
	}
	if got := decodeData[model.Appointment](t, env); got.Location != nil || got.Title != "Standup" {
		t.Errorf("appointment after clearing location = %+v", got)
	}
}

func TestTaskErrors(t *testing.T) {
	app := newTestApp(t, Options{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
		field  string
	}{
		{"bad priority", http.MethodPost, "/api/tasks", `{"title":"x","priority":"extreme","date":"2025-01-10","time":"09:00"}`, 400, ErrCodeValidation, "priority"},
		{"missing title", http.MethodPost, "/api/tasks", `{"date":"2025-01-10","time":"09:00"}`, 400, ErrCodeValidation, "title"},
		{"broken json", http.MethodPost, "/api/tasks", `{"title":`, 400, ErrCodeBadRequest, ""},
		{"update missing", http.MethodPatch, "/api/tasks/9999", `{"title":"ghost"}`, 404, ErrCodeNotFound, ""},
		{"empty update", http.MethodPatch, "/api/tasks/9999", `{}`, 400, ErrCodeValidation, ""},
		{"delete missing", http.MethodDelete, "/api/tasks/9999", "", 404, ErrCodeNotFound, ""},
		{"bad id", http.MethodGet, "/api/tasks/abc", "", 400, ErrCodeBadRequest, ""},
		{"zero id", http.MethodGet, "/api/tasks/0", "", 400, ErrCodeBadRequest, ""},
		{"bad completed", http.MethodGet, "/api/tasks?completed=maybe", "", 400, ErrCodeBadRequest, ""},
		{"bad sort", http.MethodGet, "/api/tasks?sortBy=size", "", 400, ErrCodeValidation, "sortBy"},
		{"bad date param", http.MethodGet, "/api/tasks/today?date=tomorrow", "", 400, ErrCodeValidation, "date"},
		{"unknown route", http.MethodGet, "/api/nothing", "", 404, ErrCodeNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, app, tt.method, tt.path, tt.body)
			if status != tt.status {
				t.Fatalf("status = %d, want %d (%+v)", status, tt.status, env.Error)
			}
			if env.Success || env.Error == nil || env.Error.Code != tt.code {
				t.Fatalf("error = %+v, want code %s", env.Error, tt.code)
			}
			if tt.field != "" && (len(env.Error.Details) == 0 || env.Error.Details[0].Field != tt.field) {
				t.Errorf("details = %+v, want field %s", env.Error.Details, tt.field)
			}
		})
	}

	_, env := call(t, app, http.MethodGet, "/api/tasks", "")
	if got := decodeData[[]model.Task](t, env); len(got) != 0 {
		t.Errorf("failed requests created rows: %s", titlesOf(got))
	}
}

func TestTaskListQuery(t *testing.T) {
	app := newTestApp(t, Options{})

	for _, body := range []string{
		`{"title":"Cherry","priority":"low","date":"2025-01-12","time":"09:00","tags":["home"]}`,
		`{"title":"apple","priority":"urgent","date":"2025-01-10","time":"09:00","tags":["home","shop"],"completed":true}`,
		`{"title":"Banana","priority":"high","date":"2025-01-11","time":"09:00","tags":["shop"]}`,
	} {
		if status, env := call(t, app, http.MethodPost, "/api/tasks", body); status != fiber.StatusCreated {
			t.Fatalf("seed %s: %d %+v", body, status, env.Error)
		}
	}

	tests := []struct {
		query string
		want  string
	}{
		{"", "Banana,apple,Cherry"},
		{"?sortBy=title&sortOrder=asc", "Banana,Cherry,apple"},
		{"?sortBy=priority&sortOrder=desc", "apple,Banana,Cherry"},
		{"?sortBy=date&sortOrder=asc", "apple,Banana,Cherry"},
		{"?completed=true", "apple"},
		{"?completed=false&sortBy=date", "Cherry,Banana"},
		{"?tags=home,shop", "apple"},
		{"?tags=shop&sortBy=title", "apple,Banana"},
		{"?dateFrom=2025-01-11&dateTo=2025-01-12&sortBy=date&sortOrder=asc", "Banana,Cherry"},
		{"?priority=high", "Banana"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			status, env := call(t, app, http.MethodGet, "/api/tasks"+tt.query, "")
			if status != fiber.StatusOK {
				t.Fatalf("status = %d %+v", status, env.Error)
			}
			if got := titlesOf(decodeData[[]model.Task](t, env)); got != tt.want {
				t.Errorf("titles = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHomeTabsAndSearch(t *testing.T) {
	app := newTestApp(t, Options{})

	for _, body := range []string{
		`{"title":"Lunch with Ana","date":"2025-01-10","time":"12:00"}`,
		`{"title":"Report","description":"after lunch","date":"2025-01-11","time":"09:00"}`,
		`{"title":"Old","date":"2025-01-01","time":"09:00","completed":true}`,
	} {
		if status, _ := call(t, app, http.MethodPost, "/api/tasks", body); status != fiber.StatusCreated {
			t.Fatalf("seed %s: %d", body, status)
		}
	}

	tests := []struct {
		path string
		want string
	}{
		{"/api/tasks/today", "Lunch with Ana"},
		{"/api/tasks/upcoming", "Report"},
		{"/api/tasks/upcoming?date=2025-01-11", ""},
		{"/api/tasks/completed", "Old"},
		{"/api/tasks/search?q=LUNCH", "Report,Lunch with Ana"},
		{"/api/tasks/search?q=100%25", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, env := call(t, app, http.MethodGet, tt.path, "")
			if status != fiber.StatusOK {
				t.Fatalf("status = %d %+v", status, env.Error)
			}
			if got := titlesOf(decodeData[[]model.Task](t, env)); got != tt.want {
				t.Errorf("titles = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppointmentEndpoints(t *testing.T) {
	app := newTestApp(t, Options{})

	status, env := call(t, app, http.MethodPost, "/api/appointments", `{"title":"Dentist","date":"2025-01-10","startTime":"10:00","endTime":"09:00"}`)
	if status != fiber.StatusBadRequest || env.Error.Details[0].Field != "endTime" {
		t.Fatalf("reversed range = %d %+v", status, env.Error)
	}

	status, env = call(t, app, http.MethodPost, "/api/appointments", `{"title":"Dentist","location":"Clinic","date":"2025-01-10","startTime":"10:00","endTime":"11:00"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("create = %d %+v", status, env.Error)
	}
	appt := decodeData[model.Appointment](t, env)

	status, env = call(t, app, http.MethodGet, "/api/appointments/today", "")
	if status != fiber.StatusOK || len(decodeData[[]model.Appointment](t, env)) != 1 {
		t.Errorf("today = %d %s", status, env.Data)
	}

	status, env = call(t, app, http.MethodPatch, "/api/appointments/1", `{"endTime":"10:30"}`)
	if status != fiber.StatusOK || decodeData[model.Appointment](t, env).EndTime != "10:30" {
		t.Errorf("patch = %d %s", status, env.Data)
	}

	status, _ = call(t, app, http.MethodDelete, "/api/appointments/1", "")
	if status != fiber.StatusOK {
		t.Errorf("delete = %d", status)
	}
	if appt.ID != 1 {
		t.Errorf("appointment id = %d", appt.ID)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	app := newTestApp(t, Options{})

	status, env := call(t, app, http.MethodPost, "/api/categories", `{"name":"Trabalho","color":"#f59e0b","icon":"briefcase"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("create = %d %+v", status, env.Error)
	}
	category := decodeData[model.Category](t, env)

	status, env = call(t, app, http.MethodPost, "/api/tasks", `{"title":"Report","category":"trabalho","date":"2025-01-10","time":"09:00"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("create task = %d %+v", status, env.Error)
	}
	task := decodeData[model.Task](t, env)
	if task.CategoryID == nil || *task.CategoryID != category.ID || task.Category != "Trabalho" {
		t.Errorf("task category = %q/%v", task.Category, task.CategoryID)
	}

	status, env = call(t, app, http.MethodGet, "/api/tasks?categoryId=1", "")
	if status != fiber.StatusOK || titlesOf(decodeData[[]model.Task](t, env)) != "Report" {
		t.Errorf("filter by categoryId = %d %s", status, env.Data)
	}

	status, _ = call(t, app, http.MethodDelete, "/api/categories/1", "")
	if status != fiber.StatusOK {
		t.Fatalf("delete category = %d", status)
	}

	status, env = call(t, app, http.MethodGet, "/api/tasks/1", "")
	if status != fiber.StatusOK {
		t.Fatalf("task lost with its category: %d", status)
	}
	if got := decodeData[model.Task](t, env); got.CategoryID != nil {
		t.Errorf("task still references deleted category %d", *got.CategoryID)
	}

	status, env = call(t, app, http.MethodPatch, "/api/categories/1", `{"color":"#000"}`)
	if status != fiber.StatusNotFound {
		t.Errorf("patch deleted category = %d %+v", status, env.Error)
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, Options{})
	status, env := call(t, app, http.MethodGet, "/api/health", "")
	if status != fiber.StatusOK || !env.Success {
		t.Errorf("health = %d", status)
	}

	down := newTestApp(t, Options{Ping: func(context.Context) error { return errors.New("db gone") }})
	status, env = call(t, down, http.MethodGet, "/api/health", "")
	if status != fiber.StatusServiceUnavailable || env.Error.Code != ErrCodeUnavailable {
		t.Errorf("health with failing ping = %d %+v", status, env.Error)
	}
}

func TestRequestIDAndCORS(t *testing.T) {
	app := newTestApp(t, Options{CORSOrigins: "http://localhost:5173"})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get(RequestIDHeader); got != "req-123" {
		t.Errorf("request id = %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("allow credentials = %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("expected a generated request id")
	}
}
