// Package importer moves tasks and appointments in and out of YAML documents.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"taskflow/internal/model"
	"taskflow/internal/service"
)

// Document is the root of an import or export file. Category ids are local
// to a database, so items carry their category by name.
type Document struct {
	Tasks        []model.NewTask        `yaml:"tasks"`
	Appointments []model.NewAppointment `yaml:"appointments"`
}

type Result struct {
	Tasks        int
	Appointments int
}

func (r Result) Total() int {
	return r.Tasks + r.Appointments
}

// Import creates every item of the document through the services, which
// validate it. Invalid items are skipped; the returned error describes the
// first one.
func Import(ctx context.Context, tasks *service.TaskService, appointments *service.AppointmentService, r io.Reader) (Result, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Result{}, fmt.Errorf("document is empty")
		}
		return Result{}, fmt.Errorf("YAML parse error: %w", err)
	}
	if len(doc.Tasks) == 0 && len(doc.Appointments) == 0 {
		return Result{}, fmt.Errorf("no tasks or appointments found in YAML")
	}

	var (
		result   Result
		firstErr error
	)
	for i, input := range doc.Tasks {
		if _, err := tasks.Create(ctx, input); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("tasks[%d] %q: %w", i, input.Title, err)
			}
			continue
		}
		result.Tasks++
	}
	for i, input := range doc.Appointments {
		if _, err := appointments.Create(ctx, input); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("appointments[%d] %q: %w", i, input.Title, err)
			}
			continue
		}
		result.Appointments++
	}
	return result, firstErr
}

// Export writes every task and appointment, oldest first.
func Export(ctx context.Context, tasks *service.TaskService, appointments *service.AppointmentService, w io.Writer) (Result, error) {
	taskRows, err := tasks.List(ctx, model.TaskFilter{SortBy: model.SortByCreated, SortOrder: model.SortAsc})
	if err != nil {
		return Result{}, fmt.Errorf("list tasks: %w", err)
	}
	apptRows, err := appointments.List(ctx, model.AppointmentFilter{SortBy: model.SortByCreated, SortOrder: model.SortAsc})
	if err != nil {
		return Result{}, fmt.Errorf("list appointments: %w", err)
	}

	doc := Document{
		Tasks:        make([]model.NewTask, 0, len(taskRows)),
		Appointments: make([]model.NewAppointment, 0, len(apptRows)),
	}
	for _, task := range taskRows {
		doc.Tasks = append(doc.Tasks, taskInput(task))
	}
	for _, appt := range apptRows {
		doc.Appointments = append(doc.Appointments, appointmentInput(appt))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return Result{}, fmt.Errorf("encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return Result{}, fmt.Errorf("encode YAML: %w", err)
	}
	return Result{Tasks: len(doc.Tasks), Appointments: len(doc.Appointments)}, nil
}

func taskInput(t model.Task) model.NewTask {
	input := model.NewTask{
		Title:             t.Title,
		Description:       t.Description,
		Category:          t.Category,
		Priority:          t.Priority,
		Date:              t.Date,
		Time:              t.Time,
		Completed:         t.Completed,
		ReminderEnabled:   t.ReminderEnabled,
		ReminderTime:      t.ReminderTime,
		IsRecurring:       t.IsRecurring,
		RecurrencePattern: t.RecurrencePattern,
	}
	if len(t.Tags) > 0 {
		input.Tags = t.Tags
	}
	return input
}

func appointmentInput(a model.Appointment) model.NewAppointment {
	input := model.NewAppointment{
		Title:             a.Title,
		Description:       a.Description,
		Location:          a.Location,
		Category:          a.Category,
		Priority:          a.Priority,
		Date:              a.Date,
		StartTime:         a.StartTime,
		EndTime:           a.EndTime,
		ReminderEnabled:   a.ReminderEnabled,
		ReminderTime:      a.ReminderTime,
		IsRecurring:       a.IsRecurring,
		RecurrencePattern: a.RecurrencePattern,
	}
	if len(a.Tags) > 0 {
		input.Tags = a.Tags
	}
	return input
}
