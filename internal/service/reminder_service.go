package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"taskflow/internal/logger"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

const (
	KindTask        = "task"
	KindAppointment = "appointment"
)

// Reminder is one due notification for a task or appointment occurrence.
type Reminder struct {
	Kind     string
	ID       uint
	Title    string
	Category string
	Location string
	At       time.Time
	Lead     model.ReminderLead
}

// Occurrence identifies the occurrence the reminder belongs to.
func (r Reminder) Occurrence() string {
	return r.At.Format(model.DateLayout)
}

// Notifier delivers reminders to the user.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// LogNotifier writes reminders to the log. Used when no bot is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, r Reminder) error {
	logger.InfoContext(ctx, "Reminder due",
		"kind", r.Kind,
		"id", r.ID,
		"title", r.Title,
		"at", r.At.Format(time.RFC3339),
	)
	return nil
}

// ReminderService finds due reminders and builds the daily agenda.
type ReminderService struct {
	taskRepo        *repository.TaskRepository
	appointmentRepo *repository.AppointmentRepository
	notifier        Notifier
	loc             *time.Location
}

func NewReminderService(taskRepo *repository.TaskRepository, appointmentRepo *repository.AppointmentRepository, notifier Notifier, loc *time.Location) *ReminderService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &ReminderService{taskRepo: taskRepo, appointmentRepo: appointmentRepo, notifier: notifier, loc: loc}
}

// UseNotifier replaces the notifier. Call it before the scheduler starts.
func (s *ReminderService) UseNotifier(n Notifier) {
	s.notifier = n
}

// Due returns the reminders whose window contains now and that were not
// delivered yet for their occurrence, soonest first.
func (s *ReminderService) Due(ctx context.Context, now time.Time) ([]Reminder, error) {
	now = now.In(s.loc)

	tasks, err := s.taskRepo.ListWithReminders(ctx)
	if err != nil {
		return nil, err
	}
	appointments, err := s.appointmentRepo.ListWithReminders(ctx)
	if err != nil {
		return nil, err
	}

	var due []Reminder
	for _, task := range tasks {
		r, ok := s.dueReminder(ctx, now, item{
			kind: KindTask, id: task.ID, title: task.Title, category: task.Category,
			date: task.Date, clock: task.Time, lead: task.ReminderTime,
			recurring: task.IsRecurring, pattern: task.RecurrencePattern, sentFor: task.ReminderSentFor,
		})
		if ok {
			due = append(due, r)
		}
	}
	for _, appt := range appointments {
		it := item{
			kind: KindAppointment, id: appt.ID, title: appt.Title, category: appt.Category,
			date: appt.Date, clock: appt.StartTime, lead: appt.ReminderTime,
			recurring: appt.IsRecurring, pattern: appt.RecurrencePattern, sentFor: appt.ReminderSentFor,
		}
		if appt.Location != nil {
			it.location = *appt.Location
		}
		if r, ok := s.dueReminder(ctx, now, it); ok {
			due = append(due, r)
		}
	}

	sort.SliceStable(due, func(i, j int) bool { return due[i].At.Before(due[j].At) })
	return due, nil
}

// Dispatch sends every due reminder and marks its occurrence as delivered.
// A failed delivery stays unmarked and is retried on the next tick.
func (s *ReminderService) Dispatch(ctx context.Context, now time.Time) (int, error) {
	due, err := s.Due(ctx, now)
	if err != nil {
		return 0, err
	}

	var sent int
	var errs []error
	for _, r := range due {
		if err := s.notifier.Notify(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("notify %s %d: %w", r.Kind, r.ID, err))
			continue
		}

		var markErr error
		switch r.Kind {
		case KindTask:
			markErr = s.taskRepo.MarkReminderSent(ctx, r.ID, r.Occurrence())
		case KindAppointment:
			markErr = s.appointmentRepo.MarkReminderSent(ctx, r.ID, r.Occurrence())
		}
		if markErr != nil {
			errs = append(errs, markErr)
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

// DailySummary renders the agenda of the day containing now as Telegram HTML.
func (s *ReminderService) DailySummary(ctx context.Context, now time.Time) (string, error) {
	now = now.In(s.loc)
	today := now.Format(model.DateLayout)

	tasks, err := s.taskRepo.List(ctx, model.TaskFilter{DateFrom: today, DateTo: today})
	if err != nil {
		return "", err
	}
	recurringTasks, err := s.taskRepo.ListRecurring(ctx)
	if err != nil {
		return "", err
	}
	for _, task := range recurringTasks {
		if task.Date < today && s.repeatsOn(task.Date, task.Time, task.RecurrencePattern, now) {
			tasks = append(tasks, task)
		}
	}

	appointments, err := s.appointmentRepo.List(ctx, model.AppointmentFilter{DateFrom: today, DateTo: today})
	if err != nil {
		return "", err
	}
	recurringAppointments, err := s.appointmentRepo.ListRecurring(ctx)
	if err != nil {
		return "", err
	}
	for _, appt := range recurringAppointments {
		if appt.Date < today && s.repeatsOn(appt.Date, appt.StartTime, appt.RecurrencePattern, now) {
			appointments = append(appointments, appt)
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Time < tasks[j].Time })
	sort.SliceStable(appointments, func(i, j int) bool { return appointments[i].StartTime < appointments[j].StartTime })

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily agenda</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02.01.2006")))

	builder.WriteString("✅ <b>Tasks</b>\n")
	if len(tasks) == 0 {
		builder.WriteString("— nothing planned\n")
	}
	for _, task := range tasks {
		builder.WriteString(FormatTask(task))
	}

	builder.WriteString("\n📅 <b>Appointments</b>\n")
	if len(appointments) == 0 {
		builder.WriteString("— no appointments\n")
	}
	for _, appt := range appointments {
		builder.WriteString(FormatAppointment(appt))
	}

	return strings.TrimSpace(builder.String()), nil
}

type item struct {
	kind      string
	id        uint
	title     string
	category  string
	location  string
	date      string
	clock     string
	lead      *string
	recurring bool
	pattern   *string
	sentFor   *string
}

func (s *ReminderService) dueReminder(ctx context.Context, now time.Time, it item) (Reminder, bool) {
	base, err := startOf(it.date, it.clock, s.loc)
	if err != nil {
		logger.WarnContext(ctx, "Skipping reminder with bad schedule", "kind", it.kind, "id", it.id, "error", err)
		return Reminder{}, false
	}

	next, ok := NextOccurrence(base, it.recurring, recurrenceOf(it.pattern), now)
	if !ok {
		return Reminder{}, false
	}

	lead := model.Reminder15Min
	if it.lead != nil && *it.lead != "" {
		lead = model.ReminderLead(*it.lead)
	}
	if now.Before(next.Add(-lead.Duration())) {
		return Reminder{}, false
	}

	r := Reminder{
		Kind:     it.kind,
		ID:       it.id,
		Title:    it.title,
		Category: it.category,
		Location: it.location,
		At:       next,
		Lead:     lead,
	}
	if it.sentFor != nil && *it.sentFor == r.Occurrence() {
		return Reminder{}, false
	}
	return r, true
}

func (s *ReminderService) repeatsOn(date, clock string, pattern *string, day time.Time) bool {
	base, err := startOf(date, clock, s.loc)
	if err != nil {
		return false
	}
	return occursOn(base, true, recurrenceOf(pattern), day)
}

// FormatReminder renders a reminder as Telegram HTML.
func FormatReminder(r Reminder, now time.Time) string {
	var sb strings.Builder

	icon := "⏰"
	if r.Kind == KindAppointment {
		icon = "📅"
	}
	sb.WriteString(fmt.Sprintf("%s <b>%s</b>", icon, html.EscapeString(strings.TrimSpace(r.Title))))
	if r.Category != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(r.Category)))
	}

	sb.WriteString(fmt.Sprintf("\n   🕘 %s", r.At.Format("02.01.2006 15:04")))
	if left := r.At.Sub(now).Round(time.Minute); left > 0 {
		sb.WriteString(fmt.Sprintf(" · in %s", humanDuration(left)))
	}
	if r.Location != "" {
		sb.WriteString(fmt.Sprintf("\n   📍 %s", html.EscapeString(r.Location)))
	}
	return sb.String()
}

// FormatTask renders one agenda line for a task.
func FormatTask(task model.Task) string {
	var sb strings.Builder

	icon := "⬜"
	if task.Completed {
		icon = "✅"
	} else if task.Priority == model.PriorityUrgent {
		icon = "🔥"
	}
	sb.WriteString(fmt.Sprintf("%s %s %s", icon, task.Time, html.EscapeString(strings.TrimSpace(task.Title))))
	if task.Category != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(task.Category)))
	}
	sb.WriteString(fmt.Sprintf(" <code>#%d</code>", task.ID))

	if task.Description != nil && strings.TrimSpace(*task.Description) != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(strings.TrimSpace(*task.Description))))
	}

	sb.WriteByte('\n')
	return sb.String()
}

// FormatAppointment renders one agenda line for an appointment.
func FormatAppointment(appt model.Appointment) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🕘 %s–%s %s", appt.StartTime, appt.EndTime, html.EscapeString(strings.TrimSpace(appt.Title))))
	if appt.Category != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(appt.Category)))
	}
	if appt.Location != nil && strings.TrimSpace(*appt.Location) != "" {
		sb.WriteString(fmt.Sprintf("\n   📍 %s", html.EscapeString(strings.TrimSpace(*appt.Location))))
	}

	sb.WriteByte('\n')
	return sb.String()
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd %dh", int(d.Hours())/24, int(d.Hours())%24)
	case d >= time.Hour:
		return fmt.Sprintf("%dh %dmin", int(d.Hours()), int(d.Minutes())%60)
	default:
		return fmt.Sprintf("%d min", int(d.Minutes()))
	}
}
